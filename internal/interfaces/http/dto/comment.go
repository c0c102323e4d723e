// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"tender-collab-api/internal/application/comment"
)

// CreateCommentRequest 创建批注请求
type CreateCommentRequest struct {
	Content       string `json:"content" binding:"required,max=5000"`
	PositionStart *int   `json:"position_start" binding:"omitempty,min=0"`
	PositionEnd   *int   `json:"position_end" binding:"omitempty,min=0"`
}

// CommentResponse 批注响应
type CommentResponse struct {
	ID                 string     `json:"id"`
	ChapterID          string     `json:"chapter_id"`
	UserID             string     `json:"user_id"`
	Username           string     `json:"username"`
	Content            string     `json:"content"`
	PositionStart      *int       `json:"position_start,omitempty"`
	PositionEnd        *int       `json:"position_end,omitempty"`
	IsResolved         bool       `json:"is_resolved"`
	ResolvedBy         *string    `json:"resolved_by,omitempty"`
	ResolvedByUsername string     `json:"resolved_by_username,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CommentListResponse 批注列表响应
type CommentListResponse struct {
	Items []CommentResponse `json:"items"`
	Total int               `json:"total"`
}

// NewCommentResponse 构建批注响应
func NewCommentResponse(v *comment.View) CommentResponse {
	return CommentResponse{
		ID:                 v.ID,
		ChapterID:          v.ChapterID,
		UserID:             v.UserID,
		Username:           v.Username,
		Content:            v.Content,
		PositionStart:      v.PositionStart,
		PositionEnd:        v.PositionEnd,
		IsResolved:         v.IsResolved,
		ResolvedBy:         v.ResolvedBy,
		ResolvedByUsername: v.ResolvedByUsername,
		ResolvedAt:         v.ResolvedAt,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

// NewCommentListResponse 构建批注列表响应
func NewCommentListResponse(views []*comment.View) CommentListResponse {
	items := make([]CommentResponse, 0, len(views))
	for _, v := range views {
		items = append(items, NewCommentResponse(v))
	}
	return CommentListResponse{Items: items, Total: len(items)}
}
