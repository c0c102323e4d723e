// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"tender-collab-api/internal/application/editing"
	"tender-collab-api/internal/domain/entity"
)

// CreateChapterRequest 创建章节请求
type CreateChapterRequest struct {
	ParentID      *string `json:"parent_id" binding:"omitempty,uuid"`
	ChapterNumber string  `json:"chapter_number" binding:"required,max=50"`
	Title         string  `json:"title" binding:"required,max=500"`
	OrderIndex    int     `json:"order_index" binding:"min=0"`
}

// UpdateContentRequest 内容写入请求
type UpdateContentRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=500"`
	Content *string `json:"content"`
	Summary string  `json:"summary" binding:"max=500"`
}

// TransitionStatusRequest 状态流转请求
type TransitionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending generated reviewing finalized"`
}

// LockStatusResponse 锁状态响应
type LockStatusResponse struct {
	IsLocked     bool       `json:"is_locked"`
	LockedBy     *string    `json:"locked_by,omitempty"`
	LockedByName string     `json:"locked_by_name,omitempty"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// NewLockStatusResponse 构建锁状态响应
func NewLockStatusResponse(s *editing.LockStatus) LockStatusResponse {
	return LockStatusResponse{
		IsLocked:     s.IsLocked,
		LockedBy:     s.LockedBy,
		LockedByName: s.LockedByName,
		LockedAt:     s.LockedAt,
		ExpiresAt:    s.ExpiresAt,
	}
}

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID            string              `json:"id"`
	ProjectID     string              `json:"project_id"`
	ParentID      *string             `json:"parent_id,omitempty"`
	ChapterNumber string              `json:"chapter_number"`
	Title         string              `json:"title"`
	Content       *string             `json:"content,omitempty"`
	Status        string              `json:"status"`
	OrderIndex    int                 `json:"order_index"`
	Lock          *LockStatusResponse `json:"lock,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewChapterResponse 构建章节响应
func NewChapterResponse(ch *entity.Chapter, lock *editing.LockStatus) ChapterResponse {
	resp := ChapterResponse{
		ID:            ch.ID,
		ProjectID:     ch.ProjectID,
		ParentID:      ch.ParentID,
		ChapterNumber: ch.ChapterNumber,
		Title:         ch.Title,
		Content:       ch.Content,
		Status:        string(ch.Status),
		OrderIndex:    ch.OrderIndex,
		CreatedAt:     ch.CreatedAt,
		UpdatedAt:     ch.UpdatedAt,
	}
	if lock != nil {
		l := NewLockStatusResponse(lock)
		resp.Lock = &l
	}
	return resp
}

// UpdateContentResponse 内容写入响应
type UpdateContentResponse struct {
	Chapter       ChapterResponse `json:"chapter"`
	VersionNumber int             `json:"version_number"`
	VersionID     string          `json:"version_id"`
}

// ProgressResponse 项目进度响应
type ProgressResponse struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	CompletionRate float64          `json:"completion_rate"`
}

// NewProgressResponse 构建项目进度响应
func NewProgressResponse(p *editing.Progress) ProgressResponse {
	byStatus := make(map[string]int64, len(p.ByStatus))
	for status, n := range p.ByStatus {
		byStatus[string(status)] = n
	}
	return ProgressResponse{
		Total:          p.Total,
		ByStatus:       byStatus,
		CompletionRate: p.CompletionRate,
	}
}
