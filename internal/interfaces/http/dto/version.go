// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"tender-collab-api/internal/application/history"
	"tender-collab-api/internal/domain/entity"
)

// CreateSnapshotRequest 创建全项目快照请求
type CreateSnapshotRequest struct {
	ChangeType string `json:"change_type" binding:"required,oneof=ai_generate manual_edit proofread rollback"`
	Summary    string `json:"summary" binding:"max=500"`
}

// RollbackRequest 回滚请求
type RollbackRequest struct {
	VersionID    string `json:"version_id" binding:"required,uuid"`
	CreateBackup bool   `json:"create_backup"`
	Summary      string `json:"summary" binding:"max=500"`
}

// VersionResponse 版本响应（列表用，不含快照负载）
type VersionResponse struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	ChapterID     *string   `json:"chapter_id,omitempty"`
	VersionNumber int       `json:"version_number"`
	ChangeType    string    `json:"change_type"`
	ChangeSummary string    `json:"change_summary,omitempty"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// VersionDetailResponse 版本详情响应（含快照负载）
type VersionDetailResponse struct {
	VersionResponse
	SnapshotData *entity.SnapshotData `json:"snapshot_data"`
}

// NewVersionResponse 构建版本响应
func NewVersionResponse(v *entity.ProjectVersion) VersionResponse {
	return VersionResponse{
		ID:            v.ID,
		ProjectID:     v.ProjectID,
		ChapterID:     v.ChapterID,
		VersionNumber: v.VersionNumber,
		ChangeType:    string(v.ChangeType),
		ChangeSummary: v.ChangeSummary,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
	}
}

// NewVersionDetailResponse 构建版本详情响应
func NewVersionDetailResponse(v *entity.ProjectVersion) VersionDetailResponse {
	return VersionDetailResponse{
		VersionResponse: NewVersionResponse(v),
		SnapshotData:    v.SnapshotData,
	}
}

// NewVersionResponses 构建版本响应列表
func NewVersionResponses(versions []*entity.ProjectVersion) []VersionResponse {
	out := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, NewVersionResponse(v))
	}
	return out
}

// DiffResponse 版本差异响应
type DiffResponse = history.DiffResult

// RollbackResponse 回滚结果响应
type RollbackResponse = history.RollbackResult
