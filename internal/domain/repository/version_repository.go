// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"tender-collab-api/internal/domain/entity"
)

// VersionFilter 版本过滤条件
type VersionFilter struct {
	ChapterID  *string
	ChangeType entity.ChangeType
}

// VersionRepository 版本快照仓储接口
// 版本号的唯一性由 (project_id, version_number) 唯一约束兜底
type VersionRepository interface {
	// Create 插入版本快照
	Create(ctx context.Context, version *entity.ProjectVersion) error

	// GetByID 根据项目与版本 ID 获取版本
	GetByID(ctx context.Context, projectID, versionID string) (*entity.ProjectVersion, error)

	// GetByNumber 根据项目与版本号获取版本
	GetByNumber(ctx context.Context, projectID string, versionNumber int) (*entity.ProjectVersion, error)

	// MaxVersionNumber 获取项目当前最大版本号，无版本时返回 0
	MaxVersionNumber(ctx context.Context, projectID string) (int, error)

	// ListByProject 获取项目版本列表（按版本号倒序）
	ListByProject(ctx context.Context, projectID string, filter *VersionFilter, pagination Pagination) (*PagedResult[*entity.ProjectVersion], error)

	// CountByProject 统计项目版本数
	CountByProject(ctx context.Context, projectID string) (int64, error)
}
