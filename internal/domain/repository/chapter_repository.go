// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"tender-collab-api/internal/domain/entity"
)

// ChapterFilter 章节过滤条件
type ChapterFilter struct {
	ParentID *string
	Status   entity.ChapterStatus
}

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节
	GetByID(ctx context.Context, id string) (*entity.Chapter, error)

	// GetByIDForUpdate 根据 ID 获取章节并加行锁
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Chapter, error)

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// Delete 删除章节
	Delete(ctx context.Context, id string) error

	// ListByProject 获取项目全部章节（按层级与排序序号排序）
	ListByProject(ctx context.Context, projectID string, filter *ChapterFilter) ([]*entity.Chapter, error)

	// UpdateContent 更新章节标题与正文，nil 字段保持原值
	UpdateContent(ctx context.Context, id string, title *string, content *string, status entity.ChapterStatus) error

	// UpdateLock 更新章节锁字段，两个参数同为 nil 即释放
	UpdateLock(ctx context.Context, id string, lockedBy *string, lockedAt *time.Time) error

	// UpdateStatus 更新章节状态
	UpdateStatus(ctx context.Context, id string, status entity.ChapterStatus) error

	// CountByStatus 按状态统计项目章节数
	CountByStatus(ctx context.Context, projectID string) (map[entity.ChapterStatus]int64, error)
}
