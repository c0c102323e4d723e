// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"tender-collab-api/internal/domain/entity"
)

// CommentRepository 批注仓储接口
type CommentRepository interface {
	// Create 创建批注
	Create(ctx context.Context, comment *entity.Comment) error

	// GetByID 根据 ID 获取批注
	GetByID(ctx context.Context, id string) (*entity.Comment, error)

	// Update 更新批注
	Update(ctx context.Context, comment *entity.Comment) error

	// Delete 删除批注
	Delete(ctx context.Context, id string) error

	// ListByChapter 获取章节批注（按创建时间倒序），includeResolved 为假时只返回未解决批注
	ListByChapter(ctx context.Context, chapterID string, includeResolved bool) ([]*entity.Comment, error)
}
