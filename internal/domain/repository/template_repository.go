// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"tender-collab-api/internal/domain/entity"
)

// TemplateRepository 模板仓储接口
type TemplateRepository interface {
	// Create 创建模板
	Create(ctx context.Context, template *entity.Template) error

	// GetByID 根据 ID 获取模板
	GetByID(ctx context.Context, id string) (*entity.Template, error)

	// Update 更新模板
	Update(ctx context.Context, template *entity.Template) error

	// Delete 删除模板
	Delete(ctx context.Context, id string) error

	// List 获取模板列表（按创建时间倒序）
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Template], error)
}
