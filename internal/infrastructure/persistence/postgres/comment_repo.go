// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tender-collab-api/internal/domain/entity"
)

// CommentRepository 批注仓储实现
type CommentRepository struct {
	client *Client
}

// NewCommentRepository 创建批注仓储
func NewCommentRepository(client *Client) *CommentRepository {
	return &CommentRepository{client: client}
}

// Create 创建批注
func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(comment).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取批注
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var comment entity.Comment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// Update 更新批注
func (r *CommentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(comment).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// Delete 删除批注
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Comment{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// ListByChapter 获取章节批注（按创建时间倒序）
func (r *CommentRepository) ListByChapter(ctx context.Context, chapterID string, includeResolved bool) ([]*entity.Comment, error) {
	ctx, span := tracer.Start(ctx, "postgres.CommentRepository.ListByChapter")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Where("chapter_id = ?", chapterID)
	if !includeResolved {
		query = query.Where("is_resolved = ?", false)
	}

	var comments []*entity.Comment
	if err := query.Order("created_at DESC").Find(&comments).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
