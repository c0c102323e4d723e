// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

// VersionRepository 版本快照仓储实现
type VersionRepository struct {
	client *Client
}

// NewVersionRepository 创建版本仓储
func NewVersionRepository(client *Client) *VersionRepository {
	return &VersionRepository{client: client}
}

// Create 插入版本快照
func (r *VersionRepository) Create(ctx context.Context, version *entity.ProjectVersion) error {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(version).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create version: %w", err)
	}
	return nil
}

// GetByID 根据项目与版本 ID 获取版本
func (r *VersionRepository) GetByID(ctx context.Context, projectID, versionID string) (*entity.ProjectVersion, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var version entity.ProjectVersion
	if err := db.First(&version, "id = ? AND project_id = ?", versionID, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return &version, nil
}

// GetByNumber 根据项目与版本号获取版本
func (r *VersionRepository) GetByNumber(ctx context.Context, projectID string, versionNumber int) (*entity.ProjectVersion, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.GetByNumber")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var version entity.ProjectVersion
	if err := db.First(&version, "project_id = ? AND version_number = ?", projectID, versionNumber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get version by number: %w", err)
	}
	return &version, nil
}

// MaxVersionNumber 获取项目当前最大版本号
func (r *VersionRepository) MaxVersionNumber(ctx context.Context, projectID string) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.MaxVersionNumber")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var maxNumber *int
	if err := db.Model(&entity.ProjectVersion{}).
		Where("project_id = ?", projectID).
		Select("MAX(version_number)").
		Scan(&maxNumber).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get max version number: %w", err)
	}

	if maxNumber == nil {
		return 0, nil
	}
	return *maxNumber, nil
}

// ListByProject 获取项目版本列表（按版本号倒序）
func (r *VersionRepository) ListByProject(ctx context.Context, projectID string, filter *repository.VersionFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectVersion], error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.ProjectVersion{}).Where("project_id = ?", projectID)

	// 应用过滤条件
	if filter != nil {
		if filter.ChapterID != nil {
			query = query.Where("chapter_id = ?", *filter.ChapterID)
		}
		if filter.ChangeType != "" {
			query = query.Where("change_type = ?", filter.ChangeType)
		}
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count versions: %w", err)
	}

	// 获取列表
	var versions []*entity.ProjectVersion
	if err := query.Order("version_number DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&versions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	return repository.NewPagedResult(versions, total, pagination), nil
}

// CountByProject 统计项目版本数
func (r *VersionRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.CountByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var total int64
	if err := db.Model(&entity.ProjectVersion{}).
		Where("project_id = ?", projectID).
		Count(&total).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count versions: %w", err)
	}
	return total, nil
}
