// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

// ProjectRepository 项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(project).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var project entity.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// GetByIDForUpdate 根据 ID 获取项目并加行锁
// 版本号分配在此行锁上串行化，必须在事务内调用
func (r *ProjectRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByIDForUpdate")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var project entity.Project
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project for update: %w", err)
	}
	return &project, nil
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(project).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// Delete 删除项目
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Project{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListByUser 获取用户参与的项目列表
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Project{}).
		Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	var projects []*entity.Project
	if err := query.Order("projects.updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&projects).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return repository.NewPagedResult(projects, total, pagination), nil
}

// GetMemberRole 获取用户在项目中的角色
func (r *ProjectRepository) GetMemberRole(ctx context.Context, projectID, userID string) (entity.MemberRole, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetMemberRole")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var member entity.ProjectMember
	if err := db.First(&member, "project_id = ? AND user_id = ?", projectID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		span.RecordError(err)
		return "", fmt.Errorf("failed to get member role: %w", err)
	}
	return member.Role, nil
}

// AddMember 添加项目成员
func (r *ProjectRepository) AddMember(ctx context.Context, member *entity.ProjectMember) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.AddMember")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(member).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

// RemoveMember 移除项目成员
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.RemoveMember")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.ProjectMember{}, "project_id = ? AND user_id = ?", projectID, userID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	return nil
}

// ListMembers 获取项目成员列表
func (r *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]*entity.ProjectMember, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.ListMembers")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var members []*entity.ProjectMember
	if err := db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}
