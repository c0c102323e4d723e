// Package project 提供标书项目与成员管理
package project

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"

	"tender-collab-api/internal/application/access"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

var tracer = otel.Tracer("project")

// Service 项目服务
type Service struct {
	access      *access.Checker
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	txManager   repository.Transactor
}

// NewService 创建项目服务
func NewService(checker *access.Checker, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, txManager repository.Transactor) *Service {
	return &Service{
		access:      checker,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		txManager:   txManager,
	}
}

// CreateInput 创建项目参数
type CreateInput struct {
	Name        string
	Description string
	Tags        []string
}

// Create 创建项目，创建者自动成为拥有者
func (s *Service) Create(ctx context.Context, actor entity.Actor, input CreateInput) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Service.Create",
		trace.WithAttributes(attribute.String("project.name", input.Name)))
	defer span.End()

	project := &entity.Project{
		Name:        input.Name,
		Description: input.Description,
		Tags:        input.Tags,
		Status:      entity.ProjectStatusDraft,
		OwnerID:     actor.UserID,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Create(txCtx, project); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create project")
		}
		member := &entity.ProjectMember{
			ProjectID: project.ID,
			UserID:    actor.UserID,
			Role:      entity.MemberRoleOwner,
		}
		if err := s.projectRepo.AddMember(txCtx, member); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to add project owner")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "project created", "project_id", project.ID, "owner", actor.UserID)
	return project, nil
}

// Get 获取项目详情
func (s *Service) Get(ctx context.Context, projectID string, actor entity.Actor) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Service.Get",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get project")
	}
	if project == nil {
		return nil, apperrors.ErrProjectNotFound
	}
	return project, nil
}

// List 列出操作者参与的项目
func (s *Service) List(ctx context.Context, actor entity.Actor, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "project.Service.List")
	defer span.End()

	return s.projectRepo.ListByUser(ctx, actor.UserID, pagination)
}

// Delete 删除项目，仅拥有者或管理员
func (s *Service) Delete(ctx context.Context, projectID string, actor entity.Actor) error {
	ctx, span := tracer.Start(ctx, "project.Service.Delete",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	owner, err := s.access.IsOwner(ctx, projectID, actor)
	if err != nil {
		return err
	}
	if !owner {
		return apperrors.ErrForbidden.WithDetail("only the project owner can delete the project")
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get project")
	}
	if project == nil {
		return apperrors.ErrProjectNotFound
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete project")
	}

	logger.Info(ctx, "project deleted", "project_id", projectID, "by", actor.UserID)
	return nil
}

// AddMember 添加项目成员，仅拥有者或管理员
func (s *Service) AddMember(ctx context.Context, projectID string, actor entity.Actor, userID string, role entity.MemberRole) (*entity.ProjectMember, error) {
	ctx, span := tracer.Start(ctx, "project.Service.AddMember",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	owner, err := s.access.IsOwner(ctx, projectID, actor)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, apperrors.ErrForbidden.WithDetail("only the project owner can manage members")
	}
	if !role.Valid() || role == entity.MemberRoleOwner {
		return nil, apperrors.ErrInvalidParam.WithDetail("role must be editor or reviewer")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	existing, err := s.projectRepo.GetMemberRole(ctx, projectID, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check membership")
	}
	if existing != "" {
		return nil, apperrors.ErrConflict.WithDetail("user is already a project member")
	}

	member := &entity.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to add member")
	}

	logger.Info(ctx, "project member added", "project_id", projectID, "user_id", userID, "role", role)
	return member, nil
}

// RemoveMember 移除项目成员，仅拥有者或管理员；拥有者不可被移除
func (s *Service) RemoveMember(ctx context.Context, projectID string, actor entity.Actor, userID string) error {
	ctx, span := tracer.Start(ctx, "project.Service.RemoveMember",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	owner, err := s.access.IsOwner(ctx, projectID, actor)
	if err != nil {
		return err
	}
	if !owner {
		return apperrors.ErrForbidden.WithDetail("only the project owner can manage members")
	}

	role, err := s.projectRepo.GetMemberRole(ctx, projectID, userID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check membership")
	}
	if role == "" {
		return apperrors.ErrNotFound.WithDetail("user is not a project member")
	}
	if role == entity.MemberRoleOwner {
		return apperrors.ErrInvalidParam.WithDetail("the project owner cannot be removed")
	}

	if err := s.projectRepo.RemoveMember(ctx, projectID, userID); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to remove member")
	}

	logger.Info(ctx, "project member removed", "project_id", projectID, "user_id", userID)
	return nil
}

// ListMembers 列出项目成员
func (s *Service) ListMembers(ctx context.Context, projectID string, actor entity.Actor) ([]*entity.ProjectMember, error) {
	ctx, span := tracer.Start(ctx, "project.Service.ListMembers",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}
	return s.projectRepo.ListMembers(ctx, projectID)
}
