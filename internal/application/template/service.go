// Package template 提供标书目录模板管理与按模板建项目
package template

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

var tracer = otel.Tracer("template")

// Service 模板服务
type Service struct {
	templateRepo repository.TemplateRepository
	projectRepo  repository.ProjectRepository
	chapterRepo  repository.ChapterRepository
	txManager    repository.Transactor
}

// NewService 创建模板服务
func NewService(templateRepo repository.TemplateRepository, projectRepo repository.ProjectRepository, chapterRepo repository.ChapterRepository, txManager repository.Transactor) *Service {
	return &Service{
		templateRepo: templateRepo,
		projectRepo:  projectRepo,
		chapterRepo:  chapterRepo,
		txManager:    txManager,
	}
}

// CreateInput 创建模板参数
type CreateInput struct {
	Name            string
	Description     string
	SourceProjectID *string
}

// Create 创建模板，提供来源项目时复制其目录结构
// 需要全局编辑者及以上角色；来源项目要求操作者是其成员
func (s *Service) Create(ctx context.Context, actor entity.Actor, input CreateInput) (*entity.Template, error) {
	ctx, span := tracer.Start(ctx, "template.Service.Create",
		trace.WithAttributes(attribute.String("template.name", input.Name)))
	defer span.End()

	if err := requireGlobalEditor(actor); err != nil {
		return nil, err
	}

	var outline []entity.OutlineNode
	if input.SourceProjectID != nil {
		role, err := s.projectRepo.GetMemberRole(ctx, *input.SourceProjectID, actor.UserID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check source project membership")
		}
		if role == "" && !actor.IsAdmin() {
			return nil, apperrors.ErrProjectNotFound.WithDetail("source project not found or not accessible")
		}

		chapters, err := s.chapterRepo.ListByProject(ctx, *input.SourceProjectID, nil)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list source project chapters")
		}
		outline = buildOutline(chapters)
	}

	template := &entity.Template{
		Name:            input.Name,
		Description:     input.Description,
		OutlineData:     outline,
		SourceProjectID: input.SourceProjectID,
		CreatedBy:       actor.UserID,
	}
	if err := s.templateRepo.Create(ctx, template); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create template")
	}

	logger.Info(ctx, "template created", "template_id", template.ID, "by", actor.UserID)
	return template, nil
}

// Get 获取模板详情
func (s *Service) Get(ctx context.Context, templateID string) (*entity.Template, error) {
	ctx, span := tracer.Start(ctx, "template.Service.Get",
		trace.WithAttributes(attribute.String("template.id", templateID)))
	defer span.End()

	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get template")
	}
	if template == nil {
		return nil, apperrors.ErrNotFound.WithDetail("template not found")
	}
	return template, nil
}

// List 列出模板
func (s *Service) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Template], error) {
	ctx, span := tracer.Start(ctx, "template.Service.List")
	defer span.End()

	return s.templateRepo.List(ctx, pagination)
}

// UpdateInput 更新模板参数，nil 字段保持原值
type UpdateInput struct {
	Name        *string
	Description *string
}

// Update 更新模板，仅创建者或管理员
func (s *Service) Update(ctx context.Context, templateID string, actor entity.Actor, input UpdateInput) (*entity.Template, error) {
	ctx, span := tracer.Start(ctx, "template.Service.Update",
		trace.WithAttributes(attribute.String("template.id", templateID)))
	defer span.End()

	template, err := s.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !template.CanManage(actor) {
		return nil, apperrors.ErrForbidden.WithDetail("only the template creator or an admin can update the template")
	}

	if input.Name != nil {
		template.Name = *input.Name
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
	if err := s.templateRepo.Update(ctx, template); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update template")
	}

	logger.Info(ctx, "template updated", "template_id", templateID, "by", actor.UserID)
	return template, nil
}

// Delete 删除模板，仅创建者或管理员
func (s *Service) Delete(ctx context.Context, templateID string, actor entity.Actor) error {
	ctx, span := tracer.Start(ctx, "template.Service.Delete",
		trace.WithAttributes(attribute.String("template.id", templateID)))
	defer span.End()

	template, err := s.Get(ctx, templateID)
	if err != nil {
		return err
	}
	if !template.CanManage(actor) {
		return apperrors.ErrForbidden.WithDetail("only the template creator or an admin can delete the template")
	}

	if err := s.templateRepo.Delete(ctx, templateID); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete template")
	}

	logger.Info(ctx, "template deleted", "template_id", templateID, "by", actor.UserID)
	return nil
}

// CreateProjectInput 按模板创建项目参数
type CreateProjectInput struct {
	Name        string
	Description string
}

// CreateProject 基于模板创建新项目，复制目录结构为章节树
// 项目创建、拥有者成员与章节在同一个事务内落库
func (s *Service) CreateProject(ctx context.Context, templateID string, actor entity.Actor, input CreateProjectInput) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "template.Service.CreateProject",
		trace.WithAttributes(attribute.String("template.id", templateID)))
	defer span.End()

	if err := requireGlobalEditor(actor); err != nil {
		return nil, err
	}

	template, err := s.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	project := &entity.Project{
		Name:        input.Name,
		Description: input.Description,
		Status:      entity.ProjectStatusDraft,
		OwnerID:     actor.UserID,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
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
		return s.createChaptersFromOutline(txCtx, project.ID, template.OutlineData, nil)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "project created from template",
		"project_id", project.ID, "template_id", templateID, "by", actor.UserID)
	return project, nil
}

// createChaptersFromOutline 按目录节点递归创建章节
func (s *Service) createChaptersFromOutline(ctx context.Context, projectID string, nodes []entity.OutlineNode, parentID *string) error {
	for _, node := range nodes {
		chapter := entity.NewChapter(projectID, parentID, node.ChapterNumber, node.Title, node.OrderIndex)
		if err := s.chapterRepo.Create(ctx, chapter); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create chapter from outline")
		}
		if len(node.Children) > 0 {
			if err := s.createChaptersFromOutline(ctx, projectID, node.Children, &chapter.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildOutline 把项目章节列表压成目录树，剥离正文与状态
func buildOutline(chapters []*entity.Chapter) []entity.OutlineNode {
	childrenByParent := make(map[string][]*entity.Chapter)
	var roots []*entity.Chapter
	for _, ch := range chapters {
		if ch.ParentID == nil {
			roots = append(roots, ch)
			continue
		}
		childrenByParent[*ch.ParentID] = append(childrenByParent[*ch.ParentID], ch)
	}

	var build func(ch *entity.Chapter) entity.OutlineNode
	build = func(ch *entity.Chapter) entity.OutlineNode {
		node := entity.OutlineNode{
			ChapterNumber: ch.ChapterNumber,
			Title:         ch.Title,
			OrderIndex:    ch.OrderIndex,
		}
		children := childrenByParent[ch.ID]
		sort.Slice(children, func(i, j int) bool { return children[i].OrderIndex < children[j].OrderIndex })
		for _, child := range children {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].OrderIndex < roots[j].OrderIndex })
	out := make([]entity.OutlineNode, 0, len(roots))
	for _, root := range roots {
		out = append(out, build(root))
	}
	return out
}

// requireGlobalEditor 要求全局编辑者及以上角色
func requireGlobalEditor(actor entity.Actor) error {
	if actor.Role == entity.UserRoleReviewer {
		return apperrors.ErrForbidden.WithDetail("reviewers cannot manage templates")
	}
	return nil
}
