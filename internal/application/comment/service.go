// Package comment 提供章节批注能力
package comment

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"

	"tender-collab-api/internal/application/access"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

var tracer = otel.Tracer("comment")

// Service 批注服务
type Service struct {
	access      *access.Checker
	commentRepo repository.CommentRepository
	chapterRepo repository.ChapterRepository
	userRepo    repository.UserRepository

	now func() time.Time
}

// NewService 创建批注服务
func NewService(checker *access.Checker, commentRepo repository.CommentRepository, chapterRepo repository.ChapterRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		access:      checker,
		commentRepo: commentRepo,
		chapterRepo: chapterRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// View 批注视图，附带作者与解决者用户名
type View struct {
	*entity.Comment
	Username           string `json:"username"`
	ResolvedByUsername string `json:"resolved_by_username,omitempty"`
}

// CreateInput 创建批注参数
type CreateInput struct {
	Content       string
	PositionStart *int
	PositionEnd   *int
}

// Create 为章节添加批注，任意项目成员可批注
func (s *Service) Create(ctx context.Context, projectID, chapterID string, actor entity.Actor, input CreateInput) (*View, error) {
	ctx, span := tracer.Start(ctx, "comment.Service.Create",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}
	if _, err := s.loadChapter(ctx, projectID, chapterID); err != nil {
		return nil, err
	}
	if input.PositionStart != nil && input.PositionEnd != nil && *input.PositionStart > *input.PositionEnd {
		return nil, apperrors.ErrInvalidParam.WithDetail("position_start cannot exceed position_end")
	}

	comment := &entity.Comment{
		ChapterID:     chapterID,
		UserID:        actor.UserID,
		Content:       input.Content,
		PositionStart: input.PositionStart,
		PositionEnd:   input.PositionEnd,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create comment")
	}

	logger.Info(ctx, "comment created", "comment_id", comment.ID, "chapter_id", chapterID, "by", actor.UserID)
	return s.toView(ctx, comment), nil
}

// List 获取章节批注列表，默认只返回未解决批注
func (s *Service) List(ctx context.Context, projectID, chapterID string, actor entity.Actor, includeResolved bool) ([]*View, error) {
	ctx, span := tracer.Start(ctx, "comment.Service.List",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}
	if _, err := s.loadChapter(ctx, projectID, chapterID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByChapter(ctx, chapterID, includeResolved)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list comments")
	}
	return s.toViews(ctx, comments), nil
}

// Resolve 标记批注为已解决
// 仅批注作者、项目拥有者或管理员；已解决的批注幂等返回当前状态
func (s *Service) Resolve(ctx context.Context, commentID string, actor entity.Actor) (*View, error) {
	ctx, span := tracer.Start(ctx, "comment.Service.Resolve",
		trace.WithAttributes(attribute.String("comment.id", commentID)))
	defer span.End()

	comment, chapter, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	role, err := s.access.RequireMember(ctx, chapter.ProjectID, actor)
	if err != nil {
		return nil, err
	}
	isAuthor := comment.UserID == actor.UserID
	isOwner := role == entity.MemberRoleOwner
	if !isAuthor && !isOwner && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden.WithDetail("only the comment author, project owner or an admin can resolve a comment")
	}

	if comment.IsResolved {
		return s.toView(ctx, comment), nil
	}

	comment.Resolve(actor.UserID, s.now())
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to resolve comment")
	}

	logger.Info(ctx, "comment resolved", "comment_id", commentID, "by", actor.UserID)
	return s.toView(ctx, comment), nil
}

// Delete 删除批注，仅作者或管理员
func (s *Service) Delete(ctx context.Context, commentID string, actor entity.Actor) error {
	ctx, span := tracer.Start(ctx, "comment.Service.Delete",
		trace.WithAttributes(attribute.String("comment.id", commentID)))
	defer span.End()

	comment, _, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actor.UserID && !actor.IsAdmin() {
		return apperrors.ErrForbidden.WithDetail("only the comment author or an admin can delete a comment")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete comment")
	}

	logger.Info(ctx, "comment deleted", "comment_id", commentID, "by", actor.UserID)
	return nil
}

// loadChapter 加载章节并校验项目归属
func (s *Service) loadChapter(ctx context.Context, projectID, chapterID string) (*entity.Chapter, error) {
	chapter, err := s.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load chapter")
	}
	if chapter == nil || chapter.ProjectID != projectID {
		return nil, apperrors.ErrChapterNotFound
	}
	return chapter, nil
}

// loadComment 加载批注及其所属章节
func (s *Service) loadComment(ctx context.Context, commentID string) (*entity.Comment, *entity.Chapter, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load comment")
	}
	if comment == nil {
		return nil, nil, apperrors.ErrNotFound.WithDetail("comment not found")
	}

	chapter, err := s.chapterRepo.GetByID(ctx, comment.ChapterID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load chapter")
	}
	if chapter == nil {
		return nil, nil, apperrors.ErrChapterNotFound
	}
	return comment, chapter, nil
}

// toViews 批量补全用户名
func (s *Service) toViews(ctx context.Context, comments []*entity.Comment) []*View {
	ids := make([]string, 0, len(comments)*2)
	seen := make(map[string]bool)
	for _, c := range comments {
		for _, id := range []string{c.UserID, derefOr(c.ResolvedBy)} {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	names := s.usernames(ctx, ids)
	views := make([]*View, 0, len(comments))
	for _, c := range comments {
		views = append(views, &View{
			Comment:            c,
			Username:           names[c.UserID],
			ResolvedByUsername: names[derefOr(c.ResolvedBy)],
		})
	}
	return views
}

func (s *Service) toView(ctx context.Context, comment *entity.Comment) *View {
	views := s.toViews(ctx, []*entity.Comment{comment})
	return views[0]
}

// usernames 查询用户名映射，查询失败时降级为空名
func (s *Service) usernames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		logger.Warn(ctx, "failed to load comment authors", "error", err.Error())
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
