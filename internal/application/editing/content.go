// Package editing 提供章节协同编辑能力
package editing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"

	"tender-collab-api/internal/application/history"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/infrastructure/messaging"
)

// UpdateContentInput 内容写入参数
type UpdateContentInput struct {
	Title   *string
	Content *string
	Summary string
}

// UpdateContent 写入章节标题与正文
// 写入即隐式获锁：未上锁、过期或自持有时静默为写入者上锁；他人持有报冲突。
// 写入、状态置为 generated、单章节版本记录在同一个事务中完成。
func (s *Service) UpdateContent(ctx context.Context, projectID, chapterID string, actor entity.Actor, input UpdateContentInput) (*entity.Chapter, *entity.ProjectVersion, error) {
	ctx, span := tracer.Start(ctx, "editing.Service.UpdateContent",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	if _, err := s.access.RequireRole(ctx, projectID, actor, entity.MemberRoleOwner, entity.MemberRoleEditor); err != nil {
		return nil, nil, err
	}
	if input.Title == nil && input.Content == nil {
		return nil, nil, apperrors.ErrInvalidParam.WithDetail("nothing to update")
	}

	var (
		chapter *entity.Chapter
		version *entity.ProjectVersion
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		chapter, err = s.loadChapterForUpdate(txCtx, projectID, chapterID)
		if err != nil {
			return err
		}

		// 定稿章节的内容不可再改（管理员除外）
		if chapter.Status == entity.ChapterStatusFinalized && !actor.IsAdmin() {
			return apperrors.ErrStatusConflict.WithDetail("chapter is finalized").WithMeta(map[string]any{
				"status": chapter.Status,
			})
		}

		now := s.now()
		if err := s.checkLockFree(txCtx, chapter, actor, now); err != nil {
			return err
		}

		// 隐式获锁
		if err := s.chapterRepo.UpdateLock(txCtx, chapter.ID, &actor.UserID, &now); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to lock chapter for write")
		}

		oldContent := chapter.Content
		newTitle := chapter.Title
		if input.Title != nil {
			newTitle = *input.Title
		}
		newContent := chapter.Content
		if input.Content != nil {
			newContent = input.Content
		}

		if err := s.chapterRepo.UpdateContent(txCtx, chapter.ID, input.Title, input.Content, entity.ChapterStatusGenerated); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to write chapter content")
		}

		// 每次人工编辑留一条单章节版本
		snapshot := &entity.SnapshotData{
			ChapterID:     chapter.ID,
			ChapterNumber: chapter.ChapterNumber,
			Title:         newTitle,
			OldContent:    oldContent,
			NewContent:    newContent,
		}
		version = history.NewChapterVersion(projectID, chapter.ID, snapshot,
			entity.ChangeTypeManualEdit, input.Summary, &actor.UserID)
		if err := s.allocator.AllocateInTx(txCtx, version); err != nil {
			return err
		}

		chapter.Title = newTitle
		chapter.Content = newContent
		chapter.Status = entity.ChapterStatusGenerated
		chapter.AcquireLock(actor.UserID, now)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	s.invalidateTree(ctx, projectID)
	logger.Info(ctx, "chapter content updated",
		"chapter_id", chapterID,
		"editor", actor.UserID,
		"version_number", version.VersionNumber,
	)
	s.emitChapterEvent(ctx, &messaging.ChapterEventMessage{
		Event:         messaging.EventContentUpdated,
		ProjectID:     projectID,
		ChapterID:     chapterID,
		ActorID:       actor.UserID,
		VersionNumber: version.VersionNumber,
	})
	return chapter, version, nil
}
