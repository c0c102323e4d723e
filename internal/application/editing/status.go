// Package editing 提供章节协同编辑能力
package editing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/infrastructure/messaging"
)

// TransitionStatus 执行章节状态流转
// 非法边与角色不足都报状态冲突；系统管理员绕过边规则与角色矩阵
func (s *Service) TransitionStatus(ctx context.Context, projectID, chapterID string, target entity.ChapterStatus, actor entity.Actor) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "editing.Service.TransitionStatus",
		trace.WithAttributes(
			attribute.String("chapter.id", chapterID),
			attribute.String("status.target", string(target)),
		))
	defer span.End()

	role, err := s.access.RequireMember(ctx, projectID, actor)
	if err != nil {
		return nil, err
	}

	var (
		chapter    *entity.Chapter
		fromStatus entity.ChapterStatus
	)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		chapter, err = s.loadChapterForUpdate(txCtx, projectID, chapterID)
		if err != nil {
			return err
		}

		fromStatus = chapter.Status
		if chapter.Status == target {
			return nil
		}

		if !actor.IsAdmin() {
			if !chapter.Status.CanTransitionTo(target) {
				return apperrors.ErrStatusConflict.WithMeta(map[string]any{
					"from": chapter.Status,
					"to":   target,
				})
			}

			allowed := entity.TransitionRoles(chapter.Status)
			permitted := false
			for _, a := range allowed {
				if role == a {
					permitted = true
					break
				}
			}
			if !permitted {
				return apperrors.ErrStatusConflict.WithDetail("role not permitted for this transition").WithMeta(map[string]any{
					"from":         chapter.Status,
					"to":           target,
					"currentRole":  role,
					"allowedRoles": allowed,
				})
			}
		}

		if err := s.chapterRepo.UpdateStatus(txCtx, chapter.ID, target); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update chapter status")
		}
		chapter.Status = target
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.invalidateTree(ctx, projectID)
	logger.Info(ctx, "chapter status changed",
		"chapter_id", chapterID,
		"status", target,
		"by", actor.UserID,
	)
	if fromStatus != target {
		s.emitChapterEvent(ctx, &messaging.ChapterEventMessage{
			Event:      messaging.EventStatusChanged,
			ProjectID:  projectID,
			ChapterID:  chapterID,
			ActorID:    actor.UserID,
			FromStatus: string(fromStatus),
			ToStatus:   string(target),
		})
	}
	return chapter, nil
}
