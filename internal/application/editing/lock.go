// Package editing 提供章节协同编辑能力
package editing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"
	"tender-collab-api/pkg/metrics"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/infrastructure/messaging"
)

// LockStatus 章节锁状态
type LockStatus struct {
	IsLocked     bool       `json:"is_locked"`
	LockedBy     *string    `json:"locked_by,omitempty"`
	LockedByName string     `json:"locked_by_name,omitempty"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// AcquireLock 为操作者获取章节编辑锁
// 自己已持有时刷新时间戳；他人持有且未过期时冲突；过期锁可直接抢占
func (s *Service) AcquireLock(ctx context.Context, projectID, chapterID string, actor entity.Actor) (*LockStatus, error) {
	ctx, span := tracer.Start(ctx, "editing.Service.AcquireLock",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	if _, err := s.access.RequireRole(ctx, projectID, actor, entity.MemberRoleOwner, entity.MemberRoleEditor); err != nil {
		return nil, err
	}

	var status *LockStatus
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		chapter, err := s.loadChapterForUpdate(txCtx, projectID, chapterID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.checkLockFree(txCtx, chapter, actor, now); err != nil {
			metrics.LockAcquireTotal.WithLabelValues("conflict").Inc()
			return err
		}

		outcome := "acquired"
		switch {
		case chapter.LockHeldBy(actor.UserID, now, s.lockTimeout):
			outcome = "refreshed"
		case chapter.IsLocked():
			// 抢占过期锁
			metrics.LockExpiredTotal.Inc()
		default:
			metrics.ActiveEditors.Inc()
		}

		if err := s.chapterRepo.UpdateLock(txCtx, chapter.ID, &actor.UserID, &now); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to set chapter lock")
		}
		metrics.LockAcquireTotal.WithLabelValues(outcome).Inc()

		expiresAt := now.Add(s.lockTimeout)
		status = &LockStatus{
			IsLocked:     true,
			LockedBy:     &actor.UserID,
			LockedByName: actor.Username,
			LockedAt:     &now,
			ExpiresAt:    &expiresAt,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "chapter lock acquired", "chapter_id", chapterID, "holder", actor.UserID)
	s.emitChapterEvent(ctx, &messaging.ChapterEventMessage{
		Event:     messaging.EventLockAcquired,
		ProjectID: projectID,
		ChapterID: chapterID,
		ActorID:   actor.UserID,
	})
	return status, nil
}

// ReleaseLock 释放章节编辑锁
// 未上锁时视为幂等成功；仅持有者、项目拥有者或系统管理员可释放他人的锁
func (s *Service) ReleaseLock(ctx context.Context, projectID, chapterID string, actor entity.Actor) error {
	ctx, span := tracer.Start(ctx, "editing.Service.ReleaseLock",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	role, err := s.access.RequireMember(ctx, projectID, actor)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		chapter, err := s.loadChapterForUpdate(txCtx, projectID, chapterID)
		if err != nil {
			return err
		}

		if !chapter.IsLocked() {
			metrics.LockReleaseTotal.WithLabelValues("noop").Inc()
			return nil
		}

		notHolder := *chapter.LockedBy != actor.UserID
		if notHolder && role != entity.MemberRoleOwner && !actor.IsAdmin() {
			metrics.LockReleaseTotal.WithLabelValues("denied").Inc()
			return apperrors.ErrUnlockDenied.WithMeta(map[string]any{
				"lockedBy": *chapter.LockedBy,
			})
		}

		if err := s.chapterRepo.UpdateLock(txCtx, chapter.ID, nil, nil); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to release chapter lock")
		}
		metrics.LockReleaseTotal.WithLabelValues("released").Inc()
		metrics.ActiveEditors.Dec()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Info(ctx, "chapter lock released", "chapter_id", chapterID, "by", actor.UserID)
	s.emitChapterEvent(ctx, &messaging.ChapterEventMessage{
		Event:     messaging.EventLockReleased,
		ProjectID: projectID,
		ChapterID: chapterID,
		ActorID:   actor.UserID,
	})
	return nil
}

// InspectLock 查询章节锁状态，过期锁顺带清除
func (s *Service) InspectLock(ctx context.Context, projectID, chapterID string, actor entity.Actor) (*LockStatus, error) {
	ctx, span := tracer.Start(ctx, "editing.Service.InspectLock",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}

	chapter, err := s.loadChapter(ctx, projectID, chapterID)
	if err != nil {
		return nil, err
	}
	return s.lockStatus(ctx, chapter)
}

// lockStatus 计算章节锁状态，惰性回收过期锁
func (s *Service) lockStatus(ctx context.Context, chapter *entity.Chapter) (*LockStatus, error) {
	if !chapter.IsLocked() {
		return &LockStatus{}, nil
	}

	now := s.now()
	if chapter.LockExpired(now, s.lockTimeout) {
		if err := s.chapterRepo.UpdateLock(ctx, chapter.ID, nil, nil); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to clear expired lock")
		}
		metrics.LockExpiredTotal.Inc()
		metrics.ActiveEditors.Dec()
		chapter.ReleaseLock()
		return &LockStatus{}, nil
	}

	expiresAt := chapter.LockedAt.Add(s.lockTimeout)
	return &LockStatus{
		IsLocked:     true,
		LockedBy:     chapter.LockedBy,
		LockedByName: s.holderName(ctx, *chapter.LockedBy),
		LockedAt:     chapter.LockedAt,
		ExpiresAt:    &expiresAt,
	}, nil
}

// checkLockFree 章节被他人持有且未过期时返回锁冲突
func (s *Service) checkLockFree(ctx context.Context, chapter *entity.Chapter, actor entity.Actor, now time.Time) error {
	if !chapter.LockLive(now, s.lockTimeout) {
		return nil
	}
	if *chapter.LockedBy == actor.UserID {
		return nil
	}
	return apperrors.ErrLockConflict.WithMeta(map[string]any{
		"lockedBy":     *chapter.LockedBy,
		"lockedByName": s.holderName(ctx, *chapter.LockedBy),
		"lockedAt":     chapter.LockedAt,
	})
}

// holderName 查询锁持有者用户名，查不到时返回空串
func (s *Service) holderName(ctx context.Context, userID string) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Username
}
