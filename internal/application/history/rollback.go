// Package history 提供版本快照、差异对比与回滚能力
package history

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

// RollbackOptions 回滚选项
type RollbackOptions struct {
	// CreateBackup 回滚前先为当前状态建一个备份版本
	CreateBackup bool
	// Summary 附加到回滚后置版本的变更说明，留空使用默认说明
	Summary string
}

// RestoredChapter 回滚中被实际覆写的章节
type RestoredChapter struct {
	ID            string `json:"id"`
	ChapterNumber string `json:"chapter_number"`
	Action        string `json:"action"`
}

// RollbackResult 回滚结果
type RollbackResult struct {
	TargetVersion    int               `json:"target_version"`
	NewVersion       int               `json:"new_version"`
	BackupVersion    *int              `json:"backup_version,omitempty"`
	RestoredChapters []RestoredChapter `json:"restored_chapters"`
	RestoredCount    int               `json:"restored_count"`
	SkippedCount     int               `json:"skipped_count"`
}

// Rollback 将项目内容回滚到指定版本
// 备份、章节覆写与后置版本在同一个事务内完成，任一步失败整体回滚
func (s *Service) Rollback(ctx context.Context, projectID, versionID string, actor entity.Actor, opts RollbackOptions) (*RollbackResult, error) {
	ctx, span := tracer.Start(ctx, "history.Service.Rollback",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.String("version.id", versionID),
		))
	defer span.End()

	if _, err := s.access.RequireRole(ctx, projectID, actor, entity.MemberRoleOwner, entity.MemberRoleEditor); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &RollbackResult{}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		target, err := s.versionRepo.GetByID(txCtx, projectID, versionID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load target version")
		}
		if target == nil {
			return apperrors.ErrVersionNotFound
		}
		if !target.IsProjectScope() || target.SnapshotData == nil || target.SnapshotData.Chapters == nil {
			return apperrors.ErrSnapshotShape.WithMeta(map[string]any{
				"versionId":     target.ID,
				"versionNumber": target.VersionNumber,
			})
		}
		result.TargetVersion = target.VersionNumber

		// 回滚前备份当前状态
		if opts.CreateBackup {
			backupSnapshot, err := s.allocator.BuildProjectSnapshot(txCtx, projectID)
			if err != nil {
				return err
			}
			backup := NewProjectVersion(projectID, backupSnapshot, entity.ChangeTypeRollback,
				"automatic backup before rollback", &actor.UserID)
			if err := s.allocator.AllocateInTx(txCtx, backup); err != nil {
				return err
			}
			result.BackupVersion = &backup.VersionNumber
		}

		// 覆写章节标题与正文，状态、锁与排序保持不变
		restored, skipped, err := s.restoreChapters(txCtx, projectID, target.SnapshotData)
		if err != nil {
			return err
		}
		result.RestoredChapters = restored
		result.RestoredCount = len(restored)
		result.SkippedCount = skipped

		// 回滚本身也是一次变更，记录后置版本
		summary := opts.Summary
		if summary == "" {
			summary = summaryForRollback(target.VersionNumber)
		}
		post := NewProjectVersion(projectID, target.SnapshotData, entity.ChangeTypeRollback,
			summary, &actor.UserID)
		if err := s.allocator.AllocateInTx(txCtx, post); err != nil {
			return err
		}
		result.NewVersion = post.VersionNumber

		return nil
	})

	if err != nil {
		metrics.RollbackTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, err
	}

	metrics.RollbackTotal.WithLabelValues("ok").Inc()
	metrics.RollbackDuration.Observe(time.Since(start).Seconds())
	metrics.RollbackChaptersRestored.Observe(float64(result.RestoredCount))

	if s.cache != nil {
		if err := s.cache.InvalidateChapterTree(ctx, projectID); err != nil {
			logger.Warn(ctx, "failed to invalidate chapter tree cache after rollback",
				"project_id", projectID, "error", err.Error())
		}
	}

	logger.Info(ctx, "project rolled back",
		"project_id", projectID,
		"target_version", result.TargetVersion,
		"new_version", result.NewVersion,
		"restored", result.RestoredCount,
		"skipped", result.SkippedCount,
	)
	s.emitVersionEvent(ctx, &messaging.VersionEventMessage{
		Event:         messaging.EventRollback,
		ProjectID:     projectID,
		VersionID:     versionID,
		VersionNumber: result.NewVersion,
		ChangeType:    string(entity.ChangeTypeRollback),
		ActorID:       actor.UserID,
	})
	return result, nil
}

// restoreChapters 按快照覆写章节，快照中无法解析到现存章节的条目跳过
// 返回实际覆写的章节清单，供调用方刷新打开中的编辑器
func (s *Service) restoreChapters(ctx context.Context, projectID string, snapshot *entity.SnapshotData) (restored []RestoredChapter, skipped int, err error) {
	chapters, err := s.chapterRepo.ListByProject(ctx, projectID, nil)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list chapters for rollback")
	}

	byID := make(map[string]*entity.Chapter, len(chapters))
	byNumber := make(map[string]*entity.Chapter, len(chapters))
	for _, ch := range chapters {
		byID[ch.ID] = ch
		byNumber[ch.ChapterNumber] = ch
	}

	for _, snap := range snapshot.Chapters {
		chapter := byID[snap.ID]
		if chapter == nil {
			chapter = byNumber[snap.ChapterNumber]
		}
		if chapter == nil {
			skipped++
			logger.Warn(ctx, "snapshot entry has no matching chapter, skipped",
				"project_id", projectID,
				"snapshot_chapter_id", snap.ID,
				"snapshot_chapter_number", snap.ChapterNumber,
			)
			continue
		}

		chapter.Title = snap.Title
		chapter.Content = snap.Content
		if err := s.chapterRepo.Update(ctx, chapter); err != nil {
			return restored, skipped, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to restore chapter")
		}
		restored = append(restored, RestoredChapter{
			ID:            chapter.ID,
			ChapterNumber: chapter.ChapterNumber,
			Action:        "updated",
		})
	}

	return restored, skipped, nil
}
