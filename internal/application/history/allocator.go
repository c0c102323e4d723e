// Package history 提供版本快照、差异对比与回滚能力
package history

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"
	"tender-collab-api/pkg/metrics"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

var tracer = otel.Tracer("history")

// allocMaxAttempts 版本号分配在存储竞争下的最大尝试次数
const allocMaxAttempts = 3

// Allocator 版本号分配器
// 版本号在项目行锁上串行分配，(project_id, version_number) 唯一约束兜底
type Allocator struct {
	projectRepo repository.ProjectRepository
	chapterRepo repository.ChapterRepository
	versionRepo repository.VersionRepository
	txManager   repository.Transactor
}

// NewAllocator 创建版本号分配器
func NewAllocator(
	projectRepo repository.ProjectRepository,
	chapterRepo repository.ChapterRepository,
	versionRepo repository.VersionRepository,
	txManager repository.Transactor,
) *Allocator {
	return &Allocator{
		projectRepo: projectRepo,
		chapterRepo: chapterRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
	}
}

// AllocateInTx 在已开启的事务中分配版本号并插入版本
// 调用方必须已持有（或通过本方法间接获取）项目行锁
func (a *Allocator) AllocateInTx(ctx context.Context, version *entity.ProjectVersion) error {
	ctx, span := tracer.Start(ctx, "history.Allocator.AllocateInTx",
		trace.WithAttributes(attribute.String("project.id", version.ProjectID)))
	defer span.End()

	project, err := a.projectRepo.GetByIDForUpdate(ctx, version.ProjectID)
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to lock project row")
	}
	if project == nil {
		return apperrors.ErrProjectNotFound
	}

	maxNumber, err := a.versionRepo.MaxVersionNumber(ctx, version.ProjectID)
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to read max version number")
	}

	version.VersionNumber = maxNumber + 1
	if err := a.versionRepo.Create(ctx, version); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.RecordError(err)
			return apperrors.ErrTransientStore.WithError(err)
		}
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to insert version")
	}

	span.SetAttributes(attribute.Int("version.number", version.VersionNumber))
	metrics.VersionCreatedTotal.WithLabelValues(string(version.ChangeType)).Inc()
	return nil
}

// CreateVersion 分配版本号并插入版本，独立事务，存储竞争时重试
func (a *Allocator) CreateVersion(ctx context.Context, version *entity.ProjectVersion) error {
	ctx, span := tracer.Start(ctx, "history.Allocator.CreateVersion")
	defer span.End()

	var lastErr error
	for attempt := 1; attempt <= allocMaxAttempts; attempt++ {
		err := a.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return a.AllocateInTx(txCtx, version)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if !apperrors.IsCode(err, apperrors.CodeTransientStore) {
			return err
		}
		metrics.VersionAllocRetryTotal.Inc()
		logger.Warn(ctx, "version allocation retry after store contention",
			"project_id", version.ProjectID, "attempt", attempt)
	}
	return lastErr
}

// BuildProjectSnapshot 读取项目全部章节并构建全项目快照负载
func (a *Allocator) BuildProjectSnapshot(ctx context.Context, projectID string) (*entity.SnapshotData, error) {
	ctx, span := tracer.Start(ctx, "history.Allocator.BuildProjectSnapshot",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	chapters, err := a.chapterRepo.ListByProject(ctx, projectID, nil)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list chapters for snapshot")
	}

	snapshot := &entity.SnapshotData{
		Chapters: make([]entity.ChapterSnapshot, 0, len(chapters)),
	}
	for _, ch := range chapters {
		snapshot.Chapters = append(snapshot.Chapters, entity.ChapterSnapshot{
			ID:            ch.ID,
			ChapterNumber: ch.ChapterNumber,
			Title:         ch.Title,
			Content:       ch.Content,
			Status:        string(ch.Status),
			ParentID:      ch.ParentID,
			OrderIndex:    ch.OrderIndex,
		})
	}

	span.SetAttributes(attribute.Int("snapshot.chapter_count", len(snapshot.Chapters)))
	return snapshot, nil
}

// NewProjectVersion 组装一个待分配版本号的全项目版本
func NewProjectVersion(projectID string, snapshot *entity.SnapshotData, changeType entity.ChangeType, summary string, createdBy *string) *entity.ProjectVersion {
	return &entity.ProjectVersion{
		ProjectID:     projectID,
		SnapshotData:  snapshot,
		ChangeType:    changeType,
		ChangeSummary: summary,
		CreatedBy:     createdBy,
	}
}

// NewChapterVersion 组装一个章节编辑版本（单章节负载）
func NewChapterVersion(projectID, chapterID string, snapshot *entity.SnapshotData, changeType entity.ChangeType, summary string, createdBy *string) *entity.ProjectVersion {
	return &entity.ProjectVersion{
		ProjectID:     projectID,
		ChapterID:     &chapterID,
		SnapshotData:  snapshot,
		ChangeType:    changeType,
		ChangeSummary: summary,
		CreatedBy:     createdBy,
	}
}

// summaryForRollback 回滚后置版本的变更说明
func summaryForRollback(targetNumber int) string {
	return fmt.Sprintf("rolled back to version %d", targetNumber)
}
