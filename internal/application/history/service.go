// Package history 提供版本快照、差异对比与回滚能力
package history

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"
	"tender-collab-api/pkg/metrics"

	"tender-collab-api/internal/application/access"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
	"tender-collab-api/internal/infrastructure/messaging"
	"tender-collab-api/internal/infrastructure/persistence/redis"
)

// Service 版本历史服务
type Service struct {
	access      *access.Checker
	allocator   *Allocator
	versionRepo repository.VersionRepository
	chapterRepo repository.ChapterRepository
	txManager   repository.Transactor
	cache       *redis.Cache
	producer    *messaging.Producer
}

// NewService 创建版本历史服务
func NewService(
	checker *access.Checker,
	allocator *Allocator,
	versionRepo repository.VersionRepository,
	chapterRepo repository.ChapterRepository,
	txManager repository.Transactor,
	cache *redis.Cache,
	producer *messaging.Producer,
) *Service {
	return &Service{
		access:      checker,
		allocator:   allocator,
		versionRepo: versionRepo,
		chapterRepo: chapterRepo,
		txManager:   txManager,
		cache:       cache,
		producer:    producer,
	}
}

// emitVersionEvent 事务提交后发布版本事件，发布失败只记录日志
func (s *Service) emitVersionEvent(ctx context.Context, evt *messaging.VersionEventMessage) {
	if s.producer == nil {
		return
	}
	if _, err := s.producer.PublishVersionEvent(ctx, evt); err != nil {
		logger.Warn(ctx, "failed to publish version event",
			"event", evt.Event, "version_id", evt.VersionID, "error", err.Error())
	}
}

// CreateSnapshot 为项目当前内容创建一个全项目版本
func (s *Service) CreateSnapshot(ctx context.Context, projectID string, actor entity.Actor, changeType entity.ChangeType, summary string) (*entity.ProjectVersion, error) {
	ctx, span := tracer.Start(ctx, "history.Service.CreateSnapshot",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if _, err := s.access.RequireRole(ctx, projectID, actor, entity.MemberRoleOwner, entity.MemberRoleEditor); err != nil {
		return nil, err
	}
	if !changeType.Valid() {
		return nil, apperrors.ErrInvalidParam.WithDetail("unknown change type: " + string(changeType))
	}

	var version *entity.ProjectVersion
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		snapshot, err := s.allocator.BuildProjectSnapshot(txCtx, projectID)
		if err != nil {
			return err
		}
		version = NewProjectVersion(projectID, snapshot, changeType, summary, &actor.UserID)
		return s.allocator.AllocateInTx(txCtx, version)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.emitVersionEvent(ctx, &messaging.VersionEventMessage{
		Event:         messaging.EventVersionCreated,
		ProjectID:     projectID,
		VersionID:     version.ID,
		VersionNumber: version.VersionNumber,
		ChangeType:    string(changeType),
		ActorID:       actor.UserID,
	})
	return version, nil
}

// ListVersions 获取项目版本列表
func (s *Service) ListVersions(ctx context.Context, projectID string, actor entity.Actor, filter *repository.VersionFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectVersion], error) {
	ctx, span := tracer.Start(ctx, "history.Service.ListVersions",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByProject(ctx, projectID, filter, pagination)
}

// GetVersion 获取版本详情（含快照负载）
func (s *Service) GetVersion(ctx context.Context, projectID, versionID string, actor entity.Actor) (*entity.ProjectVersion, error) {
	ctx, span := tracer.Start(ctx, "history.Service.GetVersion",
		trace.WithAttributes(attribute.String("version.id", versionID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}

	version, err := s.versionRepo.GetByID(ctx, projectID, versionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get version")
	}
	if version == nil {
		return nil, apperrors.ErrVersionNotFound
	}
	return version, nil
}

// CompareVersions 对比两个全项目版本
func (s *Service) CompareVersions(ctx context.Context, projectID, fromVersionID, toVersionID string, actor entity.Actor) (*DiffResult, error) {
	ctx, span := tracer.Start(ctx, "history.Service.CompareVersions",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.String("version.from", fromVersionID),
			attribute.String("version.to", toVersionID),
		))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}

	from, err := s.versionRepo.GetByID(ctx, projectID, fromVersionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load base version")
	}
	to, err := s.versionRepo.GetByID(ctx, projectID, toVersionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load compare version")
	}
	if from == nil || to == nil {
		metrics.DiffComputedTotal.WithLabelValues("not_found").Inc()
		return nil, apperrors.ErrVersionNotFound.WithMeta(map[string]any{
			"fromFound": from != nil,
			"toFound":   to != nil,
		})
	}

	// 差异只定义在全项目快照之间，单章节编辑版本直接拒绝
	for _, v := range []*entity.ProjectVersion{from, to} {
		if !v.IsProjectScope() || v.SnapshotData == nil {
			metrics.DiffComputedTotal.WithLabelValues("invalid_shape").Inc()
			return nil, apperrors.ErrSnapshotShape.WithMeta(map[string]any{
				"versionId":     v.ID,
				"versionNumber": v.VersionNumber,
			})
		}
	}

	added, deleted, modified, unchanged := computeDiff(from.SnapshotData, to.SnapshotData)
	metrics.DiffComputedTotal.WithLabelValues("ok").Inc()

	return &DiffResult{
		ProjectID:   projectID,
		FromVersion: from.VersionNumber,
		ToVersion:   to.VersionNumber,
		Added:       added,
		Deleted:     deleted,
		Modified:    modified,
		Summary: DiffSummary{
			AddedCount:     len(added),
			DeletedCount:   len(deleted),
			ModifiedCount:  len(modified),
			UnchangedCount: unchanged,
		},
	}, nil
}
