// Package editing 提供章节协同编辑能力：编辑锁、内容写入与状态流转
package editing

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"

	"tender-collab-api/internal/application/access"
	"tender-collab-api/internal/application/history"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
	"tender-collab-api/internal/infrastructure/messaging"
	"tender-collab-api/internal/infrastructure/persistence/redis"
)

var tracer = otel.Tracer("editing")

// Service 协同编辑服务
type Service struct {
	access      *access.Checker
	chapterRepo repository.ChapterRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	txManager   repository.Transactor
	allocator   *history.Allocator
	cache       *redis.Cache
	producer    *messaging.Producer

	lockTimeout  time.Duration
	treeCacheTTL time.Duration
	now          func() time.Time
}

// NewService 创建协同编辑服务
func NewService(
	checker *access.Checker,
	chapterRepo repository.ChapterRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	txManager repository.Transactor,
	allocator *history.Allocator,
	cache *redis.Cache,
	producer *messaging.Producer,
	lockTimeout time.Duration,
	treeCacheTTL time.Duration,
) *Service {
	return &Service{
		access:       checker,
		chapterRepo:  chapterRepo,
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		allocator:    allocator,
		cache:        cache,
		producer:     producer,
		lockTimeout:  lockTimeout,
		treeCacheTTL: treeCacheTTL,
		now:          time.Now,
	}
}

// CreateChapterInput 创建章节参数
type CreateChapterInput struct {
	ParentID      *string
	ChapterNumber string
	Title         string
	OrderIndex    int
}

// CreateChapter 创建章节
func (s *Service) CreateChapter(ctx context.Context, projectID string, actor entity.Actor, input CreateChapterInput) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "editing.Service.CreateChapter",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if _, err := s.access.RequireRole(ctx, projectID, actor, entity.MemberRoleOwner, entity.MemberRoleEditor); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := s.chapterRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load parent chapter")
		}
		if parent == nil || parent.ProjectID != projectID {
			return nil, apperrors.ErrChapterNotFound.WithDetail("parent chapter does not belong to this project")
		}
	}

	chapter := entity.NewChapter(projectID, input.ParentID, input.ChapterNumber, input.Title, input.OrderIndex)
	if err := s.chapterRepo.Create(ctx, chapter); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create chapter")
	}

	s.invalidateTree(ctx, projectID)
	return chapter, nil
}

// GetChapter 获取章节详情（含锁状态）
func (s *Service) GetChapter(ctx context.Context, projectID, chapterID string, actor entity.Actor) (*entity.Chapter, *LockStatus, error) {
	ctx, span := tracer.Start(ctx, "editing.Service.GetChapter",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, nil, err
	}

	chapter, err := s.loadChapter(ctx, projectID, chapterID)
	if err != nil {
		return nil, nil, err
	}

	status, err := s.lockStatus(ctx, chapter)
	if err != nil {
		return nil, nil, err
	}
	return chapter, status, nil
}

// DeleteChapter 删除章节及其子树
func (s *Service) DeleteChapter(ctx context.Context, projectID, chapterID string, actor entity.Actor) error {
	ctx, span := tracer.Start(ctx, "editing.Service.DeleteChapter",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	if _, err := s.access.RequireRole(ctx, projectID, actor, entity.MemberRoleOwner, entity.MemberRoleEditor); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		chapter, err := s.loadChapter(txCtx, projectID, chapterID)
		if err != nil {
			return err
		}

		chapters, err := s.chapterRepo.ListByProject(txCtx, projectID, nil)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list chapters")
		}

		children := make(map[string][]string)
		for _, ch := range chapters {
			if ch.ParentID != nil {
				children[*ch.ParentID] = append(children[*ch.ParentID], ch.ID)
			}
		}

		// 自底向上收集子树
		var subtree []string
		var collect func(id string)
		collect = func(id string) {
			for _, child := range children[id] {
				collect(child)
			}
			subtree = append(subtree, id)
		}
		collect(chapter.ID)

		for _, id := range subtree {
			if err := s.chapterRepo.Delete(txCtx, id); err != nil {
				return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete chapter")
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.invalidateTree(ctx, projectID)
	return nil
}

// TreeNode 章节树节点
type TreeNode struct {
	ID            string               `json:"id"`
	ChapterNumber string               `json:"chapter_number"`
	Title         string               `json:"title"`
	ParentID      *string              `json:"parent_id,omitempty"`
	Status        entity.ChapterStatus `json:"status"`
	OrderIndex    int                  `json:"order_index"`
	IsLocked      bool                 `json:"is_locked"`
	LockedBy      *string              `json:"locked_by,omitempty"`
	Children      []*TreeNode          `json:"children,omitempty"`
}

// GetChapterTree 获取项目章节树，走 Redis 读缓存
func (s *Service) GetChapterTree(ctx context.Context, projectID string, actor entity.Actor) ([]*TreeNode, error) {
	ctx, span := tracer.Start(ctx, "editing.Service.GetChapterTree",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}

	if s.cache == nil {
		return s.buildTree(ctx, projectID)
	}

	raw, err := s.cache.GetOrLoadSafe(ctx, redis.ChapterTreeKey(projectID), s.treeCacheTTL, func() (interface{}, error) {
		return s.buildTree(ctx, projectID)
	})
	if err != nil {
		// 缓存链路故障时直接回源
		logger.Warn(ctx, "chapter tree cache failed, falling back to store",
			"project_id", projectID, "error", err.Error())
		return s.buildTree(ctx, projectID)
	}

	var tree []*TreeNode
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to decode cached chapter tree")
	}
	return tree, nil
}

// buildTree 从存储构建章节树
func (s *Service) buildTree(ctx context.Context, projectID string) ([]*TreeNode, error) {
	chapters, err := s.chapterRepo.ListByProject(ctx, projectID, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list chapters")
	}

	now := s.now()
	nodes := make(map[string]*TreeNode, len(chapters))
	var roots []*TreeNode
	for _, ch := range chapters {
		nodes[ch.ID] = &TreeNode{
			ID:            ch.ID,
			ChapterNumber: ch.ChapterNumber,
			Title:         ch.Title,
			ParentID:      ch.ParentID,
			Status:        ch.Status,
			OrderIndex:    ch.OrderIndex,
			IsLocked:      ch.LockLive(now, s.lockTimeout),
			LockedBy:      ch.LockedBy,
		}
	}
	for _, ch := range chapters {
		node := nodes[ch.ID]
		if ch.ParentID != nil {
			if parent, ok := nodes[*ch.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// Progress 项目进度统计
type Progress struct {
	Total          int64                          `json:"total"`
	ByStatus       map[entity.ChapterStatus]int64 `json:"by_status"`
	CompletionRate float64                        `json:"completion_rate"`
}

// GetProgress 获取项目进度（按状态统计与定稿率）
func (s *Service) GetProgress(ctx context.Context, projectID string, actor entity.Actor) (*Progress, error) {
	ctx, span := tracer.Start(ctx, "editing.Service.GetProgress",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if _, err := s.access.RequireMember(ctx, projectID, actor); err != nil {
		return nil, err
	}

	counts, err := s.chapterRepo.CountByStatus(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to count chapters")
	}

	progress := &Progress{ByStatus: counts}
	for _, n := range counts {
		progress.Total += n
	}
	if progress.Total > 0 {
		progress.CompletionRate = float64(counts[entity.ChapterStatusFinalized]) / float64(progress.Total)
	}
	return progress, nil
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

// loadChapterForUpdate 加行锁加载章节并校验项目归属
func (s *Service) loadChapterForUpdate(ctx context.Context, projectID, chapterID string) (*entity.Chapter, error) {
	chapter, err := s.chapterRepo.GetByIDForUpdate(ctx, chapterID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load chapter")
	}
	if chapter == nil || chapter.ProjectID != projectID {
		return nil, apperrors.ErrChapterNotFound
	}
	return chapter, nil
}

// emitChapterEvent 事务提交后发布章节事件，发布失败只记录日志
func (s *Service) emitChapterEvent(ctx context.Context, evt *messaging.ChapterEventMessage) {
	if s.producer == nil {
		return
	}
	if _, err := s.producer.PublishChapterEvent(ctx, evt); err != nil {
		logger.Warn(ctx, "failed to publish chapter event",
			"event", evt.Event, "chapter_id", evt.ChapterID, "error", err.Error())
	}
}

// invalidateTree 写路径之后使章节树缓存失效
func (s *Service) invalidateTree(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateChapterTree(ctx, projectID); err != nil {
		logger.Warn(ctx, "failed to invalidate chapter tree cache",
			"project_id", projectID, "error", err.Error())
	}
}
