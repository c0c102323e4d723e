// Package wire 负责应用依赖装配
package wire

import (
	"context"
	"fmt"

	"tender-collab-api/internal/application/access"
	"tender-collab-api/internal/application/auth"
	"tender-collab-api/internal/application/comment"
	"tender-collab-api/internal/application/editing"
	"tender-collab-api/internal/application/history"
	"tender-collab-api/internal/application/project"
	"tender-collab-api/internal/application/template"
	"tender-collab-api/internal/config"
	"tender-collab-api/internal/infrastructure/messaging"
	"tender-collab-api/internal/infrastructure/persistence/postgres"
	"tender-collab-api/internal/infrastructure/persistence/redis"
	"tender-collab-api/internal/interfaces/http/handler"
	"tender-collab-api/internal/interfaces/http/router"
	"tender-collab-api/pkg/logger"
	"tender-collab-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// App 装配完成的应用
type App struct {
	router *router.Router

	pg    *postgres.Client
	redis *redis.Client
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.router.Engine()
}

// Postgres 返回数据库客户端
func (a *App) Postgres() *postgres.Client {
	return a.pg
}

// InitializeApp 按依赖顺序装配应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	// 数据层
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		pgClient.Close()
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}
	cache := redis.NewCache(redisClient)
	producer := messaging.NewProducer(redisClient.Redis(), cfg.Messaging.StreamMaxLen)

	txManager := postgres.NewTxManager(pgClient)
	chapterRepo := postgres.NewChapterRepository(pgClient)
	projectRepo := postgres.NewProjectRepository(pgClient)
	versionRepo := postgres.NewVersionRepository(pgClient)
	userRepo := postgres.NewUserRepository(pgClient)
	templateRepo := postgres.NewTemplateRepository(pgClient)
	commentRepo := postgres.NewCommentRepository(pgClient)

	// 应用层
	checker := access.NewChecker(projectRepo)
	allocator := history.NewAllocator(projectRepo, chapterRepo, versionRepo, txManager)
	historyService := history.NewService(checker, allocator, versionRepo, chapterRepo, txManager, cache, producer)
	editingService := editing.NewService(checker, chapterRepo, projectRepo, userRepo, txManager,
		allocator, cache, producer, cfg.Editing.LockTimeout, cfg.Editing.TreeCacheTTL)
	projectService := project.NewService(checker, projectRepo, userRepo, txManager)
	templateService := template.NewService(templateRepo, projectRepo, chapterRepo, txManager)
	commentService := comment.NewService(checker, commentRepo, chapterRepo, userRepo)
	jwtManager := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
	authService := auth.NewService(userRepo, jwtManager,
		cfg.Security.JWT.Expiration, cfg.Security.JWT.RefreshExpiration)

	// 接口层
	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(pgClient, redisClient),
		Auth:     handler.NewAuthHandler(authService),
		Project:  handler.NewProjectHandler(projectService, editingService),
		Chapter:  handler.NewChapterHandler(editingService),
		Version:  handler.NewVersionHandler(historyService),
		Template: handler.NewTemplateHandler(templateService),
		Comment:  handler.NewCommentHandler(commentService),
	}

	r := router.New(cfg, handlers, redisClient.Redis())

	app := &App{
		router: r,
		pg:     pgClient,
		redis:  redisClient,
	}

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Error(ctx, "failed to close redis", err)
		}
		if err := pgClient.Close(); err != nil {
			logger.Error(ctx, "failed to close postgres", err)
		}
	}

	return app, cleanup, nil
}
