// Package main 数据库初始化入口：执行结构迁移并种子管理员账号
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"tender-collab-api/internal/config"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/infrastructure/persistence/postgres"
	"tender-collab-api/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	var (
		adminUser  = flag.String("admin-user", "admin", "初始管理员用户名")
		adminEmail = flag.String("admin-email", "admin@example.com", "初始管理员邮箱")
		adminPass  = flag.String("admin-pass", "", "初始管理员密码，留空则跳过种子")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to postgres", err)
	}
	defer client.Close()

	// 结构迁移
	if err := client.AutoMigrate(); err != nil {
		logger.Fatal(ctx, "migration failed", err)
	}
	logger.Info(ctx, "database migrated")

	// 种子管理员
	if *adminPass == "" {
		logger.Info(ctx, "admin password not provided, skipping admin seed")
		return
	}

	userRepo := postgres.NewUserRepository(client)
	existing, err := userRepo.GetByUsername(ctx, *adminUser)
	if err != nil {
		logger.Fatal(ctx, "failed to check admin user", err)
	}
	if existing != nil {
		logger.Info(ctx, "admin user already exists", "username", *adminUser)
		return
	}

	admin := &entity.User{
		Username: *adminUser,
		Email:    *adminEmail,
		Role:     entity.UserRoleAdmin,
		Active:   true,
	}
	if err := admin.SetPassword(*adminPass); err != nil {
		logger.Fatal(ctx, "failed to hash admin password", err)
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		logger.Fatal(ctx, "failed to create admin user", err)
	}

	logger.Info(ctx, "admin user created", "username", *adminUser)
}
