// Package auth 提供注册、登录与令牌刷新
package auth

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tender-collab-api/pkg/errors"
	"tender-collab-api/pkg/logger"
	"tender-collab-api/pkg/utils"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

var tracer = otel.Tracer("auth")

// Service 认证服务
type Service struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService 创建认证服务
func NewService(userRepo repository.UserRepository, jwtManager *utils.JWTManager, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     entity.UserRole
}

// Register 注册新用户
func (s *Service) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "auth.Service.Register",
		trace.WithAttributes(attribute.String("user.name", input.Username)))
	defer span.End()

	existing, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check username")
	}
	if existing != nil {
		return nil, apperrors.ErrConflict.WithDetail("username already taken")
	}
	existing, err = s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check email")
	}
	if existing != nil {
		return nil, apperrors.ErrConflict.WithDetail("email already registered")
	}

	role := input.Role
	if role == "" {
		role = entity.UserRoleEditor
	}
	// 管理员只能由引导流程或既有管理员创建
	if role == entity.UserRoleAdmin {
		role = entity.UserRoleEditor
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Role:     role,
		Active:   true,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create user")
	}

	logger.Info(ctx, "user registered", "username", user.Username, "role", user.Role)
	return user, nil
}

// Login 登录，返回令牌对
func (s *Service) Login(ctx context.Context, username, password string) (*entity.User, *utils.TokenPair, error) {
	ctx, span := tracer.Start(ctx, "auth.Service.Login",
		trace.WithAttributes(attribute.String("user.name", username)))
	defer span.End()

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, nil, apperrors.ErrUnauthorized.WithDetail("invalid username or password")
	}
	if !user.Active {
		return nil, nil, apperrors.ErrForbidden.WithDetail("account disabled")
	}

	pair, err := s.jwtManager.GenerateTokenPair(user.ID, user.Username, string(user.Role), s.accessTTL, s.refreshTTL)
	if err != nil {
		span.RecordError(err)
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to issue tokens")
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh 用刷新令牌换取新令牌对
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	ctx, span := tracer.Start(ctx, "auth.Service.Refresh")
	defer span.End()

	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		if err == utils.ErrExpiredToken {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.Type != "refresh" {
		return nil, apperrors.ErrTokenInvalid.WithDetail("not a refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user == nil || !user.Active {
		return nil, apperrors.ErrUnauthorized
	}

	pair, err := s.jwtManager.GenerateTokenPair(user.ID, user.Username, string(user.Role), s.accessTTL, s.refreshTTL)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to issue tokens")
	}
	return pair, nil
}
