package handler

import (
	"github.com/gin-gonic/gin"

	"tender-collab-api/internal/application/auth"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/interfaces/http/dto"
)

// AuthHandler 认证接口
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler 创建认证接口
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register 注册
// POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.UserRole(req.Role),
	})
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Created(c, dto.NewUserResponse(user))
}

// Login 登录
// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.LoginResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh 刷新令牌
// POST /v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
