// Package access 提供项目成员资格与角色检查
package access

import (
	"context"

	apperrors "tender-collab-api/pkg/errors"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

// Checker 项目访问检查器
type Checker struct {
	projectRepo repository.ProjectRepository
}

// NewChecker 创建访问检查器
func NewChecker(projectRepo repository.ProjectRepository) *Checker {
	return &Checker{projectRepo: projectRepo}
}

// RequireMember 要求操作者是项目成员，返回其项目角色
// 系统管理员可绕过成员资格检查，此时返回空角色
func (c *Checker) RequireMember(ctx context.Context, projectID string, actor entity.Actor) (entity.MemberRole, error) {
	role, err := c.projectRepo.GetMemberRole(ctx, projectID, actor.UserID)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check project membership")
	}
	if role == "" && !actor.IsAdmin() {
		return "", apperrors.ErrNotProjectMember
	}
	return role, nil
}

// RequireRole 要求操作者持有给定项目角色之一
// 系统管理员始终放行
func (c *Checker) RequireRole(ctx context.Context, projectID string, actor entity.Actor, allowed ...entity.MemberRole) (entity.MemberRole, error) {
	role, err := c.RequireMember(ctx, projectID, actor)
	if err != nil {
		return "", err
	}
	if actor.IsAdmin() {
		return role, nil
	}
	for _, a := range allowed {
		if role == a {
			return role, nil
		}
	}
	return role, apperrors.ErrForbidden.WithMeta(map[string]any{
		"currentRole":  role,
		"allowedRoles": allowed,
	})
}

// IsOwner 检查操作者是否为项目拥有者（管理员视同拥有者）
func (c *Checker) IsOwner(ctx context.Context, projectID string, actor entity.Actor) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	role, err := c.projectRepo.GetMemberRole(ctx, projectID, actor.UserID)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check project ownership")
	}
	return role == entity.MemberRoleOwner, nil
}
