// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"tender-collab-api/internal/domain/entity"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	// Create 创建项目
	Create(ctx context.Context, project *entity.Project) error

	// GetByID 根据 ID 获取项目
	GetByID(ctx context.Context, id string) (*entity.Project, error)

	// GetByIDForUpdate 根据 ID 获取项目并加行锁（版本号分配的串行化点）
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Project, error)

	// Update 更新项目
	Update(ctx context.Context, project *entity.Project) error

	// Delete 删除项目
	Delete(ctx context.Context, id string) error

	// ListByUser 获取用户参与的项目列表
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.Project], error)

	// GetMemberRole 获取用户在项目中的角色，非成员返回空串
	GetMemberRole(ctx context.Context, projectID, userID string) (entity.MemberRole, error)

	// AddMember 添加项目成员
	AddMember(ctx context.Context, member *entity.ProjectMember) error

	// RemoveMember 移除项目成员
	RemoveMember(ctx context.Context, projectID, userID string) error

	// ListMembers 获取项目成员列表
	ListMembers(ctx context.Context, projectID string) ([]*entity.ProjectMember, error)
}
