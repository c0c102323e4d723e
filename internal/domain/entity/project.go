// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "draft"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// MemberRole 项目成员角色
type MemberRole string

const (
	MemberRoleOwner    MemberRole = "owner"
	MemberRoleEditor   MemberRole = "editor"
	MemberRoleReviewer MemberRole = "reviewer"
)

// Valid 检查成员角色是否合法
func (r MemberRole) Valid() bool {
	switch r {
	case MemberRoleOwner, MemberRoleEditor, MemberRoleReviewer:
		return true
	}
	return false
}

// Project 标书项目实体
type Project struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"type:varchar(200);not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Tags        pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`
	Status      ProjectStatus  `json:"status" gorm:"type:varchar(20);default:'draft';not null"`
	OwnerID     string         `json:"owner_id" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// ProjectMember 项目成员关系
type ProjectMember struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID string     `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:uq_project_member,priority:1"`
	UserID    string     `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:uq_project_member,priority:2;index"`
	Role      MemberRole `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ProjectMember) TableName() string {
	return "project_members"
}
