// Package entity 定义领域实体
package entity

// Actor 当前操作者身份（来自认证中间件）
type Actor struct {
	UserID   string
	Username string
	Role     UserRole
}

// IsAdmin 检查操作者是否为系统管理员
func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
