// Package postgres 提供 PostgreSQL 数据库访问层实现
package postgres

import (
	"fmt"

	"tender-collab-api/internal/domain/entity"
)

// AutoMigrate 执行数据库结构迁移
func (c *Client) AutoMigrate() error {
	if err := c.db.AutoMigrate(
		&entity.User{},
		&entity.Project{},
		&entity.ProjectMember{},
		&entity.Chapter{},
		&entity.ProjectVersion{},
		&entity.Template{},
		&entity.Comment{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
