// Package entity 定义领域实体
package entity

import (
	"time"
)

// OutlineNode 模板目录节点，只保留结构信息，不含正文
type OutlineNode struct {
	ChapterNumber string        `json:"chapter_number"`
	Title         string        `json:"title"`
	OrderIndex    int           `json:"order_index"`
	Children      []OutlineNode `json:"children,omitempty"`
}

// Template 标书目录模板实体
type Template struct {
	ID              string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string        `json:"name" gorm:"type:varchar(200);not null"`
	Description     string        `json:"description,omitempty" gorm:"type:text"`
	OutlineData     []OutlineNode `json:"outline_data,omitempty" gorm:"type:jsonb;serializer:json"`
	SourceProjectID *string       `json:"source_project_id,omitempty" gorm:"type:uuid"`
	CreatedBy       string        `json:"created_by" gorm:"type:uuid;index;not null"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Template) TableName() string {
	return "templates"
}

// CanManage 检查用户是否可修改或删除模板
// 仅模板创建者或系统管理员
func (t *Template) CanManage(actor Actor) bool {
	return t.CreatedBy == actor.UserID || actor.IsAdmin()
}
