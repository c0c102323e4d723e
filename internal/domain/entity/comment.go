// Package entity 定义领域实体
package entity

import (
	"time"
)

// Comment 章节批注实体
type Comment struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChapterID     string     `json:"chapter_id" gorm:"type:uuid;index;not null"`
	UserID        string     `json:"user_id" gorm:"type:uuid;index;not null"`
	Content       string     `json:"content" gorm:"type:text;not null"`
	PositionStart *int       `json:"position_start,omitempty"`
	PositionEnd   *int       `json:"position_end,omitempty"`
	IsResolved    bool       `json:"is_resolved" gorm:"default:false;not null"`
	ResolvedBy    *string    `json:"resolved_by,omitempty" gorm:"type:uuid"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}

// Resolve 标记批注为已解决，记录解决者与时间
func (c *Comment) Resolve(userID string, at time.Time) {
	c.IsResolved = true
	c.ResolvedBy = &userID
	c.ResolvedAt = &at
}
