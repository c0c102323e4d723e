// Package entity 定义领域实体
package entity

import (
	"time"
)

// ChapterStatus 章节状态
type ChapterStatus string

const (
	ChapterStatusPending   ChapterStatus = "pending"
	ChapterStatusGenerated ChapterStatus = "generated"
	ChapterStatusReviewing ChapterStatus = "reviewing"
	ChapterStatusFinalized ChapterStatus = "finalized"
)

// statusTransitions 章节状态机的合法边
// 唯一的逆向边是 reviewing -> generated（审核打回）；finalized 为终态
var statusTransitions = map[ChapterStatus][]ChapterStatus{
	ChapterStatusPending:   {ChapterStatusGenerated},
	ChapterStatusGenerated: {ChapterStatusReviewing},
	ChapterStatusReviewing: {ChapterStatusFinalized, ChapterStatusGenerated},
	ChapterStatusFinalized: {},
}

// CanTransitionTo 检查状态边是否在状态机中
func (s ChapterStatus) CanTransitionTo(target ChapterStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionRoles 返回允许执行 from->to 转换的项目角色集合
// 离开 reviewing 的边（定稿/打回）属于审核动作，仅 owner/reviewer 可执行；
// 其余边属于编辑动作，仅 owner/editor 可执行
func TransitionRoles(from ChapterStatus) []MemberRole {
	if from == ChapterStatusReviewing {
		return []MemberRole{MemberRoleOwner, MemberRoleReviewer}
	}
	return []MemberRole{MemberRoleOwner, MemberRoleEditor}
}

// Chapter 章节实体（标书目录树节点，锁定与内容编辑的最小单位）
type Chapter struct {
	ID            string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID     string        `json:"project_id" gorm:"type:uuid;index;not null"`
	ParentID      *string       `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	ChapterNumber string        `json:"chapter_number" gorm:"type:varchar(50);index;not null"`
	Title         string        `json:"title" gorm:"type:varchar(500);not null"`
	Content       *string       `json:"content,omitempty" gorm:"type:text"`
	Status        ChapterStatus `json:"status" gorm:"type:varchar(20);default:'pending';not null"`
	OrderIndex    int           `json:"order_index" gorm:"default:0;not null"`
	LockedBy      *string       `json:"locked_by,omitempty" gorm:"type:uuid;index"`
	LockedAt      *time.Time    `json:"locked_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 创建新章节
func NewChapter(projectID string, parentID *string, number, title string, orderIndex int) *Chapter {
	now := time.Now()
	return &Chapter{
		ProjectID:     projectID,
		ParentID:      parentID,
		ChapterNumber: number,
		Title:         title,
		Status:        ChapterStatusPending,
		OrderIndex:    orderIndex,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsLocked 检查章节是否设置了锁字段
func (c *Chapter) IsLocked() bool {
	return c.LockedBy != nil
}

// LockExpired 检查锁是否已过期
// locked_at 缺失视为已过期，保证 locked_by/locked_at 的同生共死不变式
func (c *Chapter) LockExpired(now time.Time, timeout time.Duration) bool {
	if c.LockedAt == nil {
		return true
	}
	return now.Sub(*c.LockedAt) > timeout
}

// LockHeldBy 检查锁是否由指定用户持有且未过期
func (c *Chapter) LockHeldBy(userID string, now time.Time, timeout time.Duration) bool {
	return c.LockedBy != nil && *c.LockedBy == userID && !c.LockExpired(now, timeout)
}

// LockLive 检查锁是否由任意用户持有且未过期
func (c *Chapter) LockLive(now time.Time, timeout time.Duration) bool {
	return c.LockedBy != nil && !c.LockExpired(now, timeout)
}

// AcquireLock 设置锁字段
func (c *Chapter) AcquireLock(userID string, now time.Time) {
	c.LockedBy = &userID
	c.LockedAt = &now
}

// ReleaseLock 清空锁字段
func (c *Chapter) ReleaseLock() {
	c.LockedBy = nil
	c.LockedAt = nil
}

// SetContent 设置章节内容
func (c *Chapter) SetContent(content string) {
	c.Content = &content
	c.UpdatedAt = time.Now()
}
