// Package entity 定义领域实体
package entity

import (
	"time"
)

// ChangeType 版本变更类型
type ChangeType string

const (
	ChangeTypeAIGenerate ChangeType = "ai_generate"
	ChangeTypeManualEdit ChangeType = "manual_edit"
	ChangeTypeProofread  ChangeType = "proofread"
	ChangeTypeRollback   ChangeType = "rollback"
)

// Valid 检查变更类型是否合法
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeTypeAIGenerate, ChangeTypeManualEdit, ChangeTypeProofread, ChangeTypeRollback:
		return true
	}
	return false
}

// ChapterSnapshot 快照中的单个章节记录
type ChapterSnapshot struct {
	ID            string  `json:"id"`
	ChapterNumber string  `json:"chapter_number"`
	Title         string  `json:"title"`
	Content       *string `json:"content"`
	Status        string  `json:"status,omitempty"`
	ParentID      *string `json:"parent_id,omitempty"`
	OrderIndex    int     `json:"order_index,omitempty"`
}

// SnapshotData 版本快照负载
// 两种形态：全项目快照（Chapters 列表）或单章节编辑快照（前后内容对）
type SnapshotData struct {
	// 全项目形态
	Chapters []ChapterSnapshot `json:"chapters,omitempty"`

	// 单章节形态
	ChapterID     string  `json:"chapter_id,omitempty"`
	ChapterNumber string  `json:"chapter_number,omitempty"`
	Title         string  `json:"title,omitempty"`
	OldContent    *string `json:"old_content,omitempty"`
	NewContent    *string `json:"new_content,omitempty"`
}

// ProjectVersion 版本快照实体 - 项目内容历史的唯一载体，只追加、不修改
type ProjectVersion struct {
	ID            string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID     string        `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:uq_project_version,priority:1;index"`
	ChapterID     *string       `json:"chapter_id,omitempty" gorm:"type:uuid;index"`
	VersionNumber int           `json:"version_number" gorm:"not null;uniqueIndex:uq_project_version,priority:2"`
	SnapshotData  *SnapshotData `json:"snapshot_data" gorm:"type:jsonb;serializer:json;not null"`
	ChangeType    ChangeType    `json:"change_type" gorm:"type:varchar(20);not null"`
	ChangeSummary string        `json:"change_summary,omitempty" gorm:"type:text"`
	CreatedBy     *string       `json:"created_by,omitempty" gorm:"type:uuid;index"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ProjectVersion) TableName() string {
	return "project_versions"
}

// IsProjectScope 检查版本是否为全项目快照
// chapter_id 为空即全项目快照，与负载形态一致
func (v *ProjectVersion) IsProjectScope() bool {
	return v.ChapterID == nil
}
