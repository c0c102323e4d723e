// Package history 提供版本快照、差异对比与回滚能力
package history

import (
	"tender-collab-api/internal/domain/entity"
)

// ChangeKind 差异条目类型
type ChangeKind string

const (
	ChangeKindAdded    ChangeKind = "added"
	ChangeKindDeleted  ChangeKind = "deleted"
	ChangeKindModified ChangeKind = "modified"
)

// ChapterChange 单个章节的差异条目
type ChapterChange struct {
	Kind           ChangeKind `json:"kind"`
	ChapterID      string     `json:"chapter_id,omitempty"`
	ChapterNumber  string     `json:"chapter_number"`
	OldTitle       string     `json:"old_title,omitempty"`
	NewTitle       string     `json:"new_title,omitempty"`
	TitleChanged   bool       `json:"title_changed"`
	ContentChanged bool       `json:"content_changed"`
	OldContent     *string    `json:"old_content,omitempty"`
	NewContent     *string    `json:"new_content,omitempty"`
}

// DiffSummary 差异统计
type DiffSummary struct {
	AddedCount     int `json:"added_count"`
	DeletedCount   int `json:"deleted_count"`
	ModifiedCount  int `json:"modified_count"`
	UnchangedCount int `json:"unchanged_count"`
}

// DiffResult 两个全项目快照的差异
type DiffResult struct {
	ProjectID   string          `json:"project_id"`
	FromVersion int             `json:"from_version"`
	ToVersion   int             `json:"to_version"`
	Added       []ChapterChange `json:"added"`
	Deleted     []ChapterChange `json:"deleted"`
	Modified    []ChapterChange `json:"modified"`
	Summary     DiffSummary     `json:"summary"`
}

// snapshotKey 章节在快照中的匹配键，优先章节 ID，缺失时退回章节编号
func snapshotKey(s entity.ChapterSnapshot) string {
	if s.ID != "" {
		return "id:" + s.ID
	}
	return "num:" + s.ChapterNumber
}

// contentEqual 比较两个可空正文
func contentEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// computeDiff 对比两个全项目快照
// from 是基准，to 是对照：to 中独有的章节为 added，from 中独有的为 deleted
func computeDiff(from, to *entity.SnapshotData) (added, deleted, modified []ChapterChange, unchanged int) {
	fromByKey := make(map[string]entity.ChapterSnapshot, len(from.Chapters))
	for _, ch := range from.Chapters {
		fromByKey[snapshotKey(ch)] = ch
	}

	seen := make(map[string]bool, len(to.Chapters))
	for _, newCh := range to.Chapters {
		key := snapshotKey(newCh)
		seen[key] = true

		oldCh, ok := fromByKey[key]
		if !ok {
			added = append(added, ChapterChange{
				Kind:           ChangeKindAdded,
				ChapterID:      newCh.ID,
				ChapterNumber:  newCh.ChapterNumber,
				NewTitle:       newCh.Title,
				TitleChanged:   true,
				ContentChanged: newCh.Content != nil,
				NewContent:     newCh.Content,
			})
			continue
		}

		titleChanged := oldCh.Title != newCh.Title
		contentChanged := !contentEqual(oldCh.Content, newCh.Content)
		if !titleChanged && !contentChanged {
			unchanged++
			continue
		}

		modified = append(modified, ChapterChange{
			Kind:           ChangeKindModified,
			ChapterID:      newCh.ID,
			ChapterNumber:  newCh.ChapterNumber,
			OldTitle:       oldCh.Title,
			NewTitle:       newCh.Title,
			TitleChanged:   titleChanged,
			ContentChanged: contentChanged,
			OldContent:     oldCh.Content,
			NewContent:     newCh.Content,
		})
	}

	for _, oldCh := range from.Chapters {
		if seen[snapshotKey(oldCh)] {
			continue
		}
		deleted = append(deleted, ChapterChange{
			Kind:           ChangeKindDeleted,
			ChapterID:      oldCh.ID,
			ChapterNumber:  oldCh.ChapterNumber,
			OldTitle:       oldCh.Title,
			TitleChanged:   true,
			ContentChanged: oldCh.Content != nil,
			OldContent:     oldCh.Content,
		})
	}

	return added, deleted, modified, unchanged
}
