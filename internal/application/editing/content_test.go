package editing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tender-collab-api/pkg/errors"

	"tender-collab-api/internal/domain/entity"
)

func TestUpdateContent(t *testing.T) {
	env := newEditEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	env.store.addMember(project.ID, "editor-1", entity.MemberRoleEditor)
	ch := env.store.addChapter(project.ID, nil, "1", "技术部分", 1)

	updated, version, err := env.svc.UpdateContent(ctx, project.ID, ch.ID, editorActor("editor-1"), UpdateContentInput{
		Content: strPtr("技术方案正文"),
		Summary: "初稿",
	})
	require.NoError(t, err)

	// 正文写入，状态置为 generated
	assert.Equal(t, "技术方案正文", *updated.Content)
	assert.Equal(t, entity.ChapterStatusGenerated, updated.Status)

	// 写入即隐式获锁
	stored := env.store.chapters[ch.ID]
	require.NotNil(t, stored.LockedBy)
	assert.Equal(t, "editor-1", *stored.LockedBy)
	assert.Equal(t, env.now, *stored.LockedAt)

	// 留下单章节编辑版本
	require.NotNil(t, version)
	assert.Equal(t, 1, version.VersionNumber)
	assert.False(t, version.IsProjectScope())
	assert.Equal(t, entity.ChangeTypeManualEdit, version.ChangeType)
	require.NotNil(t, version.SnapshotData)
	assert.Equal(t, ch.ID, version.SnapshotData.ChapterID)
	assert.Nil(t, version.SnapshotData.OldContent)
	assert.Equal(t, "技术方案正文", *version.SnapshotData.NewContent)

	// 再次编辑：版本号递增，old/new 正文成对
	_, v2, err := env.svc.UpdateContent(ctx, project.ID, ch.ID, editorActor("editor-1"), UpdateContentInput{
		Title:   strPtr("技术部分（修订）"),
		Content: strPtr("终稿"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)
	assert.Equal(t, "技术方案正文", *v2.SnapshotData.OldContent)
	assert.Equal(t, "终稿", *v2.SnapshotData.NewContent)
	assert.Equal(t, "技术部分（修订）", env.store.chapters[ch.ID].Title)
}

func TestUpdateContentLockConflict(t *testing.T) {
	env := newEditEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	env.store.addMember(project.ID, "editor-1", entity.MemberRoleEditor)
	env.store.addMember(project.ID, "editor-2", entity.MemberRoleEditor)
	ch := env.store.addChapter(project.ID, nil, "1", "技术部分", 1)

	_, err := env.svc.AcquireLock(ctx, project.ID, ch.ID, editorActor("editor-1"))
	require.NoError(t, err)

	t.Run("other editor blocked while lock is live", func(t *testing.T) {
		_, _, err := env.svc.UpdateContent(ctx, project.ID, ch.ID, editorActor("editor-2"), UpdateContentInput{
			Content: strPtr("抢写"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeLockConflict))
	})

	t.Run("holder writes through its own lock", func(t *testing.T) {
		_, _, err := env.svc.UpdateContent(ctx, project.ID, ch.ID, editorActor("editor-1"), UpdateContentInput{
			Content: strPtr("正文"),
		})
		require.NoError(t, err)
	})

	t.Run("expired lock does not block writes", func(t *testing.T) {
		env.advance(testLockTimeout + time.Minute)
		_, _, err := env.svc.UpdateContent(ctx, project.ID, ch.ID, editorActor("editor-2"), UpdateContentInput{
			Content: strPtr("接手"),
		})
		require.NoError(t, err)
		assert.Equal(t, "editor-2", *env.store.chapters[ch.ID].LockedBy)
	})
}

func TestUpdateContentValidation(t *testing.T) {
	env := newEditEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	env.store.addMember(project.ID, "editor-1", entity.MemberRoleEditor)
	ch := env.store.addChapter(project.ID, nil, "1", "技术部分", 1)

	t.Run("nothing to update", func(t *testing.T) {
		_, _, err := env.svc.UpdateContent(ctx, project.ID, ch.ID, editorActor("editor-1"), UpdateContentInput{})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
	})

	t.Run("finalized chapter rejects edits", func(t *testing.T) {
		require.NoError(t, env.chapterRepo.UpdateStatus(ctx, ch.ID, entity.ChapterStatusFinalized))

		_, _, err := env.svc.UpdateContent(ctx, project.ID, ch.ID, editorActor("editor-1"), UpdateContentInput{
			Content: strPtr("改定稿"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeStatusConflict))
	})

	t.Run("admin may edit a finalized chapter", func(t *testing.T) {
		admin := entity.Actor{UserID: "admin-1", Role: entity.UserRoleAdmin}
		_, _, err := env.svc.UpdateContent(ctx, project.ID, ch.ID, admin, UpdateContentInput{
			Content: strPtr("管理员修订"),
		})
		require.NoError(t, err)
	})
}
