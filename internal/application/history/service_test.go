package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tender-collab-api/pkg/errors"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

func ownerActor() entity.Actor {
	return entity.Actor{UserID: "owner-1", Username: "owner", Role: entity.UserRoleEditor}
}

func adminActor() entity.Actor {
	return entity.Actor{UserID: "admin-1", Username: "admin", Role: entity.UserRoleAdmin}
}

func TestCreateSnapshot(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	env.store.addChapter(project.ID, "1", "技术部分", strPtr("正文"), 1)
	env.store.addChapter(project.ID, "2", "商务部分", nil, 2)

	v1, err := env.svc.CreateSnapshot(ctx, project.ID, ownerActor(), entity.ChangeTypeManualEdit, "first cut")
	require.NoError(t, err)
	assert.Equal(t, 1, v1.VersionNumber)
	assert.True(t, v1.IsProjectScope())
	assert.Equal(t, "first cut", v1.ChangeSummary)
	require.NotNil(t, v1.SnapshotData)
	assert.Len(t, v1.SnapshotData.Chapters, 2)

	v2, err := env.svc.CreateSnapshot(ctx, project.ID, ownerActor(), entity.ChangeTypeProofread, "")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)
}

func TestCreateSnapshotAccess(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	env.store.addMember(project.ID, "reviewer-1", entity.MemberRoleReviewer)

	t.Run("reviewer cannot snapshot", func(t *testing.T) {
		reviewer := entity.Actor{UserID: "reviewer-1", Role: entity.UserRoleReviewer}
		_, err := env.svc.CreateSnapshot(ctx, project.ID, reviewer, entity.ChangeTypeManualEdit, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	})

	t.Run("non-member rejected", func(t *testing.T) {
		stranger := entity.Actor{UserID: "stranger-1", Role: entity.UserRoleEditor}
		_, err := env.svc.CreateSnapshot(ctx, project.ID, stranger, entity.ChangeTypeManualEdit, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotProjectMember))
	})

	t.Run("admin bypasses membership", func(t *testing.T) {
		v, err := env.svc.CreateSnapshot(ctx, project.ID, adminActor(), entity.ChangeTypeManualEdit, "")
		require.NoError(t, err)
		assert.Equal(t, 1, v.VersionNumber)
	})
}

func TestCreateSnapshotInvalidChangeType(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")

	_, err := env.svc.CreateSnapshot(ctx, project.ID, ownerActor(), entity.ChangeType("merge"), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestListVersions(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	env.store.addChapter(project.ID, "1", "技术部分", nil, 1)

	for i := 0; i < 3; i++ {
		_, err := env.svc.CreateSnapshot(ctx, project.ID, ownerActor(), entity.ChangeTypeManualEdit, "")
		require.NoError(t, err)
	}

	page, err := env.svc.ListVersions(ctx, project.ID, ownerActor(), nil, repository.NewPagination(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	// 版本号倒序
	assert.Equal(t, 3, page.Items[0].VersionNumber)
	assert.Equal(t, 2, page.Items[1].VersionNumber)
}

func TestGetVersion(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")

	v, err := env.svc.CreateSnapshot(ctx, project.ID, ownerActor(), entity.ChangeTypeManualEdit, "")
	require.NoError(t, err)

	got, err := env.svc.GetVersion(ctx, project.ID, v.ID, ownerActor())
	require.NoError(t, err)
	assert.Equal(t, v.VersionNumber, got.VersionNumber)

	_, err = env.svc.GetVersion(ctx, project.ID, "no-such-version", ownerActor())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeVersionNotFound))
}

func TestCompareVersions(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	ch1 := env.store.addChapter(project.ID, "1", "技术部分", strPtr("初稿"), 1)
	env.store.addChapter(project.ID, "2", "商务部分", strPtr("商务正文"), 2)

	v1, err := env.svc.CreateSnapshot(ctx, project.ID, ownerActor(), entity.ChangeTypeManualEdit, "")
	require.NoError(t, err)

	require.NoError(t, env.chapterRepo.UpdateContent(ctx, ch1.ID, nil, strPtr("终稿"), entity.ChapterStatusGenerated))

	v2, err := env.svc.CreateSnapshot(ctx, project.ID, ownerActor(), entity.ChangeTypeManualEdit, "")
	require.NoError(t, err)

	t.Run("modified chapter detected", func(t *testing.T) {
		diff, err := env.svc.CompareVersions(ctx, project.ID, v1.ID, v2.ID, ownerActor())
		require.NoError(t, err)
		assert.Equal(t, 1, diff.FromVersion)
		assert.Equal(t, 2, diff.ToVersion)
		require.Len(t, diff.Modified, 1)
		assert.Equal(t, ch1.ID, diff.Modified[0].ChapterID)
		assert.True(t, diff.Modified[0].ContentChanged)
		assert.Equal(t, 1, diff.Summary.ModifiedCount)
		assert.Equal(t, 1, diff.Summary.UnchangedCount)
	})

	t.Run("missing version", func(t *testing.T) {
		_, err := env.svc.CompareVersions(ctx, project.ID, v1.ID, "no-such-version", ownerActor())
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeVersionNotFound))
	})

	t.Run("chapter-scoped version rejected", func(t *testing.T) {
		chapterVersion := NewChapterVersion(project.ID, ch1.ID, &entity.SnapshotData{
			ChapterID: ch1.ID, Title: "技术部分", NewContent: strPtr("终稿"),
		}, entity.ChangeTypeManualEdit, "", nil)
		require.NoError(t, env.alloc.CreateVersion(ctx, chapterVersion))

		_, err := env.svc.CompareVersions(ctx, project.ID, v1.ID, chapterVersion.ID, ownerActor())
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeSnapshotShape))
	})

	t.Run("non-member rejected", func(t *testing.T) {
		stranger := entity.Actor{UserID: "stranger-1", Role: entity.UserRoleEditor}
		_, err := env.svc.CompareVersions(ctx, project.ID, v1.ID, v2.ID, stranger)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotProjectMember))
	})
}
