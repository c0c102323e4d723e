package editing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tender-collab-api/pkg/errors"

	"tender-collab-api/internal/domain/entity"
)

func TestTransitionStatus(t *testing.T) {
	tests := []struct {
		name     string
		from     entity.ChapterStatus
		to       entity.ChapterStatus
		role     entity.MemberRole
		admin    bool
		wantCode apperrors.ErrorCode
	}{
		{name: "editor moves pending to generated", from: entity.ChapterStatusPending, to: entity.ChapterStatusGenerated, role: entity.MemberRoleEditor},
		{name: "owner moves pending to generated", from: entity.ChapterStatusPending, to: entity.ChapterStatusGenerated, role: entity.MemberRoleOwner},
		{name: "editor submits for review", from: entity.ChapterStatusGenerated, to: entity.ChapterStatusReviewing, role: entity.MemberRoleEditor},
		{name: "reviewer finalizes", from: entity.ChapterStatusReviewing, to: entity.ChapterStatusFinalized, role: entity.MemberRoleReviewer},
		{name: "reviewer sends back", from: entity.ChapterStatusReviewing, to: entity.ChapterStatusGenerated, role: entity.MemberRoleReviewer},
		{name: "owner finalizes", from: entity.ChapterStatusReviewing, to: entity.ChapterStatusFinalized, role: entity.MemberRoleOwner},

		{name: "skipping review is rejected", from: entity.ChapterStatusGenerated, to: entity.ChapterStatusFinalized, role: entity.MemberRoleOwner, wantCode: apperrors.CodeStatusConflict},
		{name: "pending cannot jump to reviewing", from: entity.ChapterStatusPending, to: entity.ChapterStatusReviewing, role: entity.MemberRoleEditor, wantCode: apperrors.CodeStatusConflict},
		{name: "finalized is terminal", from: entity.ChapterStatusFinalized, to: entity.ChapterStatusGenerated, role: entity.MemberRoleOwner, wantCode: apperrors.CodeStatusConflict},
		{name: "editor cannot finalize", from: entity.ChapterStatusReviewing, to: entity.ChapterStatusFinalized, role: entity.MemberRoleEditor, wantCode: apperrors.CodeStatusConflict},
		{name: "reviewer cannot submit for review", from: entity.ChapterStatusGenerated, to: entity.ChapterStatusReviewing, role: entity.MemberRoleReviewer, wantCode: apperrors.CodeStatusConflict},

		{name: "admin bypasses edge rules", from: entity.ChapterStatusFinalized, to: entity.ChapterStatusGenerated, admin: true},
		{name: "admin bypasses role matrix", from: entity.ChapterStatusReviewing, to: entity.ChapterStatusFinalized, admin: true},
		{name: "same status is a no-op", from: entity.ChapterStatusReviewing, to: entity.ChapterStatusReviewing, role: entity.MemberRoleReviewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEditEnv()
			ctx := context.Background()
			project := env.store.addProject("投标项目", "owner-1")
			ch := env.store.addChapter(project.ID, nil, "1", "技术部分", 1)
			require.NoError(t, env.chapterRepo.UpdateStatus(ctx, ch.ID, tt.from))

			actor := entity.Actor{UserID: "actor-1", Role: entity.UserRoleEditor}
			if tt.admin {
				actor.Role = entity.UserRoleAdmin
			} else if tt.role == entity.MemberRoleOwner {
				actor.UserID = "owner-1"
			} else {
				env.store.addMember(project.ID, actor.UserID, tt.role)
			}

			updated, err := env.svc.TransitionStatus(ctx, project.ID, ch.ID, tt.to, actor)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsCode(err, tt.wantCode), "got %v", err)
				assert.Equal(t, tt.from, env.store.chapters[ch.ID].Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
			assert.Equal(t, tt.to, env.store.chapters[ch.ID].Status)
		})
	}
}

func TestTransitionStatusConflictMeta(t *testing.T) {
	env := newEditEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	env.store.addMember(project.ID, "editor-1", entity.MemberRoleEditor)
	ch := env.store.addChapter(project.ID, nil, "1", "技术部分", 1)
	require.NoError(t, env.chapterRepo.UpdateStatus(ctx, ch.ID, entity.ChapterStatusReviewing))

	_, err := env.svc.TransitionStatus(ctx, project.ID, ch.ID, entity.ChapterStatusFinalized, editorActor("editor-1"))
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, entity.ChapterStatusReviewing, appErr.Meta["from"])
	assert.Equal(t, entity.ChapterStatusFinalized, appErr.Meta["to"])
	assert.Equal(t, entity.MemberRoleEditor, appErr.Meta["currentRole"])
	assert.ElementsMatch(t, []entity.MemberRole{entity.MemberRoleOwner, entity.MemberRoleReviewer},
		appErr.Meta["allowedRoles"])
}

func TestTransitionStatusNonMember(t *testing.T) {
	env := newEditEnv()
	ctx := context.Background()
	project := env.store.addProject("投标项目", "owner-1")
	ch := env.store.addChapter(project.ID, nil, "1", "技术部分", 1)

	_, err := env.svc.TransitionStatus(ctx, project.ID, ch.ID, entity.ChapterStatusGenerated, editorActor("stranger"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotProjectMember))
}
