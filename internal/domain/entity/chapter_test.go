package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChapterStatusCanTransitionTo(t *testing.T) {
	all := []ChapterStatus{
		ChapterStatusPending,
		ChapterStatusGenerated,
		ChapterStatusReviewing,
		ChapterStatusFinalized,
	}

	allowed := map[ChapterStatus][]ChapterStatus{
		ChapterStatusPending:   {ChapterStatusGenerated},
		ChapterStatusGenerated: {ChapterStatusReviewing},
		ChapterStatusReviewing: {ChapterStatusFinalized, ChapterStatusGenerated},
		ChapterStatusFinalized: {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionRoles(t *testing.T) {
	t.Run("leaving reviewing is a review action", func(t *testing.T) {
		roles := TransitionRoles(ChapterStatusReviewing)
		assert.ElementsMatch(t, []MemberRole{MemberRoleOwner, MemberRoleReviewer}, roles)
	})

	t.Run("other edges are edit actions", func(t *testing.T) {
		for _, from := range []ChapterStatus{ChapterStatusPending, ChapterStatusGenerated, ChapterStatusFinalized} {
			roles := TransitionRoles(from)
			assert.ElementsMatch(t, []MemberRole{MemberRoleOwner, MemberRoleEditor}, roles, "from %s", from)
		}
	})
}

func TestNewChapter(t *testing.T) {
	parentID := "parent-id"
	ch := NewChapter("proj-1", &parentID, "1.2", "技术方案", 3)

	require.NotNil(t, ch)
	assert.Equal(t, "proj-1", ch.ProjectID)
	assert.Equal(t, &parentID, ch.ParentID)
	assert.Equal(t, "1.2", ch.ChapterNumber)
	assert.Equal(t, ChapterStatusPending, ch.Status)
	assert.Equal(t, 3, ch.OrderIndex)
	assert.False(t, ch.IsLocked())
}

func TestChapterLockHelpers(t *testing.T) {
	const timeout = 30 * time.Minute
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("unlocked chapter", func(t *testing.T) {
		ch := NewChapter("p", nil, "1", "t", 0)
		assert.False(t, ch.IsLocked())
		assert.False(t, ch.LockLive(now, timeout))
		assert.False(t, ch.LockHeldBy("u1", now, timeout))
	})

	t.Run("live lock", func(t *testing.T) {
		ch := NewChapter("p", nil, "1", "t", 0)
		ch.AcquireLock("u1", now)

		later := now.Add(10 * time.Minute)
		assert.True(t, ch.IsLocked())
		assert.True(t, ch.LockLive(later, timeout))
		assert.True(t, ch.LockHeldBy("u1", later, timeout))
		assert.False(t, ch.LockHeldBy("u2", later, timeout))
		assert.False(t, ch.LockExpired(later, timeout))
	})

	t.Run("expired lock", func(t *testing.T) {
		ch := NewChapter("p", nil, "1", "t", 0)
		ch.AcquireLock("u1", now)

		later := now.Add(timeout + time.Second)
		assert.True(t, ch.IsLocked())
		assert.True(t, ch.LockExpired(later, timeout))
		assert.False(t, ch.LockLive(later, timeout))
		assert.False(t, ch.LockHeldBy("u1", later, timeout))
	})

	t.Run("missing locked_at counts as expired", func(t *testing.T) {
		ch := NewChapter("p", nil, "1", "t", 0)
		holder := "u1"
		ch.LockedBy = &holder

		assert.True(t, ch.LockExpired(now, timeout))
		assert.False(t, ch.LockLive(now, timeout))
	})

	t.Run("release clears both fields", func(t *testing.T) {
		ch := NewChapter("p", nil, "1", "t", 0)
		ch.AcquireLock("u1", now)
		ch.ReleaseLock()

		assert.Nil(t, ch.LockedBy)
		assert.Nil(t, ch.LockedAt)
	})
}
