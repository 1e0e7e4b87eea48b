package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	"github.com/linkcardapp/linkcard-server/internal/store"
)

func testProfile(userID string) *domain.ProfileRecord {
	now := time.Now()
	return &domain.ProfileRecord{
		UserID:      userID,
		FullName:    "Alex Johnson",
		Bio:         "Digital creator",
		AvatarURL:   "https://cdn.example.com/a.webp",
		ThemeConfig: []byte(`{"accentColor":"#a855f7"}`),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProfiles_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := testProfile("user-1")
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, p.FullName, got.FullName)
	assert.Equal(t, p.Bio, got.Bio)
	assert.Equal(t, p.AvatarURL, got.AvatarURL)
	assert.JSONEq(t, string(p.ThemeConfig), string(got.ThemeConfig))
	assert.False(t, got.IsPublished())
}

func TestProfiles_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProfile(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProfiles_UpsertReplacesMutableColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := testProfile("user-1")
	require.NoError(t, s.SaveProfile(ctx, p))

	first, err := s.GetProfile(ctx, "user-1")
	require.NoError(t, err)

	p.FullName = "Alex J."
	p.Bio = "Updated bio"
	p.UpdatedAt = time.Now().Add(time.Minute)
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex J.", got.FullName)
	assert.Equal(t, "Updated bio", got.Bio)
	assert.True(t, got.UpdatedAt.After(first.UpdatedAt))
	// created_at survives the upsert.
	assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestProfiles_GetByHandle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	p := testProfile("user-1")
	p.Handle = "alex-johnson"
	p.PublishedAt = &now
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfileByHandle(ctx, "alex-johnson")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.IsPublished())

	_, err = s.GetProfileByHandle(ctx, "someone-else")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProfiles_HandleUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	p1 := testProfile("user-1")
	p1.Handle = "taken"
	p1.PublishedAt = &now
	require.NoError(t, s.SaveProfile(ctx, p1))

	p2 := testProfile("user-2")
	p2.Handle = "taken"
	p2.PublishedAt = &now
	assert.Error(t, s.SaveProfile(ctx, p2))
}

func TestProfiles_ListPublished(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	published := testProfile("user-1")
	published.Handle = "alex"
	published.PublishedAt = &now
	require.NoError(t, s.SaveProfile(ctx, published))

	draft := testProfile("user-2")
	require.NoError(t, s.SaveProfile(ctx, draft))

	list, err := s.ListPublishedProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "user-1", list[0].UserID)
}

func TestProfiles_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, testProfile("user-1")))
	require.NoError(t, s.DeleteProfile(ctx, "user-1"))

	_, err := s.GetProfile(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteProfile(ctx, "user-1"), store.ErrNotFound)
}
