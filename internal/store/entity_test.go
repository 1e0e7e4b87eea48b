package store_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkcardapp/linkcard-server/internal/store"
)

// handleReservation is a small record type for exercising the generic
// entity layer: a public handle claimed by a user.
type handleReservation struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Handle string `json:"handle"`
}

func newEntityStore(t *testing.T) (*store.Store, *store.Entity[handleReservation]) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "entity-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	s, err := store.New(tmpDir+"/test.db", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	reservations := store.NewEntity[handleReservation](s, "reservation:").
		WithIndexTransform("handle",
			func(r *handleReservation) []string {
				return []string{strings.ToLower(r.Handle)}
			},
			func(value string) string {
				return strings.ToLower(strings.TrimSpace(value))
			})

	return s, reservations
}

func TestEntity_CreateAndGet(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	r := &handleReservation{ID: "res-1", UserID: "user-1", Handle: "studio-north"}
	require.NoError(t, reservations.Create(ctx, r.ID, r))

	got, err := reservations.Get(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestEntity_CreateDuplicateID(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	r := &handleReservation{ID: "res-1", UserID: "user-1", Handle: "studio-north"}
	require.NoError(t, reservations.Create(ctx, r.ID, r))

	err := reservations.Create(ctx, r.ID, &handleReservation{ID: "res-1", UserID: "user-2", Handle: "other"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_GetMissing(t *testing.T) {
	_, reservations := newEntityStore(t)

	_, err := reservations.Get(context.Background(), "res-nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_GetByIndexAppliesTransform(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	r := &handleReservation{ID: "res-1", UserID: "user-1", Handle: "Studio-North"}
	require.NoError(t, reservations.Create(ctx, r.ID, r))

	for _, lookup := range []string{"studio-north", "STUDIO-NORTH", "  Studio-North  "} {
		got, err := reservations.GetByIndex(ctx, "handle", lookup)
		require.NoError(t, err, "lookup %q", lookup)
		assert.Equal(t, "res-1", got.ID)
	}
}

func TestEntity_GetByIndexMissing(t *testing.T) {
	_, reservations := newEntityStore(t)

	_, err := reservations.GetByIndex(context.Background(), "handle", "unclaimed")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_CreateIndexConflict(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	require.NoError(t, reservations.Create(ctx, "res-1",
		&handleReservation{ID: "res-1", UserID: "user-1", Handle: "studio-north"}))

	// The transformed key collides even though the IDs differ.
	err := reservations.Create(ctx, "res-2",
		&handleReservation{ID: "res-2", UserID: "user-2", Handle: "studio-north"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_UpdateMovesIndex(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	r := &handleReservation{ID: "res-1", UserID: "user-1", Handle: "studio-north"}
	require.NoError(t, reservations.Create(ctx, r.ID, r))

	r.Handle = "atelier-east"
	require.NoError(t, reservations.Update(ctx, r.ID, r))

	got, err := reservations.GetByIndex(ctx, "handle", "atelier-east")
	require.NoError(t, err)
	assert.Equal(t, "res-1", got.ID)

	// The old handle is free again.
	_, err = reservations.GetByIndex(ctx, "handle", "studio-north")
	assert.ErrorIs(t, err, store.ErrNotFound)

	other := &handleReservation{ID: "res-2", UserID: "user-2", Handle: "studio-north"}
	assert.NoError(t, reservations.Create(ctx, other.ID, other))
}

func TestEntity_UpdateMissing(t *testing.T) {
	_, reservations := newEntityStore(t)

	err := reservations.Update(context.Background(), "res-nope",
		&handleReservation{ID: "res-nope", Handle: "ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_UpdateIndexConflict(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	require.NoError(t, reservations.Create(ctx, "res-1",
		&handleReservation{ID: "res-1", UserID: "user-1", Handle: "studio-north"}))
	require.NoError(t, reservations.Create(ctx, "res-2",
		&handleReservation{ID: "res-2", UserID: "user-2", Handle: "atelier-east"}))

	err := reservations.Update(ctx, "res-2",
		&handleReservation{ID: "res-2", UserID: "user-2", Handle: "studio-north"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_UpdateKeepingIndexValue(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	r := &handleReservation{ID: "res-1", UserID: "user-1", Handle: "studio-north"}
	require.NoError(t, reservations.Create(ctx, r.ID, r))

	// Changing a non-indexed field must not trip the conflict check.
	r.UserID = "user-9"
	require.NoError(t, reservations.Update(ctx, r.ID, r))

	got, err := reservations.GetByIndex(ctx, "handle", "studio-north")
	require.NoError(t, err)
	assert.Equal(t, "user-9", got.UserID)
}

func TestEntity_DeleteRemovesIndexes(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	require.NoError(t, reservations.Create(ctx, "res-1",
		&handleReservation{ID: "res-1", UserID: "user-1", Handle: "studio-north"}))

	require.NoError(t, reservations.Delete(ctx, "res-1"))

	_, err := reservations.Get(ctx, "res-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = reservations.GetByIndex(ctx, "handle", "studio-north")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_DeleteIsIdempotent(t *testing.T) {
	_, reservations := newEntityStore(t)

	assert.NoError(t, reservations.Delete(context.Background(), "res-never-existed"))
}

func TestEntity_List(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	handles := []string{"studio-north", "atelier-east", "print-shop"}
	for i, handle := range handles {
		r := &handleReservation{ID: "res-" + handle, UserID: "user-1", Handle: handle}
		require.NoError(t, reservations.Create(ctx, r.ID, r), "create %d", i)
	}

	seen := make(map[string]bool)
	for r, err := range reservations.List(ctx) {
		require.NoError(t, err)
		seen[r.Handle] = true
	}

	// Index keys are skipped; each record appears exactly once.
	assert.Len(t, seen, len(handles))
	for _, handle := range handles {
		assert.True(t, seen[handle], "missing %s", handle)
	}
}

func TestEntity_ListStopsEarly(t *testing.T) {
	_, reservations := newEntityStore(t)
	ctx := context.Background()

	for _, handle := range []string{"studio-north", "atelier-east", "print-shop"} {
		r := &handleReservation{ID: "res-" + handle, UserID: "user-1", Handle: handle}
		require.NoError(t, reservations.Create(ctx, r.ID, r))
	}

	count := 0
	for _, err := range reservations.List(ctx) {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestEntity_ContextCancellation(t *testing.T) {
	_, reservations := newEntityStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := reservations.Create(ctx, "res-1",
		&handleReservation{ID: "res-1", Handle: "studio-north"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = reservations.Get(ctx, "res-1")
	assert.ErrorIs(t, err, context.Canceled)
}
