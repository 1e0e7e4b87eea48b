package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const draftPrefix = "draft:"

// GuestIdentity is the draft identity used when no user is authenticated.
const GuestIdentity = "guest"

// DraftKey returns the draft key for a user identity. An empty identity
// maps to the shared guest identity.
func DraftKey(identity string) string {
	if identity == "" {
		identity = GuestIdentity
	}
	return draftPrefix + identity
}

// GetDraft returns the raw draft document for an identity.
// Returns ErrNotFound when no draft has been written. The payload is stored
// opaque; callers own parsing so a corrupted draft can be treated as absent.
func (s *Store) GetDraft(ctx context.Context, identity string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if identity == "" {
		identity = GuestIdentity
	}
	key := buildKey(draftPrefix, identity)
	defer releaseKey(key)
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return data, nil
}

// SaveDraft writes the raw draft document for an identity, replacing any
// previous draft.
func (s *Store) SaveDraft(ctx context.Context, identity string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(DraftKey(identity))
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// DeleteDraft removes the draft for an identity. Idempotent.
func (s *Store) DeleteDraft(ctx context.Context, identity string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.delete([]byte(DraftKey(identity))); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// HasDraft reports whether a draft exists for an identity.
func (s *Store) HasDraft(ctx context.Context, identity string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if identity == "" {
		identity = GuestIdentity
	}
	key := buildKey(draftPrefix, identity)
	defer releaseKey(key)
	return s.exists(key)
}
