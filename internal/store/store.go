// Package store provides the embedded Badger database backing accounts,
// refresh sessions, and per-identity card drafts.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/linkcardapp/linkcard-server/internal/domain"
)

// Store owns the Badger instance and the typed entities layered on it.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Users    *Entity[domain.User]
	Sessions *Entity[domain.Session]
}

// New opens (or creates) the database at path and wires up the entities.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	// Synced writes survive a crash; L0 compaction on close speeds up the
	// next startup.
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{db: db, logger: logger}

	// Accounts, indexed by normalized email so lookups are
	// case-insensitive.
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		)

	// Refresh sessions, indexed by token hash for the refresh flow.
	// Entity indexes are unique, so per-user session listing iterates
	// rather than indexing.
	s.Sessions = NewEntity[domain.Session](s, "session:").
		WithIndex("token", func(sess *domain.Session) []string {
			return []string{sess.RefreshTokenHash}
		})

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}
	return s, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// delete removes a key. Missing keys are not an error.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists reports whether a key is present.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
