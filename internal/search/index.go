package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// mappingVersion is bumped whenever the index mapping changes. A version
// mismatch on disk forces a rebuild on startup.
const mappingVersion = "1"

// SearchIndex wraps a Bleve index over published cards. All methods are
// safe for concurrent use; Rebuild takes the write lock so readers never
// see a half-built index.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses stderr if nil)
}

// NewSearchIndex opens the directory index at DataPath, creating it when
// missing. A corrupted index or a stale mapping version is discarded and
// recreated empty; callers then reindex from the profile store.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "directory.bleve")
	versionPath := filepath.Join(opts.DataPath, "directory.version")

	index, err := openExisting(indexPath, versionPath, logger)
	if err != nil {
		return nil, err
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new directory index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing directory index", "path", indexPath)
	}

	return &SearchIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// openExisting returns the on-disk index when it is usable, nil when a
// fresh index must be created in its place.
func openExisting(indexPath, versionPath string, logger *slog.Logger) (bleve.Index, error) {
	if _, err := os.Stat(indexPath); err != nil {
		return nil, nil
	}

	discard := false
	switch version, err := os.ReadFile(versionPath); {
	case err != nil:
		logger.Info("search index has no version file, will rebuild with current mapping",
			"new_version", mappingVersion)
		discard = true
	case string(version) != mappingVersion:
		logger.Info("search index mapping version changed, will rebuild",
			"old_version", string(version),
			"new_version", mappingVersion)
		discard = true
	}

	if !discard {
		index, err := bleve.Open(indexPath)
		if err == nil {
			return index, nil
		}
		logger.Warn("failed to open existing index, will recreate",
			"path", indexPath,
			"error", err)
	}

	if err := os.RemoveAll(indexPath); err != nil {
		return nil, fmt.Errorf("remove old index: %w", err)
	}
	return nil, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexCard indexes one published card. The document is flattened to a
// map so its field names line up with the lowercase mapping.
func (s *SearchIndex) IndexCard(doc *CardDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexCards indexes cards in one batch. Used to rebuild the directory
// from the profile store at startup.
func (s *SearchIndex) IndexCards(docs []*CardDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	return s.index.Batch(batch)
}

// DeleteCard removes an unpublished card from the index.
func (s *SearchIndex) DeleteCard(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed cards.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and creates an empty replacement under the
// write lock. The caller reindexes published profiles afterwards.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt directory index", "path", s.path)
	return nil
}
