// Package uploads provides storage and processing for user-uploaded card media:
// profile images, cover images, story media, gallery items, and audio tracks.
package uploads

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// filenameRe restricts stored names to an ID plus extension. Upload names are
// server-generated, but Get/Delete take client-supplied names on the serve path.
var filenameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[a-z0-9]+$`)

// Storage manages upload filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance.
// basePath should be the data directory (e.g., ~/LinkCard/data).
// Files are stored in {basePath}/uploads/.
func NewStorage(basePath string) (*Storage, error) {
	return NewStorageWithSubdir(basePath, "uploads")
}

// NewStorageWithSubdir creates a new Storage instance with a custom subdirectory.
// Example: NewStorageWithSubdir("/data", "avatars") -> /data/avatars/.
func NewStorageWithSubdir(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	storagePath := filepath.Join(basePath, subdir)

	// Create directory if it doesn't exist.
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{
		basePath: storagePath,
	}, nil
}

// Save stores file data under the given name.
// Name format: {id}.{ext}, e.g. "V1StGXR8Z5.jpg".
func (s *Storage) Save(name string, data []byte) error {
	if !filenameRe.MatchString(name) {
		return fmt.Errorf("invalid upload name %q", name)
	}

	if len(data) == 0 {
		return fmt.Errorf("upload data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(name)

	// Write file with appropriate permissions.
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write upload file: %w", err)
	}

	return nil
}

// Get retrieves file data by name.
func (s *Storage) Get(name string) ([]byte, error) {
	if !filenameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid upload name %q", name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("upload not found for %s: %w", name, err)
		}
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}

	return data, nil
}

// Exists checks if a file exists by name.
func (s *Storage) Exists(name string) bool {
	if !filenameRe.MatchString(name) {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(name)
	_, err := os.Stat(path)
	return err == nil
}

// Delete removes a file by name.
func (s *Storage) Delete(name string) error {
	if !filenameRe.MatchString(name) {
		return fmt.Errorf("invalid upload name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(name)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error.
			return nil
		}
		return fmt.Errorf("failed to delete upload file: %w", err)
	}

	return nil
}

// Hash computes SHA256 hash of a stored file.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(name string) (string, error) {
	data, err := s.Get(name)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a stored file.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, name)
}
