// Package cache persists assembled inventory documents to local JSON files
// with a TTL. Entries are written atomically so a concurrent reader never
// observes a partially written snapshot; two runs racing on the same key
// resolve to last-writer-wins.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
	"github.com/mlmtools/mlm-inventory/pkg/models"
)

const (
	cacheDirPerms = 0o700

	// entryPrefix keeps entries identifiable when the cache directory is
	// shared, such as the system temp directory.
	entryPrefix = "mlm_inventory_"
)

// entry is the on-disk envelope around a cached document.
type entry struct {
	Expiry   time.Time                 `json:"expiry"`
	Document *models.InventoryDocument `json:"document"`
}

// FileStore persists inventory snapshots to a local directory, one JSON file
// per cache key.
type FileStore struct {
	dir    string
	logger logger.Logger
	mu     sync.Mutex
	nowFn  func() time.Time
}

// NewFileStore constructs a file-backed store rooted at dir, creating the
// directory if needed. An empty dir falls back to the user cache directory,
// then the system temp directory.
func NewFileStore(dir string, log logger.Logger) (*FileStore, error) {
	if dir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			dir = filepath.Join(base, "mlm-inventory")
		} else {
			dir = filepath.Join(os.TempDir(), "mlm-inventory")
		}
	}

	if err := os.MkdirAll(dir, cacheDirPerms); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &FileStore{
		dir:    dir,
		logger: log,
		nowFn:  time.Now,
	}, nil
}

// Dir reports the directory entries are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

// Get returns the cached document for key, or a miss when the entry is
// absent or expired. An unreadable or malformed entry is treated as a miss
// so a corrupt cache never blocks a fresh fetch.
func (s *FileStore) Get(key string) (*models.InventoryDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.entryPath(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to read cache entry, treating as miss")
		}

		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Cache entry is malformed, treating as miss")
		return nil, false
	}

	// An entry is stale once now reaches its expiry.
	if e.Document == nil || !s.nowFn().Before(e.Expiry) {
		return nil, false
	}

	return e.Document, true
}

// Put persists document under key with the given TTL. The payload is written
// to a temporary file and renamed into place.
func (s *FileStore) Put(key string, document *models.InventoryDocument, ttl time.Duration) error {
	if document == nil {
		return nil
	}

	payload, err := json.Marshal(entry{
		Expiry:   s.nowFn().Add(ttl),
		Document: document,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.entryPath(key)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, payload, 0o600); err != nil {
		return fmt.Errorf("write temporary cache entry: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // best-effort cleanup
		return fmt.Errorf("persist cache entry: %w", err)
	}

	return nil
}

func (s *FileStore) entryPath(key string) string {
	return filepath.Join(s.dir, entryPrefix+key+".json")
}
