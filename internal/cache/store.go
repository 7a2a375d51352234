package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cacheFileExtension is the file extension used for cache entries.
const cacheFileExtension = ".json"

const (
	cacheDirPerm  = 0o750
	cacheFilePerm = 0o600
)

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// Stats summarizes the contents of a store.
type Stats struct {
	Entries   int   `json:"entries"    yaml:"entries"`
	Expired   int   `json:"expired"    yaml:"expired"`
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`
}

// FileStore keeps cache entries as JSON files in one directory.
// Safe for concurrent use within a process.
type FileStore struct {
	directory string
	enabled   bool
	ttl       time.Duration

	mu sync.RWMutex
}

// NewFileStore creates a store in directory, creating it if needed.
// A disabled store accepts every call and caches nothing.
func NewFileStore(directory string, enabled bool, ttl time.Duration) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}

	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	if err := os.MkdirAll(directory, cacheDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		directory: directory,
		enabled:   true,
		ttl:       ttl,
	}, nil
}

// Get returns the entry stored under key. Expired entries are removed and
// reported as ErrCacheExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	filePath := s.keyToFilePath(key)
	data, err := os.ReadFile(filePath)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(filePath)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}

	return &entry, nil
}

// Set stores data under key with the store's TTL, replacing any previous entry.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	entryData, err := json.Marshal(NewEntry(key, data, s.ttl))
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.keyToFilePath(key)

	// Write to temporary file first, then rename for atomicity
	tempPath := filePath + ".tmp"
	if err = os.WriteFile(tempPath, entryData, cacheFilePerm); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	return nil
}

// GetJSON decodes the entry under key into out. It reports false, without
// error, on a miss, an expired entry or a disabled store.
func (s *FileStore) GetJSON(key string, out any) (bool, error) {
	entry, err := s.Get(key)
	switch {
	case errors.Is(err, ErrCacheNotFound), errors.Is(err, ErrCacheExpired), errors.Is(err, ErrCacheDisabled):
		return false, nil
	case err != nil:
		return false, err
	}
	if err = json.Unmarshal(entry.Data, out); err != nil {
		return false, fmt.Errorf("failed to decode cached data: %w", err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key. A disabled store is a no-op.
func (s *FileStore) SetJSON(key string, v any) error {
	if !s.enabled {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache data: %w", err)
	}
	return s.Set(key, data)
}

// Delete removes the entry under key. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyToFilePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range files {
		if err = os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(path), err)
		}
		removed++
	}
	return removed, nil
}

// CleanupExpired removes expired and unreadable entries and returns how many
// were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range files {
		if entry, readErr := readEntry(path); readErr == nil && !entry.IsExpired() {
			continue
		}
		if os.Remove(path) == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats counts entries and their total size on disk.
func (s *FileStore) Stats() (Stats, error) {
	if !s.enabled {
		return Stats{}, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entryFiles()
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, path := range files {
		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		stats.Entries++
		stats.SizeBytes += info.Size()
		if entry, readErr := readEntry(path); readErr != nil || entry.IsExpired() {
			stats.Expired++
		}
	}
	return stats, nil
}

// IsEnabled returns true if caching is enabled.
func (s *FileStore) IsEnabled() bool {
	return s.enabled
}

// Directory returns the cache directory path.
func (s *FileStore) Directory() string {
	return s.directory
}

// TTL returns the lifetime given to new entries.
func (s *FileStore) TTL() time.Duration {
	return s.ttl
}

// entryFiles lists the entry files in the cache directory. Callers hold mu.
func (s *FileStore) entryFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	files := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != cacheFileExtension {
			continue
		}
		files = append(files, filepath.Join(s.directory, de.Name()))
	}
	return files, nil
}

// keyToFilePath maps a key to a file directly inside the cache directory.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := filepath.Base(filepath.Clean("/" + key))
	return filepath.Join(s.directory, safeKey+cacheFileExtension)
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
