package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// entryFileExtension is the file extension used for cache entries.
const entryFileExtension = ".json"

// bytesPerMB converts the configured size limit to bytes.
const bytesPerMB = 1024 * 1024

// Common cache errors.
var (
	ErrNotFound        = errors.New("cache entry not found")
	ErrExpired         = errors.New("cache entry expired")
	ErrInvalidKey      = errors.New("cache key cannot be empty")
	ErrDisabled        = errors.New("cache is disabled")
	ErrPayloadTooLarge = errors.New("payload exceeds cache size limit")
)

// FileStore keeps dataset payloads as JSON files in one directory.
// Safe for concurrent use.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int

	// maxSizeMB bounds the size of the cache directory (0 = unlimited).
	maxSizeMB int

	mu sync.RWMutex
}

// NewFileStore creates a store rooted at directory, creating it when needed.
// A disabled store accepts no directory and rejects every operation with ErrDisabled.
func NewFileStore(directory string, enabled bool, ttlSeconds, maxSizeMB int) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}

	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	if err := os.MkdirAll(directory, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		directory:  directory,
		enabled:    true,
		ttlSeconds: ttlSeconds,
		maxSizeMB:  maxSizeMB,
	}, nil
}

// Get returns the entry stored under key.
// Returns ErrNotFound when absent and ErrExpired when stale; stale files are removed.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	filePath := s.keyToFilePath(key)
	data, err := os.ReadFile(filePath)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", unmarshalErr)
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(filePath)
		s.mu.Unlock()
		return nil, ErrExpired
	}

	return &entry, nil
}

// Put stores payload fetched from source under key, replacing any previous entry.
func (s *FileStore) Put(key, source string, payload json.RawMessage) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	entryData, err := json.Marshal(NewEntry(key, source, payload, s.ttlSeconds))
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSizeMB > 0 {
		used, sizeErr := s.sizeLocked()
		if sizeErr != nil {
			return sizeErr
		}
		if used+int64(len(entryData)) > int64(s.maxSizeMB)*bytesPerMB {
			return fmt.Errorf("%w: %d MB", ErrPayloadTooLarge, s.maxSizeMB)
		}
	}

	filePath := s.keyToFilePath(key)

	// Write to a temporary file first, then rename for atomicity.
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return nil
}

// Delete removes the entry under key. Deleting a missing entry is not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyToFilePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *FileStore) Clear() error {
	return s.removeMatching(func(*Entry) bool { return true })
}

// Purge removes expired entries and unreadable files.
func (s *FileStore) Purge() error {
	return s.removeMatching(func(e *Entry) bool { return e == nil || e.IsExpired() })
}

// removeMatching deletes every entry file for which match returns true. A file that
// cannot be decoded is passed to match as nil.
func (s *FileStore) removeMatching(match func(*Entry) bool) error {
	if !s.enabled {
		return ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return err
	}

	for _, filePath := range files {
		var entry *Entry
		if data, readErr := os.ReadFile(filePath); readErr == nil {
			var decoded Entry
			if json.Unmarshal(data, &decoded) == nil {
				entry = &decoded
			}
		}
		if !match(entry) {
			continue
		}
		if removeErr := os.Remove(filePath); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(filePath), removeErr)
		}
	}
	return nil
}

// Size returns the total size of the cache files in bytes.
func (s *FileStore) Size() (int64, error) {
	if !s.enabled {
		return 0, ErrDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sizeLocked()
}

// Count returns the number of entries, including expired ones.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// IsEnabled reports whether caching is active.
func (s *FileStore) IsEnabled() bool {
	return s.enabled
}

// Directory returns the cache directory path.
func (s *FileStore) Directory() string {
	return s.directory
}

// TTL returns the TTL in seconds applied to new entries.
func (s *FileStore) TTL() int {
	return s.ttlSeconds
}

func (s *FileStore) sizeLocked() (int64, error) {
	files, err := s.entryFilesLocked()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, filePath := range files {
		info, statErr := os.Stat(filePath)
		if statErr != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (s *FileStore) entryFilesLocked() ([]string, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var files []string
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryFileExtension {
			continue
		}
		files = append(files, filepath.Join(s.directory, de.Name()))
	}
	return files, nil
}

// keyToFilePath converts a cache key to a file path.
// The key is sanitized to ensure filesystem safety.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.directory, safeKey+entryFileExtension)
}
