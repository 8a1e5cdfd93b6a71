// Package file implements the key-value store as a single JSON file,
// for environments where an embedded database is unwanted.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/interfaces"
)

// Store persists key-value pairs to a JSON file with 0600 permissions.
// A missing or corrupt file reads as empty.
type Store struct {
	path   string
	mu     sync.RWMutex
	logger *common.Logger
}

// NewStore creates a store that persists to path.
// The directory is created on first write.
func NewStore(path string, logger *common.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// KeyValueStorage returns the store itself.
func (s *Store) KeyValueStorage() interfaces.KeyValueStorage {
	return s
}

// Backend names the storage implementation.
func (s *Store) Backend() string {
	return "file"
}

// Close is a no-op; every write is flushed immediately.
func (s *Store) Close() error {
	return nil
}

// Get retrieves a value by key. Missing keys return interfaces.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.read()
	if err != nil {
		return "", err
	}
	val, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", interfaces.ErrNotFound, key)
	}
	return val, nil
}

// Set stores a key-value pair.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.write(entries)
}

// Delete removes a key-value pair. Deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.write(entries)
}

// GetAll retrieves all key-value pairs.
func (s *Store) GetAll(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read()
}

func (s *Store) read() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read store %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().Str("path", s.path).Str("error", err.Error()).Msg("corrupt store file, treating as empty")
		return make(map[string]string), nil
	}
	return entries, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *Store) write(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write store %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store %s: %w", s.path, err)
	}
	return nil
}
