// internal/storage/store.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	tokenFile = "token"
	cacheFile = "cache.json"
)

// FileStore is the durable client-side storage used for the session bearer
// token and the app-local inventory cache. Both slots live under a single
// directory so Clear can drop everything belonging to a session at once.
type FileStore struct {
	dir string
}

// New creates a FileStore rooted at dir, creating the directory if needed.
// An empty dir defaults to ~/.horizon.
func New(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, ".horizon")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// SaveToken persists the bearer token.
func (s *FileStore) SaveToken(token string) error {
	return os.WriteFile(s.tokenPath(), []byte(token), 0600)
}

// LoadToken returns the stored bearer token, or "" when none is stored.
// Absence is not an error: no token simply means unauthenticated.
func (s *FileStore) LoadToken() string {
	data, err := os.ReadFile(s.tokenPath())
	if err != nil {
		return ""
	}
	return string(data)
}

// SaveCache persists the app-local cache slot.
func (s *FileStore) SaveCache(data []byte) error {
	return os.WriteFile(s.cachePath(), data, 0600)
}

// LoadCache returns the app-local cache slot contents.
func (s *FileStore) LoadCache() ([]byte, error) {
	data, err := os.ReadFile(s.cachePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read local cache: %w", err)
	}
	return data, nil
}

// Clear removes both the token and cache slots. Missing files are fine;
// the first real failure is reported after both removals were attempted.
func (s *FileStore) Clear() error {
	var firstErr error
	for _, path := range []string{s.tokenPath(), s.cachePath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *FileStore) tokenPath() string {
	return filepath.Join(s.dir, tokenFile)
}

func (s *FileStore) cachePath() string {
	return filepath.Join(s.dir, cacheFile)
}
