package storage

import (
	"context"
	"encoding/base32"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vytor/cisspprep/internal/logger"
)

// FileStore persists each key as one file inside a directory. Writes go
// through a temp file followed by rename so a crash never leaves a
// half-written value behind.
type FileStore struct {
	dir string
	mu  sync.Mutex
	log *logger.Logger
}

// NewFileStore creates the directory if needed and returns a FileStore.
func NewFileStore(dir string) (*FileStore, error) {
	log := logger.Default().WithPrefix("filestore")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("failed to create storage dir %s: %v", dir, err)
		return nil, err
	}
	log.Info("file storage ready: %s", dir)
	return &FileStore{dir: dir, log: log}, nil
}

var fileEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func (s *FileStore) path(key string) string {
	// Encoded names keep arbitrary keys from escaping the storage directory.
	name := strings.ToLower(fileEncoding.EncodeToString([]byte(key))) + ".json"
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		s.log.Error("failed to read key %s: %v", key, err)
		return "", false, err
	}
	return string(data), true, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		s.log.Error("failed to write key %s: %v", key, err)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		s.log.Error("failed to replace key %s: %v", key, err)
		return err
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		s.log.Error("failed to remove key %s: %v", key, err)
		return err
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
