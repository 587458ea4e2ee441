package storage

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a KV backed by a single JSON file. Writes are synchronous:
// Set and Remove return only after the file has been rewritten, so a crash
// never loses an acknowledged mutation. An unreadable or unparsable file
// degrades to an empty store rather than failing construction.
type FileStore struct {
	mu     sync.Mutex
	path   string
	data   map[string]string
	logger *log.Logger
}

// OpenFile loads (or initializes) the store at path.
func OpenFile(path string, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &FileStore{path: path, data: map[string]string{}, logger: logger}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Printf("storage: discarding corrupt state file %s: %v", path, err)
		s.data = map[string]string{}
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flushLocked()
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

// flushLocked rewrites the whole file via a rename so readers never observe
// a partially written snapshot.
func (s *FileStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
