package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the user-agent scoped key/value store backing the session.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(keys ...string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// FileStore keeps all keys in a single JSON object on disk. The file is
// private to the user (0600) since it holds the bearer token.
type FileStore struct {
	mu       sync.RWMutex
	values   map[string]string
	dataFile string
}

func NewFileStore(path string) *FileStore {
	s := &FileStore{
		values:   make(map[string]string),
		dataFile: path,
	}
	s.load()
	return s
}

func (s *FileStore) Path() string {
	return s.dataFile
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.save()
}

func (s *FileStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, key := range keys {
		if _, ok := s.values[key]; ok {
			delete(s.values, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save()
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.dataFile)
	if err != nil {
		return
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return
	}
	if values != nil {
		s.values = values
	}
}

func (s *FileStore) save() error {
	if len(s.values) == 0 {
		if err := os.Remove(s.dataFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.dataFile), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.dataFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
