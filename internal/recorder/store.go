package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps the full_name -> clone URL mapping and mirrors it to a JSON
// file on every change
type Store struct {
	mu    sync.Mutex
	path  string
	repos map[string]string
}

// NewStore creates a Store backed by path, loading any mapping already
// written there
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  path,
		repos: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.repos); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.repos == nil {
		s.repos = make(map[string]string)
	}
	return s, nil
}

// Put records the clone URL for a repository and persists the mapping
func (s *Store) Put(name, cloneURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.repos[name]; ok && current == cloneURL {
		return nil
	}
	s.repos[name] = cloneURL
	return s.save()
}

// Snapshot returns a copy of the current mapping
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.repos))
	for name, url := range s.repos {
		out[name] = url
	}
	return out
}

// save writes the mapping through a temporary file so readers never see a
// partial document. Callers hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.repos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repositories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
