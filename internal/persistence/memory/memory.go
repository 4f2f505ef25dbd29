// Package memory is a process-local KV used by tests and the "memory" storage driver.
package memory

import (
	"context"
	"maps"
	"sync"
)

type Store struct {
	mu      sync.RWMutex
	entries map[string]string
	failErr error
}

func New() *Store {
	return &Store{entries: make(map[string]string)}
}

// FailWrites makes every later SetMany return err. A nil err restores normal behaviour.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failErr = err
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]

	return v, ok, nil
}

func (s *Store) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	maps.Copy(s.entries, entries)

	return nil
}
