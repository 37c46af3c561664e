package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/lpm/pkg/domain"
)

// Store implements ports.ArtifactStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.InputError{Field: "name", Reason: "artifact name cannot be empty"}
	}
	return nil
}

// Put stores a copy of data.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	copied := append([]byte(nil), data...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Get returns a copy so callers can't mutate stored content.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

// Delete removes the artifact.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored artifact names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	return names, nil
}

// Ref returns a memory URI for the artifact.
func (s *Store) Ref(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return "mem:" + name, nil
}
