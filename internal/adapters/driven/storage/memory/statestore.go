package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure IndexStateStore implements the interface.
var _ driven.IndexStateStore = (*IndexStateStore)(nil)

// IndexStateStore is an in-memory implementation of driven.IndexStateStore.
type IndexStateStore struct {
	mu      sync.RWMutex
	states  map[string]domain.DocumentState
	version domain.IndexVersion
}

// NewIndexStateStore creates a new in-memory index state store.
func NewIndexStateStore() *IndexStateStore {
	return &IndexStateStore{
		states: make(map[string]domain.DocumentState),
	}
}

// Get retrieves the state for a corpus path.
func (s *IndexStateStore) Get(_ context.Context, path string) (*domain.DocumentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

// List returns all stored states.
func (s *IndexStateStore) List(_ context.Context) ([]domain.DocumentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.DocumentState, 0, len(s.states))
	for path := range s.states {
		result = append(result, s.states[path])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// Save stores or updates the state for a path.
func (s *IndexStateStore) Save(_ context.Context, state domain.DocumentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.Path] = state
	return nil
}

// Delete removes the state for a path.
func (s *IndexStateStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, path)
	return nil
}

// Clear removes all state.
func (s *IndexStateStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]domain.DocumentState)
	s.version = ""
	return nil
}

// Version returns the identifier of the last completed index run.
func (s *IndexStateStore) Version(_ context.Context) (domain.IndexVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}

// SetVersion records the identifier of a completed index run.
func (s *IndexStateStore) SetVersion(_ context.Context, version domain.IndexVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = version
	return nil
}
