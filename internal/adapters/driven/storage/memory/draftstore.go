package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure DraftStore implements the interface.
var _ driven.DraftStore = (*DraftStore)(nil)

// DraftStore is an in-memory implementation of driven.DraftStore.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.Draft
}

// NewDraftStore creates a new in-memory draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[string]domain.Draft),
	}
}

// Save stores a draft.
func (s *DraftStore) Save(_ context.Context, draft domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = draft
	return nil
}

// Get retrieves a draft by ID.
func (s *DraftStore) Get(_ context.Context, id string) (*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &draft, nil
}

// List returns all drafts, newest first.
func (s *DraftStore) List(_ context.Context) ([]domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Draft, 0, len(s.drafts))
	for id := range s.drafts {
		result = append(result, s.drafts[id])
	}
	sortNewestFirst(result)
	return result, nil
}

// ListByProspect returns drafts for a prospect, newest first.
func (s *DraftStore) ListByProspect(_ context.Context, prospectID string) ([]domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Draft
	for id := range s.drafts {
		if s.drafts[id].ProspectID == prospectID {
			result = append(result, s.drafts[id])
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// Delete removes a draft by ID.
func (s *DraftStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.drafts, id)
	return nil
}

// DeleteOlderThan removes drafts created before the cutoff.
func (s *DraftStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, draft := range s.drafts {
		if draft.CreatedAt.Before(cutoff) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed, nil
}

func sortNewestFirst(drafts []domain.Draft) {
	sort.Slice(drafts, func(i, j int) bool {
		if !drafts[i].CreatedAt.Equal(drafts[j].CreatedAt) {
			return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
		}
		return drafts[i].ID < drafts[j].ID
	})
}
