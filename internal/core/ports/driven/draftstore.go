package driven

import (
	"context"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// DraftStore persists generated drafts pending human review.
type DraftStore interface {
	// Save stores a draft.
	Save(ctx context.Context, draft domain.Draft) error

	// Get retrieves a draft by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Draft, error)

	// List returns all drafts, newest first.
	List(ctx context.Context) ([]domain.Draft, error)

	// ListByProspect returns drafts for a prospect, newest first.
	ListByProspect(ctx context.Context, prospectID string) ([]domain.Draft, error)

	// Delete removes a draft by ID.
	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes drafts created before the cutoff and
	// returns how many were removed. Stale unreviewed drafts are
	// swept at the start of each run.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
