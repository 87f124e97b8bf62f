package driven

import (
	"context"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// IndexStateStore persists per-path fingerprint state between index
// runs. It is the source of truth for the incremental re-index
// decision: a path absent from the store is new, a path whose
// fingerprint differs has changed, a stored path missing from the
// corpus has been deleted.
type IndexStateStore interface {
	// Get retrieves the state for a corpus path.
	// Returns domain.ErrNotFound if the path was never indexed.
	Get(ctx context.Context, path string) (*domain.DocumentState, error)

	// List returns all stored states.
	List(ctx context.Context) ([]domain.DocumentState, error)

	// Save stores or updates the state for a path.
	Save(ctx context.Context, state domain.DocumentState) error

	// Delete removes the state for a path.
	Delete(ctx context.Context, path string) error

	// Clear removes all state. Used by full re-index.
	Clear(ctx context.Context) error

	// Version returns the identifier of the last completed index run,
	// empty if no run has completed.
	Version(ctx context.Context) (domain.IndexVersion, error)

	// SetVersion records the identifier of a completed index run.
	SetVersion(ctx context.Context, version domain.IndexVersion) error
}
