package driving

import (
	"context"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// IndexerService builds and maintains the knowledge-base index.
type IndexerService interface {
	// Index runs an index pass over the corpus in the given mode.
	// Runs are serialized: a second concurrent call returns
	// domain.ErrIndexInProgress without touching the index.
	Index(ctx context.Context, mode domain.IndexMode) (*domain.IndexReport, error)

	// Reindex re-processes a single corpus path regardless of its
	// stored fingerprint. Used by watch mode.
	Reindex(ctx context.Context, path string) error

	// Status returns the current index version and document count.
	Status(ctx context.Context) (*IndexStatus, error)
}

// IndexStatus describes the state of the knowledge-base index.
type IndexStatus struct {
	// Version is the last completed index run, empty if none.
	Version domain.IndexVersion

	// DocumentCount is the number of indexed documents.
	DocumentCount int

	// Running indicates if an index run is currently in progress.
	Running bool
}
