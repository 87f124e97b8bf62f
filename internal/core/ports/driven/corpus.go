package driven

import (
	"context"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// CorpusSource reads raw documents from the knowledge corpus.
// The canonical implementation walks a directory tree of markdown and
// plain-text files.
type CorpusSource interface {
	// Validate checks the source is readable before a run starts.
	Validate(ctx context.Context) error

	// Scan streams every corpus document. Returns channels for
	// documents and errors; both close when the scan completes or the
	// context is cancelled. Per-file read failures go to the error
	// channel and do not stop the scan.
	Scan(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch emits corpus-relative paths whose content changed, for
	// watch-mode incremental re-indexing. Bursts of events for the
	// same path are debounced.
	Watch(ctx context.Context) (<-chan string, error)

	// Close releases resources.
	Close() error
}
