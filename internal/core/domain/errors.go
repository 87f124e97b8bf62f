package domain

import (
	"context"
	"errors"
	"net"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexInProgress indicates an index run is already executing.
	// Index runs are serialized; callers should retry later.
	ErrIndexInProgress = errors.New("index run in progress")

	// ErrConfiguration indicates missing or invalid configuration.
	// Fatal at startup, surfaced before any prospect is processed.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTransient indicates a retryable I/O failure on an external
	// collaborator (network error, timeout, rate limit). After the
	// bounded attempt count the source is omitted and the run continues.
	ErrTransient = errors.New("transient failure")

	// ErrDataIntegrity indicates an unreadable or unparseable corpus
	// document. The document is skipped and the index run continues.
	ErrDataIntegrity = errors.New("data integrity failure")

	// ErrContractViolation indicates the generation service returned
	// output outside its contract (malformed, or body outside the
	// length band). Surfaced as a flagged draft, never auto-corrected.
	ErrContractViolation = errors.New("generation contract violation")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Indexing and retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation service is not
	// configured. Drafts cannot be produced without it.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)

// IsTransient reports whether an error should be retried with backoff.
// Context cancellation is not transient: the run is being stopped.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
