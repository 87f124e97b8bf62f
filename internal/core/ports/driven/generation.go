package driven

import (
	"context"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// GenerationService drafts outreach emails from a context package.
// This is an optional service - when nil, runs rank and report but
// produce no drafts.
//
// The contract is strict: one call per prospect per run, the output is
// a draft for human review, and a body outside the expected length band
// is flagged, never silently rewritten.
type GenerationService interface {
	// GenerateEmail produces an email draft for the prospect described
	// by the context package. Malformed structured output is returned
	// as a flagged GeneratedEmail wrapping the raw text, with the
	// error domain.ErrContractViolation.
	GenerateEmail(ctx context.Context, prospect domain.Prospect, pkg *domain.ContextPackage) (*domain.GeneratedEmail, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
