package driven

import (
	"context"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// SnippetProvider fetches context fragments about a prospect from one
// external source (call transcripts, team chat, web search). Providers
// are optional: a missing provider contributes nothing, and a failing
// one is retried then omitted without aborting the run.
type SnippetProvider interface {
	// Source returns the source tag the provider's snippets carry.
	Source() domain.SnippetSource

	// Search returns snippets matching the prospect scope, newest
	// first. Implementations bound their own result counts; the
	// aggregator applies the character budget.
	Search(ctx context.Context, scope SnippetScope) ([]domain.SnippetRecord, error)

	// Close releases resources.
	Close() error
}

// SnippetScope narrows a snippet search to one prospect.
type SnippetScope struct {
	// ProspectName is the contact's display name.
	ProspectName string

	// Company is the prospect's company name.
	Company string

	// Email is the contact's email address.
	Email string

	// Channels restricts chat providers to these channels.
	// Ignored by providers without a channel concept.
	Channels []string
}
