package driven

import (
	"context"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// CRMClient reads prospect state and engagement signals from the CRM
// and records drafts back against prospect records.
//
// Implementations convert the CRM's loosely-typed payloads into strict
// domain types at this boundary: missing timestamps become nil, unknown
// numeric fields become zero. Read operations never mutate CRM state.
type CRMClient interface {
	// ListProspects returns the prospects under active outreach
	// consideration (open leads and deals).
	ListProspects(ctx context.Context) ([]domain.Prospect, error)

	// EngagementSignals returns behavioural signal counts for a
	// prospect. A prospect with no recorded activity yields the zero
	// value, not an error.
	EngagementSignals(ctx context.Context, prospectID string) (domain.EngagementSignal, error)

	// Notes returns recent CRM notes and call summaries for a
	// prospect as snippet records, newest first, bounded by since.
	Notes(ctx context.Context, prospectID string, since time.Time) ([]domain.SnippetRecord, error)

	// RecordDraft attaches a generated draft to the prospect record
	// for reviewer visibility. It never sends email and never
	// advances the prospect's sequence day.
	RecordDraft(ctx context.Context, draft domain.Draft) error

	// Close releases resources.
	Close() error
}
