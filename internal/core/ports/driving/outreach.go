package driving

import (
	"context"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// OutreachService runs the outreach decision pipeline: pull prospects,
// filter and rank, classify, build context, and draft emails for human
// review.
type OutreachService interface {
	// Run executes one decision pass over the CRM prospect list.
	// Failures on individual prospects are recorded in the report and
	// never abort the run.
	Run(ctx context.Context) (*RunReport, error)

	// Rank returns the filtered, scored prospect list without
	// generating anything. Used for previewing who a run would act on.
	Rank(ctx context.Context) ([]RankedProspect, error)
}

// RankedProspect pairs a prospect with its engagement score and
// classification for display.
type RankedProspect struct {
	// Prospect is the CRM record.
	Prospect domain.Prospect

	// Score is the engagement score.
	Score int

	// Stale indicates the prospect's last contact is past the
	// staleness threshold.
	Stale bool

	// Classification is the sequence state and email type.
	Classification domain.Classification
}

// ProspectOutcome records what happened to one prospect during a run.
type ProspectOutcome struct {
	// ProspectID identifies the prospect.
	ProspectID string

	// Name is the prospect's display name.
	Name string

	// Company is the prospect's company.
	Company string

	// Score is the engagement score at run time.
	Score int

	// State is the classified sequence state.
	State domain.SequenceState

	// EmailType is the classified email type.
	EmailType domain.EmailType

	// NextTouchDays is the drip schedule's wait until the following
	// touch, 0 at the breakup point.
	NextTouchDays int

	// DraftID is the stored draft, empty if none was generated.
	DraftID string

	// Skipped explains why no draft was generated, empty otherwise
	// (e.g., "not stale", "dormant", "generation unavailable").
	Skipped string

	// Warnings carries non-fatal issues (omitted context sources,
	// length-band violations).
	Warnings []string

	// Err is the failure that stopped this prospect, empty on success.
	Err string
}

// RunReport summarises one outreach decision run.
type RunReport struct {
	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// ProspectsConsidered is the CRM prospect count before filtering.
	ProspectsConsidered int

	// ProspectsEligible is the count surviving the hard filters.
	ProspectsEligible int

	// ProspectsActed is the count that reached the per-prospect
	// pipeline (top-N).
	ProspectsActed int

	// DraftsCreated is the count of drafts stored for review.
	DraftsCreated int

	// DraftsSwept is the count of stale pending drafts removed at the
	// start of the run.
	DraftsSwept int

	// Outcomes lists the per-prospect results in rank order.
	Outcomes []ProspectOutcome
}
