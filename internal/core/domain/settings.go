package domain

import (
	"fmt"
	"time"
)

// SignalWeight configures scoring for one engagement signal kind.
type SignalWeight struct {
	// Points is the score contribution per signal occurrence.
	Points int

	// Max caps the total contribution of this signal kind; 0 means
	// uncapped.
	Max int
}

// EligibilityFilters are the hard filters applied before engagement
// scoring. Prospects failing any configured filter are excluded before
// ranking, so top-N always reflects eligible prospects only.
// Empty slices and a zero minimum disable the corresponding filter.
type EligibilityFilters struct {
	// MinEmployeeSize excludes companies below this size. Prospects
	// with an unknown size are excluded when the filter is set.
	MinEmployeeSize int

	// Industries restricts to these industries (exact match).
	Industries []string

	// Countries restricts to these countries (exact match).
	Countries []string

	// TitleKeywords restricts to titles containing any keyword
	// (case-insensitive substring).
	TitleKeywords []string

	// LifecycleStages restricts to these stages (lowercase match).
	LifecycleStages []string
}

// Settings is the recognised configuration surface of the decision
// engine. Validate is called once at startup; a failure is fatal before
// any prospect is processed.
type Settings struct {
	// StalenessThreshold is how long since last contact before a
	// prospect requires action.
	StalenessThreshold time.Duration

	// MaxSequenceDay is the breakup point: automated outreach stops at
	// this day-in-sequence.
	MaxSequenceDay int

	// DaySteps is the drip schedule.
	DaySteps []DayStep

	// Weights maps signal kinds to scoring weights.
	Weights map[SignalKind]SignalWeight

	// ReplyBonus is the flat score added when a reply exists.
	ReplyBonus int

	// Filters are the hard eligibility filters.
	Filters EligibilityFilters

	// TopN is how many ranked prospects to act on per run.
	TopN int

	// RetrievalTopK is how many knowledge-base chunks to retrieve.
	RetrievalTopK int

	// ContextBudget is the character budget for a context package.
	ContextBudget int

	// WorkerCount bounds the per-prospect worker pool.
	WorkerCount int

	// ExternalCallTimeout bounds each external collaborator call.
	ExternalCallTimeout time.Duration

	// MaxAttempts bounds retries of transient external failures.
	MaxAttempts int

	// ChatChannels is the scope passed to the chat snippet provider.
	ChatChannels []string
}

// DefaultSettings returns the engine defaults. Weight and schedule
// defaults mirror the scoring model the sales team tuned by hand.
func DefaultSettings() Settings {
	return Settings{
		StalenessThreshold: 14 * 24 * time.Hour,
		MaxSequenceDay:     40,
		DaySteps:           DefaultDaySteps(),
		Weights: map[SignalKind]SignalWeight{
			SignalOpens:           {Points: 2, Max: 20},
			SignalClicks:          {Points: 5, Max: 25},
			SignalPageViews:       {Points: 1, Max: 15},
			SignalFormSubmissions: {Points: 10, Max: 30},
			SignalMeetings:        {Points: 20, Max: 40},
		},
		ReplyBonus:          15,
		TopN:                10,
		RetrievalTopK:       8,
		ContextBudget:       6000,
		WorkerCount:         4,
		ExternalCallTimeout: 30 * time.Second,
		MaxAttempts:         3,
		ChatChannels:        []string{"sales", "marketing"},
	}
}

// Validate checks the settings. All failures wrap ErrConfiguration.
func (s *Settings) Validate() error {
	if s.StalenessThreshold <= 0 {
		return fmt.Errorf("%w: staleness threshold must be positive", ErrConfiguration)
	}
	if s.MaxSequenceDay <= 0 {
		return fmt.Errorf("%w: max sequence day must be positive", ErrConfiguration)
	}
	if len(s.Weights) == 0 {
		return fmt.Errorf("%w: engagement weights must be configured", ErrConfiguration)
	}
	for kind, w := range s.Weights {
		if w.Points < 0 || w.Max < 0 {
			return fmt.Errorf("%w: negative weight for signal %q", ErrConfiguration, kind)
		}
	}
	if s.TopN <= 0 {
		return fmt.Errorf("%w: top-N must be positive", ErrConfiguration)
	}
	if s.RetrievalTopK <= 0 {
		return fmt.Errorf("%w: retrieval top-K must be positive", ErrConfiguration)
	}
	if s.ContextBudget <= 0 {
		return fmt.Errorf("%w: context budget must be positive", ErrConfiguration)
	}
	if s.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker count must be positive", ErrConfiguration)
	}
	if s.ExternalCallTimeout <= 0 {
		return fmt.Errorf("%w: external call timeout must be positive", ErrConfiguration)
	}
	if s.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive", ErrConfiguration)
	}
	if len(s.DaySteps) == 0 {
		return fmt.Errorf("%w: day steps must be configured", ErrConfiguration)
	}
	for i, step := range s.DaySteps {
		if i > 0 && step.Before <= s.DaySteps[i-1].Before {
			return fmt.Errorf("%w: day steps must be strictly increasing", ErrConfiguration)
		}
		if step.Interval <= 0 {
			return fmt.Errorf("%w: day step interval must be positive", ErrConfiguration)
		}
	}
	return nil
}
