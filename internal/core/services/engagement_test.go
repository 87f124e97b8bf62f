package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

func TestScore(t *testing.T) {
	weights := domain.DefaultSettings().Weights
	replyAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		signals  domain.EngagementSignal
		hasReply bool
		want     int
	}{
		{
			name: "no activity",
			want: 0,
		},
		{
			name:    "mixed activity",
			signals: domain.EngagementSignal{Opens: 3, Clicks: 2, PageViews: 5},
			// 3*2 + 2*5 + 5*1
			want: 21,
		},
		{
			name:    "opens capped",
			signals: domain.EngagementSignal{Opens: 50},
			// 50*2 = 100, capped at 20
			want: 20,
		},
		{
			name:    "every cap hit",
			signals: domain.EngagementSignal{Opens: 100, Clicks: 100, PageViews: 100, FormSubmissions: 100, Meetings: 100},
			// 20 + 25 + 15 + 30 + 40
			want: 130,
		},
		{
			name:     "reply bonus",
			signals:  domain.EngagementSignal{Opens: 1},
			hasReply: true,
			// 2 + 15
			want: 17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProspectSignals{Signals: tt.signals}
			if tt.hasReply {
				p.Prospect.LastReply = &replyAt
			}
			assert.Equal(t, tt.want, Score(p, weights, 15))
		})
	}
}

func TestEligible(t *testing.T) {
	prospect := domain.Prospect{
		ID:             "p1",
		Industry:       "Fintech",
		Title:          "VP of Engineering",
		Country:        "Germany",
		EmployeeCount:  250,
		LifecycleStage: "lead",
	}

	tests := []struct {
		name    string
		filters domain.EligibilityFilters
		want    bool
	}{
		{name: "no filters", want: true},
		{
			name:    "min size passes",
			filters: domain.EligibilityFilters{MinEmployeeSize: 100},
			want:    true,
		},
		{
			name:    "min size fails",
			filters: domain.EligibilityFilters{MinEmployeeSize: 500},
			want:    false,
		},
		{
			name:    "industry case-insensitive",
			filters: domain.EligibilityFilters{Industries: []string{"fintech"}},
			want:    true,
		},
		{
			name:    "industry mismatch",
			filters: domain.EligibilityFilters{Industries: []string{"Healthcare"}},
			want:    false,
		},
		{
			name:    "title keyword substring",
			filters: domain.EligibilityFilters{TitleKeywords: []string{"engineering"}},
			want:    true,
		},
		{
			name:    "title keyword miss",
			filters: domain.EligibilityFilters{TitleKeywords: []string{"marketing"}},
			want:    false,
		},
		{
			name: "all filters pass",
			filters: domain.EligibilityFilters{
				MinEmployeeSize: 100,
				Industries:      []string{"Fintech"},
				Countries:       []string{"germany"},
				TitleKeywords:   []string{"vp"},
				LifecycleStages: []string{"lead"},
			},
			want: true,
		},
		{
			name: "one filter fails among passes",
			filters: domain.EligibilityFilters{
				MinEmployeeSize: 100,
				Countries:       []string{"France"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(prospect, tt.filters))
		})
	}
}

func TestEligible_UnknownSizeExcludedWhenFilterSet(t *testing.T) {
	p := domain.Prospect{ID: "p1", EmployeeCount: 0}

	assert.False(t, Eligible(p, domain.EligibilityFilters{MinEmployeeSize: 50}))
	assert.True(t, Eligible(p, domain.EligibilityFilters{}))
}

func TestRank_Ordering(t *testing.T) {
	settings := domain.DefaultSettings()
	older := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	prospects := []ProspectSignals{
		// Score 4 (2 opens), older signal.
		{Prospect: domain.Prospect{ID: "b"}, Signals: domain.EngagementSignal{Opens: 2, LastSignalAt: older}},
		// Score 10 (2 clicks).
		{Prospect: domain.Prospect{ID: "c"}, Signals: domain.EngagementSignal{Clicks: 2, LastSignalAt: older}},
		// Score 4, newer signal - beats "b" on recency.
		{Prospect: domain.Prospect{ID: "a"}, Signals: domain.EngagementSignal{Opens: 2, LastSignalAt: newer}},
		// Score 4, same recency as "b" - loses to "b" on ID.
		{Prospect: domain.Prospect{ID: "d"}, Signals: domain.EngagementSignal{PageViews: 4, LastSignalAt: older}},
	}

	ranked := Rank(prospects, settings)

	require.Len(t, ranked, 4)
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Prospect.ID
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids)
}

func TestRank_FiltersBeforeScoring(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Filters.MinEmployeeSize = 100

	prospects := []ProspectSignals{
		// High score but too small: must not appear at all.
		{Prospect: domain.Prospect{ID: "small", EmployeeCount: 10}, Signals: domain.EngagementSignal{Meetings: 5}},
		{Prospect: domain.Prospect{ID: "big", EmployeeCount: 500}, Signals: domain.EngagementSignal{Opens: 1}},
	}

	ranked := Rank(prospects, settings)

	require.Len(t, ranked, 1)
	assert.Equal(t, "big", ranked[0].Prospect.ID)
}

func TestRank_Deterministic(t *testing.T) {
	settings := domain.DefaultSettings()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	prospects := []ProspectSignals{
		{Prospect: domain.Prospect{ID: "z"}, Signals: domain.EngagementSignal{Opens: 1, LastSignalAt: at}},
		{Prospect: domain.Prospect{ID: "y"}, Signals: domain.EngagementSignal{Opens: 1, LastSignalAt: at}},
		{Prospect: domain.Prospect{ID: "x"}, Signals: domain.EngagementSignal{Opens: 1, LastSignalAt: at}},
	}

	first := Rank(prospects, settings)
	second := Rank(prospects, settings)

	assert.Equal(t, first, second)
	assert.Equal(t, "x", first[0].Prospect.ID)
}

func TestTopN(t *testing.T) {
	ranked := []ScoredProspect{
		{Prospect: domain.Prospect{ID: "a"}},
		{Prospect: domain.Prospect{ID: "b"}},
		{Prospect: domain.Prospect{ID: "c"}},
	}

	assert.Len(t, TopN(ranked, 2), 2)
	assert.Len(t, TopN(ranked, 3), 3)
	assert.Len(t, TopN(ranked, 10), 3)
}
