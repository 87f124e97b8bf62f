package services

import (
	"sort"
	"strings"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// ProspectSignals pairs a prospect with its engagement signals for
// scoring and ranking.
type ProspectSignals struct {
	Prospect domain.Prospect
	Signals  domain.EngagementSignal
}

// ScoredProspect is a ranked scoring result.
type ScoredProspect struct {
	Prospect domain.Prospect
	Signals  domain.EngagementSignal
	Score    int
}

// Score computes the engagement score for one prospect. Each signal
// kind contributes count*points capped at the kind's maximum, plus a
// flat bonus when the prospect has ever replied. Capping keeps one
// noisy signal (a bot opening every email) from dominating the rank.
func Score(p ProspectSignals, weights map[domain.SignalKind]domain.SignalWeight, replyBonus int) int {
	total := 0
	for kind, w := range weights {
		points := p.Signals.Count(kind) * w.Points
		if w.Max > 0 && points > w.Max {
			points = w.Max
		}
		total += points
	}
	if p.Prospect.LastReply != nil {
		total += replyBonus
	}
	return total
}

// Eligible applies the hard filters to a prospect. Filters are
// conjunctive: failing any configured filter excludes the prospect
// before scoring, so rank position never compensates for a filter miss.
// Unset filters (empty slices, zero minimum) pass everything.
func Eligible(p domain.Prospect, f domain.EligibilityFilters) bool {
	if f.MinEmployeeSize > 0 && p.EmployeeCount < f.MinEmployeeSize {
		return false
	}
	if len(f.Industries) > 0 && !containsFold(f.Industries, p.Industry) {
		return false
	}
	if len(f.Countries) > 0 && !containsFold(f.Countries, p.Country) {
		return false
	}
	if len(f.TitleKeywords) > 0 && !titleMatches(p.Title, f.TitleKeywords) {
		return false
	}
	if len(f.LifecycleStages) > 0 && !containsFold(f.LifecycleStages, p.LifecycleStage) {
		return false
	}
	return true
}

// Rank filters, scores and orders prospects: score descending, then
// most recent signal first, then prospect ID ascending. The full
// ordering is deterministic so repeated runs over the same CRM state
// produce the same list.
func Rank(prospects []ProspectSignals, settings domain.Settings) []ScoredProspect {
	ranked := make([]ScoredProspect, 0, len(prospects))
	for _, p := range prospects {
		if !Eligible(p.Prospect, settings.Filters) {
			continue
		}
		ranked = append(ranked, ScoredProspect{
			Prospect: p.Prospect,
			Signals:  p.Signals,
			Score:    Score(p, settings.Weights, settings.ReplyBonus),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].Signals.LastSignalAt.Equal(ranked[j].Signals.LastSignalAt) {
			return ranked[i].Signals.LastSignalAt.After(ranked[j].Signals.LastSignalAt)
		}
		return ranked[i].Prospect.ID < ranked[j].Prospect.ID
	})

	return ranked
}

// TopN returns the first n ranked prospects, or all of them when fewer
// exist.
func TopN(ranked []ScoredProspect, n int) []ScoredProspect {
	if len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func titleMatches(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
