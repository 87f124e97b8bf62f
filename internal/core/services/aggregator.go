package services

import (
	"sort"
	"strings"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// AggregateSnippets deduplicates, orders and budgets context snippets
// from all sources into the final snippet list of a context package.
//
// Deduplication happens in two passes: exact duplicates are merged by
// normalised-text fingerprint, then any snippet whose normalised text
// is contained within a longer one is folded into it. A merged snippet
// keeps the text and source tag of its highest-priority contributor
// and records every contributing source.
//
// The surviving snippets are ordered by source priority, then score
// descending, then capture time descending, then text. The character
// budget is applied over whole snippets: one that does not fit is
// omitted entirely, and later smaller snippets are still considered.
func AggregateSnippets(snippets []domain.SnippetRecord, budget int) []domain.SnippetRecord {
	merged := mergeExactDuplicates(snippets)
	merged = mergeContained(merged)

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Source.Priority() != b.Source.Priority() {
			return a.Source.Priority() < b.Source.Priority()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CapturedAt.Equal(b.CapturedAt) {
			return a.CapturedAt.After(b.CapturedAt)
		}
		return a.Text < b.Text
	})

	remaining := budget
	result := make([]domain.SnippetRecord, 0, len(merged))
	for _, s := range merged {
		if len(s.Text) > remaining {
			continue
		}
		result = append(result, s)
		remaining -= len(s.Text)
	}
	return result
}

// BuildContextPackage assembles the immutable context bundle for one
// prospect from knowledge-base chunks and source snippets.
func BuildContextPackage(
	prospect domain.Prospect,
	classification domain.Classification,
	chunks []domain.RetrievedChunk,
	snippets []domain.SnippetRecord,
	budget int,
	now time.Time,
) *domain.ContextPackage {
	all := make([]domain.SnippetRecord, 0, len(snippets)+len(chunks))
	all = append(all, snippets...)
	for _, c := range chunks {
		all = append(all, domain.SnippetRecord{
			Text:   c.Chunk.Content,
			Source: domain.SourceKnowledgeBase,
			Score:  c.Score,
		})
	}

	return &domain.ContextPackage{
		ProspectID:    prospect.ID,
		State:         classification.State,
		EmailType:     classification.EmailType,
		DayInSequence: prospect.DayInSequence,
		Snippets:      AggregateSnippets(all, budget),
		Budget:        budget,
		BuiltAt:       now,
	}
}

// mergeExactDuplicates collapses snippets sharing a normalised-text
// fingerprint, keeping the highest-priority contributor's text.
func mergeExactDuplicates(snippets []domain.SnippetRecord) []domain.SnippetRecord {
	byFingerprint := make(map[string]int)
	merged := make([]domain.SnippetRecord, 0, len(snippets))

	for _, s := range snippets {
		if s.Fingerprint == "" {
			s.Fingerprint = domain.NormalizedFingerprint(s.Text)
		}
		if len(s.Sources) == 0 {
			s.Sources = []domain.SnippetSource{s.Source}
		}

		idx, seen := byFingerprint[s.Fingerprint]
		if !seen {
			byFingerprint[s.Fingerprint] = len(merged)
			merged = append(merged, s)
			continue
		}
		merged[idx] = mergeInto(merged[idx], s)
	}
	return merged
}

// mergeContained folds snippets whose normalised text occurs inside a
// longer snippet's normalised text into that longer snippet.
func mergeContained(snippets []domain.SnippetRecord) []domain.SnippetRecord {
	norms := make([]string, len(snippets))
	for i, s := range snippets {
		norms[i] = domain.ComparableText(s.Text)
	}

	absorbed := make([]bool, len(snippets))
	for i := range snippets {
		if absorbed[i] {
			continue
		}
		for j := range snippets {
			if i == j || absorbed[j] {
				continue
			}
			if len(norms[j]) < len(norms[i]) && strings.Contains(norms[i], norms[j]) {
				snippets[i] = mergeProvenance(snippets[i], snippets[j])
				absorbed[j] = true
			}
		}
	}

	result := snippets[:0]
	for i, s := range snippets {
		if !absorbed[i] {
			result = append(result, s)
		}
	}
	return result
}

// mergeInto merges an exact duplicate into base. When other comes from
// a higher-priority source the merged snippet takes other's source tag;
// the texts are interchangeable since they normalise equal.
func mergeInto(base, other domain.SnippetRecord) domain.SnippetRecord {
	if other.Source.Priority() < base.Source.Priority() {
		base.Text = other.Text
		base.Source = other.Source
	}
	return mergeProvenance(base, other)
}

// mergeProvenance merges other's sources, score and capture time into
// base without touching base's text. Used when a shorter snippet is
// absorbed by a longer one that contains it.
func mergeProvenance(base, other domain.SnippetRecord) domain.SnippetRecord {
	if other.Source.Priority() < base.Source.Priority() {
		base.Source = other.Source
	}
	for _, src := range other.Sources {
		if !containsSource(base.Sources, src) {
			base.Sources = append(base.Sources, src)
		}
	}
	if !containsSource(base.Sources, other.Source) {
		base.Sources = append(base.Sources, other.Source)
	}
	if other.Score > base.Score {
		base.Score = other.Score
	}
	if other.CapturedAt.After(base.CapturedAt) {
		base.CapturedAt = other.CapturedAt
	}
	return base
}

func containsSource(sources []domain.SnippetSource, s domain.SnippetSource) bool {
	for _, existing := range sources {
		if existing == s {
			return true
		}
	}
	return false
}
