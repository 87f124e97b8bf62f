package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"
)

// SnippetSource tags where a context snippet came from.
type SnippetSource string

// Snippet sources, in priority order: first-party, conversation-grounded
// signals outrank generic marketing context when trimming to budget.
const (
	SourceCRMNotes      SnippetSource = "crm_notes"
	SourceTranscript    SnippetSource = "transcript"
	SourceChat          SnippetSource = "chat"
	SourceKnowledgeBase SnippetSource = "knowledge_base"
	SourceWebSearch     SnippetSource = "web_search"
)

// Priority returns the trimming priority for the source; lower wins.
func (s SnippetSource) Priority() int {
	switch s {
	case SourceCRMNotes:
		return 0
	case SourceTranscript:
		return 1
	case SourceChat:
		return 2
	case SourceKnowledgeBase:
		return 3
	case SourceWebSearch:
		return 4
	default:
		return 5
	}
}

// SnippetRecord is a context fragment from one of the snippet sources.
type SnippetRecord struct {
	// Text is the snippet content.
	Text string

	// Source is the primary source tag.
	Source SnippetSource

	// Sources lists all contributing sources after deduplication.
	// Empty before aggregation.
	Sources []SnippetSource

	// Score is the relevance hint, 0 when the source provides none.
	Score float64

	// Fingerprint is the normalised-text hash used as the dedup key.
	// Computed lazily by the aggregator when empty.
	Fingerprint string

	// CapturedAt is when the underlying signal was produced, zero if
	// the source carries no timestamp.
	CapturedAt time.Time
}

// NormalizeText lowercases and collapses whitespace so that trivially
// reformatted copies of the same content compare equal.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// ComparableText further strips punctuation from the normalised form.
// Containment checks use it so a sentence's terminal period does not
// hide it inside a longer passage; fingerprints stay on NormalizeText.
func ComparableText(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, strings.ToLower(text))
	return strings.Join(strings.Fields(stripped), " ")
}

// NormalizedFingerprint returns the hex SHA-256 of the normalised text.
func NormalizedFingerprint(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// ContextPackage is the aggregated, budgeted bundle handed to the
// generation service. Immutable once built; one per prospect per run.
type ContextPackage struct {
	// ProspectID identifies the prospect this package was built for.
	ProspectID string

	// State is the classified sequence state.
	State SequenceState

	// EmailType is the classified email type.
	EmailType EmailType

	// DayInSequence is the prospect's drip day at build time.
	DayInSequence int

	// Snippets is the budgeted, priority-ordered context.
	Snippets []SnippetRecord

	// Budget is the character budget the snippets were trimmed to.
	Budget int

	// BuiltAt is when the package was assembled.
	BuiltAt time.Time
}

// TotalChars returns the summed length of all snippet texts.
func (p *ContextPackage) TotalChars() int {
	total := 0
	for _, s := range p.Snippets {
		total += len(s.Text)
	}
	return total
}
