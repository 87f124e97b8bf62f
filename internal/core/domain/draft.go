package domain

import "time"

// DraftStatus is the review state of a generated draft.
type DraftStatus string

// Draft statuses.
const (
	// DraftStatusPending means the draft awaits human review.
	DraftStatusPending DraftStatus = "pending_review"

	// DraftStatusFlagged means the draft violated the generation
	// contract (e.g., length band) and needs closer review.
	DraftStatusFlagged DraftStatus = "flagged"
)

// GeneratedEmail is the generation service's output.
type GeneratedEmail struct {
	// Subject is the email subject line.
	Subject string

	// Body is the email body.
	Body string

	// TalkingPoints are follow-up hints for the human reviewer.
	TalkingPoints []string

	// Flags carries generation-side caveats (e.g., unparseable
	// structured output returned as raw text).
	Flags []string
}

// WordCount returns the number of whitespace-separated words in the body.
func (e *GeneratedEmail) WordCount() int {
	count := 0
	inWord := false
	for _, r := range e.Body {
		switch r {
		case ' ', '\t', '\n', '\r':
			inWord = false
		default:
			if !inWord {
				count++
			}
			inWord = true
		}
	}
	return count
}

// Draft is a generated email recorded for human approval.
type Draft struct {
	// ID is the unique draft identifier.
	ID string

	// ProspectID identifies the prospect the draft targets.
	ProspectID string

	// Subject is the email subject line.
	Subject string

	// Body is the email body.
	Body string

	// EmailType is the classification the draft was generated under.
	EmailType EmailType

	// DayInSequence is the drip day recorded with the draft.
	DayInSequence int

	// NextTouchDays is the scheduled wait until the following touch,
	// 0 once the sequence has reached its breakup point.
	NextTouchDays int

	// TalkingPoints are reviewer hints from the generation service.
	TalkingPoints []string

	// Flags carries contract warnings surfaced to the reviewer.
	Flags []string

	// Status is the review state.
	Status DraftStatus

	// CreatedAt is when the draft was generated.
	CreatedAt time.Time
}
