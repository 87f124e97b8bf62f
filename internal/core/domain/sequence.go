package domain

import "time"

// SequenceState is the prospect's position in the outreach lifecycle.
type SequenceState string

// Sequence states.
const (
	// StateCold means no prior interaction: day 0, no send recorded.
	StateCold SequenceState = "cold"

	// StateAwaitingReply means an outbound email was sent and no
	// newer reply has arrived.
	StateAwaitingReply SequenceState = "awaiting_reply"

	// StateActive means the prospect replied after our last send.
	StateActive SequenceState = "active"

	// StateDormant means the breakup threshold was reached. Terminal
	// for automated action; requires manual re-engagement.
	StateDormant SequenceState = "dormant"
)

// EmailType classifies the kind of email the prospect requires.
type EmailType string

// Email types.
const (
	// EmailTypeActiveResponse is a full answer to a live reply.
	EmailTypeActiveResponse EmailType = "active_response"

	// EmailTypeShortFollowUp is a compact single-purpose check-in
	// carrying no new information.
	EmailTypeShortFollowUp EmailType = "short_follow_up"

	// EmailTypeColdDrip is a full structured cold outreach email.
	EmailTypeColdDrip EmailType = "cold_drip"

	// EmailTypeNone means no automated email should be generated.
	EmailTypeNone EmailType = "none"
)

// LengthBand returns the expected word-count band for a generated body.
// Zero bounds mean no email is expected for this type.
func (t EmailType) LengthBand() (minWords, maxWords int) {
	switch t {
	case EmailTypeActiveResponse, EmailTypeColdDrip:
		return 120, 200
	case EmailTypeShortFollowUp:
		return 60, 80
	default:
		return 0, 0
	}
}

// Classification is the sequence state machine's output.
type Classification struct {
	// State is the prospect's sequence state.
	State SequenceState

	// EmailType is the kind of email required, EmailTypeNone for
	// dormant prospects.
	EmailType EmailType
}

// SequenceInput is the CRM state the classifier operates on.
type SequenceInput struct {
	// DayInSequence is the prospect's current drip day (>= 0).
	DayInSequence int

	// LastSend is the most recent outbound send, nil if none.
	LastSend *time.Time

	// LastReply is the most recent inbound reply, nil if none.
	LastReply *time.Time
}

// ClassifySequence maps current CRM state to a sequence state and email
// type. It is a pure function: repeated runs on the same state yield the
// same classification, which is what makes orchestrator runs idempotent.
//
// A reply counts only when it is strictly newer than the last send;
// equal timestamps are treated as the same event observed twice, not as
// a new reply.
func ClassifySequence(in SequenceInput, maxDay int) Classification {
	if hasNewReply(in.LastSend, in.LastReply) {
		return Classification{State: StateActive, EmailType: EmailTypeActiveResponse}
	}

	if in.DayInSequence >= maxDay {
		return Classification{State: StateDormant, EmailType: EmailTypeNone}
	}

	if in.LastSend != nil {
		return Classification{State: StateAwaitingReply, EmailType: EmailTypeShortFollowUp}
	}

	return Classification{State: StateCold, EmailType: EmailTypeColdDrip}
}

// hasNewReply reports whether a reply exists strictly after the last
// send. A reply with no recorded send counts as new.
func hasNewReply(lastSend, lastReply *time.Time) bool {
	if lastReply == nil {
		return false
	}
	if lastSend == nil {
		return true
	}
	return lastReply.After(*lastSend)
}

// DayStep defines one row of the drip schedule: prospects whose
// day-in-sequence is below Before wait Interval days until the next touch.
type DayStep struct {
	// Before is the exclusive upper bound of this row.
	Before int

	// Interval is the days until the next touch.
	Interval int
}

// DefaultDaySteps is the drip schedule: intro, early follow-ups, a
// value-add at two weeks, check-in and bump touches, breakup at day 40.
func DefaultDaySteps() []DayStep {
	return []DayStep{
		{Before: 2, Interval: 2},
		{Before: 7, Interval: 5},
		{Before: 14, Interval: 7},
		{Before: 28, Interval: 14},
		{Before: 35, Interval: 7},
		{Before: 40, Interval: 5},
	}
}

// NextTouchInterval returns the days until the next scheduled touch for
// the given day-in-sequence, or 0 if the sequence is past its last step
// (breakup point reached).
func NextTouchInterval(day int, steps []DayStep) int {
	for _, step := range steps {
		if day < step.Before {
			return step.Interval
		}
	}
	return 0
}
