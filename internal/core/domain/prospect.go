package domain

import "time"

// Prospect is a lead or deal under consideration for outreach.
// It is a strict internal record: the CRM adapter converts the CRM's
// loosely-typed payloads into this shape at the boundary, and absence
// (never contacted, never replied) is a nil timestamp, not an error.
type Prospect struct {
	// ID is the CRM identifier.
	ID string

	// Name is the contact's display name.
	Name string

	// Email is the contact's email address.
	Email string

	// Company is the company name.
	Company string

	// Notes is the free-text description carried by the CRM record.
	Notes string

	// Industry is the company industry, empty if unknown.
	Industry string

	// Title is the contact's job title, empty if unknown.
	Title string

	// Country is the contact or company country, empty if unknown.
	Country string

	// EmployeeCount is the company size, 0 if unknown.
	EmployeeCount int

	// LifecycleStage is the CRM lifecycle stage (lowercased).
	LifecycleStage string

	// LastContact is the most recent outbound touch of any kind.
	// Nil means the prospect has never been contacted.
	LastContact *time.Time

	// LastSend is the most recent outbound email send.
	LastSend *time.Time

	// LastReply is the most recent inbound reply. Nil means no reply.
	LastReply *time.Time

	// DayInSequence is the prospect's position in the drip sequence.
	// Advanced by the CRM collaborator after a recorded send, never
	// by the decision engine itself.
	DayInSequence int

	// NextActionDate is the scheduled next touch, if any.
	NextActionDate *time.Time
}

// SignalKind identifies a behavioural engagement signal type.
type SignalKind string

// Recognised engagement signals.
const (
	SignalOpens           SignalKind = "opens"
	SignalClicks          SignalKind = "clicks"
	SignalPageViews       SignalKind = "page_views"
	SignalFormSubmissions SignalKind = "form_submissions"
	SignalMeetings        SignalKind = "meetings"
)

// EngagementSignal holds per-prospect behavioural counts.
// Read-only input from the CRM collaborator.
type EngagementSignal struct {
	// Opens is the email open count.
	Opens int

	// Clicks is the email click count.
	Clicks int

	// PageViews is the website page view count.
	PageViews int

	// FormSubmissions is the conversion event count.
	FormSubmissions int

	// Meetings is the count of associated meetings.
	Meetings int

	// LastSignalAt is the timestamp of the most recent signal,
	// used as the ranking tie-break.
	LastSignalAt time.Time
}

// Count returns the raw count for a signal kind.
func (s EngagementSignal) Count(kind SignalKind) int {
	switch kind {
	case SignalOpens:
		return s.Opens
	case SignalClicks:
		return s.Clicks
	case SignalPageViews:
		return s.PageViews
	case SignalFormSubmissions:
		return s.FormSubmissions
	case SignalMeetings:
		return s.Meetings
	default:
		return 0
	}
}
