package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/storage/memory"
	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// --- Mock implementations for orchestrator testing ---

// orchMockCRM implements driven.CRMClient.
type orchMockCRM struct {
	prospects    []domain.Prospect
	signals      map[string]domain.EngagementSignal
	notes        map[string][]domain.SnippetRecord
	listErr      error
	recordErr    error
	recorded     []domain.Draft
	signalsCalls int32
}

func (m *orchMockCRM) ListProspects(_ context.Context) ([]domain.Prospect, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.prospects, nil
}

func (m *orchMockCRM) EngagementSignals(_ context.Context, prospectID string) (domain.EngagementSignal, error) {
	atomic.AddInt32(&m.signalsCalls, 1)
	return m.signals[prospectID], nil
}

func (m *orchMockCRM) Notes(_ context.Context, prospectID string, _ time.Time) ([]domain.SnippetRecord, error) {
	return m.notes[prospectID], nil
}

func (m *orchMockCRM) RecordDraft(_ context.Context, draft domain.Draft) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, draft)
	return nil
}

func (m *orchMockCRM) Close() error { return nil }

// orchMockGeneration implements driven.GenerationService.
type orchMockGeneration struct {
	email *domain.GeneratedEmail
	err   error
	calls int32
}

func (m *orchMockGeneration) GenerateEmail(_ context.Context, _ domain.Prospect, _ *domain.ContextPackage) (*domain.GeneratedEmail, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.email, m.err
}

func (m *orchMockGeneration) ModelName() string { return "mock-gen" }
func (m *orchMockGeneration) Close() error      { return nil }

// orchMockProvider implements driven.SnippetProvider.
type orchMockProvider struct {
	source   domain.SnippetSource
	snippets []domain.SnippetRecord
	err      error
	calls    int32
}

func (m *orchMockProvider) Source() domain.SnippetSource { return m.source }

func (m *orchMockProvider) Search(_ context.Context, _ driven.SnippetScope) ([]domain.SnippetRecord, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	return m.snippets, nil
}

func (m *orchMockProvider) Close() error { return nil }

func wordsOf(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func staleProspect(id string) domain.Prospect {
	send := time.Now().Add(-30 * 24 * time.Hour)
	return domain.Prospect{
		ID:            id,
		Name:          "Prospect " + id,
		Company:       "Company " + id,
		LastContact:   &send,
		LastSend:      &send,
		DayInSequence: 7,
	}
}

func newTestOrchestrator(crm *orchMockCRM, gen driven.GenerationService, providers []driven.SnippetProvider) (*Orchestrator, *memory.DraftStore) {
	settings := domain.DefaultSettings()
	settings.WorkerCount = 2
	drafts := memory.NewDraftStore()
	o := NewOrchestrator(crm, nil, gen, drafts, providers, settings, nil)
	o.retryDelay = time.Millisecond
	return o, drafts
}

func validEmail() *domain.GeneratedEmail {
	return &domain.GeneratedEmail{
		Subject: "Quick question",
		Body:    wordsOf(70),
	}
}

func TestOrchestrator_Run_CreatesDrafts(t *testing.T) {
	crm := &orchMockCRM{
		prospects: []domain.Prospect{staleProspect("p1"), staleProspect("p2")},
		signals: map[string]domain.EngagementSignal{
			"p1": {Opens: 3},
			"p2": {Clicks: 1},
		},
		notes: map[string][]domain.SnippetRecord{
			"p1": {{Text: "asked about pricing", Source: domain.SourceCRMNotes}},
		},
	}
	gen := &orchMockGeneration{email: validEmail()}
	o, drafts := newTestOrchestrator(crm, gen, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.ProspectsConsidered)
	assert.Equal(t, 2, report.ProspectsEligible)
	assert.Equal(t, 2, report.ProspectsActed)
	assert.Equal(t, 2, report.DraftsCreated)
	assert.Equal(t, int32(2), gen.calls)

	stored, err := drafts.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Len(t, crm.recorded, 2)

	for _, outcome := range report.Outcomes {
		assert.Equal(t, domain.StateAwaitingReply, outcome.State)
		assert.Equal(t, domain.EmailTypeShortFollowUp, outcome.EmailType)
		// Day 7 sits in the 7-13 band of the default drip schedule.
		assert.Equal(t, 7, outcome.NextTouchDays)
		assert.NotEmpty(t, outcome.DraftID)
		assert.Empty(t, outcome.Err)
	}
	for _, d := range stored {
		assert.Equal(t, 7, d.NextTouchDays)
	}
}

func TestOrchestrator_Run_SkipsNotStale(t *testing.T) {
	recent := time.Now().Add(-time.Hour)
	p := staleProspect("p1")
	p.LastContact = &recent

	crm := &orchMockCRM{prospects: []domain.Prospect{p}}
	gen := &orchMockGeneration{email: validEmail()}
	o, _ := newTestOrchestrator(crm, gen, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "not stale", report.Outcomes[0].Skipped)
	assert.Zero(t, report.DraftsCreated)
	assert.Zero(t, gen.calls)
}

func TestOrchestrator_Run_FreshReplyOverridesStaleness(t *testing.T) {
	// Contacted an hour ago, but the prospect replied after our send:
	// a live conversation beats the staleness gate.
	send := time.Now().Add(-2 * time.Hour)
	reply := time.Now().Add(-time.Hour)
	p := staleProspect("p1")
	p.LastContact = &send
	p.LastSend = &send
	p.LastReply = &reply

	crm := &orchMockCRM{prospects: []domain.Prospect{p}}
	gen := &orchMockGeneration{email: &domain.GeneratedEmail{Subject: "Re:", Body: wordsOf(150)}}
	o, _ := newTestOrchestrator(crm, gen, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, domain.StateActive, report.Outcomes[0].State)
	assert.NotEmpty(t, report.Outcomes[0].DraftID)
}

func TestOrchestrator_Run_SkipsDormant(t *testing.T) {
	p := staleProspect("p1")
	p.DayInSequence = 40

	crm := &orchMockCRM{prospects: []domain.Prospect{p}}
	gen := &orchMockGeneration{email: validEmail()}
	o, _ := newTestOrchestrator(crm, gen, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "dormant", report.Outcomes[0].Skipped)
	assert.Equal(t, domain.StateDormant, report.Outcomes[0].State)
	assert.Zero(t, gen.calls)
}

func TestOrchestrator_Run_GenerationUnavailable(t *testing.T) {
	crm := &orchMockCRM{prospects: []domain.Prospect{staleProspect("p1")}}
	o, _ := newTestOrchestrator(crm, nil, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "generation unavailable", report.Outcomes[0].Skipped)
	assert.Zero(t, report.DraftsCreated)
}

func TestOrchestrator_Run_FailingProviderOmittedWithWarning(t *testing.T) {
	crm := &orchMockCRM{prospects: []domain.Prospect{staleProspect("p1")}}
	gen := &orchMockGeneration{email: validEmail()}
	provider := &orchMockProvider{source: domain.SourceChat, err: errors.New("slack down")}
	o, _ := newTestOrchestrator(crm, gen, []driven.SnippetProvider{provider})

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	// The run still produces a draft from the surviving sources.
	assert.NotEmpty(t, outcome.DraftID)
	require.NotEmpty(t, outcome.Warnings)
	assert.Contains(t, outcome.Warnings[0], "chat omitted")
}

func TestOrchestrator_Run_TransientProviderRetried(t *testing.T) {
	crm := &orchMockCRM{prospects: []domain.Prospect{staleProspect("p1")}}
	gen := &orchMockGeneration{email: validEmail()}
	provider := &orchMockProvider{
		source: domain.SourceChat,
		err:    fmt.Errorf("%w: rate limited", domain.ErrTransient),
	}
	o, _ := newTestOrchestrator(crm, gen, []driven.SnippetProvider{provider})

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	// Retried up to the attempt budget, then omitted.
	assert.Equal(t, int32(domain.DefaultSettings().MaxAttempts), provider.calls)
	assert.NotEmpty(t, report.Outcomes[0].Warnings)
}

func TestOrchestrator_Run_LengthBandViolationFlagged(t *testing.T) {
	crm := &orchMockCRM{prospects: []domain.Prospect{staleProspect("p1")}}
	// Short follow-up expects 60-80 words; this is way over.
	gen := &orchMockGeneration{email: &domain.GeneratedEmail{Subject: "s", Body: wordsOf(300)}}
	o, drafts := newTestOrchestrator(crm, gen, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	require.NotEmpty(t, outcome.DraftID)

	draft, err := drafts.Get(context.Background(), outcome.DraftID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStatusFlagged, draft.Status)
	require.NotEmpty(t, draft.Flags)
	assert.Contains(t, draft.Flags[0], "expected 60-80")
	// The body itself is untouched.
	assert.Equal(t, 300, (&domain.GeneratedEmail{Body: draft.Body}).WordCount())
}

func TestOrchestrator_Run_GenerationNotRetried(t *testing.T) {
	crm := &orchMockCRM{prospects: []domain.Prospect{staleProspect("p1")}}
	gen := &orchMockGeneration{err: fmt.Errorf("%w: upstream timeout", domain.ErrTransient)}
	o, _ := newTestOrchestrator(crm, gen, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	// At most one generation call per prospect per run, even on
	// transient failure.
	assert.Equal(t, int32(1), gen.calls)
	require.Len(t, report.Outcomes, 1)
	assert.NotEmpty(t, report.Outcomes[0].Err)
	assert.Zero(t, report.DraftsCreated)
}

func TestOrchestrator_Run_TopNBound(t *testing.T) {
	// Opens are capped at 20 points, so p10 through p14 all hit the
	// cap; distinct signal recency breaks that tie in favour of p14.
	base := time.Now().Add(-15 * 24 * time.Hour)
	var prospects []domain.Prospect
	signals := make(map[string]domain.EngagementSignal)
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("p%02d", i)
		prospects = append(prospects, staleProspect(id))
		signals[id] = domain.EngagementSignal{
			Opens:        i,
			LastSignalAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
	}

	crm := &orchMockCRM{prospects: prospects, signals: signals}
	gen := &orchMockGeneration{email: validEmail()}
	o, _ := newTestOrchestrator(crm, gen, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 15, report.ProspectsConsidered)
	assert.Equal(t, 10, report.ProspectsActed)
	assert.Len(t, report.Outcomes, 10)
	// Highest-scoring prospect leads the report.
	assert.Equal(t, "p14", report.Outcomes[0].ProspectID)
}

func TestOrchestrator_Run_SweepsStaleDrafts(t *testing.T) {
	crm := &orchMockCRM{}
	o, drafts := newTestOrchestrator(crm, nil, nil)

	old := domain.Draft{ID: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, drafts.Save(context.Background(), old))

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.DraftsSwept)
	_, err = drafts.Get(context.Background(), "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrchestrator_Run_ListFailureAborts(t *testing.T) {
	crm := &orchMockCRM{listErr: errors.New("crm down")}
	o, _ := newTestOrchestrator(crm, nil, nil)

	_, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list prospects")
}

func TestOrchestrator_Run_CRMRecordFailureIsWarning(t *testing.T) {
	crm := &orchMockCRM{
		prospects: []domain.Prospect{staleProspect("p1")},
		recordErr: errors.New("crm write rejected"),
	}
	gen := &orchMockGeneration{email: validEmail()}
	o, drafts := newTestOrchestrator(crm, gen, nil)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	// Draft is reviewable locally even when the CRM mirror fails.
	assert.NotEmpty(t, outcome.DraftID)
	require.NotEmpty(t, outcome.Warnings)
	assert.Contains(t, outcome.Warnings[0], "crm draft record omitted")

	stored, err := drafts.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestOrchestrator_Rank(t *testing.T) {
	never := staleProspect("cold")
	never.LastContact = nil
	never.LastSend = nil
	never.DayInSequence = 0

	crm := &orchMockCRM{
		prospects: []domain.Prospect{staleProspect("warm"), never},
		signals: map[string]domain.EngagementSignal{
			"warm": {Meetings: 1},
		},
	}
	o, _ := newTestOrchestrator(crm, nil, nil)

	ranked, err := o.Rank(context.Background())
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "warm", ranked[0].Prospect.ID)
	assert.True(t, ranked[0].Stale)
	assert.Equal(t, domain.StateAwaitingReply, ranked[0].Classification.State)
	assert.Equal(t, domain.StateCold, ranked[1].Classification.State)
	assert.True(t, ranked[1].Stale)
}
