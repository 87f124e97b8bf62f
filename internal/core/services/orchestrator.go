package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driving"
	"github.com/cadence-hq/cadence-cli/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.OutreachService = (*Orchestrator)(nil)

// draftTTL is how long unreviewed drafts survive before being swept at
// the start of the next run.
const draftTTL = 24 * time.Hour

// retryBaseDelay is the first backoff delay for transient failures.
const retryBaseDelay = 500 * time.Millisecond

// Orchestrator runs the outreach decision pipeline: pull prospects from
// the CRM, filter and rank by engagement, classify each prospect's
// sequence state, assemble a context package, and draft an email for
// human review.
//
// The orchestrator never sends email and never advances a prospect's
// day in sequence; both stay with the CRM and the human reviewer.
type Orchestrator struct {
	crm        driven.CRMClient
	retriever  driving.RetrieverService
	generation driven.GenerationService
	draftStore driven.DraftStore
	providers  []driven.SnippetProvider
	settings   domain.Settings
	limiter    *rate.Limiter

	now        func() time.Time
	retryDelay time.Duration
}

// NewOrchestrator creates a new orchestrator. The retriever, generation
// service and snippet providers are optional and degrade gracefully:
// missing sources contribute no context, and a missing generation
// service turns the run into a rank-and-report pass.
func NewOrchestrator(
	crm driven.CRMClient,
	retriever driving.RetrieverService,
	generation driven.GenerationService,
	draftStore driven.DraftStore,
	providers []driven.SnippetProvider,
	settings domain.Settings,
	limiter *rate.Limiter,
) *Orchestrator {
	return &Orchestrator{
		crm:        crm,
		retriever:  retriever,
		generation: generation,
		draftStore: draftStore,
		providers:  providers,
		settings:   settings,
		limiter:    limiter,
		now:        time.Now,
		retryDelay: retryBaseDelay,
	}
}

// Run executes one decision pass over the CRM prospect list.
//
//nolint:gocognit // Orchestration function with necessary sequential steps
func (o *Orchestrator) Run(ctx context.Context) (*driving.RunReport, error) {
	start := o.now()
	report := &driving.RunReport{StartedAt: start}

	swept, err := o.draftStore.DeleteOlderThan(ctx, start.Add(-draftTTL))
	if err != nil {
		return nil, fmt.Errorf("sweep stale drafts: %w", err)
	}
	report.DraftsSwept = swept

	ranked, considered, err := o.rankProspects(ctx)
	if err != nil {
		return nil, err
	}
	report.ProspectsConsidered = considered
	report.ProspectsEligible = len(ranked)

	top := TopN(ranked, o.settings.TopN)
	report.ProspectsActed = len(top)
	report.Outcomes = make([]driving.ProspectOutcome, len(top))

	logger.Info("Run %s: %d considered, %d eligible, acting on %d",
		start.Format(time.RFC3339), considered, len(ranked), len(top))

	// Bounded worker pool; outcomes land at their rank position so the
	// report order is deterministic regardless of completion order.
	sem := make(chan struct{}, o.settings.WorkerCount)
	var wg sync.WaitGroup
	for i, sp := range top {
		wg.Add(1)
		go func(i int, sp ScoredProspect) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				report.Outcomes[i] = driving.ProspectOutcome{
					ProspectID: sp.Prospect.ID,
					Name:       sp.Prospect.Name,
					Company:    sp.Prospect.Company,
					Score:      sp.Score,
					Err:        ctx.Err().Error(),
				}
				return
			}
			report.Outcomes[i] = o.processProspect(ctx, sp)
		}(i, sp)
	}
	wg.Wait()

	for _, outcome := range report.Outcomes {
		if outcome.DraftID != "" {
			report.DraftsCreated++
		}
	}

	report.Duration = o.now().Sub(start)
	logger.Info("Run complete: %d drafts created in %s", report.DraftsCreated, report.Duration)
	return report, nil
}

// Rank returns the filtered, scored prospect list with classification,
// without generating anything.
func (o *Orchestrator) Rank(ctx context.Context) ([]driving.RankedProspect, error) {
	ranked, _, err := o.rankProspects(ctx)
	if err != nil {
		return nil, err
	}

	now := o.now()
	result := make([]driving.RankedProspect, len(ranked))
	for i, sp := range ranked {
		result[i] = driving.RankedProspect{
			Prospect: sp.Prospect,
			Score:    sp.Score,
			Stale:    IsStale(sp.Prospect.LastContact, o.settings.StalenessThreshold, now),
			Classification: domain.ClassifySequence(domain.SequenceInput{
				DayInSequence: sp.Prospect.DayInSequence,
				LastSend:      sp.Prospect.LastSend,
				LastReply:     sp.Prospect.LastReply,
			}, o.settings.MaxSequenceDay),
		}
	}
	return result, nil
}

// rankProspects pulls the prospect list and engagement signals from the
// CRM and returns the filtered ranking plus the pre-filter count.
func (o *Orchestrator) rankProspects(ctx context.Context) ([]ScoredProspect, int, error) {
	var prospects []domain.Prospect
	err := o.withRetry(ctx, func(ctx context.Context) error {
		var err error
		prospects, err = o.crm.ListProspects(ctx)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list prospects: %w", err)
	}

	withSignals := make([]ProspectSignals, 0, len(prospects))
	for _, p := range prospects {
		var signals domain.EngagementSignal
		err := o.withRetry(ctx, func(ctx context.Context) error {
			var err error
			signals, err = o.crm.EngagementSignals(ctx, p.ID)
			return err
		})
		if err != nil {
			// Rank on zero signals rather than dropping the prospect.
			logger.Debug("Engagement signals for %s unavailable: %v", p.ID, err)
			signals = domain.EngagementSignal{}
		}
		withSignals = append(withSignals, ProspectSignals{Prospect: p, Signals: signals})
	}

	return Rank(withSignals, o.settings), len(prospects), nil
}

// processProspect runs the per-prospect pipeline: classify, gate,
// gather context, generate, store. Failures are captured in the
// outcome and never abort the run.
func (o *Orchestrator) processProspect(ctx context.Context, sp ScoredProspect) driving.ProspectOutcome {
	p := sp.Prospect
	outcome := driving.ProspectOutcome{
		ProspectID: p.ID,
		Name:       p.Name,
		Company:    p.Company,
		Score:      sp.Score,
	}

	classification := domain.ClassifySequence(domain.SequenceInput{
		DayInSequence: p.DayInSequence,
		LastSend:      p.LastSend,
		LastReply:     p.LastReply,
	}, o.settings.MaxSequenceDay)
	outcome.State = classification.State
	outcome.EmailType = classification.EmailType
	outcome.NextTouchDays = domain.NextTouchInterval(p.DayInSequence, o.settings.DaySteps)

	if classification.State == domain.StateDormant {
		outcome.Skipped = "dormant"
		return outcome
	}

	// A fresh reply always warrants action; otherwise only stale
	// prospects get a touch.
	if classification.State != domain.StateActive &&
		!IsStale(p.LastContact, o.settings.StalenessThreshold, o.now()) {
		outcome.Skipped = "not stale"
		return outcome
	}

	pkg := o.buildContext(ctx, p, classification, &outcome)

	if o.generation == nil {
		outcome.Skipped = "generation unavailable"
		return outcome
	}

	draft, err := o.generateDraft(ctx, p, classification, pkg, &outcome)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}

	if err := o.storeDraft(ctx, draft, &outcome); err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	outcome.DraftID = draft.ID
	return outcome
}

// buildContext gathers snippets from every configured source and the
// knowledge base. A failing source is retried, then omitted with a
// warning; the package is built from whatever survived.
func (o *Orchestrator) buildContext(
	ctx context.Context,
	p domain.Prospect,
	classification domain.Classification,
	outcome *driving.ProspectOutcome,
) *domain.ContextPackage {
	now := o.now()
	var snippets []domain.SnippetRecord

	err := o.withRetry(ctx, func(ctx context.Context) error {
		notes, err := o.crm.Notes(ctx, p.ID, now.Add(-90*24*time.Hour))
		if err != nil {
			return err
		}
		snippets = append(snippets, notes...)
		return nil
	})
	if err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("crm notes omitted: %v", err))
	}

	scope := driven.SnippetScope{
		ProspectName: p.Name,
		Company:      p.Company,
		Email:        p.Email,
		Channels:     o.settings.ChatChannels,
	}
	for _, provider := range o.providers {
		var found []domain.SnippetRecord
		err := o.withRetry(ctx, func(ctx context.Context) error {
			var err error
			found, err = provider.Search(ctx, scope)
			return err
		})
		if err != nil {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("%s omitted: %v", provider.Source(), err))
			continue
		}
		snippets = append(snippets, found...)
	}

	chunks := o.retrieveChunks(ctx, p, outcome)

	return BuildContextPackage(p, classification, chunks, snippets, o.settings.ContextBudget, now)
}

// retrieveChunks queries the knowledge base for prospect-relevant
// chunks. Retrieval is best effort: without an index the email still
// goes out on CRM context alone.
func (o *Orchestrator) retrieveChunks(
	ctx context.Context,
	p domain.Prospect,
	outcome *driving.ProspectOutcome,
) []domain.RetrievedChunk {
	if o.retriever == nil {
		return nil
	}
	query := domain.RetrievalQuery{
		FreeText: p.Notes,
		Industry: p.Industry,
		Persona:  p.Title,
	}
	if query.IsEmpty() {
		return nil
	}

	var chunks []domain.RetrievedChunk
	err := o.withRetry(ctx, func(ctx context.Context) error {
		var err error
		chunks, err = o.retriever.Retrieve(ctx, query, o.settings.RetrievalTopK)
		return err
	})
	if err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("knowledge base omitted: %v", err))
		return nil
	}
	return chunks
}

// generateDraft calls the generation service exactly once per prospect
// per run. Generation is never retried: a timed-out call may have
// produced text, and a second call risks two different drafts for the
// same touch. Contract violations surface as flagged drafts.
func (o *Orchestrator) generateDraft(
	ctx context.Context,
	p domain.Prospect,
	classification domain.Classification,
	pkg *domain.ContextPackage,
	outcome *driving.ProspectOutcome,
) (*domain.Draft, error) {
	if err := o.waitLimiter(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, o.settings.ExternalCallTimeout)
	defer cancel()

	email, err := o.generation.GenerateEmail(callCtx, p, pkg)
	if err != nil && !errors.Is(err, domain.ErrContractViolation) {
		return nil, fmt.Errorf("generate email: %w", err)
	}
	if email == nil {
		return nil, fmt.Errorf("generate email: %w", domain.ErrContractViolation)
	}

	status := domain.DraftStatusPending
	flags := append([]string(nil), email.Flags...)
	if err != nil {
		flags = append(flags, err.Error())
	}

	if minWords, maxWords := classification.EmailType.LengthBand(); maxWords > 0 {
		words := email.WordCount()
		if words < minWords || words > maxWords {
			flags = append(flags, fmt.Sprintf("body is %d words, expected %d-%d", words, minWords, maxWords))
		}
	}
	if len(flags) > 0 {
		status = domain.DraftStatusFlagged
		outcome.Warnings = append(outcome.Warnings, flags...)
	}

	return &domain.Draft{
		ID:            uuid.NewString(),
		ProspectID:    p.ID,
		Subject:       email.Subject,
		Body:          email.Body,
		EmailType:     classification.EmailType,
		DayInSequence: p.DayInSequence,
		NextTouchDays: domain.NextTouchInterval(p.DayInSequence, o.settings.DaySteps),
		TalkingPoints: email.TalkingPoints,
		Flags:         flags,
		Status:        status,
		CreatedAt:     o.now(),
	}, nil
}

// storeDraft persists the draft locally and mirrors it onto the CRM
// record. A CRM mirror failure is a warning, not a run failure: the
// draft is already reviewable locally.
func (o *Orchestrator) storeDraft(ctx context.Context, draft *domain.Draft, outcome *driving.ProspectOutcome) error {
	if err := o.draftStore.Save(ctx, *draft); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}

	err := o.withRetry(ctx, func(ctx context.Context) error {
		return o.crm.RecordDraft(ctx, *draft)
	})
	if err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("crm draft record omitted: %v", err))
	}
	return nil
}

// withRetry runs fn under the rate limiter and per-call timeout,
// retrying transient failures with exponential backoff up to the
// configured attempt count.
func (o *Orchestrator) withRetry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < o.settings.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := o.retryDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err = o.waitLimiter(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, o.settings.ExternalCallTimeout)
		err = fn(callCtx)
		cancel()

		if err == nil || !domain.IsTransient(err) {
			return err
		}
		logger.Debug("Transient failure (attempt %d/%d): %v", attempt+1, o.settings.MaxAttempts, err)
	}
	return err
}

// waitLimiter blocks until the shared rate limiter admits a call.
func (o *Orchestrator) waitLimiter(ctx context.Context) error {
	if o.limiter == nil {
		return nil
	}
	return o.limiter.Wait(ctx)
}
