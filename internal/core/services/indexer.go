package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driving"
	"github.com/cadence-hq/cadence-cli/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexerService = (*Indexer)(nil)

// Indexer builds and maintains the knowledge-base index. Index runs
// are serialized with a non-blocking lock: concurrent callers get
// domain.ErrIndexInProgress instead of queuing.
type Indexer struct {
	corpus     driven.CorpusSource
	registry   driven.NormaliserRegistry
	pipeline   driven.PostProcessorPipeline
	docStore   driven.DocumentStore
	stateStore driven.IndexStateStore
	embedding  driven.EmbeddingService

	mu      sync.Mutex
	running bool
	runMu   sync.RWMutex
}

// NewIndexer creates a new indexer. The embedding service is required:
// chunks without embeddings cannot be retrieved.
func NewIndexer(
	corpus driven.CorpusSource,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	docStore driven.DocumentStore,
	stateStore driven.IndexStateStore,
	embedding driven.EmbeddingService,
) *Indexer {
	return &Indexer{
		corpus:     corpus,
		registry:   registry,
		pipeline:   pipeline,
		docStore:   docStore,
		stateStore: stateStore,
		embedding:  embedding,
	}
}

// Index runs an index pass over the corpus.
//
//nolint:gocognit // Orchestration function coordinating multiple async operations
func (ix *Indexer) Index(ctx context.Context, mode domain.IndexMode) (*domain.IndexReport, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown index mode %q", domain.ErrInvalidInput, mode)
	}
	if ix.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if !ix.mu.TryLock() {
		return nil, domain.ErrIndexInProgress
	}
	defer ix.mu.Unlock()
	ix.setRunning(true)
	defer ix.setRunning(false)

	start := time.Now()
	report := &domain.IndexReport{
		Version: domain.IndexVersion(uuid.NewString()),
		Mode:    mode,
	}

	if err := ix.corpus.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate corpus: %w", err)
	}
	// Fail before touching the index rather than midway through a run.
	if err := ix.embedding.Ping(ctx); err != nil {
		return nil, fmt.Errorf("embedding service unavailable: %w", err)
	}

	if mode == domain.IndexModeFull {
		logger.Info("Full re-index: clearing existing index")
		if err := ix.docStore.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear documents: %w", err)
		}
		if err := ix.stateStore.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear index state: %w", err)
		}
	}

	logger.Info("Starting %s index run %s", mode, report.Version)

	seen := make(map[string]bool)
	docsCh, errsCh := ix.corpus.Scan(ctx)

	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			// Per-file read failures are diagnostics, not run failures.
			logger.Debug("Corpus read error: %v", err)
			report.Skipped = append(report.Skipped, domain.SkippedDocument{Reason: err.Error()})

		case raw, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			seen[raw.Path] = true
			outcome, err := ix.processDocument(ctx, &raw)
			if err != nil {
				logger.Debug("Skipping %s: %v", raw.Path, err)
				report.Skipped = append(report.Skipped, domain.SkippedDocument{
					Path:   raw.Path,
					Reason: err.Error(),
				})
				continue
			}
			switch outcome {
			case outcomeAdded:
				report.Added++
			case outcomeUpdated:
				report.Updated++
			case outcomeUnchanged:
				report.Unchanged++
			}
		}
	}

	removed, err := ix.tombstoneMissing(ctx, seen)
	if err != nil {
		return nil, err
	}
	report.Removed = removed

	if err := ix.stateStore.SetVersion(ctx, report.Version); err != nil {
		return nil, fmt.Errorf("record index version: %w", err)
	}

	report.Duration = time.Since(start)
	logger.Info("Index run complete: %d added, %d updated, %d removed, %d unchanged, %d skipped in %s",
		report.Added, report.Updated, report.Removed, report.Unchanged, len(report.Skipped), report.Duration)
	return report, nil
}

// Reindex re-processes a single corpus path regardless of its stored
// fingerprint by dropping the path's state and running an incremental
// pass.
func (ix *Indexer) Reindex(ctx context.Context, path string) error {
	if err := ix.stateStore.Delete(ctx, path); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("drop index state: %w", err)
	}
	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	return err
}

// Status returns the current index version and document count.
func (ix *Indexer) Status(ctx context.Context) (*driving.IndexStatus, error) {
	version, err := ix.stateStore.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("get index version: %w", err)
	}
	docs, err := ix.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return &driving.IndexStatus{
		Version:       version,
		DocumentCount: len(docs),
		Running:       ix.isRunning(),
	}, nil
}

type processOutcome int

const (
	outcomeAdded processOutcome = iota
	outcomeUpdated
	outcomeUnchanged
)

// processDocument runs one corpus document through the index pipeline:
// fingerprint check, normalise, chunk, embed, atomic replace, state save.
func (ix *Indexer) processDocument(ctx context.Context, raw *domain.RawDocument) (processOutcome, error) {
	fingerprint := contentFingerprint(raw.Content)

	prior, err := ix.stateStore.Get(ctx, raw.Path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("get index state: %w", err)
	}
	if prior != nil && prior.Fingerprint == fingerprint {
		return outcomeUnchanged, nil
	}

	normaliser, err := ix.registry.ForMIMEType(raw.MIMEType)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrDataIntegrity, err)
	}
	result, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("%w: normalise: %w", domain.ErrDataIntegrity, err)
	}

	doc := result.Document
	doc.Fingerprint = fingerprint
	now := time.Now()
	doc.UpdatedAt = now

	known := prior != nil
	if known {
		// Keep the identity stable across content changes.
		doc.ID = prior.DocumentID
	} else {
		// The state row can lag the document store: a single-path
		// re-index drops only the state. Resolve the stored identity
		// by path so one path never yields two documents.
		existing, lookupErr := ix.docStore.GetDocumentByPath(ctx, raw.Path)
		if lookupErr != nil && !errors.Is(lookupErr, domain.ErrNotFound) {
			return 0, fmt.Errorf("get document by path: %w", lookupErr)
		}
		if existing != nil {
			known = true
			doc.ID = existing.ID
			doc.CreatedAt = existing.CreatedAt
		} else {
			doc.ID = uuid.NewString()
			doc.CreatedAt = now
		}
	}

	chunks, err := ix.pipeline.Process(ctx, &doc)
	if err != nil {
		return 0, fmt.Errorf("%w: chunk: %w", domain.ErrDataIntegrity, err)
	}

	if err := ix.embedChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	if err := ix.docStore.ReplaceDocument(ctx, &doc, chunks); err != nil {
		return 0, fmt.Errorf("replace document: %w", err)
	}
	if err := ix.stateStore.Save(ctx, domain.DocumentState{
		Path:        raw.Path,
		Fingerprint: fingerprint,
		DocumentID:  doc.ID,
		IndexedAt:   now,
	}); err != nil {
		return 0, fmt.Errorf("save index state: %w", err)
	}

	if known {
		return outcomeUpdated, nil
	}
	return outcomeAdded, nil
}

// embedChunks fills in chunk embeddings in one batched call.
func (ix *Indexer) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := ix.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrContractViolation, len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	return nil
}

// tombstoneMissing removes index entries whose corpus file disappeared.
func (ix *Indexer) tombstoneMissing(ctx context.Context, seen map[string]bool) (int, error) {
	states, err := ix.stateStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list index state: %w", err)
	}

	removed := 0
	for _, state := range states {
		if seen[state.Path] {
			continue
		}
		logger.Debug("Tombstoning %s: file removed from corpus", state.Path)
		if err := ix.docStore.DeleteDocument(ctx, state.DocumentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("delete document %s: %w", state.DocumentID, err)
		}
		if err := ix.stateStore.Delete(ctx, state.Path); err != nil {
			return 0, fmt.Errorf("delete index state %s: %w", state.Path, err)
		}
		removed++
	}
	return removed, nil
}

func (ix *Indexer) setRunning(v bool) {
	ix.runMu.Lock()
	ix.running = v
	ix.runMu.Unlock()
}

func (ix *Indexer) isRunning() bool {
	ix.runMu.RLock()
	defer ix.runMu.RUnlock()
	return ix.running
}

// contentFingerprint hashes raw document bytes for change detection.
func contentFingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
