package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/storage/memory"
	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// --- Mock implementations for indexer testing ---

// indexMockCorpus implements driven.CorpusSource for testing.
type indexMockCorpus struct {
	docs     []domain.RawDocument
	scanErrs []error
}

func (m *indexMockCorpus) Validate(_ context.Context) error { return nil }

func (m *indexMockCorpus) Scan(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, len(m.scanErrs)+1)

	go func() {
		defer close(docs)
		defer close(errs)

		for _, err := range m.scanErrs {
			errs <- err
		}
		for _, doc := range m.docs {
			select {
			case <-ctx.Done():
				return
			case docs <- doc:
			}
		}
	}()

	return docs, errs
}

func (m *indexMockCorpus) Watch(_ context.Context) (<-chan string, error) {
	return nil, errors.New("watch not implemented")
}

func (m *indexMockCorpus) Close() error { return nil }

// indexMockNormaliser implements driven.Normaliser and
// driven.NormaliserRegistry, passing raw content through as-is.
type indexMockNormaliser struct {
	failPaths map[string]bool
}

func (m *indexMockNormaliser) SupportedMIMETypes() []string { return []string{"text/plain"} }
func (m *indexMockNormaliser) Priority() int                { return 50 }

func (m *indexMockNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.failPaths[raw.Path] {
		return nil, errors.New("unparseable content")
	}
	return &driven.NormaliseResult{
		Document: domain.Document{
			Path:    raw.Path,
			Title:   raw.Path,
			Content: string(raw.Content),
		},
	}, nil
}

func (m *indexMockNormaliser) Register(_ driven.Normaliser) {}

func (m *indexMockNormaliser) ForMIMEType(_ string) (driven.Normaliser, error) {
	return m, nil
}

// indexMockPipeline implements driven.PostProcessorPipeline, producing
// one chunk per line.
type indexMockPipeline struct{}

func (m *indexMockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	lines := strings.Split(doc.Content, "\n")
	chunks := make([]domain.Chunk, 0, len(lines))
	for i, line := range lines {
		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s-%d", doc.ID, i),
			DocumentID: doc.ID,
			Content:    line,
			Position:   i,
		})
	}
	return chunks, nil
}

// indexMockEmbedding implements driven.EmbeddingService with fixed
// vectors.
type indexMockEmbedding struct {
	calls   int
	pingErr error
}

func (m *indexMockEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	return []float32{1, 0}, nil
}

func (m *indexMockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1, 0}
	}
	return result, nil
}

func (m *indexMockEmbedding) Dimensions() int              { return 2 }
func (m *indexMockEmbedding) ModelName() string            { return "mock-embed" }
func (m *indexMockEmbedding) Ping(_ context.Context) error { return m.pingErr }
func (m *indexMockEmbedding) Close() error                 { return nil }

func rawDoc(path, content string) domain.RawDocument {
	return domain.RawDocument{Path: path, MIMEType: "text/plain", Content: []byte(content)}
}

func newTestIndexer(corpus *indexMockCorpus) (*Indexer, *memory.DocumentStore, *memory.IndexStateStore) {
	docStore := memory.NewDocumentStore()
	stateStore := memory.NewIndexStateStore()
	ix := NewIndexer(corpus, &indexMockNormaliser{}, &indexMockPipeline{}, docStore, stateStore, &indexMockEmbedding{})
	return ix, docStore, stateStore
}

func TestIndexer_Index_FirstRun(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{
		rawDoc("a.md", "alpha content"),
		rawDoc("b.md", "beta content\nsecond line"),
	}}
	ix, docStore, stateStore := newTestIndexer(corpus)

	report, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Added)
	assert.Zero(t, report.Updated)
	assert.Zero(t, report.Removed)
	assert.Zero(t, report.Unchanged)
	assert.Empty(t, report.Skipped)
	assert.NotEmpty(t, report.Version)

	docs, err := docStore.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	version, err := stateStore.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Version, version)
}

func TestIndexer_Index_UnchangedSkipped(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{rawDoc("a.md", "alpha")}}
	ix, _, _ := newTestIndexer(corpus)

	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	report, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	assert.Zero(t, report.Added)
	assert.Equal(t, 1, report.Unchanged)
}

func TestIndexer_Index_ChangedDocumentKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{rawDoc("a.md", "v1")}}
	ix, docStore, _ := newTestIndexer(corpus)

	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)
	before, err := docStore.GetDocumentByPath(ctx, "a.md")
	require.NoError(t, err)

	corpus.docs = []domain.RawDocument{rawDoc("a.md", "v2 changed")}
	report, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	after, err := docStore.GetDocumentByPath(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, "v2 changed", after.Content)
}

func TestIndexer_Reindex_SinglePathKeepsOneDocument(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{rawDoc("a.md", "alpha")}}
	ix, docStore, _ := newTestIndexer(corpus)

	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)
	before, err := docStore.GetDocumentByPath(ctx, "a.md")
	require.NoError(t, err)

	corpus.docs = []domain.RawDocument{rawDoc("a.md", "alpha v2 changed")}
	require.NoError(t, ix.Reindex(ctx, "a.md"))

	// The path must map to exactly one document with the new content,
	// not a fresh document alongside the stale one.
	docs, err := docStore.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	after, err := docStore.GetDocumentByPath(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, "alpha v2 changed", after.Content)
}

func TestIndexer_Index_TombstonesRemovedFiles(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{
		rawDoc("keep.md", "kept"),
		rawDoc("gone.md", "going away"),
	}}
	ix, docStore, stateStore := newTestIndexer(corpus)

	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	corpus.docs = []domain.RawDocument{rawDoc("keep.md", "kept")}
	report, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Removed)
	_, err = docStore.GetDocumentByPath(ctx, "gone.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = stateStore.Get(ctx, "gone.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexer_Index_SkipsUnreadableDocuments(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{
		docs:     []domain.RawDocument{rawDoc("good.md", "fine"), rawDoc("bad.md", "broken")},
		scanErrs: []error{errors.New("read corrupted.md: permission denied")},
	}
	docStore := memory.NewDocumentStore()
	stateStore := memory.NewIndexStateStore()
	registry := &indexMockNormaliser{failPaths: map[string]bool{"bad.md": true}}
	ix := NewIndexer(corpus, registry, &indexMockPipeline{}, docStore, stateStore, &indexMockEmbedding{})

	report, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Added)
	require.Len(t, report.Skipped, 2)
}

func TestIndexer_Index_FullClearsFirst(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{rawDoc("a.md", "alpha")}}
	ix, docStore, _ := newTestIndexer(corpus)

	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	// Full mode re-adds everything instead of skipping unchanged.
	report, err := ix.Index(ctx, domain.IndexModeFull)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Zero(t, report.Unchanged)

	docs, err := docStore.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestIndexer_Index_SerializedRuns(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{}
	ix, _, _ := newTestIndexer(corpus)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	assert.ErrorIs(t, err, domain.ErrIndexInProgress)
}

func TestIndexer_Index_UnreachableEmbeddingAbortsRun(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{rawDoc("a.md", "alpha")}}
	docStore := memory.NewDocumentStore()
	stateStore := memory.NewIndexStateStore()
	embedding := &indexMockEmbedding{pingErr: errors.New("connection refused")}
	ix := NewIndexer(corpus, &indexMockNormaliser{}, &indexMockPipeline{}, docStore, stateStore, embedding)

	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.ErrorContains(t, err, "embedding service unavailable")

	docs, err := docStore.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIndexer_Index_RequiresEmbedding(t *testing.T) {
	ix := NewIndexer(&indexMockCorpus{}, &indexMockNormaliser{}, &indexMockPipeline{},
		memory.NewDocumentStore(), memory.NewIndexStateStore(), nil)

	_, err := ix.Index(context.Background(), domain.IndexModeIncremental)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexer_Index_InvalidMode(t *testing.T) {
	ix, _, _ := newTestIndexer(&indexMockCorpus{})

	_, err := ix.Index(context.Background(), domain.IndexMode("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexer_Reindex_ForcesReprocess(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{rawDoc("a.md", "alpha")}}
	ix, _, stateStore := newTestIndexer(corpus)

	_, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	require.NoError(t, ix.Reindex(ctx, "a.md"))

	state, err := stateStore.Get(ctx, "a.md")
	require.NoError(t, err)
	assert.NotEmpty(t, state.Fingerprint)
}

func TestIndexer_Status(t *testing.T) {
	ctx := context.Background()
	corpus := &indexMockCorpus{docs: []domain.RawDocument{rawDoc("a.md", "alpha")}}
	ix, _, _ := newTestIndexer(corpus)

	status, err := ix.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status.Version)
	assert.Zero(t, status.DocumentCount)
	assert.False(t, status.Running)

	report, err := ix.Index(ctx, domain.IndexModeIncremental)
	require.NoError(t, err)

	status, err = ix.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Version, status.Version)
	assert.Equal(t, 1, status.DocumentCount)
}
