package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

func TestDocumentStore_ReplaceDocument(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	doc := domain.Document{ID: "d1", Path: "guides/intro.md"}
	require.NoError(t, store.ReplaceDocument(ctx, &doc, []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Position: 0},
		{ID: "c2", DocumentID: "d1", Position: 1},
	}))

	// A second replace swaps the full chunk set.
	require.NoError(t, store.ReplaceDocument(ctx, &doc, []domain.Chunk{
		{ID: "c3", DocumentID: "d1", Position: 0},
	}))

	chunks, err := store.GetChunks(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c3", chunks[0].ID)
}

func TestDocumentStore_GetDocumentByPath(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "d1", Path: "a.md"}))

	doc, err := store.GetDocumentByPath(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)

	_, err = store.GetDocumentByPath(ctx, "missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVectorSearcher_Search(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	searcher := NewVectorSearcher(store)

	doc := domain.Document{ID: "d1", Path: "a.md"}
	require.NoError(t, store.ReplaceDocument(ctx, &doc, []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Embedding: []float32{1, 0}, Tags: map[string]string{"category": "guides"}},
		{ID: "c2", DocumentID: "d1", Embedding: []float32{0, 1}, Tags: map[string]string{"category": "faq"}},
		{ID: "c3", DocumentID: "d1", Embedding: []float32{0.9, 0.1}},
	}))

	hits, err := searcher.Search(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].ChunkID)
	assert.Equal(t, "c3", hits[1].ChunkID)

	// Tag filter restricts candidates before ranking.
	hits, err = searcher.Search(ctx, []float32{1, 0}, 2, map[string]string{"category": "faq"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c2", hits[0].ChunkID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}
