package memory

import (
	"context"
	"math"
	"sort"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure VectorSearcher implements the interface.
var _ driven.VectorSearcher = (*VectorSearcher)(nil)

// VectorSearcher brute-forces cosine similarity over the chunks held by
// an in-memory DocumentStore.
type VectorSearcher struct {
	store *DocumentStore
}

// NewVectorSearcher creates a searcher reading from the given store.
func NewVectorSearcher(store *DocumentStore) *VectorSearcher {
	return &VectorSearcher{store: store}
}

// Search finds the k most similar chunks to the query vector.
func (s *VectorSearcher) Search(ctx context.Context, query []float32, k int, tags map[string]string) ([]driven.VectorHit, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var hits []driven.VectorHit
	for _, doc := range docs {
		chunks, err := s.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			if len(chunk.Embedding) == 0 || !matchesTags(chunk, tags) {
				continue
			}
			hits = append(hits, driven.VectorHit{
				ChunkID:    chunk.ID,
				DocumentID: chunk.DocumentID,
				Similarity: CosineSimilarity(query, chunk.Embedding),
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources.
func (s *VectorSearcher) Close() error {
	return nil
}

func matchesTags(chunk domain.Chunk, tags map[string]string) bool {
	for key, value := range tags {
		if chunk.Tags[key] != value {
			return false
		}
	}
	return true
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
