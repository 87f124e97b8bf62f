package driven

import "context"

// VectorSearcher provides semantic similarity search over stored chunk
// embeddings. Implementations read the embeddings the DocumentStore
// persisted, so there is no separate index to keep in sync with the
// chunk tables.
type VectorSearcher interface {
	// Search finds the k most similar chunks to the query vector.
	// A non-empty tags map restricts candidates to chunks carrying
	// all of the given tag values before ranking.
	Search(ctx context.Context, query []float32, k int, tags map[string]string) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
