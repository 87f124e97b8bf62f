package driven

import "context"

// EmbeddingService turns text into vectors for knowledge-base search.
// It is optional: when nil, indexing and retrieval are disabled and the
// engine still runs on CRM context alone.
type EmbeddingService interface {
	// Embed generates a vector embedding for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds many texts, ideally in one provider call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768, 1536).
	Dimensions() int

	// ModelName returns the model identifier for diagnostics.
	ModelName() string

	// Ping makes a lightweight request to verify the provider is
	// reachable. The indexer calls it before committing to a run.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
