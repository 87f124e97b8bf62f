package driving

import (
	"context"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// RetrieverService answers knowledge-base queries with relevant chunks.
type RetrieverService interface {
	// Retrieve returns the top-K most relevant chunks for the query,
	// most similar first. Tag filters that match no candidates fall
	// back to the unfiltered set rather than returning nothing.
	Retrieve(ctx context.Context, query domain.RetrievalQuery, k int) ([]domain.RetrievedChunk, error)
}
