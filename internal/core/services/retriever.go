package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driving"
	"github.com/cadence-hq/cadence-cli/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrieverService = (*Retriever)(nil)

// Retriever answers knowledge-base queries with semantically similar
// chunks.
type Retriever struct {
	embedding driven.EmbeddingService
	searcher  driven.VectorSearcher
	docStore  driven.DocumentStore
}

// NewRetriever creates a new retriever.
func NewRetriever(
	embedding driven.EmbeddingService,
	searcher driven.VectorSearcher,
	docStore driven.DocumentStore,
) *Retriever {
	return &Retriever{
		embedding: embedding,
		searcher:  searcher,
		docStore:  docStore,
	}
}

// Retrieve returns the top-K chunks most similar to the query, most
// similar first, with equal similarities broken by chunk ID. A tag
// filter that matches no candidates falls back to the unfiltered set:
// sparse tagging should degrade recall, not zero it.
func (r *Retriever) Retrieve(ctx context.Context, query domain.RetrievalQuery, k int) ([]domain.RetrievedChunk, error) {
	if r.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if query.IsEmpty() {
		return nil, fmt.Errorf("%w: empty retrieval query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	embedding, err := r.embedding.Embed(ctx, query.Text())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.searcher.Search(ctx, embedding, k, query.Tags)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 && len(query.Tags) > 0 {
		logger.Debug("Tag filter matched nothing, retrying unfiltered")
		hits, err = r.searcher.Search(ctx, embedding, k, nil)
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	return r.resolve(ctx, hits)
}

// resolve loads chunk content and document paths for the hits. Hits
// whose chunk disappeared between search and load are dropped.
func (r *Retriever) resolve(ctx context.Context, hits []driven.VectorHit) ([]domain.RetrievedChunk, error) {
	results := make([]domain.RetrievedChunk, 0, len(hits))
	paths := make(map[string]string)

	for _, hit := range hits {
		path, ok := paths[hit.DocumentID]
		if !ok {
			doc, err := r.docStore.GetDocument(ctx, hit.DocumentID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get document %s: %w", hit.DocumentID, err)
			}
			path = doc.Path
			paths[hit.DocumentID] = path
		}

		chunks, err := r.docStore.GetChunks(ctx, hit.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("get chunks %s: %w", hit.DocumentID, err)
		}
		for _, chunk := range chunks {
			if chunk.ID == hit.ChunkID {
				results = append(results, domain.RetrievedChunk{
					Chunk:        chunk,
					DocumentPath: path,
					Score:        hit.Similarity,
				})
				break
			}
		}
	}
	return results, nil
}
