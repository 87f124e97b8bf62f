package driven

import (
	"context"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// PostProcessor is one stage in the document-to-chunks pipeline.
// A creating stage (the chunker) receives nil chunks and produces them;
// a transforming stage receives the previous stage's chunks and returns
// a modified set.
type PostProcessor interface {
	// Name identifies the stage in logs and error messages.
	Name() string

	// Process runs the stage against doc and the chunks so far.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs a document through an ordered set of stages
// and returns the final chunks.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
