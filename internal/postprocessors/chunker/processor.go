// Package chunker splits document content into overlapping chunks.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits document content into overlapping chunks, preferring
// paragraph and sentence boundaries over hard character cuts.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks. Input chunks are
// ignored; this processor creates new chunks from document content.
// Chunks inherit the document's tags plus their own position.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	content := doc.Content
	contentLen := len(content)

	estimatedChunks := (contentLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	start := 0

	for start < contentLen {
		end := start + p.chunkSize
		if end >= contentLen {
			end = contentLen
		} else {
			end = p.breakpoint(content, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Content:    strings.TrimSpace(content[start:end]),
			Position:   position,
			Tags:       inheritTags(doc),
		})
		position++

		if end == contentLen {
			break
		}

		// Step back by the overlap, but always make forward progress
		// even when a boundary cut produced a short chunk.
		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// breakpoint finds where to cut a chunk ending near end. It prefers the
// last paragraph break, then the last sentence end, but only past the
// window's midpoint so chunks never degenerate into fragments.
func (p *Processor) breakpoint(content string, start, end int) int {
	window := content[start:end]
	floor := len(window) / 2

	if idx := strings.LastIndex(window, "\n\n"); idx > floor {
		return start + idx + 2
	}
	for _, sep := range []string{". ", ".\n", "! ", "? "} {
		if idx := strings.LastIndex(window, sep); idx > floor {
			return start + idx + len(sep)
		}
	}
	return end
}

// inheritTags copies the document's tags so a chunk edit cannot alias
// the parent map.
func inheritTags(doc *domain.Document) map[string]string {
	tags := make(map[string]string, len(doc.Tags))
	for k, v := range doc.Tags {
		tags[k] = v
	}
	return tags
}
