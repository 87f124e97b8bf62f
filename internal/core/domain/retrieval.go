package domain

import "strings"

// RetrievalQuery is a structured knowledge-base query.
type RetrievalQuery struct {
	// FreeText is free-form query text (e.g., prospect notes).
	FreeText string

	// Industry narrows the query to industry-relevant content.
	Industry string

	// Persona narrows the query to a job title / persona.
	Persona string

	// Tags optionally filter candidates before ranking (e.g.,
	// category). A filter that matches nothing falls back to the
	// unfiltered candidate set.
	Tags map[string]string
}

// Text renders the query as a single embedding input. Structured parts
// come first so short free text does not drown them out.
func (q RetrievalQuery) Text() string {
	parts := make([]string, 0, 3)
	if q.Industry != "" {
		parts = append(parts, q.Industry+" industry use case capabilities")
	}
	if q.Persona != "" {
		parts = append(parts, q.Persona+" persona messaging value proposition")
	}
	if q.FreeText != "" {
		parts = append(parts, q.FreeText)
	}
	return strings.Join(parts, "\n")
}

// IsEmpty returns true if the query has no content to embed.
func (q RetrievalQuery) IsEmpty() bool {
	return q.FreeText == "" && q.Industry == "" && q.Persona == ""
}

// RetrievedChunk is a single retrieval hit.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// DocumentPath is the corpus path of the owning document.
	DocumentPath string

	// Score is the cosine similarity to the query (0-1).
	Score float64
}
