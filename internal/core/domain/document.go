package domain

import "time"

// Document represents a source file in the knowledge corpus.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the location relative to the corpus root.
	Path string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// Fingerprint is the content hash of the raw bytes, used to
	// detect whether the document changed since it was last indexed.
	Fingerprint string

	// Tags contains inferred metadata (category, format) usable as
	// retrieval filters.
	Tags map[string]string

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-indexed.
	UpdatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Documents are split into overlapping chunks for granular retrieval.
// Chunks are owned exclusively by their document: a re-index of the
// document deletes and regenerates all of them.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic retrieval.
	Embedding []float32

	// Tags are inherited from the document plus chunk-specific entries.
	Tags map[string]string
}

// IndexMode selects how an index run treats existing state.
type IndexMode string

const (
	// IndexModeIncremental re-processes only new or changed documents.
	IndexModeIncremental IndexMode = "incremental"

	// IndexModeFull clears the index and re-processes everything.
	IndexModeFull IndexMode = "full"
)

// IsValid returns true if the index mode is recognised.
func (m IndexMode) IsValid() bool {
	return m == IndexModeIncremental || m == IndexModeFull
}

// IndexVersion identifies a completed index run. Retrieval callers hold
// the version of the index they are reading so runs are attributable.
type IndexVersion string

// SkippedDocument records a document the indexer could not process.
type SkippedDocument struct {
	// Path is the corpus-relative path of the document.
	Path string

	// Reason is the diagnostic for why it was skipped.
	Reason string
}

// IndexReport summarises an index run.
type IndexReport struct {
	// Version identifies this index run.
	Version IndexVersion

	// Mode is the mode the run was executed in.
	Mode IndexMode

	// Added is the count of documents indexed for the first time.
	Added int

	// Updated is the count of documents whose content changed.
	Updated int

	// Removed is the count of documents tombstoned because their
	// backing file disappeared.
	Removed int

	// Unchanged is the count of documents skipped via fingerprint match.
	Unchanged int

	// Skipped lists documents that could not be read or normalised.
	Skipped []SkippedDocument

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// DocumentState is the persisted fingerprint record for a corpus path.
// It drives the incremental-vs-reprocess decision.
type DocumentState struct {
	// Path is the corpus-relative path.
	Path string

	// Fingerprint is the content hash recorded at last index time.
	Fingerprint string

	// DocumentID is the indexed document this state points at.
	DocumentID string

	// IndexedAt is when the document was last (re-)indexed.
	IndexedAt time.Time
}
