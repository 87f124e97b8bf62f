package domain

// RawDocument represents opaque bytes read from the knowledge corpus.
// It is the corpus scanner's output before normalisation.
type RawDocument struct {
	// Path is the location relative to the corpus root.
	Path string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains scanner-specific key-value pairs
	// (e.g., the category inferred from the folder structure).
	Metadata map[string]string
}
