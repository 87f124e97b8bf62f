// Package plaintext normalises plain-text corpus documents. It is the
// fallback for anything text-shaped a format-specific normaliser does
// not claim.
package plaintext

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw document to a normalised document. Content
// is carried over as-is with line endings unified.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")

	tags := make(map[string]string, len(raw.Metadata)+1)
	for k, v := range raw.Metadata {
		tags[k] = v
	}
	tags["format"] = "plaintext"

	doc := domain.Document{
		Path:    raw.Path,
		Title:   titleFromPath(raw.Path),
		Content: strings.TrimSpace(content),
		Tags:    tags,
	}

	return &driven.NormaliseResult{Document: doc}, nil
}

// titleFromPath derives a human-readable title from the filename.
func titleFromPath(path string) string {
	filename := filepath.Base(path)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
