package normalisers

import (
	"fmt"

	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry selects normalisers by MIME type and priority.
type Registry struct {
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Normaliser),
	}
}

// Register adds a normaliser for all its supported MIME types.
func (r *Registry) Register(n driven.Normaliser) {
	for _, mime := range n.SupportedMIMETypes() {
		r.byMIME[mime] = append(r.byMIME[mime], n)
	}
}

// ForMIMEType returns the highest-priority normaliser for the MIME type.
func (r *Registry) ForMIMEType(mimeType string) (driven.Normaliser, error) {
	candidates := r.byMIME[mimeType]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no normaliser registered for %q", mimeType)
	}

	best := candidates[0]
	for _, n := range candidates[1:] {
		if n.Priority() > best.Priority() {
			best = n
		}
	}
	return best, nil
}
