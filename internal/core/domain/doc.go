// Package domain defines the core business entities for Cadence.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A knowledge-corpus document with a content fingerprint
//   - Chunk: An embedded slice of a document
//   - Prospect: A lead or deal under consideration for outreach
//   - SnippetRecord: A context fragment from one of the snippet sources
//   - ContextPackage: The budgeted context bundle handed to generation
//
// The sequence state machine (ClassifySequence) also lives here: it is
// pure arithmetic over CRM timestamps with no collaborator access.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
