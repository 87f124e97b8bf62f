// Package normalisers provides implementations of the Normaliser
// interface for the corpus document formats. Each normaliser knows how
// to extract text content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup; the
// highest-priority normaliser supporting a MIME type wins.
package normalisers
