// Package sqlite backs the engine's persistence ports with a single
// SQLite database.
//
// One connection serves four ports: DocumentStore (documents and their
// chunks), IndexStateStore (per-path fingerprints driving incremental
// indexing), DraftStore (generated outreach drafts), and VectorSearcher
// (brute-force cosine search over chunk embeddings stored as float32
// blobs).
//
// The driver is modernc.org/sqlite, a pure Go port, so the binary
// cross-compiles without CGO. Schema changes ship as versioned
// .up.sql/.down.sql pairs under migrations/, applied on open. The
// database lives at ~/.cadence/data/cadence.db unless overridden, and
// runs in WAL mode; SQLite's own locking makes all operations safe for
// concurrent use.
package sqlite
