package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.cadence/data/cadence.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cadence", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cadence.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// IndexStateStore returns an IndexStateStore interface backed by this store.
func (s *Store) IndexStateStore() driven.IndexStateStore {
	return &indexStateStore{store: s}
}

// DraftStore returns a DraftStore interface backed by this store.
func (s *Store) DraftStore() driven.DraftStore {
	return &draftStore{store: s}
}

// VectorSearcher returns a VectorSearcher backed by this store.
func (s *Store) VectorSearcher() driven.VectorSearcher {
	return &vectorSearcher{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := marshalTags(doc.Tags)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, title, content, fingerprint, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			title = excluded.title,
			content = excluded.content,
			fingerprint = excluded.fingerprint,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Path, doc.Title, doc.Content, doc.Fingerprint, tagsJSON,
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// ReplaceDocument stores a document and replaces all of its chunks in
// a single transaction.
func (s *documentStore) ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	tagsJSON, err := marshalTags(doc.Tags)
	if err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, path, title, content, fingerprint, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			title = excluded.title,
			content = excluded.content,
			fingerprint = excluded.fingerprint,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Path, doc.Title, doc.Content, doc.Fingerprint, tagsJSON,
		doc.CreatedAt, doc.UpdatedAt); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, position, embedding, tags)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		chunkTags, err := marshalTags(chunk.Tags)
		if err != nil {
			return err
		}
		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content,
			chunk.Position, embeddingBlob, chunkTags); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, path, title, content, fingerprint, tags, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// GetDocumentByPath retrieves a document by corpus path.
func (s *documentStore) GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, path, title, content, fingerprint, tags, created_at, updated_at
		FROM documents WHERE path = ?
	`, path)

	return scanDocument(row)
}

// GetChunks retrieves all chunks for a document, ordered by position.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, position, embedding, tags
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// DeleteDocument removes a document and its chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all indexed documents.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, path, title, content, fingerprint, tags, created_at, updated_at
		FROM documents ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Clear removes all documents and chunks.
func (s *documentStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// ==================== Index State Store ====================

// indexStateStore implements driven.IndexStateStore.
type indexStateStore struct {
	store *Store
}

var _ driven.IndexStateStore = (*indexStateStore)(nil)

// indexVersionKey is the index_meta row holding the last run version.
const indexVersionKey = "index_version"

// Get retrieves the state for a corpus path.
func (s *indexStateStore) Get(ctx context.Context, path string) (*domain.DocumentState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT path, fingerprint, document_id, indexed_at
		FROM index_state WHERE path = ?
	`, path)

	var state domain.DocumentState
	var indexedAt sql.NullTime
	if err := row.Scan(&state.Path, &state.Fingerprint, &state.DocumentID, &indexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning index state: %w", err)
	}
	if indexedAt.Valid {
		state.IndexedAt = indexedAt.Time
	}

	return &state, nil
}

// List returns all stored states.
func (s *indexStateStore) List(ctx context.Context) ([]domain.DocumentState, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT path, fingerprint, document_id, indexed_at
		FROM index_state ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying index state: %w", err)
	}
	defer rows.Close()

	var states []domain.DocumentState //nolint:prealloc // size unknown from query
	for rows.Next() {
		var state domain.DocumentState
		var indexedAt sql.NullTime
		if err := rows.Scan(&state.Path, &state.Fingerprint, &state.DocumentID, &indexedAt); err != nil {
			return nil, fmt.Errorf("scanning index state: %w", err)
		}
		if indexedAt.Valid {
			state.IndexedAt = indexedAt.Time
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index state: %w", err)
	}

	return states, nil
}

// Save stores or updates the state for a path.
func (s *indexStateStore) Save(ctx context.Context, state domain.DocumentState) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_state (path, fingerprint, document_id, indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			document_id = excluded.document_id,
			indexed_at = excluded.indexed_at
	`, state.Path, state.Fingerprint, state.DocumentID, state.IndexedAt)

	if err != nil {
		return fmt.Errorf("saving index state: %w", err)
	}
	return nil
}

// Delete removes the state for a path.
func (s *indexStateStore) Delete(ctx context.Context, path string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM index_state WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("deleting index state: %w", err)
	}
	return nil
}

// Clear removes all state.
func (s *indexStateStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM index_state"); err != nil {
		return fmt.Errorf("clearing index state: %w", err)
	}
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM index_meta WHERE key = ?", indexVersionKey); err != nil {
		return fmt.Errorf("clearing index version: %w", err)
	}
	return nil
}

// Version returns the identifier of the last completed index run.
func (s *indexStateStore) Version(ctx context.Context) (domain.IndexVersion, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM index_meta WHERE key = ?", indexVersionKey)

	var version string
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("scanning index version: %w", err)
	}
	return domain.IndexVersion(version), nil
}

// SetVersion records the identifier of a completed index run.
func (s *indexStateStore) SetVersion(ctx context.Context, version domain.IndexVersion) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, indexVersionKey, string(version))

	if err != nil {
		return fmt.Errorf("saving index version: %w", err)
	}
	return nil
}

// ==================== Draft Store ====================

// draftStore implements driven.DraftStore.
type draftStore struct {
	store *Store
}

var _ driven.DraftStore = (*draftStore)(nil)

// Save stores a draft.
func (s *draftStore) Save(ctx context.Context, draft domain.Draft) error {
	talkingPoints, err := json.Marshal(draft.TalkingPoints)
	if err != nil {
		return fmt.Errorf("marshalling talking points: %w", err)
	}
	flags, err := json.Marshal(draft.Flags)
	if err != nil {
		return fmt.Errorf("marshalling flags: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO drafts (id, prospect_id, subject, body, email_type, day_in_sequence,
			next_touch_days, talking_points, flags, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject = excluded.subject,
			body = excluded.body,
			email_type = excluded.email_type,
			day_in_sequence = excluded.day_in_sequence,
			next_touch_days = excluded.next_touch_days,
			talking_points = excluded.talking_points,
			flags = excluded.flags,
			status = excluded.status
	`, draft.ID, draft.ProspectID, draft.Subject, draft.Body, string(draft.EmailType),
		draft.DayInSequence, draft.NextTouchDays, string(talkingPoints), string(flags),
		string(draft.Status), draft.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// Get retrieves a draft by ID.
func (s *draftStore) Get(ctx context.Context, id string) (*domain.Draft, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, prospect_id, subject, body, email_type, day_in_sequence,
			next_touch_days, talking_points, flags, status, created_at
		FROM drafts WHERE id = ?
	`, id)

	return scanDraft(row)
}

// List returns all drafts, newest first.
func (s *draftStore) List(ctx context.Context) ([]domain.Draft, error) {
	return s.query(ctx, `
		SELECT id, prospect_id, subject, body, email_type, day_in_sequence,
			next_touch_days, talking_points, flags, status, created_at
		FROM drafts ORDER BY created_at DESC, id
	`)
}

// ListByProspect returns drafts for a prospect, newest first.
func (s *draftStore) ListByProspect(ctx context.Context, prospectID string) ([]domain.Draft, error) {
	return s.query(ctx, `
		SELECT id, prospect_id, subject, body, email_type, day_in_sequence,
			next_touch_days, talking_points, flags, status, created_at
		FROM drafts WHERE prospect_id = ? ORDER BY created_at DESC, id
	`, prospectID)
}

// Delete removes a draft by ID.
func (s *draftStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteOlderThan removes drafts created before the cutoff.
func (s *draftStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM drafts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweeping drafts: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking sweep result: %w", err)
	}
	return int(affected), nil
}

func (s *draftStore) query(ctx context.Context, query string, args ...any) ([]domain.Draft, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.Draft //nolint:prealloc // size unknown from query
	for rows.Next() {
		draft, err := scanDraftRows(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drafts: %w", err)
	}

	return drafts, nil
}

// ==================== Vector Searcher ====================

// vectorSearcher implements driven.VectorSearcher with a brute-force
// cosine scan over the chunks table. Corpus sizes here are hundreds of
// documents, well within what a linear scan handles in milliseconds.
type vectorSearcher struct {
	store *Store
}

var _ driven.VectorSearcher = (*vectorSearcher)(nil)

// Search finds the k most similar chunks to the query vector.
func (s *vectorSearcher) Search(ctx context.Context, query []float32, k int, tags map[string]string) ([]driven.VectorHit, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, embedding, tags
		FROM chunks WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var chunkID, documentID, tagsJSON string
		var blob []byte
		if err := rows.Scan(&chunkID, &documentID, &blob, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}

		if len(tags) > 0 {
			chunkTags, err := unmarshalTags(tagsJSON)
			if err != nil {
				return nil, err
			}
			if !tagsMatch(chunkTags, tags) {
				continue
			}
		}

		hits = append(hits, driven.VectorHit{
			ChunkID:    chunkID,
			DocumentID: documentID,
			Similarity: cosineSimilarity(query, bytesToFloat32Slice(blob)),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources. The underlying connection is owned by the
// parent Store.
func (s *vectorSearcher) Close() error {
	return nil
}

// ==================== Helpers ====================

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func tagsMatch(chunkTags, want map[string]string) bool {
	for key, value := range want {
		if chunkTags[key] != value {
			return false
		}
	}
	return true
}

func marshalTags(tags map[string]string) (string, error) {
	if tags == nil {
		return "{}", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshalling tags: %w", err)
	}
	return string(data), nil
}

func unmarshalTags(data string) (map[string]string, error) {
	if data == "" || data == "null" {
		return nil, nil
	}
	var tags map[string]string
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	return tags, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (*domain.Document, error) {
	doc, err := scanDocumentFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	return scanDocumentFrom(rows)
}

func scanDocumentFrom(s scanner) (*domain.Document, error) {
	var doc domain.Document
	var tagsJSON string
	var createdAt, updatedAt sql.NullTime
	if err := s.Scan(&doc.ID, &doc.Path, &doc.Title, &doc.Content, &doc.Fingerprint,
		&tagsJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	tags, err := unmarshalTags(tagsJSON)
	if err != nil {
		return nil, err
	}
	doc.Tags = tags
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}

	return &doc, nil
}

func scanChunk(s scanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var tagsJSON string
	var embeddingBlob []byte
	if err := s.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&chunk.Position, &embeddingBlob, &tagsJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	tags, err := unmarshalTags(tagsJSON)
	if err != nil {
		return nil, err
	}
	chunk.Tags = tags
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}

func scanDraft(row *sql.Row) (*domain.Draft, error) {
	draft, err := scanDraftFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return draft, nil
}

func scanDraftRows(rows *sql.Rows) (*domain.Draft, error) {
	return scanDraftFrom(rows)
}

func scanDraftFrom(s scanner) (*domain.Draft, error) {
	var draft domain.Draft
	var emailType, status, talkingPoints, flags string
	var createdAt sql.NullTime
	if err := s.Scan(&draft.ID, &draft.ProspectID, &draft.Subject, &draft.Body,
		&emailType, &draft.DayInSequence, &draft.NextTouchDays, &talkingPoints,
		&flags, &status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning draft: %w", err)
	}

	if err := json.Unmarshal([]byte(talkingPoints), &draft.TalkingPoints); err != nil {
		return nil, fmt.Errorf("unmarshaling talking points: %w", err)
	}
	if err := json.Unmarshal([]byte(flags), &draft.Flags); err != nil {
		return nil, fmt.Errorf("unmarshaling flags: %w", err)
	}
	draft.EmailType = domain.EmailType(emailType)
	draft.Status = domain.DraftStatus(status)
	if createdAt.Valid {
		draft.CreatedAt = createdAt.Time
	}

	return &draft, nil
}
