// Package vectorstore provides the embedded vector store backing document
// search. Chunks and their embeddings live in a SQLite database; similarity
// search is a brute-force cosine scan, which is adequate for the corpus
// sizes this service handles (tens of thousands of chunks).
package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

// Chunk is one indexed piece of a document.
type Chunk struct {
	ID          string
	DocumentID  string
	Text        string
	Source      string
	FileName    string
	ContentHash string
	Embedding   []float32
}

// Result is a search hit with its cosine similarity score.
type Result struct {
	Chunk Chunk
	Score float64
}

// Store persists chunks and answers similarity queries.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id           TEXT PRIMARY KEY,
	document_id  TEXT NOT NULL,
	text         TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	file_name    TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	embedding    BLOB
);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(content_hash);
`

// Open opens (creating if needed) a store at the given SQLite DSN. Use
// ":memory:" for an ephemeral store.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The modernc driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent ingestion.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Add inserts chunks in one transaction. Chunk.ID must be set.
func (s *Store) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, text, source, file_name, content_hash, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			text = excluded.text,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if c.ID == "" {
			return fmt.Errorf("vectorstore: chunk ID must be set")
		}
		blob, err := EncodeEmbedding(c.Embedding)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Text, c.Source, c.FileName, c.ContentHash, blob); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Search returns the k chunks most similar to the query embedding, highest
// score first. Chunks whose embeddings have a different dimension produce an
// error; chunks with empty or zero-magnitude embeddings are skipped. An
// empty store returns an empty result.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}
	if zeroVector(query) {
		return nil, fmt.Errorf("search: query embedding has zero magnitude")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, text, source, file_name, content_hash, embedding
		FROM chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var c Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Text, &c.Source, &c.FileName, &c.ContentHash, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		emb, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		if len(emb) == 0 {
			continue
		}
		score, err := CosineSimilarity(query, emb)
		if errors.Is(err, ErrZeroVector) {
			// A degenerate stored embedding has no direction to rank by;
			// one bad row must not fail the whole query.
			continue
		}
		if err != nil {
			return nil, err
		}
		c.Embedding = emb
		results = append(results, Result{Chunk: c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// GetByIDs loads chunks by ID. Missing IDs are silently absent from the
// result; the returned map is keyed by chunk ID.
func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]Chunk, error) {
	out := make(map[string]Chunk, len(ids))
	stmt, err := s.db.PrepareContext(ctx, `
		SELECT id, document_id, text, source, file_name, content_hash
		FROM chunks WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare get: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		var c Chunk
		err := stmt.QueryRowContext(ctx, id).Scan(&c.ID, &c.DocumentID, &c.Text, &c.Source, &c.FileName, &c.ContentHash)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get chunk %s: %w", id, err)
		}
		out[c.ID] = c
	}
	return out, nil
}

// DeleteByDocument removes all chunks of one document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("vectorstore: DeleteByDocument called with empty id")
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID)
	return err
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Health verifies the underlying database responds.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
