// Package catalog tracks which files have already been ingested, keyed by
// SHA-256 content hash so renamed copies of identical bytes are not
// re-embedded.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one processed file.
type Record struct {
	FilePath    string
	FolderID    string
	ContentHash string
	ProcessedAt time.Time
}

// Catalog is the SQLite-backed processed-files ledger.
type Catalog struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS processed_files (
	file_path    TEXT PRIMARY KEY,
	folder_id    TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	processed_at TIMESTAMP NOT NULL,
	is_processed BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_processed_files_hash ON processed_files(content_hash);
`

// Open opens (creating if needed) a catalog at the given SQLite DSN.
func Open(dsn string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// HashFile streams a file through SHA-256 and returns the hex digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsProcessed reports whether any file with this content hash has already
// been ingested.
func (c *Catalog) IsProcessed(ctx context.Context, contentHash string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_files WHERE content_hash = ? AND is_processed LIMIT 1`,
		contentHash,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check processed: %w", err)
	}
	return true, nil
}

// MarkProcessed upserts the record for filePath.
func (c *Catalog) MarkProcessed(ctx context.Context, filePath, folderID, contentHash string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO processed_files (file_path, folder_id, content_hash, processed_at, is_processed)
		VALUES (?, ?, ?, ?, TRUE)
		ON CONFLICT (file_path) DO UPDATE SET
			folder_id = excluded.folder_id,
			content_hash = excluded.content_hash,
			processed_at = excluded.processed_at,
			is_processed = TRUE
	`, filePath, folderID, contentHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// List returns processed files, optionally filtered by folder ID.
func (c *Catalog) List(ctx context.Context, folderID string) ([]Record, error) {
	query := `SELECT file_path, folder_id, content_hash, processed_at FROM processed_files`
	args := []any{}
	if folderID != "" {
		query += ` WHERE folder_id = ?`
		args = append(args, folderID)
	}
	query += ` ORDER BY processed_at`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list processed: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.FilePath, &r.FolderID, &r.ContentHash, &r.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Health verifies the underlying database responds.
func (c *Catalog) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
