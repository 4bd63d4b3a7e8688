// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/vector"
)

// DefaultMaxLimit bounds List page sizes when no limit is configured.
const DefaultMaxLimit = 1000

// SQLiteStorage implements Storage using SQLite. Embeddings are stored as
// little-endian float32 blobs alongside their dimension.
type SQLiteStorage struct {
	db       *sql.DB
	maxLimit int
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist. maxLimit caps List page sizes; zero or negative uses DefaultMaxLimit.
func NewSQLiteStorage(dbPath string, maxLimit int) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &SQLiteStorage{db: db, maxLimit: maxLimit}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		dim INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Insert validates and persists a document. Dimension enforcement and the
// insert happen in one transaction so a rejected insert leaves no partial
// write and the id sequence stays backend-owned.
func (s *SQLiteStorage) Insert(ctx context.Context, text string, embedding []float32) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, models.ErrEmptyText
	}
	blob, err := vector.Encode(embedding)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	var established int
	err = tx.QueryRowContext(ctx, `SELECT dim FROM documents LIMIT 1`).Scan(&established)
	switch {
	case err == sql.ErrNoRows:
		// First insert establishes the dimension.
	case err != nil:
		return 0, fmt.Errorf("read established dimension: %w", err)
	case established != len(embedding):
		return 0, fmt.Errorf("store dimension %d, got %d: %w",
			established, len(embedding), models.ErrDimensionMismatch)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (text, embedding, dim, created_at) VALUES (?, ?, ?, ?)`,
		text, blob, len(embedding), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return id, nil
}

// List returns summaries for one page plus the total count. Limit is
// clamped to the configured maximum; negative limit or offset is rejected.
func (s *SQLiteStorage) List(ctx context.Context, limit, offset int) ([]models.DocumentSummary, int, error) {
	if limit < 0 {
		return nil, 0, fmt.Errorf("limit %d: %w", limit, models.ErrInvalidParameter)
	}
	if offset < 0 {
		return nil, 0, fmt.Errorf("offset %d: %w", offset, models.ErrInvalidParameter)
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, created_at FROM documents
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.DocumentSummary, 0, limit)
	for rows.Next() {
		var id int64
		var text string
		var createdAt time.Time
		if err := rows.Scan(&id, &text, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan document row: %w", err)
		}
		summaries = append(summaries, models.DocumentSummary{
			ID:        id,
			Preview:   models.Truncate(text, models.PreviewLength),
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return summaries, total, nil
}

// FetchAll returns all documents with decoded embeddings, most recent first.
func (s *SQLiteStorage) FetchAll(ctx context.Context) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, embedding, created_at FROM documents
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		var blob []byte
		if err := rows.Scan(&doc.ID, &doc.Text, &blob, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		doc.Embedding, err = vector.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	return docs, nil
}

// Dimension returns the established embedding dimension, or 0 for an empty store.
func (s *SQLiteStorage) Dimension(ctx context.Context) (int, error) {
	var dim int
	err := s.db.QueryRowContext(ctx, `SELECT dim FROM documents LIMIT 1`).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read dimension: %w", err)
	}
	return dim, nil
}

// Count returns the total number of documents.
func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// Available reports whether the database connection is usable.
func (s *SQLiteStorage) Available() bool {
	return s.db != nil && s.db.Ping() == nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
