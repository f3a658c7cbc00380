package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tooxie/statista-demo-app/internal/models"
)

// SQLiteStorage implements Storage using SQLite. Records and their
// embeddings live in a single table; the embedding column holds the raw
// little-endian float32 blob.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
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

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS statistics (
		id INTEGER PRIMARY KEY,
		title TEXT,
		subject TEXT,
		description TEXT,
		link TEXT,
		date TEXT,
		teaser_image_url TEXT,
		embedding BLOB NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// PutStatistic inserts a record with its embedding. INSERT OR REPLACE gives
// duplicate ids last-wins semantics.
func (s *SQLiteStorage) PutStatistic(ctx context.Context, stat *models.Statistic, embedding []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO statistics
		 (id, title, subject, description, link, date, teaser_image_url, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stat.ID, stat.Title, stat.Subject, stat.Description,
		stat.Link, stat.Date, stat.TeaserImageURL, EncodeEmbedding(embedding),
	)
	return err
}

// GetStatistic returns the record for id.
func (s *SQLiteStorage) GetStatistic(ctx context.Context, id int64) (*models.Statistic, error) {
	var stat models.Statistic
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, subject, description, link, date, teaser_image_url
		 FROM statistics WHERE id = ?`, id,
	).Scan(&stat.ID, &stat.Title, &stat.Subject, &stat.Description,
		&stat.Link, &stat.Date, &stat.TeaserImageURL)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

// AllEmbeddings returns every (id, embedding) pair in ascending id order.
func (s *SQLiteStorage) AllEmbeddings(ctx context.Context) ([]StoredEmbedding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, embedding FROM statistics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEmbedding
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		vec, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", id, err)
		}
		out = append(out, StoredEmbedding{ID: id, Vector: vec})
	}
	return out, rows.Err()
}

// CountStatistics returns the total number of records.
func (s *SQLiteStorage) CountStatistics(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM statistics`).Scan(&count)
	return count, err
}

// Ping verifies the database is reachable.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
