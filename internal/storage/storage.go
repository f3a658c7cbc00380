// Package storage defines the persistence interface for statistics records and their embeddings.
package storage

import (
	"context"
	"errors"

	"github.com/tooxie/statista-demo-app/internal/models"
)

// ErrNotFound is returned when a record id is not in the store.
var ErrNotFound = errors.New("statistic not found")

// StoredEmbedding pairs a record id with its embedding, in store order.
type StoredEmbedding struct {
	ID     int64
	Vector []float32
}

// Storage persists (record, embedding) pairs keyed by id. The store is
// written exactly once, at startup, before query traffic is accepted; all
// later access is read-only.
type Storage interface {
	// PutStatistic persists a record with its embedding. A duplicate id
	// overwrites the earlier entry (last-wins).
	PutStatistic(ctx context.Context, stat *models.Statistic, embedding []float32) error

	// GetStatistic returns the record for id, or an error wrapping
	// ErrNotFound if absent.
	GetStatistic(ctx context.Context, id int64) (*models.Statistic, error)

	// AllEmbeddings returns every (id, embedding) pair in ascending id
	// order. Used once, to build the similarity index.
	AllEmbeddings(ctx context.Context) ([]StoredEmbedding, error)

	// CountStatistics returns the number of stored records. Ingestion uses
	// it to decide whether the corpus is already loaded.
	CountStatistics(ctx context.Context) (int64, error)

	// Ping verifies the underlying storage is reachable (deep health check).
	Ping(ctx context.Context) error

	Close() error
}
