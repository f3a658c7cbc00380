package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tooxie/statista-demo-app/internal/embedding"
	"github.com/tooxie/statista-demo-app/internal/storage"
	"github.com/tooxie/statista-demo-app/internal/vector"
)

// Loader populates the record store from a corpus file.
type Loader struct {
	storage  storage.Storage
	embedder embedding.Embedder
	logger   *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger enables logging on the loader.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader with the given dependencies.
func NewLoader(store storage.Storage, embedder embedding.Embedder, opts ...LoaderOption) *Loader {
	l := &Loader{
		storage:  store,
		embedder: embedder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Initialize loads the corpus at path into the store. Idempotent at the
// store level: when the store already contains records, nothing is read or
// embedded. Any failure is returned to the caller, which treats it as fatal
// at startup.
func (l *Loader) Initialize(ctx context.Context, path string) error {
	count, err := l.storage.CountStatistics(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	if count > 0 {
		l.logger.Info("store already populated, skipping ingestion", zap.Int64("records", count))
		return nil
	}

	stats, err := ReadCorpus(path)
	if err != nil {
		return err
	}

	for _, stat := range stats {
		vec, err := l.embedder.Embed(ctx, stat.EmbeddingText())
		if err != nil {
			return fmt.Errorf("failed to embed record %d: %w", stat.ID, err)
		}
		if err := l.storage.PutStatistic(ctx, stat, vec); err != nil {
			return fmt.Errorf("failed to store record %d: %w", stat.ID, err)
		}
	}

	l.logger.Info("corpus ingested", zap.String("path", path), zap.Int("records", len(stats)))
	return nil
}

// BuildIndex builds the flat similarity index from all stored embeddings.
// Must be called after Initialize and before query traffic starts; the
// index is frozen for the process lifetime. Fails with
// vector.ErrEmptyCorpus when the store is empty.
func BuildIndex(ctx context.Context, store storage.Storage) (*vector.FlatIndex, error) {
	stored, err := store.AllEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	entries := make([]vector.Entry, len(stored))
	for i, s := range stored {
		entries[i] = vector.Entry{ID: s.ID, Vector: s.Vector}
	}
	return vector.NewFlatIndex(entries)
}
