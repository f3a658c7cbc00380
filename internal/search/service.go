// Package search provides the query service: embed, nearest-neighbor
// lookup, and hydration back to full records.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tooxie/statista-demo-app/internal/embedding"
	"github.com/tooxie/statista-demo-app/internal/models"
	"github.com/tooxie/statista-demo-app/internal/storage"
	"github.com/tooxie/statista-demo-app/internal/vector"
)

var (
	// ErrIndexUnavailable is returned when no similarity index was built
	// (empty corpus); the service is up but cannot answer queries.
	ErrIndexUnavailable = errors.New("search index not initialized")

	// ErrInvalidQuery is returned for malformed queries, before any
	// embedding or search work is done.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbedding is returned when the query text could not be embedded.
	ErrEmbedding = errors.New("query embedding failed")
)

// Service answers semantic search queries. Its dependencies are read-only
// after startup, so a single Service is safely shared by concurrent callers.
type Service struct {
	storage  storage.Storage
	embedder embedding.Embedder
	index    *vector.FlatIndex // nil when the corpus was empty at startup
	logger   *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger enables logging on the service.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a query service. index may be nil, in which case every
// query fails with ErrIndexUnavailable.
func NewService(store storage.Storage, embedder embedding.Embedder, index *vector.FlatIndex, opts ...ServiceOption) *Service {
	s := &Service{
		storage:  store,
		embedder: embedder,
		index:    index,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find embeds the query text, retrieves the query.Limit nearest records and
// hydrates them, returning records in ascending-distance order. A hydration
// miss drops that entry rather than failing the query.
func (s *Service) Find(ctx context.Context, query *models.SearchQuery) (*models.FindResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if s.index == nil {
		return nil, ErrIndexUnavailable
	}

	queryVec, err := s.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	k := query.Limit
	if k > s.index.Size() {
		k = s.index.Size()
	}
	hits, err := s.index.Search(queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]*models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		stat, err := s.storage.GetStatistic(ctx, hit.ID)
		if err != nil {
			// Should not happen while the corpus is immutable; drop the
			// entry and keep the rest of the results.
			s.logger.Warn("hydration miss, skipping result",
				zap.Int64("id", hit.ID), zap.Error(err))
			continue
		}
		results = append(results, &models.SearchResult{
			Statistic: stat,
			Distance:  hit.Distance,
			Rank:      len(results) + 1,
		})
	}

	return &models.FindResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(startTime).Milliseconds(),
		Query:     query.Query,
	}, nil
}

// IndexSize returns the number of vectors in the index, or 0 when no index
// was built.
func (s *Service) IndexSize() int {
	if s.index == nil {
		return 0
	}
	return s.index.Size()
}
