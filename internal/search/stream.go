package search

import (
	"context"
	"time"

	"github.com/tooxie/statista-demo-app/internal/models"
)

const (
	// StreamLimit is the fixed result count for the streaming path. It is
	// intentionally a constant, not a caller parameter: streaming always
	// delivers the top 10.
	StreamLimit = 10

	// StreamInterval is the pause between emitted records. Deliberate
	// pacing to exercise incremental delivery, not a throughput control.
	StreamInterval = 100 * time.Millisecond
)

// FindStream runs the same search as Find with the fixed StreamLimit and
// delivers results one record at a time on the returned channel, pausing
// StreamInterval between records. The channel is closed after the last
// record. Cancelling ctx stops emission promptly. Errors from the search
// itself are returned up front, before any record is emitted.
func (s *Service) FindStream(ctx context.Context, text string) (<-chan *models.SearchResult, error) {
	resp, err := s.Find(ctx, &models.SearchQuery{Query: text, Limit: StreamLimit})
	if err != nil {
		return nil, err
	}

	ch := make(chan *models.SearchResult)
	go func() {
		defer close(ch)
		for i, result := range resp.Results {
			if i > 0 {
				select {
				case <-time.After(StreamInterval):
				case <-ctx.Done():
					return
				}
			}
			select {
			case ch <- result:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
