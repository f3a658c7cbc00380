package models

import "fmt"

// DefaultLimit is the result count used when a query does not specify one.
const DefaultLimit = 5

// SearchQuery represents a find request.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Validate ensures the query has valid fields and applies the default limit.
// An empty query or a negative limit is rejected before any embedding or
// search work is done.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", q.Limit)
	}
	return nil
}
