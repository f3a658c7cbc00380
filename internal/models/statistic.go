// Package models defines core data structures for statistics records, queries, and search results.
package models

// Statistic represents a single statistics record from the corpus.
// Records are immutable after ingestion; identity is ID.
type Statistic struct {
	ID             int64  `json:"id" db:"id"`
	Title          string `json:"title" db:"title"`
	Subject        string `json:"subject" db:"subject"`
	Description    string `json:"description" db:"description"`
	Link           string `json:"link" db:"link"`
	Date           string `json:"date" db:"date"`
	TeaserImageURL string `json:"teaser_image_url" db:"teaser_image_url"`
}

// EmbeddingText returns the text that is embedded for this record:
// title, subject and description joined by spaces.
func (s *Statistic) EmbeddingText() string {
	return s.Title + " " + s.Subject + " " + s.Description
}
