package models

// SearchResult is a single hit: the hydrated record plus its distance to the
// query embedding. Distance is squared Euclidean; smaller is more similar.
// It is exposed for observability and tests, not part of the record itself.
type SearchResult struct {
	Statistic *Statistic `json:"statistic"`
	Distance  float64    `json:"distance"`
	Rank      int        `json:"rank"`
}

// FindResponse is the response for a find request. Results are ordered by
// ascending distance.
type FindResponse struct {
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
}
