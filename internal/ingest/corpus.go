// Package ingest populates the record store from the corpus source and
// builds the similarity index. It runs once at startup; the corpus is
// immutable for the process lifetime.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tooxie/statista-demo-app/internal/models"
)

// ReadCorpus reads the corpus JSON file: an ordered array of statistics
// records. Order is preserved; declared ids are trusted as unique.
func ReadCorpus(path string) ([]*models.Statistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	var stats []*models.Statistic
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	return stats, nil
}
