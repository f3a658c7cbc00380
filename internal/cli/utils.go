// Package cli provides output utilities for the statsearch command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tooxie/statista-demo-app/internal/models"
)

// FindOutputFormat is the format for find result output.
type FindOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText FindOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON FindOutputFormat = "json"
)

// WriteFindResults writes find results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteFindResults(w io.Writer, response *models.FindResponse, format FindOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeFindResultsText(w, response)
		return nil
	}
}

func writeFindResultsText(w io.Writer, response *models.FindResponse) {
	fmt.Fprintf(w, "\nFound %d results for %q in %dms\n\n", response.Total, response.Query, response.QueryTime)
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Distance: %.4f\n", result.Rank, result.Distance)
		fmt.Fprintf(w, "ID: %d\n", result.Statistic.ID)
		fmt.Fprintf(w, "Title: %s\n", result.Statistic.Title)
		if result.Statistic.Subject != "" {
			fmt.Fprintf(w, "Subject: %s\n", result.Statistic.Subject)
		}
		if result.Statistic.Description != "" {
			fmt.Fprintf(w, "\n%s\n", Truncate(result.Statistic.Description, 200))
		}
		fmt.Fprintln(w)
	}
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ParseFormat maps a --format flag value to a FindOutputFormat,
// defaulting to text for unknown values.
func ParseFormat(s string) FindOutputFormat {
	if strings.EqualFold(s, string(OutputJSON)) {
		return OutputJSON
	}
	return OutputText
}
