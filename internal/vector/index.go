// Package vector provides an exact in-memory similarity index over record embeddings.
package vector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/viant/vec/search"
)

var (
	// ErrEmptyCorpus is returned when an index is built over zero entries.
	// The caller must treat the system as unavailable rather than construct
	// a degenerate index.
	ErrEmptyCorpus = errors.New("cannot build index over empty corpus")

	// ErrInvalidK is returned for non-positive k.
	ErrInvalidK = errors.New("k must be positive")
)

// Entry is an (id, embedding) pair loaded into the index at build time.
type Entry struct {
	ID     int64
	Vector []float32
}

// Result is a single nearest-neighbor hit. Distance is squared Euclidean.
type Result struct {
	ID       int64
	Distance float64
}

// FlatIndex is an exact flat (linear scan) nearest-neighbor index under
// squared Euclidean distance. It is a pure bulk-load of precomputed vectors:
// no distances are computed at build time. The index is immutable after
// construction and therefore safe for concurrent searches without locking.
type FlatIndex struct {
	ids        []int64
	vectors    [][]float32
	dimensions int
}

// NewFlatIndex bulk-loads entries into an index. Entry order is preserved
// and becomes the tie-break order for equal distances (first-built wins).
func NewFlatIndex(entries []Entry) (*FlatIndex, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCorpus
	}
	dim := len(entries[0].Vector)
	ids := make([]int64, len(entries))
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("entry %d: vector dimension %d, expected %d", e.ID, len(e.Vector), dim)
		}
		vec := make([]float32, dim)
		copy(vec, e.Vector)
		ids[i] = e.ID
		vectors[i] = vec
	}
	return &FlatIndex{ids: ids, vectors: vectors, dimensions: dim}, nil
}

// Search returns the k nearest entries to query, sorted by ascending squared
// Euclidean distance. Exact ties resolve by build order (stable sort).
// k larger than the corpus is clamped; k <= 0 fails with ErrInvalidK.
func (f *FlatIndex) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidK, k)
	}
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), f.dimensions)
	}
	if k > len(f.ids) {
		k = len(f.ids)
	}

	q := search.Float32s(query)
	scored := make([]Result, len(f.ids))
	for i, vec := range f.vectors {
		d := float64(q.EuclideanDistance(vec))
		scored[i] = Result{ID: f.ids[i], Distance: d * d}
	}
	// Stable sort keyed on distance only: equal distances keep their
	// build-time order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Distance < scored[j].Distance })

	return scored[:k], nil
}

// Size returns the number of vectors in the index.
func (f *FlatIndex) Size() int {
	return len(f.ids)
}

// Dimensions returns the embedding dimension the index was built with.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}
