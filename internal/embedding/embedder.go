// Package embedding provides text embedding via ONNX with a deterministic fallback.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations must be
// deterministic for a fixed model: the same text always yields the same
// vector. Embedders are safe for concurrent use after construction.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
