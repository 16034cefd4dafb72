package embeddings

import "context"

// Vector is a fixed-dimension embedding.
type Vector []float32

// Embedder encodes a batch of texts into vectors, one per input text.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)
}
