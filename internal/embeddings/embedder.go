package embeddings

import (
	"context"
	"errors"
)

// ErrService indicates a failure talking to the embedding service
// (network, quota, malformed response). The core assumes no retry
// policy; callers decide whether to back off and try again.
var ErrService = errors.New("embedding service error")

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
