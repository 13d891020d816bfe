package rag

import (
	"context"
	"fmt"

	"github.com/urbanthreadz/brandchat/internal/embeddings"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// Role determines which segments are eligible for retrieval.
type Role string

const (
	// RoleUser sees public segments only.
	RoleUser Role = "user"
	// RoleAdmin sees public and internal segments.
	RoleAdmin Role = "admin"
)

// DefaultTopK is how many segments a retrieval returns by default.
const DefaultTopK = 4

// Retriever embeds a question and fetches the top matching segments
// from the index, applying the role's access filter. This is the
// single enforcement point for segment visibility.
type Retriever struct {
	embedder embeddings.Embedder
	index    vecindex.Index
	topK     int
}

// NewRetriever creates a Retriever. topK values below 1 fall back to
// DefaultTopK.
func NewRetriever(embedder embeddings.Embedder, index vecindex.Index, topK int) *Retriever {
	if topK < 1 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
	}
}

// Retrieve returns the segments most similar to the question that the
// role is allowed to see. An index with zero segments fails with
// vecindex.ErrEmptyIndex.
func (r *Retriever) Retrieve(ctx context.Context, question string, role Role) ([]vecindex.Segment, error) {
	if r.index.Count() == 0 {
		return nil, vecindex.ErrEmptyIndex
	}

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding for question", embeddings.ErrService)
	}

	var where map[string]string
	if role != RoleAdmin {
		where = map[string]string{vecindex.MetaAccess: vecindex.AccessPublic}
	}

	matches, err := r.index.Search(ctx, vectors[0], r.topK, where)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	segments := make([]vecindex.Segment, len(matches))
	for i, m := range matches {
		segments[i] = m.Segment
	}
	return segments, nil
}
