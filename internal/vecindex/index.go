package vecindex

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when a segment's embedding length
// differs from the dimension established by the index's first batch.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrEmptyIndex is returned when a retrieval is attempted against an
// index holding zero segments (no document has been ingested yet).
var ErrEmptyIndex = errors.New("no document indexed")

// Index stores (embedding, text, metadata) segments and supports
// nearest-neighbor retrieval by cosine similarity. Implementations are
// append-only: no update or delete is exposed during a session.
type Index interface {
	// Add appends segments. It is all-or-nothing: a dimension mismatch
	// anywhere in the batch fails with ErrDimensionMismatch and leaves
	// the index unchanged.
	Add(ctx context.Context, segments []Segment) error

	// Search returns up to k segments ranked by descending similarity
	// to the query vector. If where is non-empty, only segments whose
	// metadata matches every pair participate; no match yields an
	// empty result, not an error.
	Search(ctx context.Context, query []float32, k int, where map[string]string) ([]Match, error)

	// Count returns the number of stored segments.
	Count() int
}
