package vecindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force in-memory index using cosine similarity.
// It is the session-scoped default: built during ingestion, discarded
// when the session ends or the document is re-ingested.
//
// Search results are totally ordered: descending similarity, with
// insertion order breaking ties, so repeated searches over an unchanged
// index return identical output. An RWMutex lets searches proceed
// concurrently while ingestion holds the write lock.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	segments  []Segment
}

// NewMemoryIndex creates an empty index. The embedding dimension is
// fixed by the first batch added.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Add(_ context.Context, segments []Segment) error {
	if len(segments) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dim := m.dimension
	if dim == 0 {
		dim = len(segments[0].Embedding)
	}

	// Validate the whole batch before touching the stored slice so a
	// failing segment cannot leave a half-indexed document behind.
	for _, seg := range segments {
		if len(seg.Embedding) != dim {
			return fmt.Errorf("%w: got %d, index uses %d", ErrDimensionMismatch, len(seg.Embedding), dim)
		}
	}

	m.dimension = dim
	m.segments = append(m.segments, segments...)
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, query []float32, k int, where map[string]string) ([]Match, error) {
	if k <= 0 {
		k = 10
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dimension > 0 && len(query) != m.dimension {
		return nil, fmt.Errorf("%w: query has %d, index uses %d", ErrDimensionMismatch, len(query), m.dimension)
	}

	var matches []Match
	for _, seg := range m.segments {
		if !seg.matchesWhere(where) {
			continue
		}
		matches = append(matches, Match{
			Segment:    seg,
			Similarity: cosineSimilarity(query, seg.Embedding),
		})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (m *MemoryIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.segments)
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
