package vecindex

import (
	"context"
	"sync"
)

// Swappable wraps an Index and allows the whole index to be replaced
// atomically, e.g. when a new document upload supersedes the previous
// one. Readers always see either the old index or the new one, never a
// half-built state.
type Swappable struct {
	mu      sync.RWMutex
	current Index
}

// NewSwappable wraps the given initial index.
func NewSwappable(initial Index) *Swappable {
	return &Swappable{current: initial}
}

// Swap replaces the wrapped index.
func (s *Swappable) Swap(next Index) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

// Unwrap returns the currently wrapped index.
func (s *Swappable) Unwrap() Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Swappable) Add(ctx context.Context, segments []Segment) error {
	return s.Unwrap().Add(ctx, segments)
}

func (s *Swappable) Search(ctx context.Context, query []float32, k int, where map[string]string) ([]Match, error) {
	return s.Unwrap().Search(ctx, query, k, where)
}

func (s *Swappable) Count() int {
	return s.Unwrap().Count()
}
