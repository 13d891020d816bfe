package ingest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/urbanthreadz/brandchat/internal/embeddings"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// embedBatchSize is how many chunks each concurrent embedding call
// carries. The embedder may batch further internally.
const embedBatchSize = 16

// ProgressFunc reports ingestion progress as chunks finish embedding.
type ProgressFunc func(done, total int)

// Ingestor runs the ingestion pipeline: load pages, chunk, embed
// concurrently, then index in a single all-or-nothing append.
type Ingestor struct {
	embedder    embeddings.Embedder
	index       vecindex.Index
	chunker     Chunker
	concurrency int
}

// NewIngestor creates an Ingestor. concurrency bounds the number of
// in-flight embedding calls; values below 1 mean sequential.
func NewIngestor(embedder embeddings.Embedder, index vecindex.Index, chunker Chunker, concurrency int) *Ingestor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Ingestor{
		embedder:    embedder,
		index:       index,
		chunker:     chunker,
		concurrency: concurrency,
	}
}

// Ingest reads one PDF document and indexes it under the given
// business identifier and access level. It returns the number of
// segments indexed. Any failure aborts the whole document: the index
// is never left with a partial batch.
func (ing *Ingestor) Ingest(ctx context.Context, r io.ReaderAt, size int64, businessID, access string, onProgress ProgressFunc) (int, error) {
	pages, err := LoadPDF(r, size)
	if err != nil {
		return 0, err
	}

	return ing.IngestPages(ctx, pages, businessID, access, onProgress)
}

// IngestPages chunks, embeds and indexes already-loaded pages. Split
// out from Ingest so callers with non-PDF page sources can reuse the
// pipeline.
func (ing *Ingestor) IngestPages(ctx context.Context, pages []Page, businessID, access string, onProgress ProgressFunc) (int, error) {
	if access != vecindex.AccessPublic && access != vecindex.AccessInternal {
		return 0, fmt.Errorf("invalid access level %q: must be %q or %q", access, vecindex.AccessPublic, vecindex.AccessInternal)
	}
	if businessID == "" {
		return 0, fmt.Errorf("business identifier is required")
	}

	segments := ing.chunker.SplitPages(pages, businessID, access)
	if len(segments) == 0 {
		return 0, nil
	}

	if err := ing.embedSegments(ctx, segments, onProgress); err != nil {
		return 0, err
	}

	if err := ing.index.Add(ctx, segments); err != nil {
		return 0, err
	}
	return len(segments), nil
}

// embedSegments fills in each segment's embedding, issuing bounded
// concurrent calls to the embedding service. Each chunk embeds
// independently, so order of completion does not matter; results land
// at their segment's position. The first failure cancels the rest.
func (ing *Ingestor) embedSegments(ctx context.Context, segments []vecindex.Segment, onProgress ProgressFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := len(segments)
	sem := make(chan struct{}, ing.concurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int64
	)

	for start := 0; start < total; start += embedBatchSize {
		end := start + embedBatchSize
		if end > total {
			end = total
		}

		select {
		case <-ctx.Done():
			mu.Lock()
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			mu.Unlock()
		case sem <- struct{}{}:
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := ctx.Err(); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}

				texts := make([]string, end-start)
				for i := start; i < end; i++ {
					texts[i-start] = segments[i].Text
				}

				vectors, err := ing.embedder.Embed(ctx, texts)
				if err == nil && len(vectors) != len(texts) {
					err = fmt.Errorf("%w: got %d embeddings for %d chunks", embeddings.ErrService, len(vectors), len(texts))
				}
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}

				for i := start; i < end; i++ {
					segments[i].Embedding = vectors[i-start]
				}

				count := atomic.AddInt64(&done, int64(end-start))
				if onProgress != nil {
					onProgress(int(count), total)
				}
			}(start, end)
		}

		mu.Lock()
		stop := firstErr != nil
		mu.Unlock()
		if stop {
			break
		}
	}

	wg.Wait()
	return firstErr
}
