package vecindex

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/urbanthreadz/brandchat/internal/embeddings"
)

const collectionName = "documents"

// ChromemIndex implements Index on top of chromem-go. Unlike
// MemoryIndex it can export the collection to disk, which the ingest
// command uses to hand a pre-built index to the server.
type ChromemIndex struct {
	mu         sync.Mutex
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
	dimension  int
}

// NewChromemIndex creates a new in-memory chromem-backed index. The
// embedder is only consulted when a query or document arrives without
// a precomputed embedding.
func NewChromemIndex(embedder embeddings.Embedder) (*ChromemIndex, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemIndex{
		db:         db,
		collection: col,
		embedFunc:  ef,
		dimension:  embedder.Dimensions(),
	}, nil
}

func (c *ChromemIndex) Add(ctx context.Context, segments []Segment) error {
	if len(segments) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dim := c.dimension
	if dim == 0 {
		dim = len(segments[0].Embedding)
	}

	// Validate before delegating so a bad batch never half-indexes.
	for _, seg := range segments {
		if len(seg.Embedding) != dim {
			return fmt.Errorf("%w: got %d, index uses %d", ErrDimensionMismatch, len(seg.Embedding), dim)
		}
	}
	c.dimension = dim

	docs := make([]chromem.Document, len(segments))
	for i, seg := range segments {
		docs[i] = chromem.Document{
			ID:        seg.ID,
			Content:   seg.Text,
			Embedding: seg.Embedding,
			Metadata:  seg.Metadata,
		}
	}

	return c.collection.AddDocuments(ctx, docs, 1)
}

func (c *ChromemIndex) Search(ctx context.Context, query []float32, k int, where map[string]string) ([]Match, error) {
	if k <= 0 {
		k = 10
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// chromem-go requires nResults <= collection size.
	count := c.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	if len(where) == 0 {
		where = nil
	}

	results, err := c.collection.QueryEmbedding(ctx, query, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Segment: Segment{
				ID:        r.ID,
				Text:      r.Content,
				Embedding: r.Embedding,
				Metadata:  r.Metadata,
			},
			Similarity: r.Similarity,
		}
	}
	return matches, nil
}

func (c *ChromemIndex) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collection.Count()
}

// Persist exports the index to the given file (gob, gzip-compressed).
func (c *ChromemIndex) Persist(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.ExportToFile(path, true, "")
}

// Load restores a previously persisted index.
func (c *ChromemIndex) Load(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire the collection reference after import.
	col := c.db.GetCollection(collectionName, c.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	c.collection = col
	return nil
}
