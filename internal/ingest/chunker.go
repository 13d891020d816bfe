package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Chunker splits page text into fixed-size overlapping segments.
// Adjacent segments share exactly Overlap characters except at text
// boundaries, and output is deterministic for identical input.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker returns a Chunker, applying defaults for non-positive
// size and clamping overlap below size.
func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size - 1
	}
	return Chunker{Size: size, Overlap: overlap}
}

// Split slices text into overlapping chunks. Runes, not bytes, so a
// multi-byte character is never cut in half. Empty or whitespace-only
// text yields zero chunks.
func (c Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= c.Size {
		return []string{text}
	}

	step := c.Size - c.Overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + c.Size
		if end >= n {
			chunks = append(chunks, string(runes[start:n]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// SplitPages chunks every page and attaches provenance metadata: the
// source page number plus the caller-supplied business identifier and
// access level. Segment IDs are deterministic so re-ingesting the same
// document produces the same identifiers.
func (c Chunker) SplitPages(pages []Page, businessID, access string) []vecindex.Segment {
	var segments []vecindex.Segment
	for _, page := range pages {
		for i, chunk := range c.Split(page.Text) {
			segments = append(segments, vecindex.Segment{
				ID:   fmt.Sprintf("%s:p%d:c%d", businessID, page.Number, i),
				Text: chunk,
				Metadata: map[string]string{
					vecindex.MetaBusinessID: businessID,
					vecindex.MetaAccess:     access,
					vecindex.MetaPage:       strconv.Itoa(page.Number),
				},
			})
		}
	}
	return segments
}
