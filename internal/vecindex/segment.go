package vecindex

// Metadata keys every indexed segment carries. business_id and access
// are set at ingestion time and never mutated afterwards.
const (
	MetaBusinessID = "business_id"
	MetaAccess     = "access"
	MetaPage       = "page"
)

// Access levels for indexed segments.
const (
	AccessPublic   = "public"
	AccessInternal = "internal"
)

// Segment is a unit of indexed knowledge: a chunk of source text, its
// embedding, and provenance metadata.
type Segment struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// Match pairs a segment with its similarity score.
type Match struct {
	Segment    Segment
	Similarity float32
}

// matchesWhere reports whether the segment's metadata satisfies every
// key/value pair in where. An empty or nil where matches everything.
func (s Segment) matchesWhere(where map[string]string) bool {
	for k, v := range where {
		if s.Metadata[k] != v {
			return false
		}
	}
	return true
}
