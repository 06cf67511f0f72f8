package domain

// Extraction is the normalised text of one source plus its provenance.
type Extraction struct {
	// Text is the normalised plain text.
	Text string

	// Source is the original filename, URL or a generated placeholder.
	Source string
}

// ChunkMetadata is the payload stored alongside a chunk's vector.
type ChunkMetadata struct {
	// Source is the provenance tag of the owning document.
	Source string

	// Text is the capped chunk text, returned as context at query time.
	Text string

	// IsTextTruncated is set when capping discarded content.
	IsTextTruncated bool
}

// Chunk is the unit of text stored in the vector index.
type Chunk struct {
	// ID is stable for the chunk's lifetime.
	ID string

	// PageContent is the capped, normalised text.
	PageContent string

	// Position is the ordinal position within the document.
	Position int

	// Metadata is written to the index with the vector.
	Metadata ChunkMetadata
}

// Map renders the metadata as an index payload.
func (m ChunkMetadata) Map() map[string]any {
	return map[string]any{
		"source":          m.Source,
		"text":            m.Text,
		"isTextTruncated": m.IsTextTruncated,
	}
}

// VectorRecord is one point written to a vector index.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// VectorMatch is one similarity search hit.
type VectorMatch struct {
	ID string

	// Score is the similarity score; higher is closer.
	Score float64

	Metadata map[string]any
}

// SourceDocument is a retrieved chunk echoed back to the caller.
type SourceDocument struct {
	PageContent string         `json:"pageContent"`
	Metadata    map[string]any `json:"metadata"`
	Score       float64        `json:"score"`
}

// QueryRequest is a caller's question against one model.
type QueryRequest struct {
	ModelName string
	APIKey    string
	Message   string
}

// QueryResult is a generated answer plus the context it was grounded on.
type QueryResult struct {
	Answer          string           `json:"answer"`
	SourceDocuments []SourceDocument `json:"sourceDocuments"`
}

// MetadataString reads a string value from an index payload.
func MetadataString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
