package domain

import (
	"regexp"
	"strings"
	"time"
)

// IndexPrefix is prepended to every derived vector index name.
const IndexPrefix = "rag-model-"

// Model is a registered, queryable model backed by one vector index.
type Model struct {
	// Name is the unique, human-chosen public identifier.
	Name string

	// IndexName is derived from Name by IndexNameFor.
	IndexName string

	// APIKey is the raw key. It is only populated on the record
	// returned at creation time and is never persisted.
	APIKey string

	// APIKeyHash is the hex SHA-256 digest of the key, as stored.
	APIKeyHash string

	// LLMModel is the completion backend tag.
	LLMModel string

	// CreatedAt is when the model was registered.
	CreatedAt time.Time
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// IndexNameFor derives the vector index name for a model name.
// The mapping is pure: lowercase, whitespace runs become a single hyphen.
func IndexNameFor(name string) string {
	return IndexPrefix + whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// IngestionType selects how the source document is supplied.
type IngestionType string

// Supported ingestion types.
const (
	IngestionPDF IngestionType = "pdf"
	IngestionURL IngestionType = "url"
)

// IsValid returns true if the ingestion type is recognised.
func (t IngestionType) IsValid() bool {
	return t == IngestionPDF || t == IngestionURL
}

// IngestRequest describes a new model to materialise.
type IngestRequest struct {
	ModelName string
	LLMModel  string
	Type      IngestionType

	// FileName and File hold the uploaded PDF for IngestionPDF.
	FileName string
	File     []byte

	// ContentType is the declared MIME type of File, if known.
	ContentType string

	// URL is the page to fetch for IngestionURL.
	URL string
}

// IngestResult is returned once, when a model has been created.
type IngestResult struct {
	ModelName string `json:"modelName"`
	APIKey    string `json:"apiKey"`
	IndexName string `json:"indexName"`
	Chunks    int    `json:"chunks"`
	Truncated bool   `json:"truncated"`
}

// IngestState is a step of the ingestion state machine.
type IngestState int

// Ingestion states, in execution order.
const (
	StateValidating IngestState = iota
	StateIndexEnsuring
	StateExtracting
	StateEmbedding
	StateUpserting
	StateRegistering
	StateDone
	StateFailed
)

// String returns the state name.
func (s IngestState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateIndexEnsuring:
		return "ensuring index"
	case StateExtracting:
		return "extracting"
	case StateEmbedding:
		return "embedding"
	case StateUpserting:
		return "upserting"
	case StateRegistering:
		return "registering"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return unknownDescription
	}
}

// StageError reports the ingestion state in which a failure happened.
type StageError struct {
	State IngestState
	Err   error
}

func (e *StageError) Error() string {
	return e.State.String() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
