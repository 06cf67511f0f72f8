package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexNameFor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "geo-model", "rag-model-geo-model"},
		{"uppercase", "GeoModel", "rag-model-geomodel"},
		{"spaces", "My Geo Model", "rag-model-my-geo-model"},
		{"whitespace run", "my \t  model", "rag-model-my-model"},
		{"newline", "a\nb", "rag-model-a-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IndexNameFor(tt.input))
		})
	}
}

func TestIndexNameFor_IsPure(t *testing.T) {
	assert.Equal(t, IndexNameFor("Some Name"), IndexNameFor("Some Name"))
}

func TestIngestionType_IsValid(t *testing.T) {
	assert.True(t, IngestionPDF.IsValid())
	assert.True(t, IngestionURL.IsValid())
	assert.False(t, IngestionType("docx").IsValid())
	assert.False(t, IngestionType("").IsValid())
}

func TestIngestState_String(t *testing.T) {
	tests := []struct {
		state    IngestState
		expected string
	}{
		{StateValidating, "validating"},
		{StateIndexEnsuring, "ensuring index"},
		{StateExtracting, "extracting"},
		{StateEmbedding, "embedding"},
		{StateUpserting, "upserting"},
		{StateRegistering, "registering"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{IngestState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestStageError(t *testing.T) {
	err := &StageError{State: StateExtracting, Err: ErrFetch}

	assert.Equal(t, "extracting: fetch failed", err.Error())
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestChunkMetadata_Map(t *testing.T) {
	m := ChunkMetadata{Source: "doc.pdf", Text: "hello", IsTextTruncated: true}.Map()

	assert.Equal(t, "doc.pdf", m["source"])
	assert.Equal(t, "hello", m["text"])
	assert.Equal(t, true, m["isTextTruncated"])
	assert.Equal(t, "doc.pdf", MetadataString(m, "source"))
	assert.Equal(t, "", MetadataString(m, "isTextTruncated"))
	assert.Equal(t, "", MetadataString(nil, "source"))
}
