package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestIngest_PDFSuccess(t *testing.T) {
	h := newHarness(t)

	var states []domain.IngestState
	res, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		ModelName:   "Geo Model",
		Type:        domain.IngestionPDF,
		FileName:    "doc.pdf",
		File:        []byte("The capital of France is Paris."),
		ContentType: "application/pdf",
	}, func(s domain.IngestState) { states = append(states, s) })
	require.NoError(t, err)

	assert.Equal(t, "Geo Model", res.ModelName)
	assert.Equal(t, "rag-model-geo-model", res.IndexName)
	assert.Len(t, res.APIKey, 64)
	assert.Equal(t, 1, res.Chunks)
	assert.False(t, res.Truncated)

	assert.Equal(t, []domain.IngestState{
		domain.StateValidating,
		domain.StateIndexEnsuring,
		domain.StateExtracting,
		domain.StateEmbedding,
		domain.StateUpserting,
		domain.StateRegistering,
		domain.StateDone,
	}, states)

	assert.Equal(t, 1, h.vectors.Count("rag-model-geo-model"))

	model, err := h.registry.Authenticate(context.Background(), "Geo Model", res.APIKey)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBackendTag, model.LLMModel)
}

func TestIngest_URLSuccess(t *testing.T) {
	h := newHarness(t)
	h.web["https://example.com/about"] = "We build rockets"

	res, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		ModelName: "site",
		LLMModel:  "claude",
		Type:      domain.IngestionURL,
		URL:       "https://example.com/about",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chunks)

	model, err := h.registry.GetByName(context.Background(), "site")
	require.NoError(t, err)
	assert.Equal(t, "claude", model.LLMModel)
}

func TestIngest_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.IngestRequest
		wantErr error
	}{
		{"empty name", domain.IngestRequest{Type: domain.IngestionPDF, File: []byte("x")}, domain.ErrInvalidInput},
		{"unknown type", domain.IngestRequest{ModelName: "m", Type: "docx", File: []byte("x")}, domain.ErrInvalidInput},
		{"pdf without file", domain.IngestRequest{ModelName: "m", Type: domain.IngestionPDF}, domain.ErrInvalidInput},
		{"pdf with url", domain.IngestRequest{ModelName: "m", Type: domain.IngestionPDF, File: []byte("x"), URL: "https://a"}, domain.ErrInvalidInput},
		{"not a pdf", domain.IngestRequest{ModelName: "m", Type: domain.IngestionPDF, File: []byte("x"), ContentType: "image/png"}, domain.ErrInvalidInput},
		{"url missing", domain.IngestRequest{ModelName: "m", Type: domain.IngestionURL}, domain.ErrInvalidInput},
		{"url with file", domain.IngestRequest{ModelName: "m", Type: domain.IngestionURL, URL: "https://a", File: []byte("x")}, domain.ErrInvalidInput},
		{"unknown backend", domain.IngestRequest{ModelName: "m", LLMModel: "gpt-9", Type: domain.IngestionPDF, File: []byte("x")}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			var last domain.IngestState
			_, err := h.ingest.Ingest(context.Background(), tt.req, func(s domain.IngestState) { last = s })

			require.ErrorIs(t, err, tt.wantErr)
			var stageErr *domain.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, domain.StateValidating, stageErr.State)
			assert.Equal(t, domain.StateFailed, last)
			assert.Zero(t, h.index.ensureCalls, "no index work before validation passes")
		})
	}
}

func TestIngest_DuplicateNameLeavesFirstModelIntact(t *testing.T) {
	h := newHarness(t)
	first := h.ingestPDF(t, "geo", "doc.pdf", "The capital of France is Paris.")

	_, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		ModelName: "geo",
		Type:      domain.IngestionPDF,
		FileName:  "other.pdf",
		File:      []byte("Completely different text about bananas."),
	}, nil)
	require.ErrorIs(t, err, domain.ErrDuplicateName)

	assert.Equal(t, 1, h.vectors.Count(first.IndexName))
	_, err = h.registry.Authenticate(context.Background(), "geo", first.APIKey)
	assert.NoError(t, err)
}

func TestIngest_NameSharingIndexIsRejected(t *testing.T) {
	h := newHarness(t)
	first := h.ingestPDF(t, "Geo Model", "a.pdf", "The capital of France is Paris.")

	for _, name := range []string{"geo model", "GEO   MODEL"} {
		t.Run(name, func(t *testing.T) {
			ensures := h.index.ensureCalls
			_, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
				ModelName: name,
				Type:      domain.IngestionPDF,
				FileName:  "b.pdf",
				File:      []byte("Completely different text about bananas."),
			}, nil)
			require.ErrorIs(t, err, domain.ErrDuplicateName)
			assert.Equal(t, ensures, h.index.ensureCalls, "rejected before touching the index")

			model, err := h.registry.GetByName(context.Background(), name)
			require.NoError(t, err)
			assert.Nil(t, model)
		})
	}

	assert.Equal(t, 1, h.vectors.Count(first.IndexName))
	matches, err := h.vectors.Search(context.Background(), first.IndexName, mustEmbed(t, h, "Paris"), 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a.pdf", domain.MetadataString(matches[0].Metadata, "source"))

	_, err = h.registry.Authenticate(context.Background(), "Geo Model", first.APIKey)
	assert.NoError(t, err)
}

func TestIngest_TruncatesLongDocuments(t *testing.T) {
	h := newHarness(t)
	long := repeatWords("lorem", 4000) // 23,999 characters

	res := h.ingestPDF(t, "long", "long.pdf", long)
	assert.True(t, res.Truncated)

	matches, err := h.vectors.Search(context.Background(), res.IndexName, mustEmbed(t, h, "lorem"), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, true, matches[0].Metadata["isTextTruncated"])
	assert.Len(t, []rune(domain.MetadataString(matches[0].Metadata, "text")), domain.MaxChunkChars)
}

func TestIngest_StageErrors(t *testing.T) {
	t.Run("extraction failure", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
			ModelName: "m", Type: domain.IngestionURL, URL: "https://unknown.example",
		}, nil)
		require.ErrorIs(t, err, domain.ErrFetch)
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StateExtracting, stageErr.State)
	})

	t.Run("empty extraction", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
			ModelName: "m", Type: domain.IngestionPDF, File: []byte("   "),
		}, nil)
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})

	t.Run("embedding failure", func(t *testing.T) {
		h := newHarness(t, withEmbedder(&bagEmbedder{dims: testDims, err: domain.ErrEmbedding}))
		_, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
			ModelName: "m", Type: domain.IngestionPDF, File: []byte("text"),
		}, nil)
		require.ErrorIs(t, err, domain.ErrEmbedding)
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StateEmbedding, stageErr.State)

		model, _ := h.registry.GetByName(context.Background(), "m")
		assert.Nil(t, model)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		h := newHarness(t, withEmbedder(&shortEmbedder{bagEmbedder{dims: testDims}}))
		_, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
			ModelName: "m", Type: domain.IngestionPDF, File: []byte("text"),
		}, nil)
		assert.ErrorIs(t, err, domain.ErrIngestion)
		assert.ErrorIs(t, err, domain.ErrIndexMismatch)
	})

	t.Run("upsert failure", func(t *testing.T) {
		h := newHarness(t)
		h.index.upsertErr = errors.New("disk full")
		_, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
			ModelName: "m", Type: domain.IngestionPDF, File: []byte("text"),
		}, nil)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "disk full"))
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StateUpserting, stageErr.State)
	})
}

func TestIngest_EnsureIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.vectors.Ensure(ctx, "rag-model-x", testDims, domain.MetricCosine))
	require.NoError(t, h.vectors.Ensure(ctx, "rag-model-x", testDims, domain.MetricCosine))

	names, err := h.vectors.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rag-model-x"}, names)
}

func mustEmbed(t *testing.T, h *harness, text string) []float32 {
	t.Helper()
	v, err := h.embedder.Embed(context.Background(), text)
	require.NoError(t, err)
	return v
}
