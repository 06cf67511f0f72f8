package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func newTestServer(t *testing.T, q *mockQueryService, m *mockModelService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Query: q, Models: m})
	require.NoError(t, err)
	return server
}

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		q := &mockQueryService{
			result: &domain.QueryResult{
				Answer: "Paris",
				SourceDocuments: []domain.SourceDocument{{
					PageContent: "The capital of France is Paris.",
					Metadata:    map[string]any{"source": "doc.pdf", "text": "The capital of France is Paris."},
					Score:       0.91,
				}},
			},
		}
		server := newTestServer(t, q, &mockModelService{})

		_, output, err := server.handleQuery(ctx, nil, QueryInput{
			Model: "geo", APIKey: "key", Message: "What is the capital of France?",
		})

		require.NoError(t, err)
		assert.Equal(t, "Paris", output.Answer)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "doc.pdf", output.Sources[0].Source)
		assert.Equal(t, "The capital of France is Paris.", output.Sources[0].Content)
		assert.Equal(t, 0.91, output.Sources[0].Score)

		assert.Equal(t, "geo", q.last.ModelName)
		assert.Equal(t, "key", q.last.APIKey)
	})

	t.Run("wraps auth failure", func(t *testing.T) {
		q := &mockQueryService{err: domain.ErrAuth}
		server := newTestServer(t, q, &mockModelService{})

		_, _, err := server.handleQuery(ctx, nil, QueryInput{Model: "geo", APIKey: "bad", Message: "q"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuth)
		assert.Contains(t, err.Error(), "geo")
	})
}

func TestServer_handleListModels(t *testing.T) {
	ctx := context.Background()

	t.Run("returns models", func(t *testing.T) {
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		m := &mockModelService{models: []domain.Model{
			{Name: "alpha", IndexName: "rag-model-alpha", LLMModel: "llama-3.1", CreatedAt: created},
			{Name: "beta", IndexName: "rag-model-beta", LLMModel: "claude"},
		}}
		server := newTestServer(t, &mockQueryService{}, m)

		_, output, err := server.handleListModels(ctx, nil, ListModelsInput{})
		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "alpha", output.Models[0].Name)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.Models[0].CreatedAt)
		assert.Equal(t, "claude", output.Models[1].LLMModel)
		assert.Empty(t, output.Models[1].CreatedAt)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		m := &mockModelService{err: errors.New("store closed")}
		server := newTestServer(t, &mockQueryService{}, m)

		_, _, err := server.handleListModels(ctx, nil, ListModelsInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store closed")
	})
}
