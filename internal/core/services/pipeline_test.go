package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/memory"
	vectormemory "github.com/custodia-labs/ragkit/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/postprocessors/chunker"
)

// harness wires the ingestion, query and model services over in-memory adapters.
type harness struct {
	store      *flakyStore
	registry   *Registry
	vectors    *vectormemory.Index
	index      *flakyIndex
	embedder   driven.EmbeddingService
	completion *echoCompletion
	web        pagesWeb

	ingest *IngestionService
	query  *QueryService
	models *ModelService
}

type harnessOption func(*harness)

func withEmbedder(e driven.EmbeddingService) harnessOption {
	return func(h *harness) { h.embedder = e }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		store:      &flakyStore{ModelStore: memory.NewModelStore()},
		vectors:    vectormemory.New(),
		embedder:   &bagEmbedder{dims: testDims},
		completion: &echoCompletion{},
		web:        pagesWeb{},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.index = &flakyIndex{VectorIndex: h.vectors}
	h.registry = NewRegistry(h.store)

	router := staticRouter{domain.DefaultBackendTag: h.completion, "claude": h.completion}

	h.ingest = NewIngestionService(IngestionDeps{
		Registry: h.registry,
		Index:    h.index,
		Embedder: h.embedder,
		Router:   router,
		PDF:      textPDF{},
		Web:      h.web,
		Chunker:  chunker.New(),
	})
	h.query = NewQueryService(h.registry, h.embedder, h.index, router, nil, domain.DefaultTopK)
	h.models = NewModelService(h.registry, h.index)
	return h
}

func (h *harness) ingestPDF(t *testing.T, name, filename, text string) *domain.IngestResult {
	t.Helper()
	res, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		ModelName: name,
		Type:      domain.IngestionPDF,
		FileName:  filename,
		File:      []byte(text),
	}, nil)
	require.NoError(t, err)
	return res
}

func repeatWords(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}
