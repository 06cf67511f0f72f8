package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/core/services"
)

type fakeIngestion struct {
	last   domain.IngestRequest
	result *domain.IngestResult
	err    error
}

func (f *fakeIngestion) Ingest(_ context.Context, req domain.IngestRequest, observe driving.IngestObserver) (*domain.IngestResult, error) {
	f.last = req
	if observe != nil {
		for s := domain.StateValidating; s <= domain.StateDone; s++ {
			observe(s)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeQuery struct {
	last   domain.QueryRequest
	result *domain.QueryResult
	err    error
}

func (f *fakeQuery) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	if req.APIKey != "secret" {
		return nil, domain.ErrAuth
	}
	return f.result, nil
}

type fakeModels struct {
	models  []domain.Model
	deleted []string
}

func (f *fakeModels) List(_ context.Context) ([]domain.Model, error) {
	return f.models, nil
}

func (f *fakeModels) Get(_ context.Context, name string) (*domain.Model, error) {
	for i := range f.models {
		if f.models[i].Name == name {
			return &f.models[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeModels) Delete(ctx context.Context, name string) (*domain.Model, error) {
	m, err := f.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	f.deleted = append(f.deleted, name)
	return m, nil
}

type testServices struct {
	ingest *fakeIngestion
	query  *fakeQuery
	models *fakeModels
	config *memory.ConfigStore
}

// setupTestServices installs fakes for every driving port and returns a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingest: &fakeIngestion{result: &domain.IngestResult{
			ModelName: "geo", APIKey: "0123456789abcdef", IndexName: "rag-model-geo", Chunks: 1,
		}},
		query: &fakeQuery{result: &domain.QueryResult{
			Answer: "Paris",
			SourceDocuments: []domain.SourceDocument{{
				PageContent: "The capital of France is Paris.",
				Metadata:    map[string]any{"source": "doc.pdf"},
				Score:       0.87,
			}},
		}},
		models: &fakeModels{models: []domain.Model{
			{Name: "alpha", IndexName: "rag-model-alpha", LLMModel: "llama-3.1"},
			{Name: "geo", IndexName: "rag-model-geo", LLMModel: "claude"},
		}},
		config: memory.NewConfigStore(),
	}

	settingsService = services.NewSettingsService(ts.config).WithEnv(func(string) string { return "" })
	ingestionService = ts.ingest
	queryService = ts.query
	modelService = ts.models
	checkProviders = func(context.Context) []ai.Check {
		return []ai.Check{
			{Name: "embedding", Model: "text-embedding-3-small"},
			{Name: "backend llama-3.1", Model: "Meta-Llama-3.1-8B-Instruct", Err: errors.New("connection refused")},
		}
	}

	return ts, func() {
		settingsService = nil
		ingestionService = nil
		queryService = nil
		modelService = nil
		checkProviders = nil
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores every flag in the command tree to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
