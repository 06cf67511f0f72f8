package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

type fakeCompletion struct {
	model   string
	calls   int
	pingErr error
	closed  bool
	last    driven.CompletionRequest
}

func (f *fakeCompletion) Complete(_ context.Context, req driven.CompletionRequest) (string, error) {
	f.calls++
	f.last = req
	return "answer", nil
}
func (f *fakeCompletion) ModelName() string            { return f.model }
func (f *fakeCompletion) Ping(_ context.Context) error { return f.pingErr }
func (f *fakeCompletion) Close() error                 { f.closed = true; return nil }

type fakeEmbedding struct{ calls int }

func (f *fakeEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return []float32{1}, nil
}
func (f *fakeEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	return make([][]float32, len(texts)), nil
}
func (f *fakeEmbedding) Dimensions() int              { return 1 }
func (f *fakeEmbedding) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedding) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedding) Close() error                 { return nil }

func TestCompletionRouter(t *testing.T) {
	router := NewCompletionRouter()
	a := &fakeCompletion{model: "a"}
	b := &fakeCompletion{model: "b"}
	router.Register("zeta", a)
	router.Register("alpha", b)

	assert.Equal(t, []string{"alpha", "zeta"}, router.Tags())

	got, err := router.Backend("zeta")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = router.Backend("missing")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	require.NoError(t, router.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.EmbeddingSettings
		wantErr  error
	}{
		{
			name:     "ollama",
			settings: domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "mxbai-embed-large"},
		},
		{
			name:     "openai",
			settings: domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Dimensions: 1024},
		},
		{
			name:     "openai without key",
			settings: domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  domain.ErrMissingCredential,
		},
		{
			name:     "anthropic has no embeddings",
			settings: domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:  domain.ErrUnsupportedType,
		},
		{
			name:     "unknown",
			settings: domain.EmbeddingSettings{Provider: "cohere"},
			wantErr:  domain.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings, time.Second)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestCreateCompletionClient(t *testing.T) {
	for _, p := range []domain.AIProvider{
		domain.AIProviderOllama,
		domain.AIProviderOpenAI,
		domain.AIProviderAnthropic,
		domain.AIProviderSambanova,
	} {
		t.Run(string(p), func(t *testing.T) {
			client, err := CreateCompletionClient(domain.BackendSettings{Tag: "t", Provider: p, APIKey: "k"}, time.Second)
			require.NoError(t, err)
			assert.NotEmpty(t, client.ModelName())
		})
	}

	_, err := CreateCompletionClient(domain.BackendSettings{Provider: "mystery"}, time.Second)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestCreateVectorIndex(t *testing.T) {
	idx, err := CreateVectorIndex(domain.VectorIndexSettings{Provider: domain.VectorProviderMemory}, time.Second)
	require.NoError(t, err)
	assert.NotNil(t, idx)

	_, err = CreateVectorIndex(domain.VectorIndexSettings{Provider: "pinecone"}, time.Second)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestInitialise_SkipsUnconfiguredBackends(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama}
	settings.VectorIndex.Provider = domain.VectorProviderMemory
	settings.Backends = []domain.BackendSettings{
		{Tag: "local", Provider: domain.AIProviderOllama},
		{Tag: "claude", Provider: domain.AIProviderAnthropic},
	}

	result, err := Initialise(settings)
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, []string{"local"}, result.Completions.Tags())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "claude")
}

func TestLimitWrappers(t *testing.T) {
	assert.Nil(t, NewLimiter(0))

	embed := &fakeEmbedding{}
	assert.Same(t, embed, LimitEmbedding(embed, nil))

	limiter := rate.NewLimiter(rate.Inf, 1)
	limited := LimitEmbedding(embed, limiter)
	_, err := limited.EmbedBatch(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 1, embed.calls)
	assert.Equal(t, "fake-embed", limited.ModelName())

	comp := &fakeCompletion{model: "m"}
	limitedComp := LimitCompletion(comp, limiter)
	_, err = limitedComp.Complete(context.Background(), driven.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, comp.calls)
}

func TestLimitWrappers_CancelledContext(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	require.True(t, limiter.Allow()) // drain the single token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	comp := &fakeCompletion{}
	_, err := LimitCompletion(comp, limiter).Complete(ctx, driven.CompletionRequest{})
	assert.Error(t, err)
	assert.Zero(t, comp.calls)
}

func TestValidate(t *testing.T) {
	router := NewCompletionRouter()
	router.Register("good", &fakeCompletion{model: "g"})
	router.Register("bad", &fakeCompletion{model: "b", pingErr: errors.New("down")})

	checks := Validate(context.Background(), &InitResult{
		EmbeddingService: &fakeEmbedding{},
		Completions:      router,
	})

	require.Len(t, checks, 3)
	assert.Equal(t, "embedding", checks[0].Name)
	assert.True(t, checks[0].OK())
	assert.Equal(t, "backend bad", checks[1].Name)
	assert.False(t, checks[1].OK())
	assert.Equal(t, "backend good", checks[2].Name)
	assert.True(t, checks[2].OK())
}

func TestWithGenerationDefaults(t *testing.T) {
	comp := &fakeCompletion{}
	assert.Same(t, comp, WithGenerationDefaults(comp, 0, nil))

	tuned := WithGenerationDefaults(comp, 256, domain.Ptr(0.7))
	_, err := tuned.Complete(context.Background(), driven.CompletionRequest{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, 256, comp.last.MaxTokens)
	require.NotNil(t, comp.last.Temperature)
	assert.InDelta(t, 0.7, *comp.last.Temperature, 1e-9)

	_, err = tuned.Complete(context.Background(), driven.CompletionRequest{MaxTokens: 10, Temperature: domain.Ptr(0.1)})
	require.NoError(t, err)
	assert.Equal(t, 10, comp.last.MaxTokens)
	assert.InDelta(t, 0.1, *comp.last.Temperature, 1e-9)
}

func TestWithGenerationDefaults_ZeroTemperature(t *testing.T) {
	comp := &fakeCompletion{}

	deterministic := WithGenerationDefaults(comp, 0, domain.Ptr(0.0))
	assert.NotSame(t, comp, deterministic)
	_, err := deterministic.Complete(context.Background(), driven.CompletionRequest{Question: "q"})
	require.NoError(t, err)
	require.NotNil(t, comp.last.Temperature)
	assert.Zero(t, *comp.last.Temperature)

	_, err = WithGenerationDefaults(comp, 256, domain.Ptr(0.7)).Complete(context.Background(),
		driven.CompletionRequest{Temperature: domain.Ptr(0.0)})
	require.NoError(t, err)
	assert.Zero(t, *comp.last.Temperature, "an explicit zero on the request is kept")
}
