package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func backendByTag(t *testing.T, settings *domain.AppSettings, tag string) domain.BackendSettings {
	t.Helper()
	for _, b := range settings.Backends {
		if b.Tag == tag {
			return b
		}
	}
	t.Fatalf("backend %q not found", tag)
	return domain.BackendSettings{}
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore()).WithEnv(envOf(nil))

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Storage.Driver, settings.Storage.Driver)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, domain.DefaultDimensions, settings.Embedding.Dimensions)
	assert.Equal(t, domain.DefaultTopK, settings.Retrieval.TopK)
	assert.Equal(t, domain.DefaultRequestTimeout, settings.HTTP.Timeout)
	assert.Equal(t, domain.ChunkSingle, settings.Chunking.Strategy)
	assert.Len(t, settings.Backends, len(defaults.Backends))
	assert.Empty(t, settings.Embedding.APIKey)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"storage":   map[string]any{"driver": "bolt"},
		"vector":    map[string]any{"provider": "memory", "dimension": 768},
		"embedding": map[string]any{"provider": "ollama"},
		"retrieval": map[string]any{"top_k": 8},
		"chunking":  map[string]any{"strategy": "overlap"},
		"http":      map[string]any{"timeout": "45s", "rate_limit_per_second": 2.5},
		"server":    map[string]any{"addr": ":9000"},
	})

	settings, err := NewSettingsService(store).WithEnv(envOf(nil)).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.StorageBolt, settings.Storage.Driver)
	assert.Equal(t, domain.VectorProviderMemory, settings.VectorIndex.Provider)
	assert.Equal(t, 768, settings.VectorIndex.Dimensions)
	assert.Equal(t, 768, settings.Embedding.Dimensions, "embedder follows the index dimension")
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Equal(t, domain.ChunkOverlap, settings.Chunking.Strategy)
	assert.Equal(t, 45*time.Second, settings.HTTP.Timeout)
	assert.InDelta(t, 2.5, settings.HTTP.RateLimit, 1e-9)
	assert.Equal(t, ":9000", settings.ServerAddr)
}

func TestSettingsService_TimeoutAsSeconds(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("http.timeout", 12)

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, settings.HTTP.Timeout)
}

func TestSettingsService_Secrets(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.api_key_env", "MY_EMBED_KEY")
	_ = store.Set("backends.claude.api_key", "literal-key")

	env := envOf(map[string]string{
		"MY_EMBED_KEY":      "embed-secret",
		"OPENAI_API_KEY":    "openai-secret",
		"SAMBANOVA_API_KEY": "sn-secret",
		"QDRANT_API_KEY":    "qdrant-secret",
	})

	settings, err := NewSettingsService(store).WithEnv(env).Get()
	require.NoError(t, err)

	assert.Equal(t, "embed-secret", settings.Embedding.APIKey, "named variable wins over the conventional one")
	assert.Equal(t, "qdrant-secret", settings.VectorIndex.APIKey)
	assert.Equal(t, "sn-secret", backendByTag(t, settings, domain.DefaultBackendTag).APIKey)
	assert.Equal(t, "literal-key", backendByTag(t, settings, "claude").APIKey)
	assert.Equal(t, "openai-secret", backendByTag(t, settings, "gpt-4o-mini").APIKey)
}

func TestSettingsService_Backends_OverrideAndAdd(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("backends.llama-3.1.max_tokens", 512)
	_ = store.Set("backends.llama-3.1.temperature", 0.0)
	_ = store.Set("backends.local-mistral.provider", "ollama")
	_ = store.Set("backends.local-mistral.model", "mistral")
	_ = store.Set("backends.local-mistral.base_url", "http://gpu:11434")

	settings, err := NewSettingsService(store).WithEnv(envOf(nil)).Get()
	require.NoError(t, err)

	llama := backendByTag(t, settings, "llama-3.1")
	assert.Equal(t, domain.AIProviderSambanova, llama.Provider)
	assert.Equal(t, 512, llama.MaxTokens)
	require.NotNil(t, llama.Temperature)
	assert.Zero(t, *llama.Temperature, "explicit zero overrides the default")

	mistral := backendByTag(t, settings, "local-mistral")
	assert.Equal(t, domain.AIProviderOllama, mistral.Provider)
	assert.Equal(t, "mistral", mistral.Model)
	assert.Equal(t, "http://gpu:11434", mistral.BaseURL)
	assert.True(t, mistral.IsConfigured())

	assert.Equal(t, "local-mistral", settings.Backends[len(settings.Backends)-1].Tag)
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults with keys are valid", func(t *testing.T) {
		env := envOf(map[string]string{"OPENAI_API_KEY": "k", "SAMBANOVA_API_KEY": "k"})
		service := NewSettingsService(memory.NewConfigStore()).WithEnv(env)
		assert.NoError(t, service.Validate())
	})

	t.Run("every problem is reported", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("storage.driver", "postgres")
		_ = store.Set("embedding.provider", "anthropic")
		_ = store.Set("retrieval.top_k", 50)
		_ = store.Set("chunking.strategy", "semantic")

		err := NewSettingsService(store).WithEnv(envOf(nil)).Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		msg := err.Error()
		assert.Contains(t, msg, "storage.driver")
		assert.Contains(t, msg, "cannot produce embeddings")
		assert.Contains(t, msg, "retrieval.top_k")
		assert.Contains(t, msg, "chunking.strategy")
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("embedding.provider", "ollama")
		_ = store.Set("embedding.dimensions", 768)
		_ = store.Set("backends.ollama.provider", "ollama")

		err := NewSettingsService(store).WithEnv(envOf(nil)).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "differs from vector.dimension")
	})
}

func TestSettingsService_SetAndLookup(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set("retrieval.top_k", 3))
	val, ok := service.Lookup("retrieval.top_k")
	require.True(t, ok)
	assert.Equal(t, 3, val)

	assert.ErrorIs(t, service.Set(" ", 1), domain.ErrInvalidInput)
}
