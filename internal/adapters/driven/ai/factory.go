// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/ragkit/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragkit/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/ragkit/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/ragkit/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragkit/internal/adapters/driven/llm/openai"
	sambanovallm "github.com/custodia-labs/ragkit/internal/adapters/driven/llm/sambanova"
	memoryvector "github.com/custodia-labs/ragkit/internal/adapters/driven/vector/memory"
	qdrantvector "github.com/custodia-labs/ragkit/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	Completions      *CompletionRouter
	VectorIndex      driven.VectorIndex
	Warnings         []string // Backends skipped because they are not configured.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.Completions != nil {
		r.Completions.Close()
	}
}

// Initialise builds the embedding service, every configured completion
// backend and the vector index. A backend missing its credential is skipped
// with a warning; the embedding service and vector index are required.
func Initialise(settings domain.AppSettings) (*InitResult, error) {
	limiter := NewLimiter(settings.HTTP.RateLimit)
	result := &InitResult{Completions: NewCompletionRouter()}

	embedder, err := CreateEmbeddingService(settings.Embedding, settings.HTTP.Timeout)
	if err != nil {
		return nil, err
	}
	result.EmbeddingService = LimitEmbedding(embedder, limiter)

	for _, backend := range settings.Backends {
		if !backend.IsConfigured() {
			msg := fmt.Sprintf("completion backend %q (%s) is not configured, skipping", backend.Tag, backend.Provider)
			result.Warnings = append(result.Warnings, msg)
			logger.Debug("%s", msg)
			continue
		}
		client, err := CreateCompletionClient(backend, settings.HTTP.Timeout)
		if err != nil {
			result.Close()
			return nil, fmt.Errorf("backend %q: %w", backend.Tag, err)
		}
		client = WithGenerationDefaults(client, backend.MaxTokens, backend.Temperature)
		result.Completions.Register(backend.Tag, LimitCompletion(client, limiter))
	}

	index, err := CreateVectorIndex(settings.VectorIndex, settings.HTTP.Timeout)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.VectorIndex = index

	return result, nil
}

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(settings domain.EmbeddingSettings, timeout time.Duration) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    timeout,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    timeout,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderAnthropic, domain.AIProviderSambanova:
		return nil, fmt.Errorf("%w: %s does not support embeddings, use ollama or openai",
			domain.ErrUnsupportedType, settings.Provider)

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateCompletionClient creates the completion client for one backend.
func CreateCompletionClient(settings domain.BackendSettings, timeout time.Duration) (driven.CompletionClient, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderSambanova:
		return sambanovallm.NewLLMService(sambanovallm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	default:
		return nil, fmt.Errorf("%w: completion provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateVectorIndex creates the vector index selected by settings.
// timeout bounds each call to a remote index.
func CreateVectorIndex(settings domain.VectorIndexSettings, timeout time.Duration) (driven.VectorIndex, error) {
	switch settings.Provider {
	case domain.VectorProviderMemory:
		return memoryvector.New(), nil

	case domain.VectorProviderQdrant, "":
		return qdrantvector.New(qdrantvector.Config{
			Host:    settings.Host,
			Port:    settings.Port,
			APIKey:  settings.APIKey,
			UseTLS:  settings.UseTLS,
			Timeout: timeout,
		})

	default:
		return nil, fmt.Errorf("%w: vector provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// pingContext returns a context bounded by pingTimeout.
func pingContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, pingTimeout)
}
