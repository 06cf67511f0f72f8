// Package ollama provides an embedding service adapter using a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/upstream"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "mxbai-embed-large"
	DefaultDimensions = domain.DefaultDimensions // mxbai-embed-large
)

const provider = "ollama"

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: mxbai-embed-large).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int
}

// EmbeddingService generates embeddings using Ollama.
type EmbeddingService struct {
	client     *api.Client
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama URL: %v", domain.ErrInvalidInput, err)
	}

	return &EmbeddingService{
		client:     api.NewClient(base, upstream.NewClient(cfg.Timeout)),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates one embedding per text with a single /api/embed call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := s.client.Embed(ctx, &api.EmbedRequest{
		Model: s.model,
		Input: texts,
	})
	if err != nil {
		return nil, classify(domain.ErrEmbedding, err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, upstream.PayloadError(provider, domain.ErrEmbedding, nil,
			"expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	for i, e := range resp.Embeddings {
		if len(e) != s.dimensions {
			return nil, upstream.PayloadError(provider, domain.ErrEmbedding, nil,
				"embedding %d has %d values, want %d", i, len(e), s.dimensions)
		}
	}
	return resp.Embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the Ollama server is up.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.client.Heartbeat(ctx); err != nil {
		return classify(domain.ErrEmbedding, err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// classify maps an Ollama client error onto an upstream error.
func classify(kind, err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return upstream.StatusError(provider, kind, statusErr.StatusCode, []byte(statusErr.ErrorMessage))
	}
	return upstream.TransportError(provider, kind, err)
}
