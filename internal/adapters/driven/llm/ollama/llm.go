// Package ollama provides a completion backend using a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/llm"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/upstream"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.CompletionClient = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultLLMModel = "llama3.2"
)

const provider = "ollama"

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// LLMService answers questions with a non-streaming /api/generate call.
type LLMService struct {
	client *api.Client
	model  string
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama URL: %v", domain.ErrInvalidInput, err)
	}

	return &LLMService{
		client: api.NewClient(base, upstream.NewClient(cfg.Timeout)),
		model:  cfg.Model,
	}, nil
}

// Complete generates an answer from the rendered prompt.
func (s *LLMService) Complete(ctx context.Context, in driven.CompletionRequest) (string, error) {
	stream := false
	options := map[string]any{}
	if in.MaxTokens > 0 {
		options["num_predict"] = in.MaxTokens
	}
	if in.Temperature != nil {
		options["temperature"] = *in.Temperature
	}

	var sb strings.Builder
	err := s.client.Generate(ctx, &api.GenerateRequest{
		Model:   s.model,
		Prompt:  llm.PlainPrompt(in),
		Stream:  &stream,
		Options: options,
	}, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", classify(err)
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", upstream.PayloadError(provider, domain.ErrCompletion, nil, "empty answer")
	}
	return answer, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the Ollama server is up.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Heartbeat(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func classify(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return upstream.StatusError(provider, domain.ErrCompletion, statusErr.StatusCode, []byte(statusErr.ErrorMessage))
	}
	return upstream.TransportError(provider, domain.ErrCompletion, err)
}
