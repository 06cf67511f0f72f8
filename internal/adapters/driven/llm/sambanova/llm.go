// Package sambanova provides a completion backend using the Sambanova
// text-completion API.
package sambanova

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/llm"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/upstream"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.CompletionClient = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.sambanova.ai/v1"
	DefaultModel       = "Meta-Llama-3.1-8B-Instruct"
	DefaultMaxTokens   = 256
	DefaultTemperature = 0.7
)

const provider = "sambanova"

// Config holds configuration for the Sambanova LLM service.
type Config struct {
	// APIKey is the Sambanova API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.sambanova.ai/v1).
	BaseURL string

	// Model is the LLM model to use (default: Meta-Llama-3.1-8B-Instruct).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// LLMService answers questions with a single plain-text completion call.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Text *string `json:"text"`
	} `json:"choices"`
}

// NewLLMService creates a new Sambanova LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: sambanova API key is required", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &LLMService{
		client:  upstream.NewClient(cfg.Timeout),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete posts the rendered prompt and returns choices[0].text, trimmed.
func (s *LLMService) Complete(ctx context.Context, in driven.CompletionRequest) (string, error) {
	reqBody := completionRequest{
		Model:       s.model,
		Prompt:      llm.PlainPrompt(in),
		MaxTokens:   in.MaxTokens,
		Temperature: DefaultTemperature,
	}
	if reqBody.MaxTokens <= 0 {
		reqBody.MaxTokens = DefaultMaxTokens
	}
	if in.Temperature != nil {
		reqBody.Temperature = *in.Temperature
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", upstream.TransportError(provider, domain.ErrCompletion, err)
	}
	defer resp.Body.Close()

	body, err := upstream.ReadBody(resp.Body)
	if err != nil {
		return "", upstream.TransportError(provider, domain.ErrCompletion, err)
	}
	if !upstream.IsSuccess(resp.StatusCode) {
		return "", upstream.StatusError(provider, domain.ErrCompletion, resp.StatusCode, body)
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", upstream.PayloadError(provider, domain.ErrCompletion, body, "decode response: %v", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Text == nil {
		return "", upstream.PayloadError(provider, domain.ErrCompletion, body, "invalid response structure")
	}

	answer := strings.TrimSpace(*out.Choices[0].Text)
	if answer == "" {
		return "", upstream.PayloadError(provider, domain.ErrCompletion, body, "empty answer")
	}
	return answer, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the /models endpoint accepts the key.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("sambanova: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return upstream.TransportError(provider, domain.ErrCompletion, err)
	}
	defer resp.Body.Close()

	if !upstream.IsSuccess(resp.StatusCode) {
		body, _ := upstream.ReadBody(resp.Body)
		return upstream.StatusError(provider, domain.ErrCompletion, resp.StatusCode, body)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
