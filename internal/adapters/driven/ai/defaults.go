package ai

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// tunedCompletion fills generation parameters the caller left unset.
type tunedCompletion struct {
	driven.CompletionClient
	maxTokens   int
	temperature *float64
}

// WithGenerationDefaults applies a backend's configured max tokens and
// temperature to requests that leave them unset. A nil temperature is not applied.
func WithGenerationDefaults(client driven.CompletionClient, maxTokens int, temperature *float64) driven.CompletionClient {
	if maxTokens <= 0 && temperature == nil {
		return client
	}
	return &tunedCompletion{CompletionClient: client, maxTokens: maxTokens, temperature: temperature}
}

func (c *tunedCompletion) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.maxTokens
	}
	if req.Temperature == nil {
		req.Temperature = c.temperature
	}
	return c.CompletionClient.Complete(ctx, req)
}
