package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// NewLimiter returns a token bucket allowing perSecond requests with a burst of one.
// A non-positive rate returns nil, which disables limiting.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// rateLimitedEmbedding waits on a shared bucket before every provider call.
type rateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// LimitEmbedding wraps svc so each call consumes one token from limiter.
// A nil limiter returns svc unchanged.
func LimitEmbedding(svc driven.EmbeddingService, limiter *rate.Limiter) driven.EmbeddingService {
	if limiter == nil || svc == nil {
		return svc
	}
	return &rateLimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

func (s *rateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.EmbeddingService.Embed(ctx, text)
}

func (s *rateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.EmbeddingService.EmbedBatch(ctx, texts)
}

// rateLimitedCompletion waits on a shared bucket before every provider call.
type rateLimitedCompletion struct {
	driven.CompletionClient
	limiter *rate.Limiter
}

// LimitCompletion wraps client so each Complete consumes one token from limiter.
// A nil limiter returns client unchanged.
func LimitCompletion(client driven.CompletionClient, limiter *rate.Limiter) driven.CompletionClient {
	if limiter == nil || client == nil {
		return client
	}
	return &rateLimitedCompletion{CompletionClient: client, limiter: limiter}
}

func (c *rateLimitedCompletion) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.CompletionClient.Complete(ctx, req)
}
