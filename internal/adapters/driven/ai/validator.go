package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Check is the outcome of pinging one service.
type Check struct {
	// Name identifies the service, e.g. "embedding" or "backend llama-3.1".
	Name string

	// Model is the provider model behind the service.
	Model string

	Err error
}

// OK reports whether the service answered.
func (c Check) OK() bool {
	return c.Err == nil
}

// Validate pings the embedding service, every completion backend and the
// vector index, each bounded by pingTimeout.
func Validate(ctx context.Context, r *InitResult) []Check {
	var checks []Check

	if r.EmbeddingService != nil {
		checks = append(checks, Check{
			Name:  "embedding",
			Model: r.EmbeddingService.ModelName(),
			Err:   ping(ctx, r.EmbeddingService.Ping),
		})
	}

	if r.Completions != nil {
		for _, tag := range r.Completions.Tags() {
			client, err := r.Completions.Backend(tag)
			check := Check{Name: "backend " + tag, Err: err}
			if err == nil {
				check.Model = client.ModelName()
				check.Err = ping(ctx, client.Ping)
			}
			checks = append(checks, check)
		}
	}

	if r.VectorIndex != nil {
		checks = append(checks, Check{
			Name: "vector index",
			Err:  ping(ctx, func(ctx context.Context) error { return listIndexes(ctx, r.VectorIndex) }),
		})
	}

	return checks
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := pingContext(ctx)
	defer cancel()
	return fn(ctx)
}

func listIndexes(ctx context.Context, index driven.VectorIndex) error {
	if _, err := index.ListIndexes(ctx); err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	return nil
}
