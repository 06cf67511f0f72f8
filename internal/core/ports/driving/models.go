package driving

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// ModelService manages registered models.
type ModelService interface {
	// List returns all registered models, sorted by name. API keys are never included.
	List(ctx context.Context) ([]domain.Model, error)

	// Get retrieves a model by name, or domain.ErrNotFound.
	Get(ctx context.Context, name string) (*domain.Model, error)

	// Delete removes the model's vector index and then its registry record.
	Delete(ctx context.Context, name string) (*domain.Model, error)
}
