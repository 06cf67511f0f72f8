package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure ModelService implements the interface.
var _ driving.ModelService = (*ModelService)(nil)

// ModelService lists and deletes registered models.
type ModelService struct {
	registry *Registry
	index    driven.VectorIndex
}

// NewModelService creates a new model service.
func NewModelService(registry *Registry, index driven.VectorIndex) *ModelService {
	return &ModelService{registry: registry, index: index}
}

// List returns all registered models sorted by name, without key material.
func (s *ModelService) List(ctx context.Context) ([]domain.Model, error) {
	models, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

// Get retrieves a model by name without key material.
func (s *ModelService) Get(ctx context.Context, name string) (*domain.Model, error) {
	model, err := s.registry.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: model %q", domain.ErrNotFound, name)
	}
	model.APIKeyHash = ""
	return model, nil
}

// Delete removes the model's vector index first and its registry record second.
// If the index cannot be deleted the registry is left untouched, so the model
// stays listed and the delete can be retried. If the record cannot be removed
// after the index is gone, domain.ErrPartialDeletion names the index.
func (s *ModelService) Delete(ctx context.Context, name string) (*domain.Model, error) {
	logger.Section("Delete Model")

	model, err := s.registry.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: model %q", domain.ErrNotFound, name)
	}

	if err := s.index.DeleteIndex(ctx, model.IndexName); err != nil {
		return nil, fmt.Errorf("delete index %s: %w", model.IndexName, err)
	}
	logger.Debug("deleted index %s", model.IndexName)

	deleted, err := s.registry.Delete(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: index %s was deleted but the registry record for %q remains: %w",
			domain.ErrPartialDeletion, model.IndexName, name, err)
	}
	deleted.APIKeyHash = ""

	logger.Info("model %q deleted", name)
	return deleted, nil
}
