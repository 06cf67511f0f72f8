package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Registry binds model names to their index, API key and completion backend.
// Uniqueness of both the name and the derived index name is enforced by the
// underlying ModelStore.
type Registry struct {
	store driven.ModelStore
	now   func() time.Time
}

// NewRegistry creates a registry over store.
func NewRegistry(store driven.ModelStore) *Registry {
	return &Registry{store: store, now: time.Now}
}

// Create records a new model. Only the key's digest is persisted; the returned
// record carries the raw key so the caller can hand it out once.
func (r *Registry) Create(ctx context.Context, name, indexName, apiKey, llmModel string) (*domain.Model, error) {
	if strings.TrimSpace(name) == "" || indexName == "" || apiKey == "" || llmModel == "" {
		return nil, fmt.Errorf("%w: name, index, key and backend are required", domain.ErrInvalidInput)
	}

	model := domain.Model{
		Name:       name,
		IndexName:  indexName,
		APIKeyHash: HashAPIKey(apiKey),
		LLMModel:   llmModel,
		CreatedAt:  r.now().UTC(),
	}
	if err := r.store.Create(ctx, model); err != nil {
		return nil, fmt.Errorf("register %q: %w", name, err)
	}

	model.APIKey = apiKey
	return &model, nil
}

// GetByName returns the model, or nil when no model has that name.
func (r *Registry) GetByName(ctx context.Context, name string) (*domain.Model, error) {
	model, err := r.store.Get(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}

// IndexOwner returns the model bound to indexName, or nil when the index is free.
// Names that differ only in case or whitespace derive the same index.
func (r *Registry) IndexOwner(ctx context.Context, indexName string) (*domain.Model, error) {
	models, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].IndexName == indexName {
			return &models[i], nil
		}
	}
	return nil, nil
}

// List returns every model with its key material cleared.
func (r *Registry) List(ctx context.Context) ([]domain.Model, error) {
	models, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range models {
		models[i].APIKey = ""
		models[i].APIKeyHash = ""
	}
	return models, nil
}

// Delete removes the record and returns it, or domain.ErrNotFound.
func (r *Registry) Delete(ctx context.Context, name string) (*domain.Model, error) {
	return r.store.Delete(ctx, name)
}

// Authenticate returns the model when suppliedKey matches its stored digest.
// An unknown name, an empty key and a wrong key all fail with domain.ErrAuth.
func (r *Registry) Authenticate(ctx context.Context, name, suppliedKey string) (*domain.Model, error) {
	if suppliedKey == "" {
		return nil, domain.ErrAuth
	}

	model, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if model == nil || !APIKeyMatches(suppliedKey, model.APIKeyHash) {
		return nil, domain.ErrAuth
	}
	return model, nil
}
