package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure ModelStore implements the interface.
var _ driven.ModelStore = (*ModelStore)(nil)

// ModelStore is an in-memory implementation of driven.ModelStore.
type ModelStore struct {
	mu     sync.RWMutex
	models map[string]domain.Model
}

// NewModelStore creates a new in-memory model store.
func NewModelStore() *ModelStore {
	return &ModelStore{
		models: make(map[string]domain.Model),
	}
}

// Create inserts a model, rejecting a taken name or index name.
func (s *ModelStore) Create(_ context.Context, model domain.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.models[model.Name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateName, model.Name)
	}
	for name, existing := range s.models {
		if existing.IndexName == model.IndexName {
			return fmt.Errorf("%w: %s (index %s is used by %s)", domain.ErrDuplicateName, model.Name, model.IndexName, name)
		}
	}
	// The raw key is never stored.
	model.APIKey = ""
	s.models[model.Name] = model
	return nil
}

// Get retrieves a model by name.
func (s *ModelStore) Get(_ context.Context, name string) (*domain.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.models[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &model, nil
}

// List returns all models sorted by name.
func (s *ModelStore) List(_ context.Context) ([]domain.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Model, 0, len(s.models))
	for _, model := range s.models {
		result = append(result, model)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Delete removes a model and returns it.
func (s *ModelStore) Delete(_ context.Context, name string) (*domain.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	model, ok := s.models[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.models, name)
	return &model, nil
}

// Close is a no-op.
func (s *ModelStore) Close() error {
	return nil
}
