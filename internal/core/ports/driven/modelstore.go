package driven

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// ModelStore persists model registry records keyed by name.
// Implementations enforce name uniqueness themselves so that concurrent
// creates of the same name cannot both succeed.
type ModelStore interface {
	// Create inserts a new record, failing with domain.ErrDuplicateName if the name exists.
	Create(ctx context.Context, model domain.Model) error

	// Get retrieves a record by name, or domain.ErrNotFound.
	Get(ctx context.Context, name string) (*domain.Model, error)

	// List returns all records.
	List(ctx context.Context) ([]domain.Model, error)

	// Delete removes a record and returns it, or domain.ErrNotFound.
	Delete(ctx context.Context, name string) (*domain.Model, error)

	// Close releases resources.
	Close() error
}
