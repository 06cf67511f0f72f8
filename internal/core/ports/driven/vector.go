package driven

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// VectorIndex provides per-model vector storage and similarity search.
// Each model owns one named index with a fixed dimension and metric.
type VectorIndex interface {
	// Ensure creates the index if no index with that name exists.
	// Calling it again for an existing index is a no-op.
	Ensure(ctx context.Context, name string, dimension int, metric domain.Metric) error

	// Upsert writes records. Any vector whose length differs from the
	// index dimension fails with domain.ErrIndexMismatch.
	Upsert(ctx context.Context, name string, records []domain.VectorRecord) error

	// Search returns at most topK matches ordered by descending score.
	// An index without matching vectors yields an empty slice, not an error.
	Search(ctx context.Context, name string, vector []float32, topK int) ([]domain.VectorMatch, error)

	// DeleteIndex removes the index. Deleting an absent index is not an error.
	DeleteIndex(ctx context.Context, name string) error

	// ListIndexes returns the names of all existing indexes.
	ListIndexes(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
