package driving

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// IngestObserver receives every ingestion state transition.
type IngestObserver func(state domain.IngestState)

// IngestionService materialises new queryable models.
type IngestionService interface {
	// Ingest runs the ingestion state machine and returns the new model's
	// name and its one-time API key.
	Ingest(ctx context.Context, req domain.IngestRequest, observe IngestObserver) (*domain.IngestResult, error)
}
