package driving

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// QueryService answers questions against a registered model.
type QueryService interface {
	// Query authenticates the caller, retrieves context and generates an answer.
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error)
}
