package httpapi

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// MockIngestionService is a mock implementation of driving.IngestionService.
type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(
	ctx context.Context,
	req domain.IngestRequest,
	observe driving.IngestObserver,
) (*domain.IngestResult, error) {
	args := m.Called(ctx, req)
	if observe != nil {
		observe(domain.StateDone)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestResult), args.Error(1)
}

// MockQueryService is a mock implementation of driving.QueryService.
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

// MockModelService is a mock implementation of driving.ModelService.
type MockModelService struct {
	mock.Mock
}

func (m *MockModelService) List(ctx context.Context) ([]domain.Model, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Model), args.Error(1)
}

func (m *MockModelService) Get(ctx context.Context, name string) (*domain.Model, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}

func (m *MockModelService) Delete(ctx context.Context, name string) (*domain.Model, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}
