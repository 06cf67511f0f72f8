package mcp

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result *domain.QueryResult
	err    error
	last   domain.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	m.last = req
	return m.result, m.err
}

// mockModelService is a mock implementation of driving.ModelService.
type mockModelService struct {
	models []domain.Model
	model  *domain.Model
	err    error
}

func (m *mockModelService) List(_ context.Context) ([]domain.Model, error) {
	return m.models, m.err
}

func (m *mockModelService) Get(_ context.Context, _ string) (*domain.Model, error) {
	return m.model, m.err
}

func (m *mockModelService) Delete(_ context.Context, _ string) (*domain.Model, error) {
	return m.model, m.err
}
