package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// QueryInput is the input schema for the query_model tool.
type QueryInput struct {
	Model   string `json:"model" jsonschema:"name of the registered model to ask"`
	APIKey  string `json:"api_key" jsonschema:"the model's API key, issued at ingestion"`
	Message string `json:"message" jsonschema:"the question to answer from the model's document"`
}

// QueryOutput is the output schema for the query_model tool.
type QueryOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one retrieved chunk backing an answer.
type SourceOutput struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// ListModelsInput is the (empty) input schema for the list_models tool.
type ListModelsInput struct{}

// ListModelsOutput is the output schema for the list_models tool.
type ListModelsOutput struct {
	Models []ModelOutput `json:"models"`
	Count  int           `json:"count"`
}

// ModelOutput describes one registered model. Keys are never exposed.
type ModelOutput struct {
	Name      string `json:"name"`
	IndexName string `json:"index_name"`
	LLMModel  string `json:"llm_model"`
	CreatedAt string `json:"created_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_model",
		Description: "Ask a registered model a question answered from its ingested document",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_models",
		Description: "List the registered models",
	}, s.handleListModels)
}

// handleQuery handles the query_model tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	result, err := s.ports.Query.Query(ctx, domain.QueryRequest{
		ModelName: input.Model,
		APIKey:    input.APIKey,
		Message:   input.Message,
	})
	if err != nil {
		return nil, QueryOutput{}, fmt.Errorf("query %s: %w", input.Model, err)
	}

	output := QueryOutput{
		Answer:  result.Answer,
		Sources: make([]SourceOutput, len(result.SourceDocuments)),
	}
	for i, doc := range result.SourceDocuments {
		output.Sources[i] = SourceOutput{
			Source:  domain.MetadataString(doc.Metadata, "source"),
			Content: doc.PageContent,
			Score:   doc.Score,
		}
	}

	return nil, output, nil
}

// handleListModels handles the list_models tool invocation.
func (s *Server) handleListModels(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListModelsInput,
) (*mcp.CallToolResult, ListModelsOutput, error) {
	models, err := s.ports.Models.List(ctx)
	if err != nil {
		return nil, ListModelsOutput{}, err
	}

	output := ListModelsOutput{
		Models: make([]ModelOutput, len(models)),
		Count:  len(models),
	}
	for i := range models {
		output.Models[i] = toModelOutput(&models[i])
	}

	return nil, output, nil
}

func toModelOutput(m *domain.Model) ModelOutput {
	out := ModelOutput{
		Name:      m.Name,
		IndexName: m.IndexName,
		LLMModel:  m.LLMModel,
	}
	if !m.CreatedAt.IsZero() {
		out.CreatedAt = m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return out
}
