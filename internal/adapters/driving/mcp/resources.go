package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ragkit resources.
	uriScheme = "ragkit://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "models",
		Name:        "models",
		Description: "List of all registered models",
		MIMEType:    "application/json",
	}, s.handleModelsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "models/{modelName}",
		Name:        "model",
		Description: "A single registered model",
		MIMEType:    "application/json",
	}, s.handleModelResource)
}

// handleModelsResource returns every registered model.
func (s *Server) handleModelsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	models, err := s.ports.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}

	infos := make([]ModelOutput, len(models))
	for i := range models {
		infos[i] = toModelOutput(&models[i])
	}

	return jsonResource(req.Params.URI, infos)
}

// handleModelResource returns one model by name.
func (s *Server) handleModelResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractModelName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	model, err := s.ports.Models.Get(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting model: %w", err)
	}

	return jsonResource(req.Params.URI, toModelOutput(model))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractModelName extracts the model name from a URI like ragkit://models/{modelName}.
func extractModelName(uri string) string {
	const prefix = uriScheme + "models/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	unescaped, err := url.PathUnescape(name)
	if err != nil {
		return ""
	}
	return unescaped
}
