package mcp

import (
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Query answers questions against a registered model.
	Query driving.QueryService

	// Models lists registered models.
	Models driving.ModelService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Models == nil {
		return ErrMissingModelService
	}
	return nil
}
