// Package mcp provides an MCP (Model Context Protocol) server adapter for ragkit.
// It lets AI assistants list registered models and ask them questions.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrMissingModelService is returned when the model service is not provided.
var ErrMissingModelService = errors.New("mcp: model service is required")
