// Package httpapi serves the ragkit JSON API over net/http.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// ErrMissingPort is returned when a required driving port is not provided.
var ErrMissingPort = errors.New("httpapi: ingestion, query and model services are required")

// Ports aggregates the driving port interfaces required by the HTTP API.
type Ports struct {
	Ingestion driving.IngestionService
	Query     driving.QueryService
	Models    driving.ModelService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingestion == nil || p.Query == nil || p.Models == nil {
		return ErrMissingPort
	}
	return nil
}
