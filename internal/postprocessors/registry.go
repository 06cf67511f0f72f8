// Package postprocessors builds the chunk/prep stage from configuration.
package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// BuilderFunc creates a Chunker from chunking settings.
type BuilderFunc func(cfg domain.ChunkingSettings) (driven.Chunker, error)

// Registry maps strategy names to their builders.
// It allows dynamic construction of chunkers from configuration.
type Registry struct {
	builders map[domain.ChunkStrategy]BuilderFunc
}

// NewRegistry creates a new strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[domain.ChunkStrategy]BuilderFunc),
	}
}

// Register adds a strategy builder to the registry.
// Name should match the chunker's Name() return value.
func (r *Registry) Register(name domain.ChunkStrategy, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates the chunker selected by cfg.Strategy.
// An empty strategy selects domain.ChunkSingle.
func (r *Registry) Build(cfg domain.ChunkingSettings) (driven.Chunker, error) {
	name := cfg.Strategy
	if name == "" {
		name = domain.ChunkSingle
	}
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: chunk strategy %q", domain.ErrUnsupportedType, name)
	}
	return builder(cfg)
}

// Has returns true if a strategy with the given name is registered.
func (r *Registry) Has(name domain.ChunkStrategy) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered strategy names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
