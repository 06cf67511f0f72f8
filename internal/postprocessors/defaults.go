package postprocessors

import (
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in strategies with the registry.
// Call this during application initialisation to enable standard chunkers.
func RegisterDefaults(r *Registry) {
	r.Register(domain.ChunkSingle, buildSingle)
	r.Register(domain.ChunkOverlap, buildOverlap)
}

// NewDefaultRegistry returns a registry with the built-in strategies.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildSingle keeps the whole document as one chunk capped at MaxChars.
func buildSingle(cfg domain.ChunkingSettings) (driven.Chunker, error) {
	return chunker.New(sizeOptions(cfg)...), nil
}

// buildOverlap splits the document into windows of MaxChars sharing Overlap characters.
func buildOverlap(cfg domain.ChunkingSettings) (driven.Chunker, error) {
	return chunker.New(append(sizeOptions(cfg), chunker.WithSplit())...), nil
}

func sizeOptions(cfg domain.ChunkingSettings) []chunker.Option {
	var opts []chunker.Option
	if cfg.MaxChars > 0 {
		// The index payload can never hold more than MaxChunkChars.
		size := cfg.MaxChars
		if size > domain.MaxChunkChars {
			size = domain.MaxChunkChars
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if cfg.Overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(cfg.Overlap))
	}
	return opts
}
