package postprocessors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// registryMockChunker is a simple mock for testing registry functionality.
type registryMockChunker struct {
	name string
}

func (m *registryMockChunker) Name() string { return m.name }
func (m *registryMockChunker) Chunk(_ context.Context, _ domain.Extraction) ([]domain.Chunk, error) {
	return nil, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func(_ domain.ChunkingSettings) (driven.Chunker, error) {
		return &registryMockChunker{name: "test"}, nil
	})

	if !r.Has("test") {
		t.Error("expected 'test' to be registered")
	}
}

func TestRegistry_Build_UnknownStrategy(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build(domain.ChunkingSettings{Strategy: "semantic"})
	if !errors.Is(err, domain.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewDefaultRegistry()

	names := r.Names()
	if len(names) != 2 || names[0] != "overlap" || names[1] != "single" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestDefaultRegistry_EmptyStrategyIsSingle(t *testing.T) {
	c, err := NewDefaultRegistry().Build(domain.ChunkingSettings{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if c.Name() != "single" {
		t.Errorf("expected 'single', got %q", c.Name())
	}
}

func TestDefaultRegistry_Overlap(t *testing.T) {
	c, err := NewDefaultRegistry().Build(domain.ChunkingSettings{
		Strategy: domain.ChunkOverlap,
		MaxChars: 50,
		Overlap:  10,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	chunks, err := c.Chunk(context.Background(), domain.Extraction{Text: strings.Repeat("y", 120), Source: "s"})
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Errorf("expected 3 chunks, got %d", len(chunks))
	}
}

func TestDefaultRegistry_CapsMaxChars(t *testing.T) {
	c, err := NewDefaultRegistry().Build(domain.ChunkingSettings{
		Strategy: domain.ChunkSingle,
		MaxChars: 2 * domain.MaxChunkChars,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	chunks, err := c.Chunk(context.Background(), domain.Extraction{Text: strings.Repeat("z", domain.MaxChunkChars+5), Source: "s"})
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks[0].PageContent) != domain.MaxChunkChars {
		t.Errorf("expected capped chunk, got %d", len(chunks[0].PageContent))
	}
	if !chunks[0].Metadata.IsTextTruncated {
		t.Error("expected truncation flag")
	}
}
