// Package chunker turns extracted text into index-ready chunks.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/normalisers/textnorm"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.MaxChunkChars

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits extracted text into chunks of at most chunkSize runes.
//
// In single mode the whole document becomes one chunk, capped at chunkSize,
// and anything beyond the cap is discarded and flagged. In split mode the
// document is cut into overlapping windows so nothing is lost.
type Processor struct {
	chunkSize int
	overlap   int
	split     bool
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSplit enables overlapping multi-chunk output.
func WithSplit() Option {
	return func(p *Processor) {
		p.split = true
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the strategy name.
func (p *Processor) Name() string {
	if p.split {
		return string(domain.ChunkOverlap)
	}
	return string(domain.ChunkSingle)
}

// Chunk splits the extracted text into chunks.
// Empty text is an extraction failure: a model must have something to retrieve.
func (p *Processor) Chunk(ctx context.Context, ext domain.Extraction) ([]domain.Chunk, error) {
	text := strings.TrimSpace(ext.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: no text in %s", domain.ErrExtraction, ext.Source)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !p.split {
		content, truncated := textnorm.Truncate(text, p.chunkSize)
		return []domain.Chunk{newChunk(ext.Source, ext.Source, content, 0, truncated)}, nil
	}

	runes := []rune(text)
	if len(runes) <= p.chunkSize {
		return []domain.Chunk{newChunk(ext.Source, ext.Source, text, 0, false)}, nil
	}

	step := p.chunkSize - p.overlap
	estimatedChunks := (len(runes) / step) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	for start := 0; start < len(runes); start += step {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		id := fmt.Sprintf("%s#%d", ext.Source, position)
		chunks = append(chunks, newChunk(id, ext.Source, string(runes[start:end]), position, false))
		position++

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

func newChunk(id, source, content string, position int, truncated bool) domain.Chunk {
	return domain.Chunk{
		ID:          id,
		PageContent: content,
		Position:    position,
		Metadata: domain.ChunkMetadata{
			Source:          source,
			Text:            content,
			IsTextTruncated: truncated,
		},
	}
}
