package driven

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// PDFExtractor turns PDF bytes into normalised text.
type PDFExtractor interface {
	// Extract fails with domain.ErrExtraction if data is not a well-formed PDF.
	Extract(ctx context.Context, filename string, data []byte) (*domain.Extraction, error)
}

// URLExtractor fetches a web page and turns it into normalised text.
type URLExtractor interface {
	// Extract fails with domain.ErrInvalidInput, domain.ErrFetch or
	// domain.ErrUnsupportedContent.
	Extract(ctx context.Context, rawURL string) (*domain.Extraction, error)
}

// Chunker turns extracted text into index-ready chunks.
type Chunker interface {
	// Name returns the chunking strategy name for logging.
	Name() string

	// Chunk produces at least one chunk for non-empty text.
	Chunk(ctx context.Context, extraction domain.Extraction) ([]domain.Chunk, error)
}
