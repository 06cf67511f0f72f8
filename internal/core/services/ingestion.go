package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService turns one document into a new queryable model.
type IngestionService struct {
	registry *Registry
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	router   driven.CompletionRouter
	pdf      driven.PDFExtractor
	web      driven.URLExtractor
	chunker  driven.Chunker
	newKey   func() (string, error)
}

// IngestionDeps groups the collaborators of an IngestionService.
type IngestionDeps struct {
	Registry *Registry
	Index    driven.VectorIndex
	Embedder driven.EmbeddingService
	Router   driven.CompletionRouter
	PDF      driven.PDFExtractor
	Web      driven.URLExtractor
	Chunker  driven.Chunker
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(deps IngestionDeps) *IngestionService {
	return &IngestionService{
		registry: deps.Registry,
		index:    deps.Index,
		embedder: deps.Embedder,
		router:   deps.Router,
		pdf:      deps.PDF,
		web:      deps.Web,
		chunker:  deps.Chunker,
		newKey:   GenerateAPIKey,
	}
}

// ingestRun tracks the state machine of one Ingest call.
type ingestRun struct {
	state   domain.IngestState
	observe driving.IngestObserver
}

func (r *ingestRun) enter(state domain.IngestState) {
	r.state = state
	logger.Debug("ingest: %s", state)
	if r.observe != nil {
		r.observe(state)
	}
}

func (r *ingestRun) fail(err error) error {
	failed := r.state
	logger.Debug("ingest: failed while %s: %v", failed, err)
	if r.observe != nil {
		r.observe(domain.StateFailed)
	}
	return &domain.StageError{State: failed, Err: err}
}

// Ingest runs Validating, IndexEnsuring, Extracting, Embedding, Upserting and
// Registering in order. The first failure stops the run and is returned as a
// *domain.StageError naming the state it happened in.
func (s *IngestionService) Ingest(
	ctx context.Context, req domain.IngestRequest, observe driving.IngestObserver,
) (*domain.IngestResult, error) {
	logger.Section("Ingestion")
	run := &ingestRun{observe: observe}

	run.enter(domain.StateValidating)
	req.ModelName = strings.TrimSpace(req.ModelName)
	if req.LLMModel == "" {
		req.LLMModel = domain.DefaultBackendTag
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, run.fail(err)
	}

	run.enter(domain.StateIndexEnsuring)
	indexName := domain.IndexNameFor(req.ModelName)
	dimension := s.embedder.Dimensions()
	if err := s.index.Ensure(ctx, indexName, dimension, domain.MetricCosine); err != nil {
		return nil, run.fail(fmt.Errorf("ensure index %s: %w", indexName, err))
	}

	// From here on a failure leaves an index with no registry record.
	orphaned := func(err error) error {
		logger.Warn("index %s may be orphaned: %v", indexName, err)
		return run.fail(err)
	}

	run.enter(domain.StateExtracting)
	extraction, err := s.extract(ctx, req)
	if err != nil {
		return nil, orphaned(err)
	}
	chunks, err := s.chunker.Chunk(ctx, *extraction)
	if err != nil {
		return nil, orphaned(err)
	}
	logger.Debug("ingest: %d chunk(s) from %s using %s policy", len(chunks), extraction.Source, s.chunker.Name())

	run.enter(domain.StateEmbedding)
	embedded := logger.Stage("ingest: embed")
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.PageContent)
		if err != nil {
			return nil, orphaned(fmt.Errorf("embed chunk %s: %w", chunk.ID, err))
		}
		vectors[i] = vec
	}
	embedded()

	run.enter(domain.StateUpserting)
	records := make([]domain.VectorRecord, len(chunks))
	truncated := false
	for i, chunk := range chunks {
		if len(vectors[i]) != dimension {
			return nil, orphaned(fmt.Errorf("%w: %w: chunk %s has %d values, index %s wants %d",
				domain.ErrIngestion, domain.ErrIndexMismatch, chunk.ID, len(vectors[i]), indexName, dimension))
		}
		records[i] = domain.VectorRecord{ID: chunk.ID, Vector: vectors[i], Metadata: chunk.Metadata.Map()}
		truncated = truncated || chunk.Metadata.IsTextTruncated
	}
	if err := s.index.Upsert(ctx, indexName, records); err != nil {
		if errors.Is(err, domain.ErrIndexMismatch) {
			err = fmt.Errorf("%w: %w", domain.ErrIngestion, err)
		}
		return nil, orphaned(fmt.Errorf("upsert into %s: %w", indexName, err))
	}

	run.enter(domain.StateRegistering)
	apiKey, err := s.newKey()
	if err != nil {
		return nil, orphaned(err)
	}
	model, err := s.registry.Create(ctx, req.ModelName, indexName, apiKey, req.LLMModel)
	if err != nil {
		return nil, orphaned(err)
	}

	run.enter(domain.StateDone)
	logger.Info("model %q registered on index %s (%d chunks)", model.Name, indexName, len(chunks))

	return &domain.IngestResult{
		ModelName: model.Name,
		APIKey:    model.APIKey,
		IndexName: indexName,
		Chunks:    len(chunks),
		Truncated: truncated,
	}, nil
}

// validate checks the request shape, the backend tag and that neither the name
// nor its derived index is taken.
func (s *IngestionService) validate(ctx context.Context, req domain.IngestRequest) error {
	if req.ModelName == "" {
		return fmt.Errorf("%w: model name is required", domain.ErrInvalidInput)
	}

	switch req.Type {
	case domain.IngestionPDF:
		if len(req.File) == 0 {
			return fmt.Errorf("%w: a PDF file is required for ingestion type pdf", domain.ErrInvalidInput)
		}
		if req.URL != "" {
			return fmt.Errorf("%w: ingestion type pdf does not take a url", domain.ErrInvalidInput)
		}
		if !isPDFContentType(req.ContentType) {
			return fmt.Errorf("%w: file must be a PDF, got %s", domain.ErrInvalidInput, req.ContentType)
		}
	case domain.IngestionURL:
		if strings.TrimSpace(req.URL) == "" {
			return fmt.Errorf("%w: a url is required for ingestion type url", domain.ErrInvalidInput)
		}
		if len(req.File) > 0 {
			return fmt.Errorf("%w: ingestion type url does not take a file", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unsupported ingestion type %q", domain.ErrInvalidInput, req.Type)
	}

	if _, err := s.router.Backend(req.LLMModel); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	existing, err := s.registry.GetByName(ctx, req.ModelName)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateName, req.ModelName)
	}

	indexName := domain.IndexNameFor(req.ModelName)
	owner, err := s.registry.IndexOwner(ctx, indexName)
	if err != nil {
		return err
	}
	if owner != nil {
		return fmt.Errorf("%w: %q maps to index %s, already used by %q",
			domain.ErrDuplicateName, req.ModelName, indexName, owner.Name)
	}
	return nil
}

func (s *IngestionService) extract(ctx context.Context, req domain.IngestRequest) (*domain.Extraction, error) {
	if req.Type == domain.IngestionPDF {
		return s.pdf.Extract(ctx, req.FileName, req.File)
	}
	return s.web.Extract(ctx, strings.TrimSpace(req.URL))
}

// isPDFContentType accepts an undeclared type, application/pdf and the generic binary type.
func isPDFContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/pdf" || mediaType == "application/octet-stream"
}
