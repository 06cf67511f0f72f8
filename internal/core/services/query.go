package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// ContextSeparator joins retrieved chunk texts in the prompt context.
const ContextSeparator = "\n\n---\n\n"


// QueryService answers questions against one registered model.
type QueryService struct {
	registry *Registry
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	router   driven.CompletionRouter
	prompts  driven.PromptStore
	topK     int
}

// NewQueryService creates a new query service. prompts may be nil.
// A topK outside 1..MaxTopK falls back to domain.DefaultTopK.
func NewQueryService(
	registry *Registry,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	router driven.CompletionRouter,
	prompts driven.PromptStore,
	topK int,
) *QueryService {
	if topK < 1 || topK > MaxTopK {
		topK = domain.DefaultTopK
	}
	return &QueryService{
		registry: registry,
		embedder: embedder,
		index:    index,
		router:   router,
		prompts:  prompts,
		topK:     topK,
	}
}

// Query authenticates the caller, retrieves the closest chunks and asks the
// model's completion backend for an answer grounded on them.
func (s *QueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	logger.Section("Query")

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if req.ModelName == "" {
		return nil, fmt.Errorf("%w: model name is required", domain.ErrInvalidInput)
	}
	if req.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", domain.ErrMissingCredential)
	}

	model, err := s.registry.Authenticate(ctx, req.ModelName, req.APIKey)
	if err != nil {
		return nil, err
	}
	logger.Debug("query: model %q on index %s, backend %s", model.Name, model.IndexName, model.LLMModel)

	embedded := logger.Stage("query: embed")
	vector, err := s.embedder.Embed(ctx, message)
	embedded()
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	searched := logger.Stage("query: search")
	matches, err := s.index.Search(ctx, model.IndexName, vector, s.topK)
	searched()
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", model.IndexName, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %s", domain.ErrNoMatch, model.IndexName)
	}
	logger.Debug("query: %d match(es), best score %.4f", len(matches), matches[0].Score)

	sources := make([]domain.SourceDocument, len(matches))
	texts := make([]string, len(matches))
	for i, m := range matches {
		text := domain.MetadataString(m.Metadata, "text")
		texts[i] = text
		sources[i] = domain.SourceDocument{PageContent: text, Metadata: m.Metadata, Score: m.Score}
	}

	client, err := s.router.Backend(model.LLMModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCompletion, err)
	}

	completion := s.buildRequest(strings.Join(texts, ContextSeparator), message)
	completed := logger.Stage("query: complete via " + model.LLMModel)
	answer, err := client.Complete(ctx, completion)
	completed()
	if err != nil {
		return nil, err
	}

	return &domain.QueryResult{Answer: answer, SourceDocuments: sources}, nil
}

// buildRequest assembles the system prompt, context and question, and renders
// the single-string prompt used by plain-completion backends.
func (s *QueryService) buildRequest(assembled, question string) driven.CompletionRequest {
	system := s.loadPrompt(driven.PromptRAGSystem, driven.DefaultRAGSystemPrompt)

	template := s.loadPrompt(driven.PromptCompletion, driven.DefaultCompletionTemplate)
	if strings.Count(template, "%s") != 3 || strings.Count(template, "%") != 3 {
		logger.Warn("prompt %q needs exactly three %%s placeholders, using the default", driven.PromptCompletion)
		template = driven.DefaultCompletionTemplate
	}

	return driven.CompletionRequest{
		SystemPrompt: system,
		Context:      assembled,
		Question:     question,
		Prompt:       fmt.Sprintf(template, system, assembled, question),
	}
}

func (s *QueryService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}
