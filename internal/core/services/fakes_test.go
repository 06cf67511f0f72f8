package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

const testDims = 16

// bagEmbedder hashes words into buckets so texts sharing words score close.
type bagEmbedder struct {
	dims  int
	err   error
	calls int
}

func (e *bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vec := make([]float32, e.dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%uint32(e.dims)]++
	}
	vec[0] += 0.01 // never the zero vector
	return vec, nil
}

func (e *bagEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *bagEmbedder) Dimensions() int              { return e.dims }
func (e *bagEmbedder) ModelName() string            { return "bag" }
func (e *bagEmbedder) Ping(_ context.Context) error { return nil }
func (e *bagEmbedder) Close() error                 { return nil }

// shortEmbedder returns vectors one value short of what it advertises.
type shortEmbedder struct{ bagEmbedder }

func (e *shortEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := e.bagEmbedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return v[:len(v)-1], nil
}

// echoCompletion answers with the context it was given.
type echoCompletion struct {
	mu    sync.Mutex
	calls int
	last  driven.CompletionRequest
	err   error
}

func (c *echoCompletion) Complete(_ context.Context, req driven.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.last = req
	if c.err != nil {
		return "", c.err
	}
	return "Based on the context: " + req.Context, nil
}

func (c *echoCompletion) ModelName() string            { return "echo" }
func (c *echoCompletion) Ping(_ context.Context) error { return nil }
func (c *echoCompletion) Close() error                 { return nil }

type staticRouter map[string]driven.CompletionClient

func (r staticRouter) Backend(tag string) (driven.CompletionClient, error) {
	c, ok := r[tag]
	if !ok {
		return nil, domain.ErrUnsupportedType
	}
	return c, nil
}

func (r staticRouter) Tags() []string {
	tags := make([]string, 0, len(r))
	for t := range r {
		tags = append(tags, t)
	}
	return tags
}

// textPDF treats the file bytes as already-extracted text.
type textPDF struct{ err error }

func (p textPDF) Extract(_ context.Context, filename string, data []byte) (*domain.Extraction, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domain.Extraction{Text: string(data), Source: filename}, nil
}

// pagesWeb serves canned page text by URL.
type pagesWeb map[string]string

func (w pagesWeb) Extract(_ context.Context, rawURL string) (*domain.Extraction, error) {
	text, ok := w[rawURL]
	if !ok {
		return nil, domain.ErrFetch
	}
	return &domain.Extraction{Text: text, Source: rawURL}, nil
}

// flakyIndex wraps a VectorIndex and fails selected operations.
type flakyIndex struct {
	driven.VectorIndex
	ensureCalls int
	deleteErr   error
	upsertErr   error
}

func (x *flakyIndex) Ensure(ctx context.Context, name string, dim int, metric domain.Metric) error {
	x.ensureCalls++
	return x.VectorIndex.Ensure(ctx, name, dim, metric)
}

func (x *flakyIndex) Upsert(ctx context.Context, name string, records []domain.VectorRecord) error {
	if x.upsertErr != nil {
		return x.upsertErr
	}
	return x.VectorIndex.Upsert(ctx, name, records)
}

func (x *flakyIndex) DeleteIndex(ctx context.Context, name string) error {
	if x.deleteErr != nil {
		return x.deleteErr
	}
	return x.VectorIndex.DeleteIndex(ctx, name)
}

// flakyStore wraps a ModelStore and fails deletes.
type flakyStore struct {
	driven.ModelStore
	deleteErr error
}

func (s *flakyStore) Delete(ctx context.Context, name string) (*domain.Model, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return s.ModelStore.Delete(ctx, name)
}

// mapPrompts is an in-memory PromptStore.
type mapPrompts map[string]string

func (p mapPrompts) Load(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", errors.New("no prompt " + name)
	}
	return v, nil
}

func (p mapPrompts) Reload() {}
