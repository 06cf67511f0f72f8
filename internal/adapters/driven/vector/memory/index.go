// Package memory provides an in-process vector index with exact cosine search.
package memory

import (
	"context"
	"fmt"
	"slices"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type point struct {
	vector   []float32
	metadata map[string]any
}

type namespace struct {
	dimension int
	metric    domain.Metric
	points    map[string]point
}

// Index keeps one namespace per model in memory.
type Index struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
}

// New creates an empty index.
func New() *Index {
	return &Index{namespaces: make(map[string]*namespace)}
}

// Ensure creates the namespace unless the index listing already has it.
// An existing namespace with a different dimension is a mismatch.
func (x *Index) Ensure(_ context.Context, name string, dimension int, metric domain.Metric) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}
	if metric != domain.MetricCosine {
		return fmt.Errorf("%w: metric %q", domain.ErrUnsupportedType, metric)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if slices.Contains(x.names(), name) {
		ns := x.namespaces[name]
		if ns.dimension != dimension {
			return fmt.Errorf("%w: index %s has dimension %d, want %d", domain.ErrIndexMismatch, name, ns.dimension, dimension)
		}
		return nil
	}
	x.namespaces[name] = &namespace{dimension: dimension, metric: metric, points: make(map[string]point)}
	return nil
}

// Upsert writes records, replacing any with the same id.
// Nothing is written if any record has the wrong dimension.
func (x *Index) Upsert(_ context.Context, name string, records []domain.VectorRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	ns, ok := x.namespaces[name]
	if !ok {
		return fmt.Errorf("%w: index %s", domain.ErrNotFound, name)
	}
	for _, r := range records {
		if len(r.Vector) != ns.dimension {
			return fmt.Errorf("%w: record %s has %d values, index %s expects %d",
				domain.ErrIndexMismatch, r.ID, len(r.Vector), name, ns.dimension)
		}
	}
	for _, r := range records {
		ns.points[r.ID] = point{vector: append([]float32(nil), r.Vector...), metadata: copyMetadata(r.Metadata)}
	}
	return nil
}

// Search returns the topK most similar points, best first.
// Equal scores are ordered by id so results are stable.
func (x *Index) Search(_ context.Context, name string, vector []float32, topK int) ([]domain.VectorMatch, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	ns, ok := x.namespaces[name]
	if !ok {
		return nil, fmt.Errorf("%w: index %s", domain.ErrNotFound, name)
	}
	if len(vector) != ns.dimension {
		return nil, fmt.Errorf("%w: query has %d values, index %s expects %d",
			domain.ErrIndexMismatch, len(vector), name, ns.dimension)
	}
	if topK <= 0 {
		return []domain.VectorMatch{}, nil
	}

	matches := make([]domain.VectorMatch, 0, len(ns.points))
	for id, p := range ns.points {
		matches = append(matches, domain.VectorMatch{
			ID:       id,
			Score:    cosine(vector, p.vector),
			Metadata: copyMetadata(p.metadata),
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteIndex drops the namespace. Absent namespaces are ignored.
func (x *Index) DeleteIndex(_ context.Context, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.namespaces, name)
	return nil
}

// ListIndexes returns namespace names, sorted.
func (x *Index) ListIndexes(_ context.Context) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.names(), nil
}

// names lists namespaces, sorted. Callers hold mu.
func (x *Index) names() []string {
	names := make([]string, 0, len(x.namespaces))
	for name := range x.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of points in a namespace.
func (x *Index) Count(name string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if ns, ok := x.namespaces[name]; ok {
		return len(ns.points)
	}
	return 0
}

// Close is a no-op.
func (x *Index) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
