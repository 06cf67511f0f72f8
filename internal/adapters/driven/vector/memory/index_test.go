package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestIndex_EnsureIdempotent(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Ensure(ctx, "rag-model-a", 3, domain.MetricCosine))
	require.NoError(t, idx.Upsert(ctx, "rag-model-a", []domain.VectorRecord{{ID: "x", Vector: []float32{1, 0, 0}}}))
	require.NoError(t, idx.Ensure(ctx, "rag-model-a", 3, domain.MetricCosine))

	assert.Equal(t, 1, idx.Count("rag-model-a"), "second ensure must not reset the index")

	names, err := idx.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rag-model-a"}, names)
}

func TestIndex_EnsureConcurrentSameName(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Ensure(ctx, "rag-model-a", 3, domain.MetricCosine))
	require.NoError(t, idx.Upsert(ctx, "rag-model-a", []domain.VectorRecord{{ID: "x", Vector: []float32{1, 0, 0}}}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, idx.Ensure(ctx, "rag-model-a", 3, domain.MetricCosine))
			assert.NoError(t, idx.Ensure(ctx, "rag-model-b", 3, domain.MetricCosine))
		}()
	}
	wg.Wait()

	names, err := idx.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rag-model-a", "rag-model-b"}, names)
	assert.Equal(t, 1, idx.Count("rag-model-a"))
}

func TestIndex_EnsureValidation(t *testing.T) {
	idx := New()
	ctx := context.Background()

	assert.ErrorIs(t, idx.Ensure(ctx, "a", 0, domain.MetricCosine), domain.ErrInvalidInput)
	assert.ErrorIs(t, idx.Ensure(ctx, "a", 3, "dot"), domain.ErrUnsupportedType)

	require.NoError(t, idx.Ensure(ctx, "a", 3, domain.MetricCosine))
	assert.ErrorIs(t, idx.Ensure(ctx, "a", 4, domain.MetricCosine), domain.ErrIndexMismatch)
}

func TestIndex_UpsertDimensionMismatch(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Ensure(ctx, "a", 3, domain.MetricCosine))

	err := idx.Upsert(ctx, "a", []domain.VectorRecord{
		{ID: "ok", Vector: []float32{1, 2, 3}},
		{ID: "bad", Vector: []float32{1, 2}},
	})
	assert.ErrorIs(t, err, domain.ErrIndexMismatch)
	assert.Zero(t, idx.Count("a"), "a rejected batch writes nothing")
}

func TestIndex_UpsertMissingIndex(t *testing.T) {
	err := New().Upsert(context.Background(), "missing", []domain.VectorRecord{{ID: "x", Vector: []float32{1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndex_UpsertReplaces(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Ensure(ctx, "a", 2, domain.MetricCosine))

	require.NoError(t, idx.Upsert(ctx, "a", []domain.VectorRecord{{ID: "doc", Vector: []float32{1, 0}, Metadata: map[string]any{"text": "old"}}}))
	require.NoError(t, idx.Upsert(ctx, "a", []domain.VectorRecord{{ID: "doc", Vector: []float32{0, 1}, Metadata: map[string]any{"text": "new"}}}))

	assert.Equal(t, 1, idx.Count("a"))
	matches, err := idx.Search(ctx, "a", []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Metadata["text"])
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestIndex_SearchOrderAndLimit(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Ensure(ctx, "a", 2, domain.MetricCosine))
	require.NoError(t, idx.Upsert(ctx, "a", []domain.VectorRecord{
		{ID: "far", Vector: []float32{-1, 0}},
		{ID: "near", Vector: []float32{1, 0.1}},
		{ID: "mid", Vector: []float32{1, 1}},
		{ID: "exact", Vector: []float32{2, 0}},
	}))

	matches, err := idx.Search(ctx, "a", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "exact", matches[0].ID)
	assert.Equal(t, "near", matches[1].ID)
	assert.Equal(t, "mid", matches[2].ID)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestIndex_SearchEmpty(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Ensure(ctx, "a", 2, domain.MetricCosine))

	matches, err := idx.Search(ctx, "a", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = idx.Search(ctx, "a", []float32{1, 0, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrIndexMismatch)

	_, err = idx.Search(ctx, "missing", []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndex_DeleteIndex(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Ensure(ctx, "a", 2, domain.MetricCosine))

	require.NoError(t, idx.DeleteIndex(ctx, "a"))
	require.NoError(t, idx.DeleteIndex(ctx, "a"))

	names, err := idx.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NoError(t, idx.Close())
}

func TestCosine_ZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
}
