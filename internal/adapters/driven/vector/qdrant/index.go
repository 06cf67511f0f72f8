// Package qdrant provides a VectorIndex backed by Qdrant collections.
//
// Each model index is one collection. Qdrant point ids must be integers or
// UUIDs, so chunk ids are mapped to name-based UUIDs and the original id
// travels in the payload under PayloadChunkID.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/upstream"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultHost = "localhost"
	DefaultPort = 6334

	// DefaultTimeout bounds each call to Qdrant.
	DefaultTimeout = domain.DefaultRequestTimeout

	// PayloadChunkID holds the caller's record id.
	PayloadChunkID = "chunk_id"
)

// Config holds configuration for the Qdrant index.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool

	// Timeout bounds each round trip. Zero means DefaultTimeout.
	Timeout time.Duration
}

// collectionsAPI is the subset of *qdrant.Client the index uses.
type collectionsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	DeleteCollection(ctx context.Context, collectionName string) error
	ListCollections(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

// Index stores vectors in Qdrant.
type Index struct {
	client  collectionsAPI
	timeout time.Duration

	mu         sync.Mutex
	dimensions map[string]int
}

// New connects to Qdrant over gRPC.
func New(cfg Config) (*Index, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect to %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return newIndex(client, cfg.Timeout), nil
}

func newIndex(client collectionsAPI, timeout time.Duration) *Index {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Index{client: client, timeout: timeout, dimensions: make(map[string]int)}
}

// call runs one client round trip under the index timeout. A missed deadline
// is reported as domain.ErrTimeout.
func (x *Index) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if upstream.IsTimeout(err) || status.Code(err) == codes.DeadlineExceeded ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.UpstreamError{Kind: domain.ErrTimeout, Provider: "qdrant", Err: fmt.Errorf("%s: %w", op, err)}
	}
	return fmt.Errorf("qdrant: %s: %w", op, err)
}

// Ensure creates the collection unless ListIndexes already reports it.
func (x *Index) Ensure(ctx context.Context, name string, dimension int, metric domain.Metric) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}
	distance, err := distanceFor(metric)
	if err != nil {
		return err
	}

	existing, err := x.ListIndexes(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(existing, name) {
		current, err := x.dimension(ctx, name)
		if err != nil {
			return err
		}
		if current != dimension {
			return fmt.Errorf("%w: collection %s has dimension %d, want %d", domain.ErrIndexMismatch, name, current, dimension)
		}
		return nil
	}

	err = x.call(ctx, "create collection "+name, func(ctx context.Context) error {
		return x.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dimension),
				Distance: distance,
			}),
		})
	})
	if err != nil {
		return err
	}

	x.mu.Lock()
	x.dimensions[name] = dimension
	x.mu.Unlock()
	return nil
}

// Upsert writes records after checking every vector's length.
func (x *Index) Upsert(ctx context.Context, name string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	dimension, err := x.dimension(ctx, name)
	if err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		if len(r.Vector) != dimension {
			return fmt.Errorf("%w: record %s has %d values, collection %s expects %d",
				domain.ErrIndexMismatch, r.ID, len(r.Vector), name, dimension)
		}

		payload := make(map[string]any, len(r.Metadata)+1)
		for k, v := range r.Metadata {
			payload[k] = v
		}
		payload[PayloadChunkID] = r.ID

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(r.ID)),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	return x.call(ctx, "upsert into "+name, func(ctx context.Context) error {
		_, err := x.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: name,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		return err
	})
}

// Search queries the collection for the nearest points.
func (x *Index) Search(ctx context.Context, name string, vector []float32, topK int) ([]domain.VectorMatch, error) {
	if topK <= 0 {
		return []domain.VectorMatch{}, nil
	}

	var points []*qdrant.ScoredPoint
	err := x.call(ctx, "query "+name, func(ctx context.Context) error {
		var err error
		points, err = x.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: name,
			Query:          qdrant.NewQuery(vector...),
			Limit:          qdrant.PtrOf(uint64(topK)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(points))
	for _, p := range points {
		metadata := fromPayload(p.GetPayload())
		id, _ := metadata[PayloadChunkID].(string)
		delete(metadata, PayloadChunkID)
		if id == "" {
			id = p.GetId().GetUuid()
		}
		matches = append(matches, domain.VectorMatch{
			ID:       id,
			Score:    float64(p.GetScore()),
			Metadata: metadata,
		})
	}

	// Qdrant already orders by score; keep the order stable for ties.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches, nil
}

// DeleteIndex drops the collection. A missing collection is not an error.
func (x *Index) DeleteIndex(ctx context.Context, name string) error {
	var exists bool
	err := x.call(ctx, "check collection "+name, func(ctx context.Context) error {
		var err error
		exists, err = x.client.CollectionExists(ctx, name)
		return err
	})
	if err != nil {
		return err
	}

	x.mu.Lock()
	delete(x.dimensions, name)
	x.mu.Unlock()

	if !exists {
		return nil
	}
	return x.call(ctx, "delete collection "+name, func(ctx context.Context) error {
		return x.client.DeleteCollection(ctx, name)
	})
}

// ListIndexes returns all collection names, sorted.
func (x *Index) ListIndexes(ctx context.Context) ([]string, error) {
	var names []string
	err := x.call(ctx, "list collections", func(ctx context.Context) error {
		var err error
		names, err = x.client.ListCollections(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the gRPC connection.
func (x *Index) Close() error {
	return x.client.Close()
}

// PointID maps a record id to the UUID Qdrant stores.
func PointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

// dimension returns the collection's vector size, caching it.
func (x *Index) dimension(ctx context.Context, name string) (int, error) {
	x.mu.Lock()
	d, ok := x.dimensions[name]
	x.mu.Unlock()
	if ok {
		return d, nil
	}

	var info *qdrant.CollectionInfo
	err := x.call(ctx, "collection info "+name, func(ctx context.Context) error {
		var err error
		info, err = x.client.GetCollectionInfo(ctx, name)
		return err
	})
	if err != nil {
		return 0, err
	}
	size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size == 0 {
		return 0, fmt.Errorf("%w: collection %s has no single vector config", domain.ErrIndexMismatch, name)
	}

	x.mu.Lock()
	x.dimensions[name] = int(size)
	x.mu.Unlock()
	return int(size), nil
}

func distanceFor(metric domain.Metric) (qdrant.Distance, error) {
	switch metric {
	case domain.MetricCosine:
		return qdrant.Distance_Cosine, nil
	default:
		return qdrant.Distance_UnknownDistance, fmt.Errorf("%w: metric %q", domain.ErrUnsupportedType, metric)
	}
}

func fromPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		}
	}
	return out
}
