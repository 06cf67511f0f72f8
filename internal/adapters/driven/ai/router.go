package ai

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure CompletionRouter implements the interface.
var _ driven.CompletionRouter = (*CompletionRouter)(nil)

// CompletionRouter maps backend tags to completion clients.
type CompletionRouter struct {
	mu      sync.RWMutex
	clients map[string]driven.CompletionClient
}

// NewCompletionRouter creates an empty router.
func NewCompletionRouter() *CompletionRouter {
	return &CompletionRouter{clients: make(map[string]driven.CompletionClient)}
}

// Register binds tag to client, replacing any previous binding.
func (r *CompletionRouter) Register(tag string, client driven.CompletionClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[tag] = client
}

// Backend returns the client registered for tag.
func (r *CompletionRouter) Backend(tag string) (driven.CompletionClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[tag]
	if !ok {
		return nil, fmt.Errorf("%w: unknown completion backend %q", domain.ErrUnsupportedType, tag)
	}
	return client, nil
}

// Tags lists every registered tag, sorted.
func (r *CompletionRouter) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.clients))
	for tag := range r.clients {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Close closes every registered client.
func (r *CompletionRouter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, client := range r.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
