package memory

import (
	"github.com/custodia-labs/ragkit/internal/adapters/driven/config/values"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory driven.ConfigStore. It backs the settings
// service in tests and `--config :memory:` runs.
type ConfigStore struct {
	*values.Table
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{Table: values.NewTable()}
}

// NewConfigStoreFrom creates a store preloaded with data.
// Nested maps are flattened into dot keys.
func NewConfigStoreFrom(data map[string]any) *ConfigStore {
	s := NewConfigStore()
	s.Replace(data)
	return s
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.Put(key, value)
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path returns ":memory:".
func (s *ConfigStore) Path() string { return ":memory:" }
