// Package values holds the flat key/value table shared by the config stores.
//
// Keys use dot notation ("backends.llama-3.1.model"). Values keep whatever
// type the decoder produced: TOML yields int64, YAML yields int, and both
// yield []any for arrays. The typed getters coerce between those shapes and
// return the zero value for a missing key or an incompatible type.
package values

import (
	"sort"
	"strings"
	"sync"
)

// Table is a concurrency-safe flat configuration table.
type Table struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{data: make(map[string]any)}
}

// Get retrieves a value by key.
func (t *Table) Get(key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.data[key]
	return v, ok
}

// GetString retrieves a string value.
func (t *Table) GetString(key string) string {
	v, _ := t.Get(key)
	s, _ := v.(string)
	return s
}

// GetInt retrieves an integer value. Floats are truncated.
func (t *Table) GetInt(key string) int {
	v, _ := t.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// GetFloat retrieves a float value. Integers are widened.
func (t *Table) GetFloat(key string) float64 {
	v, _ := t.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// GetBool retrieves a boolean value.
func (t *Table) GetBool(key string) bool {
	v, _ := t.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStringSlice retrieves a list of strings. Non-string items are skipped.
func (t *Table) GetStringSlice(key string) []string {
	v, _ := t.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Keys returns every key that starts with prefix, sorted.
func (t *Table) Keys(prefix string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var keys []string
	for k := range t.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Put stores a value.
func (t *Table) Put(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data[key] = value
}

// Replace swaps the whole table for data, flattening nested maps.
func (t *Table) Replace(data map[string]any) {
	flat := Flatten(data, "")
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = flat
}

// Snapshot returns a copy of the table.
func (t *Table) Snapshot() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]any, len(t.data))
	for k, v := range t.data {
		out[k] = v
	}
	return out
}

// Flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range Flatten(nested, full) {
				out[k] = v
			}
			continue
		}
		out[full] = value
	}
	return out
}
