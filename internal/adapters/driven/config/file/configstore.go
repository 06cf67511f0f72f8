package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/config/values"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultFileName is the config file created inside the config directory.
const DefaultFileName = "config.toml"

// Format is a config file encoding.
type Format int

// Supported formats, chosen by file extension.
const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor returns the format implied by path's extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// ConfigStore is a file-based implementation of driven.ConfigStore.
// Nested tables are flattened into dot-notation keys on load; saving writes
// the flat keys back, so tags containing dots survive a round trip.
type ConfigStore struct {
	*values.Table

	mu       sync.Mutex // serialises file writes
	filePath string
	format   Format
}

// NewConfigStore creates a TOML config store in configDir.
// If configDir is empty, defaults to ~/.ragkit/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	return OpenConfigFile(filepath.Join(configDir, DefaultFileName))
}

// OpenConfigFile opens the config file at path, TOML or YAML by extension.
// A missing file is not an error; it is created on the first Save or Set.
func OpenConfigFile(path string) (*ConfigStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		Table:    values.NewTable(),
		filePath: path,
		format:   FormatFor(path),
	}

	if err := s.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// DefaultDir returns ~/.ragkit.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ragkit"), nil
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.Put(key, value)
	return s.Save()
}

// Save persists the current configuration to disk with 0600 permissions.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		data []byte
		err  error
	)
	snapshot := s.Snapshot()
	switch s.format {
	case FormatYAML:
		data, err = yaml.Marshal(snapshot)
	default:
		data, err = toml.Marshal(snapshot)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the file. A missing file leaves the store empty.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var loaded map[string]any
	switch s.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = toml.Unmarshal(data, &loaded)
	}
	if err != nil {
		return err
	}
	s.Replace(loaded)
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
