package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStorageDriver  = "storage.driver"
	keyStorageDataDir = "storage.data_dir"

	keyVectorProvider  = "vector.provider"
	keyVectorHost      = "vector.host"
	keyVectorPort      = "vector.port"
	keyVectorAPIKey    = "vector.api_key"
	keyVectorAPIKeyEnv = "vector.api_key_env"
	keyVectorTLS       = "vector.use_tls"
	keyVectorDims      = "vector.dimension"
	keyVectorMetric    = "vector.metric"

	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedAPIKeyEnv = "embedding.api_key_env"
	keyEmbedDims      = "embedding.dimensions"

	keyTopK          = "retrieval.top_k"
	keyChunkStrategy = "chunking.strategy"
	keyChunkMaxChars = "chunking.max_chars"
	keyChunkOverlap  = "chunking.overlap"
	keyHTTPTimeout   = "http.timeout"
	keyHTTPRateLimit = "http.rate_limit_per_second"
	keyServerAddr    = "server.addr"
	keyPromptDir     = "prompts.dir"

	backendPrefix = "backends."
)

// MaxTopK bounds the configurable retrieval depth.
const MaxTopK = 20

// providerKeyEnv is the conventional environment variable per provider.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
	domain.AIProviderSambanova: "SAMBANOVA_API_KEY",
}

const qdrantKeyEnv = "QDRANT_API_KEY"

// SettingsService turns flat configuration keys into domain.AppSettings.
// Secrets are never stored in the settings file by default: each provider
// section may name an environment variable in api_key_env, and falls back to
// the provider's conventional variable.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading secrets from the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore, getenv: os.Getenv}
}

// WithEnv replaces the environment lookup, for tests.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Driver:  domain.StorageDriver(s.getString(keyStorageDriver, string(d.Storage.Driver))),
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			Dimensions: s.getInt(keyEmbedDims, 0),
		},
		VectorIndex: domain.VectorIndexSettings{
			Provider:   domain.VectorProvider(s.getString(keyVectorProvider, string(d.VectorIndex.Provider))),
			Host:       s.getString(keyVectorHost, d.VectorIndex.Host),
			Port:       s.getInt(keyVectorPort, d.VectorIndex.Port),
			UseTLS:     s.getBool(keyVectorTLS, d.VectorIndex.UseTLS),
			Dimensions: s.getInt(keyVectorDims, d.VectorIndex.Dimensions),
			Metric:     domain.Metric(s.getString(keyVectorMetric, string(d.VectorIndex.Metric))),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyTopK, d.Retrieval.TopK),
		},
		Chunking: domain.ChunkingSettings{
			Strategy: domain.ChunkStrategy(s.getString(keyChunkStrategy, string(d.Chunking.Strategy))),
			MaxChars: s.getInt(keyChunkMaxChars, d.Chunking.MaxChars),
			Overlap:  s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		HTTP: domain.HTTPSettings{
			Timeout:   s.getDuration(keyHTTPTimeout, d.HTTP.Timeout),
			RateLimit: s.configStore.GetFloat(keyHTTPRateLimit),
		},
		ServerAddr: s.getString(keyServerAddr, d.ServerAddr),
		PromptDir:  s.configStore.GetString(keyPromptDir),
	}

	// The index dimension is authoritative; the embedder is asked for the same size.
	if settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = settings.VectorIndex.Dimensions
	}

	settings.Embedding.APIKey = s.secret(keyEmbedAPIKey, keyEmbedAPIKeyEnv, providerKeyEnv[settings.Embedding.Provider])
	settings.VectorIndex.APIKey = s.secret(keyVectorAPIKey, keyVectorAPIKeyEnv, qdrantKeyEnv)
	settings.Backends = s.backends(d.Backends)

	return settings, nil
}

// Set stores a single configuration key and persists it.
func (s *SettingsService) Set(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Lookup returns the raw value of a configuration key.
func (s *SettingsService) Lookup(key string) (any, bool) {
	return s.configStore.Get(key)
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Validate checks the settings describe services that can be built.
// Every problem is reported, joined, each wrapping domain.ErrInvalidInput.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidInput}, args...)...))
	}

	switch settings.Storage.Driver {
	case domain.StorageSQLite, domain.StorageBolt, domain.StorageMemory:
	default:
		invalid("storage.driver %q must be sqlite, bolt or memory", settings.Storage.Driver)
	}

	switch settings.VectorIndex.Provider {
	case domain.VectorProviderQdrant, domain.VectorProviderMemory:
	default:
		invalid("vector.provider %q must be qdrant or memory", settings.VectorIndex.Provider)
	}
	if settings.VectorIndex.Metric != domain.MetricCosine {
		invalid("vector.metric %q is not supported, use cosine", settings.VectorIndex.Metric)
	}
	if settings.VectorIndex.Dimensions <= 0 {
		invalid("vector.dimension must be positive")
	}

	if !settings.Embedding.Provider.SupportsEmbeddings() {
		invalid("embedding.provider %q cannot produce embeddings", settings.Embedding.Provider)
	} else if !settings.Embedding.IsConfigured() {
		invalid("embedding provider %s needs an API key (set %s or embedding.api_key_env)",
			settings.Embedding.Provider, providerKeyEnv[settings.Embedding.Provider])
	}
	if settings.Embedding.Dimensions != settings.VectorIndex.Dimensions {
		invalid("embedding.dimensions %d differs from vector.dimension %d",
			settings.Embedding.Dimensions, settings.VectorIndex.Dimensions)
	}

	if settings.Retrieval.TopK < 1 || settings.Retrieval.TopK > MaxTopK {
		invalid("retrieval.top_k %d must be between 1 and %d", settings.Retrieval.TopK, MaxTopK)
	}

	switch settings.Chunking.Strategy {
	case domain.ChunkSingle, domain.ChunkOverlap:
	default:
		invalid("chunking.strategy %q must be single or overlap", settings.Chunking.Strategy)
	}

	configured := 0
	for _, b := range settings.Backends {
		if !b.Provider.IsValid() {
			invalid("backends.%s.provider %q is not recognised", b.Tag, b.Provider)
			continue
		}
		if b.IsConfigured() {
			configured++
		}
	}
	if configured == 0 {
		invalid("no completion backend has credentials")
	}

	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// backends merges backends.<tag>.<field> keys over the built-in backends.
// Tags may contain dots, so the field is everything after the last dot.
func (s *SettingsService) backends(defaults []domain.BackendSettings) []domain.BackendSettings {
	byTag := make(map[string]*domain.BackendSettings, len(defaults))
	order := make([]string, 0, len(defaults))
	for i := range defaults {
		b := defaults[i]
		byTag[b.Tag] = &b
		order = append(order, b.Tag)
	}

	var extra []string
	for _, key := range s.configStore.Keys(backendPrefix) {
		rest := strings.TrimPrefix(key, backendPrefix)
		dot := strings.LastIndex(rest, ".")
		if dot <= 0 {
			continue
		}
		tag := rest[:dot]
		if _, ok := byTag[tag]; !ok {
			byTag[tag] = &domain.BackendSettings{Tag: tag}
			extra = append(extra, tag)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	out := make([]domain.BackendSettings, 0, len(order))
	for _, tag := range order {
		b := byTag[tag]
		prefix := backendPrefix + tag + "."

		b.Provider = s.getProvider(prefix+"provider", b.Provider)
		b.Model = s.getString(prefix+"model", b.Model)
		b.BaseURL = s.getString(prefix+"base_url", b.BaseURL)
		b.MaxTokens = s.getInt(prefix+"max_tokens", b.MaxTokens)
		if _, ok := s.configStore.Get(prefix + "temperature"); ok {
			b.Temperature = domain.Ptr(s.configStore.GetFloat(prefix + "temperature"))
		}
		b.APIKey = s.secret(prefix+"api_key", prefix+"api_key_env", providerKeyEnv[b.Provider])

		out = append(out, *b)
	}
	return out
}

// secret resolves a credential: literal key, then the named variable, then the fallback variable.
func (s *SettingsService) secret(literalKey, envKey, fallbackEnv string) string {
	if v := s.configStore.GetString(literalKey); v != "" {
		return v
	}
	if name := s.configStore.GetString(envKey); name != "" {
		return s.getenv(name)
	}
	if fallbackEnv != "" {
		return s.getenv(fallbackEnv)
	}
	return ""
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration accepts a Go duration string ("45s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if str := s.configStore.GetString(key); str != "" {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return d
		}
		if n, err := strconv.Atoi(str); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		return defaultVal
	}
	if n := s.configStore.GetInt(key); n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}
