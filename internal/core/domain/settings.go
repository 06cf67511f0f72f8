package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic messages API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderSambanova is a plain text-completion API (Sambanova Cloud).
	AIProviderSambanova AIProvider = "sambanova"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderSambanova:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderSambanova
}

// SupportsEmbeddings returns true if the provider can produce embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderSambanova:
		return "Sambanova (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// Dimensions is the vector size requested from the provider.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// BackendSettings binds a completion backend tag to a provider and model.
type BackendSettings struct {
	// Tag is the value stored in Model.LLMModel.
	Tag string

	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	MaxTokens int

	// Temperature is nil when unset; zero is a valid setting.
	Temperature *float64
}

// IsConfigured returns true if the backend can be constructed.
func (b BackendSettings) IsConfigured() bool {
	if b.Tag == "" || !b.Provider.IsValid() {
		return false
	}
	if b.Provider.RequiresAPIKey() && b.APIKey == "" {
		return false
	}
	return true
}

// VectorProvider identifies the vector index backend.
type VectorProvider string

// Available vector providers.
const (
	VectorProviderQdrant VectorProvider = "qdrant"
	VectorProviderMemory VectorProvider = "memory"
)

// Metric is a vector similarity metric.
type Metric string

// MetricCosine is the only metric used by model indexes.
const MetricCosine Metric = "cosine"

// DefaultDimensions is the embedding size of every model index.
const DefaultDimensions = 1024

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	Provider VectorProvider
	Host     string
	Port     int
	APIKey   string
	UseTLS   bool

	// Dimensions is the embedding vector size of every index.
	Dimensions int

	Metric Metric
}

// StorageDriver selects the model registry backend.
type StorageDriver string

// Available registry drivers.
const (
	StorageSQLite StorageDriver = "sqlite"
	StorageBolt   StorageDriver = "bolt"
	StorageMemory StorageDriver = "memory"
)

// ChunkStrategy selects the chunk/prep policy.
type ChunkStrategy string

// Available chunk strategies.
const (
	// ChunkSingle keeps the whole document as one capped chunk.
	ChunkSingle ChunkStrategy = "single"

	// ChunkOverlap splits the document into overlapping capped chunks.
	ChunkOverlap ChunkStrategy = "overlap"
)

// MaxChunkChars is the index metadata text budget per chunk.
const MaxChunkChars = 15000

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// DefaultRequestTimeout bounds every outbound provider call.
const DefaultRequestTimeout = 30 * time.Second

// StorageSettings selects where model records live.
type StorageSettings struct {
	Driver StorageDriver

	// DataDir holds the registry database file. Empty means ~/.ragkit/data.
	DataDir string
}

// RetrievalSettings configures the query pipeline.
type RetrievalSettings struct {
	TopK int
}

// ChunkingSettings configures the chunk/prep stage.
type ChunkingSettings struct {
	Strategy ChunkStrategy
	MaxChars int
	Overlap  int
}

// HTTPSettings bounds outbound provider traffic.
type HTTPSettings struct {
	// Timeout applies to every outbound call.
	Timeout time.Duration

	// RateLimit is the provider request budget per second. Zero disables limiting.
	RateLimit float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage     StorageSettings
	Embedding   EmbeddingSettings
	Backends    []BackendSettings
	VectorIndex VectorIndexSettings
	Retrieval   RetrievalSettings
	Chunking    ChunkingSettings
	HTTP        HTTPSettings

	// ServerAddr is the listen address of the HTTP API.
	ServerAddr string

	// PromptDir holds user-editable prompt files. Empty means ~/.ragkit/prompts.
	PromptDir string
}

// DefaultAppSettings returns settings with sensible defaults.
// Provider API keys are never defaulted; they come from the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{Driver: StorageSQLite},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOpenAI,
			Model:      "text-embedding-3-small",
			Dimensions: DefaultDimensions,
		},
		Backends: DefaultBackends(),
		VectorIndex: VectorIndexSettings{
			Provider:   VectorProviderQdrant,
			Host:       "localhost",
			Port:       6334,
			Dimensions: DefaultDimensions,
			Metric:     MetricCosine,
		},
		Retrieval: RetrievalSettings{TopK: DefaultTopK},
		Chunking: ChunkingSettings{
			Strategy: ChunkSingle,
			MaxChars: MaxChunkChars,
			Overlap:  200,
		},
		HTTP:       HTTPSettings{Timeout: DefaultRequestTimeout},
		ServerAddr: ":3000",
	}
}

// Ptr returns a pointer to v, for optional settings.
func Ptr[T any](v T) *T { return &v }

// DefaultBackends returns the completion backends offered out of the box.
// "llama-3.1" is the default tag for new models.
func DefaultBackends() []BackendSettings {
	return []BackendSettings{
		{Tag: DefaultBackendTag, Provider: AIProviderSambanova, Model: "Meta-Llama-3.1-8B-Instruct", MaxTokens: 256, Temperature: Ptr(0.7)},
		{Tag: "claude", Provider: AIProviderAnthropic, Model: "claude-3-5-sonnet-latest", MaxTokens: 1024},
		{Tag: "gpt-4o-mini", Provider: AIProviderOpenAI, Model: "gpt-4o-mini", MaxTokens: 1024},
		{Tag: "ollama", Provider: AIProviderOllama, Model: "llama3.2", MaxTokens: 512},
	}
}

// DefaultBackendTag is used when an ingestion request names no backend.
const DefaultBackendTag = "llama-3.1"
