package driven

import "context"

// CompletionClient generates an answer from assembled context and a question.
//
// Implementations may include:
//   - OpenAI and Anthropic chat backends
//   - Sambanova and Ollama plain-completion backends
type CompletionClient interface {
	// Complete returns the generated answer text.
	// Non-success responses and empty results fail with domain.ErrCompletion.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// ModelName returns the provider model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest is the input of a single completion call.
type CompletionRequest struct {
	// SystemPrompt is the fixed instruction.
	SystemPrompt string

	// Context is the concatenated retrieved chunk text.
	Context string

	// Question is the caller's original message.
	Question string

	// Prompt is the rendered single-string prompt for plain-completion
	// backends. Chat backends ignore it.
	Prompt string

	// MaxTokens is the maximum number of tokens to generate (0 = backend default).
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Nil leaves the choice to the backend.
	Temperature *float64
}

// CompletionRouter resolves a backend tag to a completion client.
type CompletionRouter interface {
	// Backend returns the client for tag, or domain.ErrUnsupportedType.
	Backend(tag string) (CompletionClient, error)

	// Tags lists every registered backend tag.
	Tags() []string
}
