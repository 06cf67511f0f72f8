package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRAGSystem is the system instruction for grounded answers.
	// This prompt has no format placeholders.
	PromptRAGSystem = "rag_system"

	// PromptCompletion frames context and question for plain-completion backends.
	// The template expects %s (system), %s (context) and %s (question) placeholders.
	PromptCompletion = "completion"
)

// Built-in templates, used when no override is available.
const (
	DefaultRAGSystemPrompt = `You are a helpful AI assistant. Use only the provided context to answer the user's question.
If the answer is not in the context, say that you don't know. Be concise and professional.`

	DefaultCompletionTemplate = `%s

Context:
%s

Question: %s

Answer:`
)
