// Package llm holds what the completion backends share.
package llm

import (
	"fmt"

	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// ChatContent renders the user turn sent to chat backends.
func ChatContent(req driven.CompletionRequest) string {
	return "Context: " + req.Context + "\n\nQuestion: " + req.Question
}

// PlainPrompt returns the rendered prompt, falling back to the built-in
// completion template.
func PlainPrompt(req driven.CompletionRequest) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	return fmt.Sprintf(driven.DefaultCompletionTemplate, req.SystemPrompt, req.Context, req.Question)
}
