package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// Callers match on these with errors.Is; adapters wrap them with detail.
var (
	// ErrInvalidInput indicates missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates a request arrived without an API key.
	ErrMissingCredential = errors.New("missing credential")

	// ErrAuth indicates the model name or API key did not match.
	ErrAuth = errors.New("invalid API key")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName indicates a model with the same name is already registered.
	ErrDuplicateName = errors.New("model name already exists")

	// ErrAlreadyExists is kept for store adapters that speak in generic terms.
	ErrAlreadyExists = ErrDuplicateName

	// ErrUnsupportedType indicates an unknown ingestion type, provider or backend tag.
	ErrUnsupportedType = errors.New("unsupported type")

	// Source Errors.

	// ErrExtraction indicates a source could not be turned into text.
	ErrExtraction = errors.New("text extraction failed")

	// ErrFetch indicates a URL could not be fetched.
	ErrFetch = errors.New("fetch failed")

	// ErrUnsupportedContent indicates a fetched resource is not HTML.
	ErrUnsupportedContent = errors.New("unsupported content type")

	// Provider Errors.

	// ErrEmbedding indicates the embedding provider failed or returned a malformed payload.
	ErrEmbedding = errors.New("embedding failed")

	// ErrCompletion indicates the completion provider failed or returned a malformed payload.
	ErrCompletion = errors.New("completion failed")

	// ErrTimeout indicates an outbound call exceeded its deadline.
	ErrTimeout = errors.New("upstream timeout")

	// Index Errors.

	// ErrIndexMismatch indicates a vector does not match the index dimension.
	ErrIndexMismatch = errors.New("vector dimension does not match index")

	// ErrIngestion indicates an internal consistency failure while writing an index.
	ErrIngestion = errors.New("ingestion failed")

	// ErrNoMatch indicates retrieval found nothing for the query.
	ErrNoMatch = errors.New("no matching documents")

	// ErrPartialDeletion indicates the index was deleted but the registry record was not.
	ErrPartialDeletion = errors.New("partial deletion")
)

// UpstreamError carries the status and body returned by an external service.
// It unwraps to Kind so errors.Is(err, ErrEmbedding) keeps working.
type UpstreamError struct {
	Kind       error
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

// NewUpstreamError builds an UpstreamError for a provider response.
func NewUpstreamError(kind error, provider string, status int, body string) *UpstreamError {
	return &UpstreamError{Kind: kind, Provider: provider, StatusCode: status, Body: body}
}

func (e *UpstreamError) Error() string {
	msg := e.Kind.Error()
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsRetryable reports whether retrying the same request could succeed.
// Provider malfunctions and timeouts qualify; input and consistency errors do not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrEmbedding) ||
		errors.Is(err, ErrCompletion)
}
