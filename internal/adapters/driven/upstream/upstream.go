// Package upstream holds the HTTP plumbing shared by provider adapters.
//
// Every outbound call made on behalf of a pipeline goes through a client
// built here, and every failure is reported as a *domain.UpstreamError so
// callers can match the failure kind with errors.Is.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// Default limits.
const (
	DefaultTimeout = domain.DefaultRequestTimeout

	// MaxBodyBytes bounds every response body read into memory.
	MaxBodyBytes = 16 << 20

	// MaxSnippetBytes bounds the response body carried in an error.
	MaxSnippetBytes = 512
)

// NewClient returns an HTTP client with the given timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// TransportError wraps a failure to get any response at all.
// Timeouts become domain.ErrTimeout regardless of kind.
func TransportError(provider string, kind, err error) error {
	if IsTimeout(err) {
		kind = domain.ErrTimeout
	}
	return &domain.UpstreamError{Kind: kind, Provider: provider, Err: err}
}

// StatusError reports a non-success response with its status and body.
func StatusError(provider string, kind error, status int, body []byte) error {
	return domain.NewUpstreamError(kind, provider, status, Snippet(body))
}

// PayloadError reports a response whose shape could not be used.
func PayloadError(provider string, kind error, body []byte, format string, args ...any) error {
	e := domain.NewUpstreamError(kind, provider, 0, Snippet(body))
	e.Err = fmt.Errorf(format, args...)
	return e
}

// ReadBody reads at most MaxBodyBytes from r.
func ReadBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, MaxBodyBytes))
}

// Snippet returns body trimmed to MaxSnippetBytes.
func Snippet(body []byte) string {
	if len(body) > MaxSnippetBytes {
		return string(body[:MaxSnippetBytes]) + "..."
	}
	return string(body)
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
