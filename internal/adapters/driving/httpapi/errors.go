package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps a domain error to an HTTP status and a short label.
// Timeouts are checked first since they may also carry a provider kind.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, "Upstream timeout"
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusUnauthorized, "API key is required"
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized, "Invalid API key"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedContent),
		errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrExtraction):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Model not found"
	case errors.Is(err, domain.ErrNoMatch):
		return http.StatusNotFound, "No matching documents"
	case errors.Is(err, domain.ErrDuplicateName):
		return http.StatusConflict, "Model already exists"
	case errors.Is(err, domain.ErrFetch),
		errors.Is(err, domain.ErrEmbedding),
		errors.Is(err, domain.ErrCompletion):
		return http.StatusBadGateway, "Upstream provider error"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, label := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("http: %v", err)
	} else {
		logger.Debug("http: %d %v", status, err)
	}
	writeJSON(w, status, errorBody{Error: label, Details: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("http: encode response: %v", err)
	}
}
