package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// APIKeyHeader carries a model's API key on query requests.
const APIKeyHeader = "x-api-key"

type ingestResponse struct {
	Message   string `json:"message"`
	ModelName string `json:"modelName"`
	APIKey    string `json:"apiKey"`
	IndexName string `json:"indexName"`
	Chunks    int    `json:"chunks"`
	Truncated bool   `json:"truncated"`
}

type modelResponse struct {
	Name      string    `json:"name"`
	IndexName string    `json:"indexName"`
	LLMModel  string    `json:"llmModel"`
	CreatedAt time.Time `json:"createdAt"`
}

type listModelsResponse struct {
	Models []modelResponse `json:"models"`
}

type queryRequest struct {
	Message string `json:"message"`
}

type deletionRequest struct {
	ModelName string `json:"modelName"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// handleIngest creates a model from a multipart form:
// modelName, llmModel, ingestionType and either file or url.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Error:   "Upload too large",
				Details: fmt.Sprintf("limit is %d bytes", MaxUploadBytes),
			})
			return
		}
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	req, err := ingestRequestFromForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.Ingestion.Ingest(r.Context(), req, func(state domain.IngestState) {
		logger.Debug("http: ingest %q: %s", req.ModelName, state)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	message := "File uploaded and model created successfully"
	if req.Type == domain.IngestionURL {
		message = "URL processed and model created successfully"
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Message:   message,
		ModelName: result.ModelName,
		APIKey:    result.APIKey,
		IndexName: result.IndexName,
		Chunks:    result.Chunks,
		Truncated: result.Truncated,
	})
}

func ingestRequestFromForm(r *http.Request) (domain.IngestRequest, error) {
	req := domain.IngestRequest{
		ModelName: r.FormValue("modelName"),
		LLMModel:  r.FormValue("llmModel"),
		Type:      domain.IngestionType(strings.ToLower(r.FormValue("ingestionType"))),
		URL:       strings.TrimSpace(r.FormValue("url")),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return req, fmt.Errorf("%w: file: %v", domain.ErrInvalidInput, err)
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return req, fmt.Errorf("%w: reading file: %v", domain.ErrInvalidInput, err)
		}
		req.File = data
		req.FileName = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
	}

	if req.Type == "" {
		req.Type = domain.IngestionPDF
		if req.File == nil && req.URL != "" {
			req.Type = domain.IngestionURL
		}
	}
	return req, nil
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.ports.Models.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listModelsResponse{Models: make([]modelResponse, len(models))}
	for i := range models {
		resp.Models[i] = toModelResponse(&models[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	model, err := s.ports.Models.Get(r.Context(), r.PathValue("modelName"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toModelResponse(model))
}

func toModelResponse(m *domain.Model) modelResponse {
	return modelResponse{
		Name:      m.Name,
		IndexName: m.IndexName,
		LLMModel:  m.LLMModel,
		CreatedAt: m.CreatedAt,
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body queryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrInvalidInput, err))
		return
	}

	result, err := s.ports.Query.Query(r.Context(), domain.QueryRequest{
		ModelName: r.PathValue("modelName"),
		APIKey:    r.Header.Get(APIKeyHeader),
		Message:   body.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if result.SourceDocuments == nil {
		result.SourceDocuments = []domain.SourceDocument{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	s.deleteModel(w, r, r.PathValue("modelName"))
}

// handleDeletion deletes the model named in a JSON body.
func (s *Server) handleDeletion(w http.ResponseWriter, r *http.Request) {
	var body deletionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrInvalidInput, err))
		return
	}
	s.deleteModel(w, r, body.ModelName)
}

func (s *Server) deleteModel(w http.ResponseWriter, r *http.Request, name string) {
	if strings.TrimSpace(name) == "" {
		writeError(w, fmt.Errorf("%w: model name is required", domain.ErrInvalidInput))
		return
	}

	if _, err := s.ports.Models.Delete(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Model %q deleted successfully", name)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
