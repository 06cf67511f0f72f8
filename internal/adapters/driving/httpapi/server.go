package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/ragkit/internal/logger"
)

// MaxUploadBytes caps the size of a multipart ingestion request.
const MaxUploadBytes = 32 << 20

// Server exposes the driving ports as a JSON API.
type Server struct {
	ports *Ports
	mux   *http.ServeMux
}

// NewServer creates a new HTTP API server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		mux:   http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/upload", s.handleIngest)
	s.mux.HandleFunc("POST /api/models", s.handleIngest)
	s.mux.HandleFunc("GET /api/models", s.handleListModels)
	s.mux.HandleFunc("GET /api/models/{modelName}", s.handleGetModel)
	s.mux.HandleFunc("POST /api/models/{modelName}/query", s.handleQuery)
	s.mux.HandleFunc("DELETE /api/models/{modelName}", s.handleDeleteModel)
	s.mux.HandleFunc("DELETE /api/deletion", s.handleDeletion)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the API's root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves the API on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http: shutdown: %v", err)
		}
	}()

	logger.Info("API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
