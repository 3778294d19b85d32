// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/jbrewton2/contract-security-studio/internal/analysis"
	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/ingest"
	"github.com/jbrewton2/contract-security-studio/internal/jobs"
	"github.com/jbrewton2/contract-security-studio/internal/llm"
	"github.com/jbrewton2/contract-security-studio/internal/storage"
	"github.com/jbrewton2/contract-security-studio/internal/vector"
)

type Server struct {
	router    chi.Router
	provider  llm.Provider
	vector    vector.Store
	artifacts storage.Provider
	ingester  *ingest.Engine
	analyzer  *analysis.Engine
	runs      *jobs.Store
}

func NewServer(provider llm.Provider, store vector.Store, artifacts storage.Provider, runs *jobs.Store) (*Server, error) {
	logger := common.Logger()
	if provider == nil {
		return nil, fmt.Errorf("llm provider required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	logger.Info(
		"api: building server",
		"provider", provider.Name(),
		"vector_available", store.Available(),
		"runs_store", runs != nil,
	)
	srv := &Server{
		router:    chi.NewRouter(),
		provider:  provider,
		vector:    store,
		artifacts: artifacts,
		ingester:  ingest.NewEngine(provider, store, artifacts),
		analyzer:  analysis.NewEngine(provider, store),
		runs:      runs,
	}
	srv.routes()
	logger.Info("api: server ready", "routes", true)
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/ingest", s.handleIngest)
	s.router.Post("/v1/ingest/upload", s.handleIngestUpload)
	s.router.Post("/v1/analyze", s.handleAnalyze)
	s.router.Get("/v1/runs", s.handleRuns)
	s.router.Get("/v1/runs/{id}", s.handleRun)
	s.router.Get("/v1/status", s.handleStatus)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Handle("/debug/vars", expvar.Handler())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"provider":         s.provider.Name(),
		"vector_available": s.vector.Available(),
		"collection":       s.vector.Collection(),
		"runs_store":       s.runs != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
