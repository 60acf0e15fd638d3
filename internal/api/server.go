// Package api exposes the claim pipeline over HTTP, mirroring the CLI's
// batch processing plus a single-claim analysis endpoint.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/remitlab/reclaim/internal/model"
	"github.com/remitlab/reclaim/internal/pipeline"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

// Handler serves the claim processing API
type Handler struct {
	pipeline *pipeline.Pipeline
	cfg      *model.Config
	log      logrus.FieldLogger
}

// NewHandler creates the API handler around a pipeline
func NewHandler(p *pipeline.Pipeline, cfg *model.Config, log logrus.FieldLogger) *Handler {
	return &Handler{pipeline: p, cfg: cfg, log: log}
}

// Router builds the HTTP route table
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestLogging)
	r.Use(newRateLimiter(h.cfg.Server.RequestsPerSecond, h.cfg.Server.Burst).middleware)

	r.HandleFunc("/", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/process-claims", h.handleProcessClaims).Methods(http.MethodPost)
	r.HandleFunc("/analyze-claim", h.handleAnalyzeClaim).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/business-rules", h.handleBusinessRules).Methods(http.MethodGet)
	return r
}

// NewServer builds the HTTP server on the configured address
func NewServer(h *Handler) *http.Server {
	return &http.Server{
		Addr:              h.cfg.Server.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// requestLogging tags every request with an id and logs its outcome
func (h *Handler) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start).String(),
		}).Info("handled request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
