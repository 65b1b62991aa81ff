package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/ocrgrid/internal/config"
	"github.com/dgallion1/ocrgrid/internal/ocr"
	"github.com/dgallion1/ocrgrid/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for ocrgrid.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	ocrStats     *ocr.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, ocrStats *ocr.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		ocrStats:     ocrStats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleUpload)
		r.Post("/api/documents/batch", s.handleBatchUpload)
		r.Post("/api/documents/import", s.handleImport)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Post("/api/extract", s.handleExtract)

		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Get("/api/documents/{docID}/report", s.handleGetReport)
		r.Get("/api/documents/{docID}/tables", s.handleGetTables)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Get("/api/stats/ocr", s.handleOCRStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"ocr_engine":  s.orchestrator.EngineName(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
