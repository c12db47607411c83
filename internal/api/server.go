package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/templatizer/internal/config"
	"github.com/dgallion1/templatizer/internal/contextstore"
	"github.com/dgallion1/templatizer/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for templatizer.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	loader       pipeline.TemplateLoader
	contexts     *contextstore.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. contexts may be nil,
// in which case the context endpoints report 503.
func NewServer(orch *pipeline.Orchestrator, loader pipeline.TemplateLoader, contexts *contextstore.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		loader:       loader,
		contexts:     contexts,
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

		r.Post("/api/customize", s.handleCustomize)
		r.Get("/api/customize/{jobID}/status", s.handleCustomizeStatus)
		r.Get("/api/customize/{jobID}/archive", s.handleCustomizeArchive)

		r.Get("/api/catalog", s.handleCatalog)

		r.Get("/api/contexts", s.handleListContexts)
		r.Get("/api/contexts/{name}", s.handleGetContext)
		r.Put("/api/contexts/{name}", s.handlePutContext)
		r.Delete("/api/contexts/{name}", s.handleDeleteContext)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
