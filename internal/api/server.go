package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/quizgest/internal/config"
	"github.com/dgallion1/quizgest/internal/pipeline"
	"github.com/dgallion1/quizgest/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// QuizStore is the read and delete side of quiz persistence.
type QuizStore interface {
	GetQuiz(ctx context.Context, id string) (*store.Quiz, error)
	ListQuizzes(ctx context.Context, limit, offset int) ([]store.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
}

// Server is the HTTP API server for quizgest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	quizzes      QuizStore
	limiter      *clientLimiter
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, quizzes QuizStore, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		quizzes:      quizzes,
		limiter:      newClientLimiter(cfg.RateLimit, cfg.RateBurst),
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

		// Generation is the expensive path; throttle it per client.
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(s.limiter, s.log))
			r.Post("/api/quizzes", s.handleCreateQuiz)
			r.Post("/api/quizzes/batch", s.handleBatchCreate)
			r.Post("/api/generate", s.handleGenerate)
		})

		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/quizzes", s.handleListQuizzes)
		r.Get("/api/quizzes/{quizID}", s.handleGetQuiz)
		r.Delete("/api/quizzes/{quizID}", s.handleDeleteQuiz)
		r.Get("/api/stats/pipeline", s.handlePipelineStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
