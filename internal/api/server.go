package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/innobridge/platform/internal/auth"
	"github.com/innobridge/platform/internal/cache"
	"github.com/innobridge/platform/internal/catalog"
	"github.com/innobridge/platform/internal/config"
	"github.com/innobridge/platform/internal/events"
	"github.com/innobridge/platform/internal/models"
	"github.com/innobridge/platform/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	router  *chi.Mux
	repo    storage.Repository
	tokens  *auth.TokenManager
	catalog *catalog.Catalog
	hub     *events.Hub
	board   *cache.BoardCache
	listing config.ListingConfig
}

// NewServer creates a new API server. board may be nil when the cache is
// disabled.
func NewServer(
	repo storage.Repository,
	tokens *auth.TokenManager,
	cat *catalog.Catalog,
	hub *events.Hub,
	board *cache.BoardCache,
	listing config.ListingConfig,
) *Server {
	s := &Server{
		repo:    repo,
		tokens:  tokens,
		catalog: cat,
		hub:     hub,
		board:   board,
		listing: listing,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/domains", s.handleListDomains)

		// Everything below requires a verified session token
		r.Group(func(r chi.Router) {
			r.Use(s.Authenticate)

			r.Get("/me", s.handleMe)
			r.Get("/events", s.handleEvents)

			// Industry side: post challenges, review proposals
			r.Route("/industry", func(r chi.Router) {
				r.Use(s.RequireRole(models.RoleIndustry))

				r.Post("/challenges", s.handleCreateChallenge)
				r.Get("/challenges", s.handleListOwnChallenges)
				r.Get("/challenges/{id}", s.handleGetOwnChallenge)
				r.Post("/proposals/{id}/decision", s.handleDecideProposal)
			})

			// Startup side: browse the board, submit and track proposals
			r.Route("/startup", func(r chi.Router) {
				r.Use(s.RequireRole(models.RoleStartup))

				r.Get("/challenges", s.handleBoard)
				r.Get("/challenges/{id}", s.handleStartupGetChallenge)
				r.Post("/challenges/{id}/proposals", s.handleSubmitProposal)
				r.Get("/proposals", s.handleMyProposals)
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
