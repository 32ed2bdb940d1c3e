package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/api/handlers"
	appMiddleware "github.com/Bernard-Otieno/ai-doc-assistant/internal/api/middlewares"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/config"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/review"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewRouter builds and wires all routes.
func NewRouter(cfg *config.Config, store *review.Store, docs *services.DocumentService) http.Handler {
	secret := []byte(cfg.JWTSecret)
	sessionHandler := handlers.NewSessionHandler(secret, cfg.SessionTTL)
	docHandler := handlers.NewDocumentHandler(docs, cfg.MaxUploadMB)
	reviewHandler := handlers.NewReviewHandler(store, docs)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", handlers.HealthHandler)
	r.Get("/openapi.json", handlers.OpenAPIHandler)
	r.Get("/docs", handlers.DocsHandler)

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/session", sessionHandler.CreateSession)

		// session endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(secret))
			protected.Post("/documents/upload", docHandler.UploadDocument)
			protected.Get("/documents", docHandler.GetDocuments)

			protected.Get("/review", reviewHandler.GetReview)
			protected.Get("/review/view", reviewHandler.ViewReview)
			protected.Get("/review/improved", reviewHandler.ImprovedText)
			protected.Get("/review/preview", reviewHandler.Preview)
			protected.Post("/review/suggestions/{id}/accept", reviewHandler.Accept)
			protected.Post("/review/suggestions/{id}/reject", reviewHandler.Reject)
		})
	})

	// Serve the browser client when one is built into WEB_DIR.
	if cfg.WebDir != "" {
		if st, err := os.Stat(cfg.WebDir); err == nil && st.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
		}
	}

	return r
}

func NewServer(cfg *config.Config, handler http.Handler) *Server {
	return &Server{httpServer: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
