package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pitidev/workhub/internal/auth"
	"github.com/pitidev/workhub/internal/config"
	"github.com/pitidev/workhub/internal/server/handlers"
	"github.com/pitidev/workhub/internal/server/middleware"
	"github.com/pitidev/workhub/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	store      storage.Store
	issuer     *auth.TokenIssuer
	httpServer *http.Server
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *slog.Logger, store storage.Store, issuer *auth.TokenIssuer) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		store:  store,
		issuer: issuer,
	}
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM or a listen error
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server",
		"host", s.config.Server.Host,
		"port", s.config.Server.Port,
		"access_ttl", s.config.Auth.AccessTTL.String(),
		"refresh_ttl", s.config.Auth.RefreshTTL.String())

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		s.logger.Info("Shutdown signal received", "signal", sig.String())
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Initiating graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown failed", "error", err)
		return err
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Storage close failed", "error", err)
		return err
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

// Handler returns the fully wired router
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware (applied to all routes)
	router.Use(middleware.Logging(s.logger))
	router.Use(middleware.CORS(s.config.CORS.AllowedOrigins))
	router.Use(middleware.NewRateLimiter(s.config.Server.RateLimit))

	requireAuth := middleware.RequireAuth(auth.NewBearerAuth(s.issuer, s.logger), s.logger)

	healthHandler := handlers.NewHealthHandler(s.store, s.logger)
	authHandler := handlers.NewAuthHandler(s.store, s.issuer, s.logger)
	whoamiHandler := handlers.NewWhoamiHandler(s.store, s.logger)
	projectHandler := handlers.NewProjectHandler(s.store, s.logger)

	router.Get("/health", healthHandler.GetHealth)

	router.Route("/auth", func(r chi.Router) {
		// Credential exchange endpoints never require a bearer token
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh-token", authHandler.RefreshToken)

		r.With(requireAuth).Get("/me", whoamiHandler.GetWhoami)
	})

	router.Route("/projects", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", projectHandler.ListProjects)
		r.Post("/", projectHandler.CreateProject)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", projectHandler.GetProject)
			r.Put("/", projectHandler.UpdateProject)
			r.Delete("/", projectHandler.DeleteProject)
		})
	})

	return router
}
