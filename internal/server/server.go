// Package server sets up the HTTP server, router, and all route
// definitions. This is the wiring layer — the composition root where the
// whole dependency chain is assembled:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, routes get handlers.
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/print-queue/internal/auth"
	"github.com/sakif/print-queue/internal/handler"
	"github.com/sakif/print-queue/internal/middleware"
	sqliteRepo "github.com/sakif/print-queue/internal/repository/sqlite"
	"github.com/sakif/print-queue/internal/service"
	"github.com/sakif/print-queue/internal/storage"
)

// Config holds server configuration, assembled in main from env vars.
type Config struct {
	Port   int
	DBPath string

	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// External ID promoted to admin at first sync ("" disables).
	BootstrapAdmin string
}

// Server owns the router and the resources that must be released on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server, wiring the full dependency graph.
//
// The file store is passed in rather than constructed here — main builds
// it from the S3 config, and tests can hand in a fake without touching
// any AWS machinery.
func New(cfg Config, files storage.FileStore, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(files); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /auth/github/login                  → redirect to GitHub
//	GET    /auth/github/callback               → complete login, set cookie
//	POST   /auth/logout                        → clear cookie
//	GET    /api/me                             → current user          [auth]
//	POST   /api/users/sync                     → re-sync profile       [auth]
//	POST   /api/uploads                        → request upload ticket [auth]
//	POST   /api/jobs                           → submit job            [auth]
//	GET    /api/jobs                           → caller's jobs         [auth]
//	GET    /api/jobs/{id}                      → one job, owner/admin  [auth]
//	GET    /api/jobs/{id}/file                 → download URL          [auth]
//	GET    /api/admin/jobs?status=             → all jobs              [admin]
//	PATCH  /api/admin/jobs/{id}/status         → set status            [admin]
//	PATCH  /api/admin/jobs/{id}/admin-note     → set admin note        [admin]
//	POST   /api/admin/users/{externalId}/admin → set admin flag        [admin]
//	DELETE /api/admin/files/*                  → delete stored file    [admin]
func (s *Server) setupRoutes(files storage.FileStore) error {
	// Global middleware, in order: request ID first so everything after
	// it (including our logger) can see it.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Wiring ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	github := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	userService := service.NewUserService(s.db, s.config.BootstrapAdmin, s.logger)
	jobService := service.NewJobService(s.db, s.db, s.logger)
	uploadService := service.NewUploadService(files, s.logger)

	authHandler := handler.NewAuthHandler(github, tokens, userService, s.logger)
	jobHandler := handler.NewJobHandler(jobService, uploadService, s.logger)
	uploadHandler := handler.NewUploadHandler(uploadService, s.logger)

	// === Public routes ===
	s.router.Get("/auth/github/login", authHandler.HandleLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	// === Authenticated routes ===
	// RequireAuth validates the session cookie and resolves the caller's
	// admin flag fresh on every request.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, userService))

		r.Get("/me", authHandler.HandleMe)
		r.Post("/users/sync", authHandler.HandleSync)

		r.Post("/uploads", uploadHandler.HandleRequestTicket)

		r.Post("/jobs", jobHandler.HandleSubmit)
		r.Get("/jobs", jobHandler.HandleListMine)
		r.Get("/jobs/{id}", jobHandler.HandleGetByID)
		r.Get("/jobs/{id}/file", jobHandler.HandleFileURL)

		// === Admin routes ===
		// The services check authorization again from the caller value —
		// the middleware is the first gate, not the only one.
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin())

			r.Get("/jobs", jobHandler.HandleListAll)
			r.Patch("/jobs/{id}/status", jobHandler.HandleSetStatus)
			r.Patch("/jobs/{id}/admin-note", jobHandler.HandleSetAdminNote)
			r.Post("/users/{externalId}/admin", authHandler.HandleSetAdmin)
			r.Delete("/files/*", uploadHandler.HandleDeleteFile)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// On SIGINT/SIGTERM: stop accepting connections, give in-flight requests
// 30 seconds to finish, then close the database (flushes the WAL and
// releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
