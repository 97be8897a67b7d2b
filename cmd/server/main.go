// Package main is the entry point for the print-queue server.
//
// main's job is deliberately small: read configuration from the
// environment, construct the external collaborators (file store, logger),
// and hand everything to internal/server. All actual logic lives in the
// imported packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/print-queue/internal/server"
	s3store "github.com/sakif/print-queue/internal/storage/s3"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// === HTTP ===
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// === Database ===
	// DB_PATH overrides for production deployments, e.g.
	// DB_PATH=/var/lib/printqueue/prod.db
	dbPath := "data/printqueue.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === Auth ===
	// JWT_SECRET must be a long random string:
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	githubClientID := os.Getenv("GITHUB_CLIENT_ID")
	githubClientSecret := os.Getenv("GITHUB_CLIENT_SECRET")
	if githubClientID == "" || githubClientSecret == "" {
		logger.Error("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET are required")
		os.Exit(1)
	}
	githubCallbackURL := os.Getenv("GITHUB_CALLBACK_URL")
	if githubCallbackURL == "" {
		githubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}

	// ADMIN_EXTERNAL_ID promotes one user to admin at their first sync —
	// the bootstrap for an empty deployment. Example: "github:1234567".
	bootstrapAdmin := os.Getenv("ADMIN_EXTERNAL_ID")

	// === File store ===
	// Works against AWS S3 or any S3-compatible store. For MinIO, set
	// S3_ENDPOINT=http://localhost:9000.
	s3cfg := s3store.Config{
		Region:    envOr("S3_REGION", "us-east-1"),
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Bucket:    envOr("S3_BUCKET", "print-queue-uploads"),
	}
	files, err := s3store.New(context.Background(), s3cfg)
	if err != nil {
		logger.Error("failed to create file store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === Server ===
	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		GitHubClientID:     githubClientID,
		GitHubClientSecret: githubClientSecret,
		GitHubCallbackURL:  githubCallbackURL,
		BootstrapAdmin:     bootstrapAdmin,
	}

	srv, err := server.New(cfg, files, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
