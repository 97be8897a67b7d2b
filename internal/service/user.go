// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → authorizes, validates, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services accept primitives and authz.Caller values, never HTTP types,
// and return domain errors (apperror), never status codes. Handlers do
// the translating in both directions. Every service takes its repository
// as an interface, so tests inject in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/print-queue/internal/apperror"
	"github.com/sakif/print-queue/internal/model"
	"github.com/sakif/print-queue/internal/repository"
)

// UserService handles the identity mirror: user records synced from the
// external identity provider, plus the admin flag that lives only here.
type UserService struct {
	users          repository.UserRepository
	bootstrapAdmin string // external ID granted admin at first sync ("" disables)
	logger         *slog.Logger
}

// NewUserService creates a UserService.
//
// bootstrapAdmin solves the chicken-and-egg problem of the first admin:
// granting admin requires an admin. If it matches a syncing user's
// external ID, that user is promoted during Sync. Leave it empty once a
// real admin exists.
func NewUserService(users repository.UserRepository, bootstrapAdmin string, logger *slog.Logger) *UserService {
	return &UserService{
		users:          users,
		bootstrapAdmin: bootstrapAdmin,
		logger:         logger,
	}
}

// Sync mirrors a user from the identity provider into the store.
//
// Idempotent: the first call for an external ID creates the record
// (IsAdmin=false), every later call refreshes only email and display
// name. Safe to call on every authenticated page load — the original
// frontend does exactly that.
func (s *UserService) Sync(ctx context.Context, externalID, email, displayName string) (*model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("externalId", "external ID is required")
	}

	user := &model.User{
		ExternalID:  externalID,
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/user: syncing user %s: %w", externalID, err)
	}

	if s.bootstrapAdmin != "" && externalID == s.bootstrapAdmin && !user.IsAdmin {
		promoted, err := s.users.SetAdmin(ctx, externalID, true)
		if err != nil {
			// Best-effort: the user is synced either way, promotion can
			// happen on the next login.
			s.logger.Warn("bootstrap admin promotion failed",
				slog.String("externalID", externalID),
				slog.String("error", err.Error()),
			)
		} else {
			user = promoted
			s.logger.Info("bootstrap admin promoted",
				slog.String("externalID", externalID),
			)
		}
	}

	s.logger.Info("user synced",
		slog.String("userID", user.ID),
		slog.String("externalID", externalID),
	)

	return user, nil
}

// GetByExternalID returns the user for the given external ID.
// Returns apperror.ErrNotFound for unknown IDs.
func (s *UserService) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("externalId", "external ID is required")
	}

	return s.users.GetByExternalID(ctx, externalID)
}

// IsAdmin reports whether the given external ID belongs to an admin.
//
// An unknown user is simply not an admin — this never returns an error.
// Store failures are logged and treated as "not admin": failing closed
// here means a database hiccup can never widen anyone's access.
func (s *UserService) IsAdmin(ctx context.Context, externalID string) bool {
	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("admin check failed",
				slog.String("externalID", externalID),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	return user.IsAdmin
}

// SetAdmin grants or revokes the admin flag.
//
// Returns apperror.ErrNotFound if the user has never synced. This method
// itself is not access-controlled — the route that exposes it sits
// behind the admin middleware, per the layering contract.
func (s *UserService) SetAdmin(ctx context.Context, externalID string, isAdmin bool) (*model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("externalId", "external ID is required")
	}

	user, err := s.users.SetAdmin(ctx, externalID, isAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin flag changed",
		slog.String("externalID", externalID),
		slog.Bool("isAdmin", isAdmin),
	)

	return user, nil
}
