package auth

import (
	"context"
	"net/http"

	"github.com/sakif/print-queue/internal/authz"
)

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type prevents collisions: only this package can
// read or write caller values in the context.
type contextKey string

const callerKey contextKey = "caller"

// AdminChecker answers "is this external ID an admin right now?".
//
// The user service implements this. The check runs on every request
// rather than being baked into the JWT, so granting or revoking admin
// takes effect immediately instead of at the next login. An unknown
// external ID is simply not an admin — the check never errors.
type AdminChecker interface {
	IsAdmin(ctx context.Context, externalID string) bool
}

// SessionCookie is the name of the HttpOnly cookie carrying the JWT.
const SessionCookie = "token"

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the session cookie, validates it, resolves the
// caller's current admin flag, and stores the resulting authz.Caller in
// the request context. Missing or invalid tokens get 401 and the chain
// stops.
//
// COOKIE-BASED TOKEN STORAGE:
// The JWT lives in an HttpOnly cookie rather than localStorage or a
// header. HttpOnly means JavaScript cannot read it, so an XSS bug cannot
// exfiltrate the session.
func RequireAuth(tokens *TokenService, admins AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			externalID, err := extractExternalID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			caller := authz.Caller{
				ExternalID: externalID,
				Admin:      admins.IsAdmin(r.Context(), externalID),
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin blocks non-admin callers with 403. It must run after
// RequireAuth (it reads the Caller that RequireAuth stored).
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok || !authz.CanManageJobs(caller) {
				http.Error(w, `{"error":"forbidden","message":"admin access required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFromContext retrieves the authenticated caller from the request
// context. Returns (zero, false) on routes that didn't pass RequireAuth.
func CallerFromContext(ctx context.Context) (authz.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(authz.Caller)
	return caller, ok && caller.ExternalID != ""
}

// extractExternalID reads the JWT cookie and validates it.
func extractExternalID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		// http.ErrNoCookie — no session, the request is anonymous
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
