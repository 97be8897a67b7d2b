package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"
	"github.com/sakif/print-queue/internal/auth"
	"github.com/sakif/print-queue/internal/service"
)

// AuthHandler manages the GitHub OAuth login flow and session cookies.
//
//   - HandleLogin    → redirect the browser to GitHub's authorization page
//   - HandleCallback → receive the code, exchange it, sync the user, set JWT
//   - HandleLogout   → clear the session cookie
//   - HandleMe       → return the logged-in user's profile
//   - HandleSync     → re-run the profile sync on demand
type AuthHandler struct {
	github *auth.GitHubProvider
	tokens *auth.TokenService
	users  *service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	github *auth.GitHubProvider,
	tokens *auth.TokenService,
	users *service.UserService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github: github,
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// HandleLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived cookie before the
// redirect; HandleCallback verifies GitHub echoed the same value back.
// That proves the callback belongs to a flow this server started.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for the GitHub user profile
//  3. Sync the user into the store (create on first login)
//  4. Issue a JWT session cookie carrying the verified external ID
//  5. Redirect to the app home page
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie served its purpose — clear it.
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: OAuth exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	user, err := h.users.Sync(r.Context(), ghUser.ExternalID(), ghUser.Email, ghUser.DisplayName())
	if err != nil {
		h.logger.Error("auth callback: user sync failed",
			slog.String("externalID", ghUser.ExternalID()),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Generate(user.ExternalID)
	if err != nil {
		h.logger.Error("auth callback: token generation failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   86400, // 24 hours, matches the JWT lifetime
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("externalID", user.ExternalID),
	)

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// The JWT itself stays valid until it expires — stateless tokens can't
// be revoked without a denylist. Clearing the cookie is enough for a
// browser session; the 24h expiry bounds the residual risk.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the current user's profile.
//
// HTTP: GET /api/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetByExternalID(r.Context(), caller.ExternalID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleSync re-runs the profile sync for the current user.
//
// HTTP: POST /api/users/sync (behind RequireAuth)
// REQUEST BODY: {"email": "...", "displayName": "..."}
//
// The identity comes from the verified session, never the body — the
// client can refresh its own profile fields and nothing else.
func (h *AuthHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Sync(r.Context(), caller.ExternalID, req.Email, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleSetAdmin grants or revokes another user's admin flag.
//
// HTTP: POST /api/admin/users/{externalId}/admin (behind RequireAdmin)
// REQUEST BODY: {"isAdmin": true}
//
// The service itself doesn't gate this call — the admin middleware on
// the route is the access control, per the layering contract.
func (h *AuthHandler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.users.SetAdmin(r.Context(), r.PathValue("externalId"), req.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
