package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the portion of the GitHub /user API response we care
// about. GitHub returns a much larger object — we only unmarshal the
// fields we need.
type GitHubUser struct {
	ID    int64  `json:"id"`    // GitHub's numeric user ID — stable, never changes
	Login string `json:"login"` // GitHub username, e.g. "sakif"
	Email string `json:"email"` // Primary email (empty if hidden in GitHub settings)
	Name  string `json:"name"`  // Display name (empty if unset — fall back to Login)
}

// ExternalID returns the opaque identity string the rest of the system
// treats as the trust anchor for this user.
//
// The provider prefix keeps the ID meaningless to everything downstream
// (stores compare it, never parse it) and leaves room for a second
// identity provider later without ID collisions.
func (u *GitHubUser) ExternalID() string {
	return fmt.Sprintf("github:%d", u.ID)
}

// DisplayName returns the user's display name, falling back to the
// GitHub login when the profile name is unset.
func (u *GitHubUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization
// Code flow — the external identity provider for the print queue.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. We redirect the user to GitHub's authorization endpoint.
//  2. The user approves the request on GitHub.
//  3. GitHub redirects back to our callback URL with a short-lived code.
//  4. We exchange the code for an access token (server-to-server, using
//     the client secret — the token never touches the browser).
//  5. We call the GitHub API with the token to read the user's profile.
//
// Identity is authenticated exactly once, here. Everything below the
// HTTP boundary receives the resulting external ID as an already-verified
// value and never re-derives it.
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
//
// You get ClientID and ClientSecret by registering an OAuth App at
// https://github.com/settings/developers. callbackURL must match the
// "Authorization callback URL" you configured exactly.
//
// Scopes: "read:user" for the public profile, "user:email" for the email.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// The state is a random string stored in a cookie before redirecting;
// the callback verifies it matches, which blocks CSRF-initiated flows.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for a
// GitHub user profile. This is the core of the callback handler.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// "Authorization: Bearer <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}

	if ghUser.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return &ghUser, nil
}
