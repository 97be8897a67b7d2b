// Package auth provides the identity boundary for the print queue:
// the GitHub OAuth flow, JWT session tokens, and the middleware that
// turns a validated token into a caller identity on the request context.
//
// AUTHENTICATION FLOW:
//  1. User visits /auth/github/login → redirected to GitHub
//  2. GitHub calls back with a code; we exchange it for the user profile
//  3. The user record is synced into the store, a JWT is issued, and
//     the JWT lands in an HttpOnly cookie
//  4. On every API call, middleware validates the cookie's JWT and puts
//     the verified external ID (plus a live admin check) in the context
//
// The JWT's "sub" claim carries the identity provider's external ID —
// the single trust anchor. It is verified here, once, and flows down to
// services as an explicit value; no layer below re-derives identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService handles JWT creation and validation. It holds the HMAC
// secret used to sign and verify tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production:
// JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; "sub" holds the external ID.
type claims struct {
	jwt.RegisteredClaims
}

// sessionLifetime is how long a login lasts before the user has to go
// through the OAuth flow again.
const sessionLifetime = 24 * time.Hour

// Generate creates and signs a session token for the given external ID.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for
// a single-server deployment where one process both signs and verifies.
func (s *TokenService) Generate(externalID string) (string, error) {
	return s.GenerateWithDuration(externalID, sessionLifetime)
}

// GenerateWithDuration creates a token with a custom expiry. Used by
// tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(externalID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "print-queue",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string, returning the external ID
// stored in the "sub" claim.
//
// The jwt library checks the signature, the expiry and the issuer.
// jwt.WithValidMethods pins the algorithm to HS256 so a token claiming
// alg=none (or an RSA confusion attack) is rejected outright.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("print-queue"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	externalID := c.Subject
	if externalID == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return externalID, nil
}
