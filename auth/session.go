// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/danielhkuo/polls/models"
)

const SessionCookieName = "sessionid"

var ErrUnauthenticated = errors.New("not authenticated")

// RevocationStore remembers logged-out session IDs until they expire.
type RevocationStore interface {
	RevokeSession(ctx context.Context, id string, until time.Time) error
	IsSessionRevoked(ctx context.Context, id string) (bool, error)
}

// Principal is the authenticated user behind a request.
type Principal struct {
	UserID    string
	Username  string
	SessionID string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256-signed session cookies.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

func NewSessions(secret string, ttl time.Duration, revoked RevocationStore) *Sessions {
	return &Sessions{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a new session token for user.
func (s *Sessions) Issue(user models.User) (token string, expires time.Time, err error) {
	now := s.now()
	expires = now.Add(s.ttl)

	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expires, nil
}

// Parse verifies a token and returns its principal. Revocation is not checked.
func (s *Sessions) Parse(token string) (Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}
	if claims.Subject == "" || claims.ID == "" {
		return Principal{}, ErrUnauthenticated
	}

	return Principal{
		UserID:    claims.Subject,
		Username:  claims.Username,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate resolves the session cookie on r. Missing, invalid, expired,
// and revoked sessions all yield ErrUnauthenticated; other errors come from
// the revocation store.
func (s *Sessions) Authenticate(r *http.Request) (Principal, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Principal{}, ErrUnauthenticated
	}

	p, err := s.Parse(cookie.Value)
	if err != nil {
		return Principal{}, err
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsSessionRevoked(r.Context(), p.SessionID)
		if err != nil {
			return Principal{}, fmt.Errorf("failed to check session revocation: %w", err)
		}
		if revoked {
			return Principal{}, ErrUnauthenticated
		}
	}

	return p, nil
}

// Revoke invalidates p's session for the rest of its lifetime.
func (s *Sessions) Revoke(ctx context.Context, p Principal) error {
	if s.revoked == nil {
		return nil
	}
	return s.revoked.RevokeSession(ctx, p.SessionID, p.ExpiresAt)
}

// Cookie wraps a token issued by Issue.
func (s *Sessions) Cookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie removes the session cookie from the client.
func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
