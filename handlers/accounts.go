// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
)

const msgBadLogin = "Please enter a correct username and password."

// UserLookup finds accounts by username.
type UserLookup interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
}

type AuthHandler struct {
	users    UserLookup
	sessions *auth.Sessions
	observer auth.Observer
	logger   *slog.Logger
}

func NewAuthHandler(users UserLookup, sessions *auth.Sessions, observer auth.Observer, logger *slog.Logger) *AuthHandler {
	if observer == nil {
		observer = auth.NopObserver{}
	}
	return &AuthHandler{users: users, sessions: sessions, observer: observer, logger: logger}
}

// LoginPage handles GET /accounts/login/
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, loginPage(r.URL.Query().Get("next"), ""))
}

// Login handles POST /accounts/login/
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")
	remote := middleware.RemoteIP(r)

	fail := func(reason string) {
		h.observer.OnLoginFailure(r.Context(), username, remote, reason)
		middleware.JSONResponse(w, http.StatusOK, loginPage(next, msgBadLogin))
	}

	if username == "" || password == "" {
		fail("missing_credentials")
		return
	}

	user, err := h.users.UserByUsername(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		fail("unknown_user")
		return
	}
	if err != nil {
		h.logger.Error("failed to look up user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		fail("bad_password")
		return
	}

	token, expires, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	http.SetCookie(w, h.sessions.Cookie(token, expires))
	h.observer.OnLoginSuccess(r.Context(), user.Username, remote)

	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

// Logout handles POST /accounts/logout/
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, err := h.sessions.Authenticate(r)
	switch {
	case err == nil:
		if err := h.sessions.Revoke(r.Context(), p); err != nil {
			h.logger.Error("failed to revoke session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
			return
		}
		h.observer.OnLogout(r.Context(), p.Username)
	case !errors.Is(err, auth.ErrUnauthenticated):
		h.logger.Error("failed to authenticate session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	http.SetCookie(w, h.sessions.ClearCookie())
	http.Redirect(w, r, "/polls/", http.StatusFound)
}

func loginPage(next, errorMessage string) models.LoginPageResponse {
	resp := models.LoginPageResponse{
		Fields:       []string{"username", "password"},
		ErrorMessage: errorMessage,
	}
	if isLocalPath(next) {
		resp.Next = next
	}
	return resp
}

// safeNext returns next when it stays on this site, else the poll index.
func safeNext(next string) string {
	if isLocalPath(next) {
		return next
	}
	return "/polls/"
}

func isLocalPath(next string) bool {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return false
	}
	u, err := url.Parse(next)
	return err == nil && u.Scheme == "" && u.Host == ""
}
