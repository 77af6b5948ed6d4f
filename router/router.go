// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/polls/audit"
	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/handlers"
	"github.com/danielhkuo/polls/live"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/polls"
	"github.com/danielhkuo/polls/store"
)

// Deps are the collaborators NewRouter wires together.
type Deps struct {
	DB     *sql.DB
	Config cliparse.Config
	Logger *slog.Logger

	// Revocations stores logged-out sessions. Nil uses the database.
	Revocations auth.RevocationStore

	// Now is the clock for eligibility checks. Nil uses time.Now.
	Now func() time.Time
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	logger := d.Logger
	cfg := d.Config

	st := store.New(d.DB)
	revocations := d.Revocations
	if revocations == nil {
		revocations = st
	}
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, revocations)
	events := audit.New(logger)
	svc := polls.NewService(st, events, d.Now)
	hub := live.NewHub(logger)

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(svc, sessions, hub, logger)
	authHandler := handlers.NewAuthHandler(st, sessions, events, logger)
	adminHandler := handlers.NewAdminHandler(st, cfg.AdminKey, logger, d.Now)
	liveHandler := live.NewHandler(hub, svc, logger)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)

	log := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(logger, h)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public poll pages
	mux.HandleFunc("GET /polls/{$}", log(pollHandler.Index))
	mux.HandleFunc("GET /polls/{id}/{$}", log(pollHandler.Detail))
	mux.HandleFunc("POST /polls/{id}/vote", log(pollHandler.Vote))
	mux.HandleFunc("POST /polls/{id}/vote/{$}", log(pollHandler.Vote))
	mux.HandleFunc("GET /polls/{id}/results/{$}", log(pollHandler.Results))
	mux.HandleFunc("GET /polls/{id}/results/live", log(liveHandler.ServeResults))

	// Accounts
	mux.HandleFunc("GET /accounts/login/{$}", log(authHandler.LoginPage))
	mux.HandleFunc("POST /accounts/login/{$}", log(loginLimiter.Limit(logger, authHandler.Login)))
	mux.HandleFunc("POST /accounts/logout/{$}", log(authHandler.Logout))

	// Admin (requires X-Admin-Key)
	mux.HandleFunc("POST /admin/questions", log(adminHandler.CreateQuestion))
	mux.HandleFunc("GET /admin/questions", log(adminHandler.ListQuestions))
	mux.HandleFunc("POST /admin/questions/{id}/choices", log(adminHandler.AddChoice))
	mux.HandleFunc("POST /admin/users", log(adminHandler.CreateUser))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/polls/", http.StatusFound)
	})

	return mux
}
