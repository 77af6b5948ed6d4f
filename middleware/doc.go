// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(logger, handler))

Logs request start (method, path, remote) and completion (duration_ms).
The ResponseWriter is not wrapped, so WebSocket upgrades still work.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

# Flash Messages

One-shot messages survive a redirect in the "messages" cookie:

	middleware.AddFlash(w, r, "This question is not allowed to vote.")
	http.Redirect(w, r, "/polls/", http.StatusFound)

	messages := middleware.PopFlash(w, r) // on the next page

# Rate Limiting

A token bucket per peer address guards the login form. The key comes from
RemoteIP, since X-Forwarded-For and X-Real-IP are set by the client; use
GetClientIP only for logging. Buckets idle for twice their refill time are
evicted:

	limiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	mux.HandleFunc("POST /accounts/login/", limiter.Limit(logger, h.Login))

Requests over budget get 429.
*/
package middleware
