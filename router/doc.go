// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the polls site.

# Route Registration

NewRouter wires the store, sessions, audit log, live hub and handlers, and
returns a configured http.ServeMux:

	mux := router.NewRouter(router.Deps{DB: db, Config: cfg, Logger: logger})

# Endpoints

Health and root:

	GET /health - "OK"
	GET /       - 302 to /polls/

Polls:

	GET  /polls/                  - Latest questions
	GET  /polls/{id}/             - Voting form
	POST /polls/{id}/vote         - Submit a vote (also /vote/)
	GET  /polls/{id}/results/     - Tallies
	GET  /polls/{id}/results/live - WebSocket tally stream

Accounts:

	GET  /accounts/login/  - Login form
	POST /accounts/login/  - Log in (rate limited per client IP)
	POST /accounts/logout/ - Log out

Admin (requires X-Admin-Key):

	POST /admin/questions - Create question with choices
	GET  /admin/questions - List and filter questions
	POST /admin/questions/{id}/choices - Add a choice
	POST /admin/users     - Create account
*/
package router
