// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the polls server.

Polls publishes questions on a schedule, lets signed-in users vote once per
question (a repeat vote changes the earlier one), and shows live tallies.

# Starting the Server

The server requires environment variables, a .env file, or CLI flags:

	DATABASE_URL=polls.db SESSION_SECRET=... ADMIN_KEY=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SESSION_SECRET (-session-secret): HMAC key for session cookies
  - ADMIN_KEY (-admin-key): Key for the admin API

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - REDIS_URL (-redis): Store logged-out sessions in Redis
  - SESSION_TTL (-session-ttl): Session lifetime (default: 24h)
  - LOGIN_RATE, LOGIN_BURST: Login attempts per client IP

# Architecture

  - polls: Listing, eligibility, vote casting, results
  - handlers: HTTP request handlers (polls, accounts, admin)
  - live: WebSocket result streams
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, flash messages, rate limiting
  - store: SQL queries
  - auth: Passwords, session cookies, admin key
  - audit: Structured log of login and vote events
  - models: Domain, request, and response types
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
