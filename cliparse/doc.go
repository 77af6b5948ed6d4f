// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-env-file        dotenv file to load first (default .env, missing is fine)
	-p               Server port
	-d               Database URL
	-t               Database type (sqlite or postgres)
	-redis           Redis URL for session revocation
	-session-secret  Session signing secret
	-admin-key       Admin API key
	-session-ttl     Session lifetime (Go duration)
	-login-rate      Login attempts per second per client IP
	-login-burst     Login attempt burst per client IP

# Environment Variables

Flags fall back to environment variables, which may come from the env file:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	REDIS_URL      → -redis
	SESSION_SECRET → -session-secret
	ADMIN_KEY      → -admin-key
	SESSION_TTL    → -session-ttl
	LOGIN_RATE     → -login-rate
	LOGIN_BURST    → -login-burst

CLI flags take precedence over environment variables. Variables already set
in the process environment take precedence over the env file.

# Validation

ParseFlags returns an error if DATABASE_URL, SESSION_SECRET or ADMIN_KEY is
missing, or if any value fails to parse.
*/
package cliparse
