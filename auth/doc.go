// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides passwords, session cookies, and the admin key check.

# Passwords

Account passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword("Fat-Chance!")
	err = auth.CheckPassword(hash, attempt) // ErrInvalidCredentials on mismatch

# Sessions

Sessions are HS256 JWTs carried in the "sessionid" cookie:

	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, revocations)
	token, expires, err := sessions.Issue(user)
	http.SetCookie(w, sessions.Cookie(token, expires))

Authenticate resolves the cookie on a request:

	p, err := sessions.Authenticate(r)
	if errors.Is(err, auth.ErrUnauthenticated) {
		// redirect to login
	}

Tokens carry a random session ID (jti). Logging out records the ID in a
RevocationStore until the token would have expired. Two stores exist: the
SQL table in package store, and RedisRevoker for deployments with Redis.

# Observers

Observer receives login success, login failure, and logout events. The
account handlers call it explicitly; NopObserver discards everything.

# Admin Key

Admin endpoints compare the X-Admin-Key header with the configured key:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)
*/
package auth
