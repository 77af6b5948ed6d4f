// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit turns login and vote events into structured log records.

Log implements both auth.LoginObserver and polls.VoteObserver, so one value
is handed to the account handlers and to the voting service:

	trail := audit.New(logger)
	svc := polls.NewService(st, trail, nil)

Records carry an "event" attribute (login_success, login_failure, logout,
vote_submitted) plus the username or IDs involved. The remote address is
the connection's peer, never a forwarding header.
*/
package audit
