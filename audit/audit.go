// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"log/slog"
)

// Log writes one record per event to the wrapped logger.
type Log struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "audit")}
}

func (l *Log) OnLoginSuccess(ctx context.Context, username, remoteAddr string) {
	l.logger.InfoContext(ctx, "login succeeded",
		"event", "login_success",
		"username", username,
		"remote", remoteAddr,
	)
}

func (l *Log) OnLoginFailure(ctx context.Context, username, remoteAddr, reason string) {
	l.logger.WarnContext(ctx, "login failed",
		"event", "login_failure",
		"username", username,
		"remote", remoteAddr,
		"reason", reason,
	)
}

func (l *Log) OnLogout(ctx context.Context, username string) {
	l.logger.InfoContext(ctx, "logged out",
		"event", "logout",
		"username", username,
	)
}

func (l *Log) OnVoteSubmitted(ctx context.Context, userID, questionID, choiceID string, created bool) {
	l.logger.InfoContext(ctx, "vote recorded",
		"event", "vote_submitted",
		"user_id", userID,
		"question_id", questionID,
		"choice_id", choiceID,
		"is_update", !created,
	)
}
