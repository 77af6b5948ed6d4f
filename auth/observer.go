// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import "context"

// Observer is told about login and logout events by the account handlers.
type Observer interface {
	OnLoginSuccess(ctx context.Context, username, remoteAddr string)
	OnLoginFailure(ctx context.Context, username, remoteAddr, reason string)
	OnLogout(ctx context.Context, username string)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnLoginSuccess(context.Context, string, string) {}
func (NopObserver) OnLoginFailure(context.Context, string, string, string) {}
func (NopObserver) OnLogout(context.Context, string) {}
