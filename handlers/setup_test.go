// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/polls"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/testutil"
)

const day = 24 * time.Hour

type published struct {
	questionID string
	snapshot   models.ResultsResponse
}

type recordingBroadcaster struct {
	mu        sync.Mutex
	published []published
}

func (b *recordingBroadcaster) Publish(questionID string, v any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, published{questionID, v.(models.ResultsResponse)})
	return nil
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

type loginEvent struct {
	kind, username, reason string
}

type recordingObserver struct {
	mu     sync.Mutex
	events []loginEvent
}

func (o *recordingObserver) OnLoginSuccess(_ context.Context, username, _ string) {
	o.record(loginEvent{"success", username, ""})
}

func (o *recordingObserver) OnLoginFailure(_ context.Context, username, _, reason string) {
	o.record(loginEvent{"failure", username, reason})
}

func (o *recordingObserver) OnLogout(_ context.Context, username string) {
	o.record(loginEvent{"logout", username, ""})
}

func (o *recordingObserver) record(e loginEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

type fixture struct {
	conn     *sql.DB
	store    *store.Store
	sessions *auth.Sessions
	live     *recordingBroadcaster
	observer *recordingObserver
	polls    *PollHandler
	accounts *AuthHandler
	admin    *AdminHandler
	adminKey string
}

func setup(t *testing.T) fixture {
	t.Helper()
	return setupWith(t, testutil.SetupTestDB(t))
}

func setupWith(t *testing.T, conn *sql.DB) fixture {
	t.Helper()

	cfg := testutil.GetTestConfig()
	st := store.New(conn)
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, st)
	live := &recordingBroadcaster{}
	observer := &recordingObserver{}
	logger := testutil.DiscardLogger()

	return fixture{
		conn:     conn,
		store:    st,
		sessions: sessions,
		live:     live,
		observer: observer,
		polls:    NewPollHandler(polls.NewService(st, nil, nil), sessions, live, logger),
		accounts: NewAuthHandler(st, sessions, observer, logger),
		admin:    NewAdminHandler(st, cfg.AdminKey, logger, nil),
		adminKey: cfg.AdminKey,
	}
}

func withID(r *http.Request, id string) *http.Request {
	r.SetPathValue("id", id)
	return r
}

// followFlash copies the flash cookie set by w onto a new GET of path.
func followFlash(t *testing.T, w *httptest.ResponseRecorder, path string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range testutil.ResponseCookies(w) {
		if c.Name == middleware.FlashCookieName {
			req.AddCookie(c)
		}
	}
	return req
}
