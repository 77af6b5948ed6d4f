// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/db"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// PostgresURLEnv names the variable that enables Postgres-backed tests.
const PostgresURLEnv = "TEST_DATABASE_URL"

// SetupPostgresDB connects to the database in TEST_DATABASE_URL and creates
// the schema inside a fresh Postgres schema, dropped when the test ends.
// The test is skipped when the variable is unset.
func SetupPostgresDB(t *testing.T) *sql.DB {
	t.Helper()

	base := os.Getenv(PostgresURLEnv)
	if base == "" {
		t.Skip(PostgresURLEnv + " not set")
	}

	admin, err := db.Open(cliparse.DatabasePostgres, base)
	if err != nil {
		t.Fatalf("Failed to open Postgres: %v", err)
	}
	t.Cleanup(func() { admin.Close() })

	name := "polls_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec("CREATE SCHEMA " + name); err != nil {
		t.Fatalf("Failed to create schema %s: %v", name, err)
	}
	t.Cleanup(func() {
		if _, err := admin.Exec("DROP SCHEMA " + name + " CASCADE"); err != nil {
			t.Logf("Failed to drop schema %s: %v", name, err)
		}
	})

	conn, err := db.Open(cliparse.DatabasePostgres, withSearchPath(base, name))
	if err != nil {
		t.Fatalf("Failed to open Postgres schema %s: %v", name, err)
	}
	// Registered after the drop so it runs first.
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// withSearchPath sets search_path on a URL or key=value connection string.
// lib/pq sends unknown keys as run-time parameters.
func withSearchPath(dsn, schema string) string {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn + " search_path=" + schema
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + schema
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file::memory:",
		DatabaseType:  cliparse.DatabaseSQLite,
		SessionSecret: "test-session-secret",
		SessionTTL:    time.Hour,
		AdminKey:      "test-admin-key",
		LoginRate:     100,
		LoginBurst:    100,
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestQuestion creates a question published start from now and
// closing end from now.
func CreateTestQuestion(t *testing.T, conn *sql.DB, text string, start, end time.Duration, choices ...string) (models.Question, []models.Choice) {
	t.Helper()

	now := time.Now()
	q, cs, err := store.New(conn).CreateQuestion(context.Background(), store.NewQuestion{
		QuestionText: text,
		PubDate:      now.Add(start),
		EndDate:      now.Add(end),
		Choices:      choices,
	})
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}
	return q, cs
}

// CreateTestUser creates an account with the given password.
func CreateTestUser(t *testing.T, conn *sql.DB, username, password string) models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	u, err := store.New(conn).CreateUser(context.Background(), username, hash)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// SessionCookie issues a session cookie for user.
func SessionCookie(t *testing.T, sessions *auth.Sessions, user models.User) *http.Cookie {
	t.Helper()

	token, expires, err := sessions.Issue(user)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return sessions.Cookie(token, expires)
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request with a JSON body
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates an HTTP test request with a urlencoded form body
func MakeFormRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// ResponseCookies returns the cookies set on a recorded response.
func ResponseCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	return w.Result().Cookies()
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 302 to the expected location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	AssertStatus(t, w, http.StatusFound)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
