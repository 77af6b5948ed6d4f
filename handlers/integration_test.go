// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/testutil"
)

// TestFullVotingWorkflow tests the complete end-to-end workflow:
// 1. Admin creates a user and a question
// 2. Anonymous vote is sent to the login page
// 3. User logs in and lands back on the question
// 4. User votes, then changes their vote
// 5. Results reflect the single current vote
// 6. User logs out and can no longer vote
func TestFullVotingWorkflow(t *testing.T) {
	f := setup(t)

	// Step 1: Admin setup
	w := httptest.NewRecorder()
	f.admin.CreateUser(w, adminRequest(f, http.MethodPost, "/admin/users", models.CreateUserRequest{Username: "alice", Password: "wonderland"}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	f.admin.CreateQuestion(w, adminRequest(f, http.MethodPost, "/admin/questions", models.CreateQuestionRequest{
		QuestionText: "Tea or coffee?",
		PubDate:      time.Now().Add(-time.Minute),
		EndDate:      ptr(time.Now().Add(day)),
		Choices:      []string{"Tea", "Coffee"},
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.CreateQuestionResponse
	testutil.AssertJSON(t, w, &created)
	qid := created.Question.ID
	tea, coffee := created.Choices[0].ID, created.Choices[1].ID

	// The question shows up in the listing
	resp := getIndex(t, f, httptest.NewRequest(http.MethodGet, "/polls/", nil))
	assert.Equal(t, []string{"Tea or coffee?"}, questionTexts(resp.LatestQuestionList))

	// Step 2: Anonymous vote
	w = postVote(f, qid, tea)
	testutil.AssertRedirect(t, w, "/accounts/login/?next=/polls/"+qid+"/")
	next, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	// Step 3: Log in
	w = postLogin(f, url.Values{
		"username": {"alice"},
		"password": {"wonderland"},
		"next":     {next.Query().Get("next")},
	})
	testutil.AssertRedirect(t, w, "/polls/"+qid+"/")
	session := sessionCookieFrom(w)
	require.NotNil(t, session)

	// Step 4: Vote and change the vote
	testutil.AssertRedirect(t, postVote(f, qid, tea, session), "/polls/"+qid+"/results/")
	testutil.AssertRedirect(t, postVote(f, qid, coffee, session), "/polls/"+qid+"/results/")

	// Step 5: Results
	w = httptest.NewRecorder()
	f.polls.Results(w, withID(httptest.NewRequest(http.MethodGet, "/polls/"+qid+"/results/", nil), qid))
	testutil.AssertStatus(t, w, http.StatusOK)
	var results models.ResultsResponse
	testutil.AssertJSON(t, w, &results)
	assert.Equal(t, 1, results.TotalVotes)
	assert.Equal(t, 0, results.Tallies[0].Votes)
	assert.Equal(t, 1, results.Tallies[1].Votes)

	// Step 6: Log out
	w = httptest.NewRecorder()
	f.accounts.Logout(w, testutil.MakeFormRequest(http.MethodPost, "/accounts/logout/", nil, session))
	testutil.AssertRedirect(t, w, "/polls/")

	testutil.AssertRedirect(t, postVote(f, qid, tea, session), "/accounts/login/?next=/polls/"+qid+"/")
	assert.Equal(t, 1, testutil.CountRows(t, f.conn, "vote"))
}

func ptr[T any](v T) *T {
	return &v
}
