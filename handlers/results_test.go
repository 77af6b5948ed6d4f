// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/testutil"
)

func TestResults(t *testing.T) {
	f := setup(t)
	q, choices := testutil.CreateTestQuestion(t, f.conn, "Q", -day, 5*day, "A", "B", "C")

	for i, choice := range []int{0, 0, 2} {
		user := testutil.CreateTestUser(t, f.conn, fmt.Sprintf("voter%d", i), "pw")
		w := postVote(f, q.ID, choices[choice].ID, testutil.SessionCookie(t, f.sessions, user))
		testutil.AssertStatus(t, w, http.StatusFound)
	}

	w := httptest.NewRecorder()
	f.polls.Results(w, withID(httptest.NewRequest(http.MethodGet, "/polls/"+q.ID+"/results/", nil), q.ID))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ResultsResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, 3, resp.TotalVotes)
	require.Len(t, resp.Tallies, 3)
	assert.Equal(t, []int{2, 0, 1}, []int{resp.Tallies[0].Votes, resp.Tallies[1].Votes, resp.Tallies[2].Votes})
}

func TestResultsOfClosedQuestion(t *testing.T) {
	f := setup(t)
	q, _ := testutil.CreateTestQuestion(t, f.conn, "Past", -5*day, -day, "A")

	w := httptest.NewRecorder()
	f.polls.Results(w, withID(httptest.NewRequest(http.MethodGet, "/polls/"+q.ID+"/results/", nil), q.ID))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ResultsResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Zero(t, resp.TotalVotes)
	assert.Len(t, resp.Tallies, 1)
}

func TestResultsNotFound(t *testing.T) {
	f := setup(t)

	w := httptest.NewRecorder()
	f.polls.Results(w, withID(httptest.NewRequest(http.MethodGet, "/polls/missing/results/", nil), "missing"))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
