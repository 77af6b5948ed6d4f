// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/polls"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/testutil"
)

const day = 24 * time.Hour

type recordedVote struct {
	userID, questionID, choiceID string
	created                      bool
}

type voteRecorder struct {
	mu    sync.Mutex
	votes []recordedVote
}

func (r *voteRecorder) OnVoteSubmitted(_ context.Context, userID, questionID, choiceID string, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = append(r.votes, recordedVote{userID, questionID, choiceID, created})
}

// countingStore counts reads and writes on the vote path.
type countingStore struct {
	polls.Store
	calls atomic.Int32
}

func (c *countingStore) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	c.calls.Add(1)
	return c.Store.GetQuestion(ctx, id)
}

func (c *countingStore) FindChoiceInQuestion(ctx context.Context, qid, cid string) (models.Choice, error) {
	c.calls.Add(1)
	return c.Store.FindChoiceInQuestion(ctx, qid, cid)
}

func (c *countingStore) UpsertVote(ctx context.Context, uid, qid, cid string, now time.Time) (models.Vote, bool, error) {
	c.calls.Add(1)
	return c.Store.UpsertVote(ctx, uid, qid, cid, now)
}

func principalFor(u models.User) *auth.Principal {
	return &auth.Principal{UserID: u.ID, Username: u.Username, SessionID: "s"}
}

func TestFeed(t *testing.T) {
	tests := []struct {
		name      string
		questions []struct {
			text       string
			start, end time.Duration
		}
		want []string
	}{
		{
			name: "no questions",
			want: []string{},
		},
		{
			name: "past question",
			questions: []struct {
				text       string
				start, end time.Duration
			}{{"Past question.", -30 * day, -15 * day}},
			want: []string{"Past question."},
		},
		{
			name: "future question",
			questions: []struct {
				text       string
				start, end time.Duration
			}{{"Future question.", 30 * day, 35 * day}},
			want: []string{},
		},
		{
			name: "future question and past question",
			questions: []struct {
				text       string
				start, end time.Duration
			}{{"Past question.", -10 * day, -5 * day}, {"Future question.", 4 * day, 10 * day}},
			want: []string{"Past question."},
		},
		{
			name: "two past questions",
			questions: []struct {
				text       string
				start, end time.Duration
			}{{"Past question 1.", -30 * day, -25 * day}, {"Past question 2.", -5 * day, -2 * day}},
			want: []string{"Past question 2.", "Past question 1."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := testutil.SetupTestDB(t)
			for _, q := range tt.questions {
				testutil.CreateTestQuestion(t, conn, q.text, q.start, q.end)
			}

			svc := polls.NewService(store.New(conn), nil, nil)
			feed, err := svc.Feed(context.Background())
			require.NoError(t, err)

			got := []string{}
			for _, q := range feed {
				got = append(got, q.QuestionText)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeedLimit(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	for i := 0; i < 8; i++ {
		testutil.CreateTestQuestion(t, conn, fmt.Sprintf("Q%d", i), -time.Duration(i+1)*time.Hour, day)
	}

	feed, err := polls.NewService(store.New(conn), nil, nil).Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, models.FeedSize)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].PubDate.After(feed[i-1].PubDate), "feed must be sorted newest first")
	}
}

func TestDetail(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := polls.NewService(store.New(conn), nil, nil)
	ctx := context.Background()

	open, choices := testutil.CreateTestQuestion(t, conn, "Open question.", -day, 5*day, "A", "B")
	future, _ := testutil.CreateTestQuestion(t, conn, "Future question.", 5*day, 10*day)
	past, _ := testutil.CreateTestQuestion(t, conn, "Past Question.", -5*day, -day)

	d, err := svc.Detail(ctx, open.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, open.ID, d.Question.ID)
	assert.Len(t, d.Choices, 2)
	assert.Empty(t, d.CurrentChoiceID)

	_, err = svc.Detail(ctx, future.ID, nil)
	assert.ErrorIs(t, err, polls.ErrVotingClosed)

	_, err = svc.Detail(ctx, past.ID, nil)
	assert.ErrorIs(t, err, polls.ErrVotingClosed)

	_, err = svc.Detail(ctx, "missing", nil)
	assert.ErrorIs(t, err, polls.ErrNotFound)

	// The user's existing vote is surfaced
	user := testutil.CreateTestUser(t, conn, "testuser", "Fat-Chance!")
	_, err = svc.CastVote(ctx, principalFor(user), open.ID, choices[1].ID)
	require.NoError(t, err)

	d, err = svc.Detail(ctx, open.ID, principalFor(user))
	require.NoError(t, err)
	assert.Equal(t, choices[1].ID, d.CurrentChoiceID)
}

func TestCastVoteRequiresAuthentication(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q, choices := testutil.CreateTestQuestion(t, conn, "Q", -day, 5*day, "A")

	counting := &countingStore{Store: store.New(conn)}
	svc := polls.NewService(counting, nil, nil)

	for _, p := range []*auth.Principal{nil, {}} {
		_, err := svc.CastVote(context.Background(), p, q.ID, choices[0].ID)
		assert.ErrorIs(t, err, polls.ErrUnauthenticated)
	}

	assert.Zero(t, counting.calls.Load(), "no store access before authentication")
	assert.Zero(t, testutil.CountRows(t, conn, "vote"))
}

func TestCastVote(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	recorder := &voteRecorder{}
	svc := polls.NewService(store.New(conn), recorder, nil)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, conn, "testuser", "Fat-Chance!")
	q, choices := testutil.CreateTestQuestion(t, conn, "First Poll Question", 0, 5*day, "Choice 1", "Choice 2", "Choice 3")

	first, err := svc.CastVote(ctx, principalFor(user), q.ID, choices[0].ID)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := svc.CastVote(ctx, principalFor(user), q.ID, choices[1].ID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Vote.ID, second.Vote.ID)

	assert.Equal(t, 1, testutil.CountRows(t, conn, "vote"))
	var choiceID string
	require.NoError(t, conn.QueryRow(`SELECT choice_id FROM vote`).Scan(&choiceID))
	assert.Equal(t, choices[1].ID, choiceID)

	require.Len(t, recorder.votes, 2)
	assert.Equal(t, recordedVote{user.ID, q.ID, choices[0].ID, true}, recorder.votes[0])
	assert.Equal(t, recordedVote{user.ID, q.ID, choices[1].ID, false}, recorder.votes[1])

	// The legacy counter is never touched
	var legacy int
	require.NoError(t, conn.QueryRow(`SELECT SUM(votes) FROM choice`).Scan(&legacy))
	assert.Zero(t, legacy)
}

func TestCastVoteValidation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := polls.NewService(store.New(conn), nil, nil)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, conn, "testuser", "Fat-Chance!")
	q, _ := testutil.CreateTestQuestion(t, conn, "Q", -day, 5*day, "A", "B")
	_, otherChoices := testutil.CreateTestQuestion(t, conn, "Other", -day, 5*day, "X")

	for _, choiceID := range []string{"", "missing", otherChoices[0].ID} {
		t.Run(fmt.Sprintf("choice %q", choiceID), func(t *testing.T) {
			_, err := svc.CastVote(ctx, principalFor(user), q.ID, choiceID)

			var verr *polls.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, polls.MsgNoChoice, verr.Message)
			assert.Equal(t, q.ID, verr.Detail.Question.ID)
			assert.Len(t, verr.Detail.Choices, 2)
		})
	}

	assert.Zero(t, testutil.CountRows(t, conn, "vote"))
}

func TestCastVoteOutsideWindow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := polls.NewService(store.New(conn), nil, nil)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, conn, "testuser", "Fat-Chance!")
	past, pastChoices := testutil.CreateTestQuestion(t, conn, "Past", -5*day, -day, "A")
	future, futureChoices := testutil.CreateTestQuestion(t, conn, "Future", 5*day, 10*day, "B")

	_, err := svc.CastVote(ctx, principalFor(user), past.ID, pastChoices[0].ID)
	assert.ErrorIs(t, err, polls.ErrVotingClosed)

	_, err = svc.CastVote(ctx, principalFor(user), future.ID, futureChoices[0].ID)
	assert.ErrorIs(t, err, polls.ErrVotingClosed)

	_, err = svc.CastVote(ctx, principalFor(user), "missing", "x")
	assert.ErrorIs(t, err, polls.ErrNotFound)

	assert.Zero(t, testutil.CountRows(t, conn, "vote"))
}

func TestCastVoteConcurrentSameUser(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := polls.NewService(store.New(conn), nil, nil)

	user := testutil.CreateTestUser(t, conn, "testuser", "Fat-Chance!")
	q, choices := testutil.CreateTestQuestion(t, conn, "Q", -day, 5*day, "A", "B")

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := svc.CastVote(context.Background(), principalFor(user), q.ID, choices[i%2].ID)
			assert.NoError(t, err)
			if out.Created {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load(), "exactly one submission creates the row")
	assert.Equal(t, 1, testutil.CountRows(t, conn, "vote"))
}

func TestResults(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := polls.NewService(store.New(conn), nil, nil)
	ctx := context.Background()

	q, choices := testutil.CreateTestQuestion(t, conn, "Q", -day, 5*day, "A", "B")
	for i := 0; i < 3; i++ {
		u := testutil.CreateTestUser(t, conn, fmt.Sprintf("voter%d", i), "pw")
		_, err := svc.CastVote(ctx, principalFor(u), q.ID, choices[i%2].ID)
		require.NoError(t, err)
	}

	res, err := svc.Results(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalVotes)
	require.Len(t, res.Tallies, 2)
	assert.Equal(t, 2, res.Tallies[0].Votes)
	assert.Equal(t, 1, res.Tallies[1].Votes)

	_, err = svc.Results(ctx, "missing")
	assert.ErrorIs(t, err, polls.ErrNotFound)
}

func TestServiceUsesInjectedClock(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q, _ := testutil.CreateTestQuestion(t, conn, "Later", 2*day, 4*day)

	later := func() time.Time { return time.Now().Add(3 * day) }
	svc := polls.NewService(store.New(conn), nil, later)

	_, err := svc.Detail(context.Background(), q.ID, nil)
	assert.NoError(t, err, "question is votable three days from now")

	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, 1)
}
