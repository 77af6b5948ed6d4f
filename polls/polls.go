// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
)

// User-facing messages.
const (
	MsgVotingClosed = "This question is not allowed to vote."
	MsgNoChoice     = "You didn't select a choice."
	MsgNoPolls      = "No polls are available."
)

var (
	ErrNotFound        = errors.New("question not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrVotingClosed    = errors.New("voting is not open for this question")
)

// ValidationError means the submission was rejected without touching any
// rows. Detail holds what is needed to redisplay the voting form.
type ValidationError struct {
	Message string
	Detail  Detail
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Store is the subset of store.Store the service reads and writes.
type Store interface {
	ListPublished(ctx context.Context, now time.Time, limit int) ([]models.Question, error)
	GetQuestion(ctx context.Context, id string) (models.Question, error)
	ChoicesByQuestion(ctx context.Context, questionID string) ([]models.Choice, error)
	FindChoiceInQuestion(ctx context.Context, questionID, choiceID string) (models.Choice, error)
	FindVoteByUserAndQuestion(ctx context.Context, userID, questionID string) (models.Vote, error)
	UpsertVote(ctx context.Context, userID, questionID, choiceID string, now time.Time) (models.Vote, bool, error)
	Tallies(ctx context.Context, questionID string) ([]models.ChoiceTally, error)
}

// VoteObserver is told about every recorded vote.
type VoteObserver interface {
	OnVoteSubmitted(ctx context.Context, userID, questionID, choiceID string, created bool)
}

type Detail struct {
	Question        models.Question
	Choices         []models.Choice
	CurrentChoiceID string
}

type Results struct {
	Question   models.Question
	Tallies    []models.ChoiceTally
	TotalVotes int
}

// Response renders r for the results page and the live stream.
func (r Results) Response() models.ResultsResponse {
	tallies := r.Tallies
	if tallies == nil {
		tallies = []models.ChoiceTally{}
	}
	return models.ResultsResponse{Question: r.Question, Tallies: tallies, TotalVotes: r.TotalVotes}
}

type VoteOutcome struct {
	Vote    models.Vote
	Created bool
}

type Service struct {
	store    Store
	observer VoteObserver
	now      func() time.Time
}

// NewService wires the service. A nil now uses time.Now; a nil observer
// drops vote events.
func NewService(s Store, observer VoteObserver, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: s, observer: observer, now: now}
}

// Feed returns the latest published questions, newest first.
func (s *Service) Feed(ctx context.Context) ([]models.Question, error) {
	return s.store.ListPublished(ctx, s.now(), models.FeedSize)
}

// Detail loads the voting form for a question. Questions outside their
// voting window yield ErrVotingClosed. When p is set the user's current
// choice is filled in.
func (s *Service) Detail(ctx context.Context, questionID string, p *auth.Principal) (Detail, error) {
	q, err := s.question(ctx, questionID)
	if err != nil {
		return Detail{}, err
	}
	if !q.CanVote(s.now()) {
		return Detail{}, ErrVotingClosed
	}

	d, err := s.detail(ctx, q)
	if err != nil {
		return Detail{}, err
	}

	if p != nil {
		v, err := s.store.FindVoteByUserAndQuestion(ctx, p.UserID, q.ID)
		switch {
		case err == nil:
			d.CurrentChoiceID = v.ChoiceID
		case !errors.Is(err, store.ErrNotFound):
			return Detail{}, err
		}
	}

	return d, nil
}

// CastVote records p's choice for a question, replacing any earlier choice
// by the same user. Nothing is read before p is checked.
func (s *Service) CastVote(ctx context.Context, p *auth.Principal, questionID, choiceID string) (VoteOutcome, error) {
	if p == nil || p.UserID == "" {
		return VoteOutcome{}, ErrUnauthenticated
	}

	q, err := s.question(ctx, questionID)
	if err != nil {
		return VoteOutcome{}, err
	}

	now := s.now()
	if !q.CanVote(now) {
		return VoteOutcome{}, ErrVotingClosed
	}

	var choice models.Choice
	if choiceID != "" {
		choice, err = s.store.FindChoiceInQuestion(ctx, q.ID, choiceID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return VoteOutcome{}, err
		}
	}
	if choice.ID == "" {
		d, err := s.detail(ctx, q)
		if err != nil {
			return VoteOutcome{}, err
		}
		return VoteOutcome{}, &ValidationError{Message: MsgNoChoice, Detail: d}
	}

	vote, created, err := s.store.UpsertVote(ctx, p.UserID, q.ID, choice.ID, now)
	if err != nil {
		return VoteOutcome{}, err
	}

	if s.observer != nil {
		s.observer.OnVoteSubmitted(ctx, p.UserID, q.ID, choice.ID, created)
	}

	return VoteOutcome{Vote: vote, Created: created}, nil
}

// Results counts the current votes for each choice.
func (s *Service) Results(ctx context.Context, questionID string) (Results, error) {
	q, err := s.question(ctx, questionID)
	if err != nil {
		return Results{}, err
	}

	tallies, err := s.store.Tallies(ctx, q.ID)
	if err != nil {
		return Results{}, err
	}

	total := 0
	for _, t := range tallies {
		total += t.Votes
	}

	return Results{Question: q, Tallies: tallies, TotalVotes: total}, nil
}

func (s *Service) question(ctx context.Context, id string) (models.Question, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Question{}, ErrNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to load question %s: %w", id, err)
	}
	return q, nil
}

func (s *Service) detail(ctx context.Context, q models.Question) (Detail, error) {
	choices, err := s.store.ChoicesByQuestion(ctx, q.ID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Question: q, Choices: choices}, nil
}
