// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/polls"
)

// Broadcaster receives the fresh results of a question after each vote.
type Broadcaster interface {
	Publish(questionID string, v any) error
}

type PollHandler struct {
	polls    *polls.Service
	sessions *auth.Sessions
	live     Broadcaster
	logger   *slog.Logger
}

// NewPollHandler wires the public poll pages. live may be nil.
func NewPollHandler(svc *polls.Service, sessions *auth.Sessions, live Broadcaster, logger *slog.Logger) *PollHandler {
	return &PollHandler{polls: svc, sessions: sessions, live: live, logger: logger}
}

// Index handles GET /polls/
func (h *PollHandler) Index(w http.ResponseWriter, r *http.Request) {
	feed, err := h.polls.Feed(r.Context())
	if err != nil {
		h.logger.Error("failed to list questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list questions")
		return
	}

	resp := models.IndexResponse{
		LatestQuestionList: feed,
		Messages:           middleware.PopFlash(w, r),
	}
	if resp.LatestQuestionList == nil {
		resp.LatestQuestionList = []models.Question{}
	}
	if len(feed) == 0 {
		resp.EmptyMessage = polls.MsgNoPolls
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Detail handles GET /polls/{id}/
func (h *PollHandler) Detail(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	d, err := h.polls.Detail(r.Context(), questionID, p)
	switch {
	case errors.Is(err, polls.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	case errors.Is(err, polls.ErrVotingClosed):
		h.redirectClosed(w, r)
		return
	case err != nil:
		h.logger.Error("failed to load question", "question_id", questionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load question")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, detailResponse(d, ""))
}

// principal returns the session user, or nil for anonymous requests. It
// replies with 500 and returns false when the session cannot be checked.
func (h *PollHandler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, err := h.sessions.Authenticate(r)
	if errors.Is(err, auth.ErrUnauthenticated) {
		return nil, true
	}
	if err != nil {
		h.logger.Error("failed to authenticate session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to check session")
		return nil, false
	}
	return &p, true
}

func (h *PollHandler) redirectClosed(w http.ResponseWriter, r *http.Request) {
	middleware.AddFlash(w, r, polls.MsgVotingClosed)
	http.Redirect(w, r, "/polls/", http.StatusFound)
}

func detailResponse(d polls.Detail, errorMessage string) models.DetailResponse {
	choices := d.Choices
	if choices == nil {
		choices = []models.Choice{}
	}
	return models.DetailResponse{
		Question:        d.Question,
		Choices:         choices,
		CurrentChoiceID: d.CurrentChoiceID,
		ErrorMessage:    errorMessage,
	}
}
