// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/polls"
)

// Vote handles POST /polls/{id}/vote
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form")
		return
	}

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	out, err := h.polls.CastVote(r.Context(), p, questionID, r.PostFormValue("choice"))

	var verr *polls.ValidationError
	switch {
	case errors.Is(err, polls.ErrUnauthenticated):
		http.Redirect(w, r, loginURL(questionID), http.StatusFound)
		return
	case errors.Is(err, polls.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	case errors.Is(err, polls.ErrVotingClosed):
		h.redirectClosed(w, r)
		return
	case errors.As(err, &verr):
		middleware.JSONResponse(w, http.StatusOK, detailResponse(verr.Detail, verr.Message))
		return
	case err != nil:
		h.logger.Error("failed to record vote", "question_id", questionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	h.logger.Info("vote recorded",
		"question_id", questionID,
		"vote_id", out.Vote.ID,
		"created", out.Created,
	)

	h.broadcast(r.Context(), questionID)

	http.Redirect(w, r, "/polls/"+url.PathEscape(questionID)+"/results/", http.StatusFound)
}

// broadcast pushes fresh tallies to live subscribers. Failures are logged
// only; the vote is already stored.
func (h *PollHandler) broadcast(ctx context.Context, questionID string) {
	if h.live == nil {
		return
	}

	res, err := h.polls.Results(ctx, questionID)
	if err != nil {
		h.logger.Error("failed to load results for broadcast", "question_id", questionID, "error", err)
		return
	}
	if err := h.live.Publish(questionID, res.Response()); err != nil {
		h.logger.Error("failed to broadcast results", "question_id", questionID, "error", err)
	}
}

func loginURL(questionID string) string {
	return "/accounts/login/?next=/polls/" + url.PathEscape(questionID) + "/"
}
