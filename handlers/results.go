// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/polls"
)

// Results handles GET /polls/{id}/results/
//
// Tallies are counted from vote rows at read time and are shown whether or
// not the question is still open.
func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	res, err := h.polls.Results(r.Context(), questionID)
	if errors.Is(err, polls.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load results", "question_id", questionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res.Response())
}
