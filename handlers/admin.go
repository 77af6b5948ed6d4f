// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
)

// Publication-date filters accepted by ListQuestions.
const (
	FilterToday     = "today"
	FilterPast7Days = "past_7_days"
	FilterThisMonth = "this_month"
	FilterThisYear  = "this_year"
)

type AdminHandler struct {
	store    *store.Store
	adminKey string
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdminHandler wires the admin API. A nil now uses time.Now.
func NewAdminHandler(s *store.Store, adminKey string, logger *slog.Logger, now func() time.Time) *AdminHandler {
	if now == nil {
		now = time.Now
	}
	return &AdminHandler{store: s, adminKey: adminKey, logger: logger, now: now}
}

func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	if err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), h.adminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// CreateQuestion handles POST /admin/questions
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var req models.CreateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg := validateQuestion(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	nq := store.NewQuestion{
		QuestionText: req.QuestionText,
		PubDate:      req.PubDate,
		Choices:      req.Choices,
	}
	if req.EndDate != nil {
		nq.EndDate = *req.EndDate
	}

	q, choices, err := h.store.CreateQuestion(r.Context(), nq)
	if err != nil {
		h.logger.Error("failed to create question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	h.logger.Info("question created", "question_id", q.ID, "choices", len(choices))

	if choices == nil {
		choices = []models.Choice{}
	}
	middleware.JSONResponse(w, http.StatusCreated, models.CreateQuestionResponse{
		Question: q,
		Choices:  choices,
	})
}

func validateQuestion(req models.CreateQuestionRequest) string {
	if n := utf8.RuneCountInString(req.QuestionText); n == 0 || n > models.MaxQuestionTextLen {
		return fmt.Sprintf("question_text must be 1 to %d characters", models.MaxQuestionTextLen)
	}
	if req.PubDate.IsZero() {
		return "pub_date is required"
	}
	for _, c := range req.Choices {
		if n := utf8.RuneCountInString(c); n == 0 || n > models.MaxChoiceTextLen {
			return fmt.Sprintf("choices must be 1 to %d characters", models.MaxChoiceTextLen)
		}
	}
	return ""
}

// AddChoice handles POST /admin/questions/{id}/choices
func (h *AdminHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	questionID := r.PathValue("id")

	var req models.AddChoiceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if n := utf8.RuneCountInString(req.ChoiceText); n == 0 || n > models.MaxChoiceTextLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("choice_text must be 1 to %d characters", models.MaxChoiceTextLen))
		return
	}

	_, err := h.store.GetQuestion(r.Context(), questionID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load question", "question_id", questionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add choice")
		return
	}

	choice, err := h.store.AddChoice(r.Context(), questionID, req.ChoiceText)
	if err != nil {
		h.logger.Error("failed to add choice", "question_id", questionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add choice")
		return
	}

	h.logger.Info("choice added", "question_id", questionID, "choice_id", choice.ID)

	middleware.JSONResponse(w, http.StatusCreated, choice)
}

// ListQuestions handles GET /admin/questions
func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	now := h.now()
	since, before, err := pubDateRange(r.URL.Query().Get("filter"), now)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.store.ListQuestions(r.Context(), store.QuestionFilter{
		Search:    strings.TrimSpace(r.URL.Query().Get("q")),
		PubSince:  since,
		PubBefore: before,
	})
	if err != nil {
		h.logger.Error("failed to list questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list questions")
		return
	}

	resp := models.AdminQuestionList{Questions: make([]models.AdminQuestion, 0, len(questions))}
	for _, q := range questions {
		total, err := h.store.CountVotes(r.Context(), q.ID)
		if err != nil {
			h.logger.Error("failed to count votes", "question_id", q.ID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list questions")
			return
		}
		resp.Questions = append(resp.Questions, models.AdminQuestion{
			Question:             q,
			WasPublishedRecently: q.WasPublishedRecently(now),
			IsPublished:          q.IsPublished(now),
			CanVote:              q.CanVote(now),
			TotalVotes:           total,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// pubDateRange maps a filter name to the half-open pub_date range it
// admits. Day boundaries are UTC.
func pubDateRange(filter string, now time.Time) (since, before *time.Time, err error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	var from, until time.Time
	switch filter {
	case "":
		return nil, nil, nil
	case FilterToday:
		from, until = today, tomorrow
	case FilterPast7Days:
		from, until = today.AddDate(0, 0, -7), tomorrow
	case FilterThisMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		until = from.AddDate(0, 1, 0)
	case FilterThisYear:
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		until = from.AddDate(1, 0, 0)
	default:
		return nil, nil, fmt.Errorf("unknown filter %q", filter)
	}
	return &from, &until, nil
}

// CreateUser handles POST /admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var req models.CreateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if n := utf8.RuneCountInString(req.Username); n == 0 || n > models.MaxUsernameLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("username must be 1 to %d characters", models.MaxUsernameLen))
		return
	}
	if req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, hash)
	if errors.Is(err, store.ErrDuplicate) {
		middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
		return
	}
	if err != nil {
		h.logger.Error("failed to create user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.logger.Info("user created", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateUserResponse{
		UserID:   user.ID,
		Username: user.Username,
	})
}
