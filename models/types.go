// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

const (
	// FeedSize is the number of questions shown on the index page.
	FeedSize = 5

	// RecentWindow bounds WasPublishedRecently.
	RecentWindow = 24 * time.Hour

	MaxQuestionTextLen = 200
	MaxChoiceTextLen   = 200
	MaxUsernameLen     = 150
)

// Domain types

type Question struct {
	ID           string    `json:"id"`
	QuestionText string    `json:"question_text"`
	PubDate      time.Time `json:"pub_date"`
	EndDate      time.Time `json:"end_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsPublished reports whether the question is visible at now.
func (q Question) IsPublished(now time.Time) bool {
	return !now.Before(q.PubDate)
}

// CanVote reports whether now lies in [PubDate, EndDate]. A question whose
// EndDate precedes its PubDate can never be voted on.
func (q Question) CanVote(now time.Time) bool {
	return !now.Before(q.PubDate) && !now.After(q.EndDate)
}

// WasPublishedRecently reports whether PubDate lies in [now-RecentWindow, now].
// The upper bound keeps future questions out.
func (q Question) WasPublishedRecently(now time.Time) bool {
	return !q.PubDate.Before(now.Add(-RecentWindow)) && !q.PubDate.After(now)
}

func (q Question) String() string {
	return q.QuestionText
}

type Choice struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	ChoiceText string `json:"choice_text"`
	// LegacyVotes is the retired per-choice counter. Tallies come from Vote rows.
	LegacyVotes int       `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type Vote struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	ChoiceID   string    `json:"choice_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

type ChoiceTally struct {
	ChoiceID   string `json:"choice_id"`
	ChoiceText string `json:"choice_text"`
	Votes      int    `json:"votes"`
}

// Response types

type IndexResponse struct {
	LatestQuestionList []Question `json:"latest_question_list"`
	EmptyMessage       string     `json:"empty_message,omitempty"`
	Messages           []string   `json:"messages,omitempty"`
}

type DetailResponse struct {
	Question        Question `json:"question"`
	Choices         []Choice `json:"choices"`
	CurrentChoiceID string   `json:"current_choice_id,omitempty"`
	ErrorMessage    string   `json:"error_message,omitempty"`
}

type ResultsResponse struct {
	Question   Question      `json:"question"`
	Tallies    []ChoiceTally `json:"tallies"`
	TotalVotes int           `json:"total_votes"`
}

type LoginPageResponse struct {
	Fields       []string `json:"fields"`
	Next         string   `json:"next,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// Admin types

type CreateQuestionRequest struct {
	QuestionText string     `json:"question_text"`
	PubDate      time.Time  `json:"pub_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Choices      []string   `json:"choices"`
}

type CreateQuestionResponse struct {
	Question Question `json:"question"`
	Choices  []Choice `json:"choices"`
}

type AdminQuestion struct {
	Question
	WasPublishedRecently bool `json:"was_published_recently"`
	IsPublished          bool `json:"is_published"`
	CanVote              bool `json:"can_vote"`
	TotalVotes           int  `json:"total_votes"`
}

type AddChoiceRequest struct {
	ChoiceText string `json:"choice_text"`
}

type AdminQuestionList struct {
	Questions []AdminQuestion `json:"questions"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateUserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
