// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/polls/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Store runs every query the application needs against database/sql.
// Placeholders are $N so the same SQL serves Postgres and SQLite.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// QuestionFilter narrows ListQuestions.
type QuestionFilter struct {
	Search    string     // case-insensitive substring of question_text
	PubSince  *time.Time // pub_date >= PubSince
	PubBefore *time.Time // pub_date < PubBefore
}

// NewQuestion holds the fields for CreateQuestion.
type NewQuestion struct {
	QuestionText string
	PubDate      time.Time
	EndDate      time.Time // zero means "now"
	Choices      []string
}

const questionColumns = `id, question_text, pub_date, end_date, created_at`

// CreateQuestion inserts a question and its choices in one transaction.
func (s *Store) CreateQuestion(ctx context.Context, nq NewQuestion) (models.Question, []models.Choice, error) {
	now := time.Now().UTC()

	q := models.Question{
		ID:           uuid.NewString(),
		QuestionText: nq.QuestionText,
		PubDate:      nq.PubDate.UTC(),
		EndDate:      nq.EndDate.UTC(),
		CreatedAt:    now,
	}
	if nq.EndDate.IsZero() {
		q.EndDate = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Question{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO question (id, question_text, pub_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, q.ID, q.QuestionText, q.PubDate, q.EndDate, q.CreatedAt)
	if err != nil {
		return models.Question{}, nil, fmt.Errorf("failed to insert question: %w", err)
	}

	choices := make([]models.Choice, 0, len(nq.Choices))
	for i, text := range nq.Choices {
		c := models.Choice{
			ID:         uuid.NewString(),
			QuestionID: q.ID,
			ChoiceText: text,
			// Offset keeps insertion order stable under ORDER BY created_at.
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO choice (id, question_id, choice_text, votes, created_at)
			VALUES ($1, $2, $3, 0, $4)
		`, c.ID, c.QuestionID, c.ChoiceText, c.CreatedAt)
		if err != nil {
			return models.Question{}, nil, fmt.Errorf("failed to insert choice: %w", err)
		}
		choices = append(choices, c)
	}

	if err := tx.Commit(); err != nil {
		return models.Question{}, nil, fmt.Errorf("failed to commit question: %w", err)
	}

	return q, choices, nil
}

// AddChoice appends a choice to an existing question.
func (s *Store) AddChoice(ctx context.Context, questionID, text string) (models.Choice, error) {
	c := models.Choice{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		ChoiceText: text,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO choice (id, question_id, choice_text, votes, created_at)
		VALUES ($1, $2, $3, 0, $4)
	`, c.ID, c.QuestionID, c.ChoiceText, c.CreatedAt)
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to insert choice: %w", err)
	}

	return c, nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+questionColumns+` FROM question WHERE id = $1
	`, id)

	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, ErrNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to query question: %w", err)
	}
	return q, nil
}

// ListPublished returns up to limit questions with pub_date <= now, newest
// first. Equal pub_dates keep creation order.
func (s *Store) ListPublished(ctx context.Context, now time.Time, limit int) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+questionColumns+` FROM question
		WHERE pub_date <= $1
		ORDER BY pub_date DESC, created_at ASC, id ASC
		LIMIT $2
	`, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	return collectQuestions(rows)
}

// ListQuestions returns every question matching f, newest pub_date first.
func (s *Store) ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error) {
	var (
		where []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		where = append(where, fmt.Sprintf("LOWER(question_text) LIKE $%d", len(args)))
	}
	if f.PubSince != nil {
		args = append(args, f.PubSince.UTC())
		where = append(where, fmt.Sprintf("pub_date >= $%d", len(args)))
	}
	if f.PubBefore != nil {
		args = append(args, f.PubBefore.UTC())
		where = append(where, fmt.Sprintf("pub_date < $%d", len(args)))
	}

	query := `SELECT ` + questionColumns + ` FROM question`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY pub_date DESC, created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	return collectQuestions(rows)
}

func (s *Store) ChoicesByQuestion(ctx context.Context, questionID string) ([]models.Choice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, choice_text, votes, created_at
		FROM choice WHERE question_id = $1
		ORDER BY created_at ASC, id ASC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query choices: %w", err)
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.ChoiceText, &c.LegacyVotes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

// FindChoiceInQuestion resolves a choice only if it belongs to questionID.
func (s *Store) FindChoiceInQuestion(ctx context.Context, questionID, choiceID string) (models.Choice, error) {
	var c models.Choice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, choice_text, votes, created_at
		FROM choice WHERE id = $1 AND question_id = $2
	`, choiceID, questionID).Scan(&c.ID, &c.QuestionID, &c.ChoiceText, &c.LegacyVotes, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Choice{}, ErrNotFound
	}
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to query choice: %w", err)
	}
	return c, nil
}

func (s *Store) FindVoteByUserAndQuestion(ctx context.Context, userID, questionID string) (models.Vote, error) {
	var v models.Vote
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, question_id, choice_id, created_at, updated_at
		FROM vote WHERE user_id = $1 AND question_id = $2
	`, userID, questionID).Scan(&v.ID, &v.UserID, &v.QuestionID, &v.ChoiceID, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, ErrNotFound
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query vote: %w", err)
	}
	return v, nil
}

// UpsertVote records userID's choice for questionID in a single statement.
// The UNIQUE (user_id, question_id) constraint turns a concurrent second
// insert into an update of the same row. created reports whether a new row
// was inserted.
func (s *Store) UpsertVote(ctx context.Context, userID, questionID, choiceID string, now time.Time) (vote models.Vote, created bool, err error) {
	newID := uuid.NewString()

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO vote (id, user_id, question_id, choice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, question_id)
		DO UPDATE SET choice_id = excluded.choice_id, updated_at = excluded.updated_at
		RETURNING id
	`, newID, userID, questionID, choiceID, now.UTC()).Scan(&id)
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("failed to upsert vote: %w", err)
	}

	vote, err = s.FindVoteByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		return models.Vote{}, false, err
	}
	return vote, id == newID, nil
}

// Tallies counts Vote rows per choice. Choices without votes report zero.
func (s *Store) Tallies(ctx context.Context, questionID string) ([]models.ChoiceTally, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.choice_text, COUNT(v.id)
		FROM choice c
		LEFT JOIN vote v ON v.choice_id = c.id
		WHERE c.question_id = $1
		GROUP BY c.id, c.choice_text, c.created_at
		ORDER BY c.created_at ASC, c.id ASC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tallies: %w", err)
	}
	defer rows.Close()

	tallies := []models.ChoiceTally{}
	for rows.Next() {
		var t models.ChoiceTally
		if err := rows.Scan(&t.ChoiceID, &t.ChoiceText, &t.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

// CountVotes returns the number of Vote rows for a question.
func (s *Store) CountVotes(ctx context.Context, questionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote WHERE question_id = $1
	`, questionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

// CreateUser inserts an account. A taken username yields ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Username, u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return models.User{}, ErrDuplicate
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert account: %w", err)
	}
	return u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM account WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query account: %w", err)
	}
	return u, nil
}

// RevokeSession marks a session ID as logged out until it would have
// expired anyway. Rows past their expiry are purged on the way.
func (s *Store) RevokeSession(ctx context.Context, id string, until time.Time) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM revoked_session WHERE expires_at < $1
	`, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to purge revoked sessions: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_session (id, expires_at) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, until.UTC())
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *Store) IsSessionRevoked(ctx context.Context, id string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM revoked_session WHERE id = $1)
	`, id).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return revoked, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.QuestionText, &q.PubDate, &q.EndDate, &q.CreatedAt)
	return q, err
}

func collectQuestions(rows *sql.Rows) ([]models.Question, error) {
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch code := liteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// Primary code only when extended codes are off
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}
