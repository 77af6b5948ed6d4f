// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store holds the SQL for questions, choices, votes, accounts, and
revoked sessions.

# Usage

	s := store.New(conn)
	questions, err := s.ListPublished(ctx, time.Now(), models.FeedSize)

Lookups that find nothing return ErrNotFound. Inserts that hit a unique
constraint return ErrDuplicate. Everything else is wrapped with context.

# Votes

UpsertVote is a single INSERT ... ON CONFLICT (user_id, question_id) DO
UPDATE. Two concurrent submissions from the same user for the same question
end with one row holding whichever choice was written last.

Tallies counts vote rows per choice at read time. The legacy choice.votes
column is read into Choice.LegacyVotes and never written.

# Portability

All queries use $N placeholders and run unchanged on Postgres (lib/pq) and
SQLite (modernc.org/sqlite). Times are stored in UTC.
*/
package store
