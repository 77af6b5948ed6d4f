// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types.

# Domain Types

  - Question: question text with publication and end dates
  - Choice: answer option belonging to a question
  - Vote: one user's selected choice for one question
  - User: login account
  - ChoiceTally: live vote count for a choice

# Eligibility

Question carries the time-window predicates. All take the evaluation time
explicitly so callers control the clock:

	q.IsPublished(now)          // now >= pub_date
	q.CanVote(now)              // pub_date <= now <= end_date
	q.WasPublishedRecently(now) // now-24h <= pub_date <= now

All bounds are inclusive.

# Response Types

  - IndexResponse: latest_question_list, empty_message, messages
  - DetailResponse: question, choices, current_choice_id, error_message
  - ResultsResponse: question, tallies, total_votes
  - LoginPageResponse: fields, next, error_message
  - ErrorResponse: error, message
*/
package models
