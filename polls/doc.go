// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls implements listing, the voting-form guard, vote submission,
and results.

# Operations

	svc := polls.NewService(store.New(conn), audit.New(logger), time.Now)

	svc.Feed(ctx)                          // up to five published questions
	svc.Detail(ctx, id, principal)         // voting form
	svc.CastVote(ctx, principal, id, cid)  // create or change a vote
	svc.Results(ctx, id)                   // live tallies

# Errors

  - ErrNotFound: the question does not exist
  - ErrUnauthenticated: CastVote without a principal; nothing is read
  - ErrVotingClosed: the question is outside [pub_date, end_date]
  - *ValidationError: no choice, or a choice from another question;
    carries the Detail needed to redisplay the form

The HTTP layer maps these to 404, redirect to login, redirect to the
listing with a message, and a 200 re-render respectively.
*/
package polls
