// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the polls site.

# Handler Types

  - PollHandler: listing, voting form, vote submission, results
  - AuthHandler: login and logout
  - AdminHandler: question and account management

Handlers are created via constructor functions that take their
collaborators explicitly:

	pollHandler := handlers.NewPollHandler(svc, sessions, hub, logger)

# Voting Flow

	GET  /polls/              → Index (latest five published questions)
	GET  /polls/{id}/         → Detail (302 to /polls/ when voting is closed)
	POST /polls/{id}/vote     → Vote (form field "choice")
	GET  /polls/{id}/results/ → Results

Vote redirects anonymous users to /accounts/login/?next=/polls/{id}/. A
missing or foreign choice re-renders the form with error_message and
changes nothing. A successful vote redirects to the results page and
pushes fresh tallies to the live Broadcaster.

Closed questions redirect with the flash message
"This question is not allowed to vote.", which the next Index returns in
messages.

# Accounts

	GET  /accounts/login/  → LoginPage
	POST /accounts/login/  → Login (username, password, next)
	POST /accounts/logout/ → Logout

Only local paths are honored for next.

# Admin API

All admin operations require the X-Admin-Key header.

	POST /admin/questions → CreateQuestion
	GET  /admin/questions → ListQuestions (?q=, ?filter=today|past_7_days|this_month|this_year)
	POST /admin/questions/{id}/choices → AddChoice
	POST /admin/users     → CreateUser
*/
package handlers
