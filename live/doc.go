// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live streams question results over WebSocket.

A Hub keeps the open connections for each question. Handlers publish a fresh
snapshot after every recorded vote:

	hub.Publish(questionID, results.Response())

Publish never blocks. A subscriber whose queue is full is dropped and its
connection closed.

Handler.ServeResults upgrades GET /polls/{id}/results/live. Unknown
questions get a 404 before the upgrade. The first message is the current
state, encoded as models.ResultsResponse. If a vote is published while that
state is being read, the published snapshot is sent instead, so messages
never go back in time.
*/
package live
