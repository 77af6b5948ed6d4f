// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Postgres goes through github.com/lib/pq. SQLite goes through
modernc.org/sqlite with foreign keys enabled and a single open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - question: question text, pub_date, end_date
  - choice: answer options per question (votes is a retired counter)
  - account: login accounts with bcrypt password hashes
  - vote: one row per (user_id, question_id)
  - revoked_session: logged-out session IDs

# Relationships

	question 1──* choice
	question 1──* vote
	choice   1──* vote
	account  1──* vote

All foreign keys use ON DELETE CASCADE.
*/
package db
