package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Times are stored as unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS quizzes (
		id             TEXT PRIMARY KEY,
		owner          TEXT NOT NULL DEFAULT '',
		topic          TEXT NOT NULL DEFAULT '',
		question_types TEXT NOT NULL DEFAULT '[]',
		num_questions  INTEGER NOT NULL DEFAULT 0,
		status         TEXT NOT NULL DEFAULT 'pending',
		error          TEXT NOT NULL DEFAULT '',
		questions      TEXT NOT NULL DEFAULT '[]',
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS quizzes_owner_created ON quizzes (owner, created_at)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id         TEXT PRIMARY KEY,
		quiz_id    TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL DEFAULT '',
		score      INTEGER NOT NULL,
		total      INTEGER NOT NULL,
		answers    TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_quiz_user ON attempts (quiz_id, user_id)`,
	`CREATE TABLE IF NOT EXISTS llm_requests (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL DEFAULT '',
		model         TEXT NOT NULL DEFAULT '',
		purpose       TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
