package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// content_hash is a dedup key by intent only. There is no UNIQUE constraint
// and no check-then-insert under a lock, so two identical submissions racing
// each other can both land.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS moderation_requests (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		content_type TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_moderation_requests_user_email
		ON moderation_requests (user_email)`,
	`CREATE INDEX IF NOT EXISTS idx_moderation_requests_content_hash
		ON moderation_requests (content_hash)`,
	`CREATE TABLE IF NOT EXISTS moderation_results (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES moderation_requests (id),
		classification TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		reasoning TEXT,
		llm_response TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_moderation_results_request_id
		ON moderation_results (request_id)`,
	`CREATE TABLE IF NOT EXISTS notification_logs (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES moderation_requests (id),
		channel TEXT NOT NULL,
		status TEXT NOT NULL,
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notification_logs_request_id
		ON notification_logs (request_id)`,
}

// Migrate applies the schema at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
