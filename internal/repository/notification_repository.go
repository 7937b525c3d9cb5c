package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"moderator/internal/models"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, entry models.NotificationLog) error {
	const query = `
		INSERT INTO notification_logs (id, request_id, channel, status, sent_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.RequestID,
		entry.Channel,
		entry.Status,
	)
	return err
}

func (r *NotificationRepository) ListByRequest(ctx context.Context, requestID string) ([]models.NotificationLog, error) {
	const query = `
		SELECT id, request_id, channel, status, sent_at
		FROM notification_logs
		WHERE request_id = $1
		ORDER BY sent_at
	`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.NotificationLog
	for rows.Next() {
		var entry models.NotificationLog
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.Channel,
			&entry.Status,
			&entry.SentAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
