package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moderator/internal/models"
)

var ErrRequestNotFound = errors.New("moderation request not found")

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

func (r *RequestRepository) Create(ctx context.Context, req models.ModerationRequest) error {
	const query = `
		INSERT INTO moderation_requests (id, user_email, content_type, content_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.UserEmail,
		req.ContentType,
		req.ContentHash,
		req.Status,
	)
	return err
}

func (r *RequestRepository) SetCompleted(ctx context.Context, id string) error {
	const query = `
		UPDATE moderation_requests SET status = $2 WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, models.RequestStatusCompleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (models.ModerationRequest, error) {
	const query = `
		SELECT id, user_email, content_type, content_hash, status, created_at
		FROM moderation_requests WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var req models.ModerationRequest
	if err := row.Scan(
		&req.ID,
		&req.UserEmail,
		&req.ContentType,
		&req.ContentHash,
		&req.Status,
		&req.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ModerationRequest{}, ErrRequestNotFound
		}
		return models.ModerationRequest{}, err
	}
	return req, nil
}

// CountStalePending reports image requests that entered the queue but were
// never completed. The deferred path has no retry, so a crashed worker
// leaves rows pending forever; the scheduler surfaces them.
func (r *RequestRepository) CountStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	const query = `
		SELECT COUNT(id) FROM moderation_requests
		WHERE status = $1 AND content_type = $2 AND created_at < $3
	`
	var count int64
	err := r.pool.QueryRow(ctx, query,
		models.RequestStatusPending,
		models.ContentTypeImage,
		olderThan,
	).Scan(&count)
	return count, err
}
