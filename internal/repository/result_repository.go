package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moderator/internal/models"
)

// ErrResultNotFound is returned while a request is still pending.
var ErrResultNotFound = errors.New("moderation result not found")

type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func (r *ResultRepository) Create(ctx context.Context, result models.ModerationResult) error {
	const query = `
		INSERT INTO moderation_results (id, request_id, classification, confidence, reasoning, llm_response)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		result.ID,
		result.RequestID,
		result.Classification,
		result.Confidence,
		result.Reasoning,
		result.LLMResponse,
	)
	return err
}

func (r *ResultRepository) GetByRequestID(ctx context.Context, requestID string) (models.ModerationResult, error) {
	const query = `
		SELECT id, request_id, classification, confidence, reasoning, llm_response
		FROM moderation_results WHERE request_id = $1
	`
	row := r.pool.QueryRow(ctx, query, requestID)

	var result models.ModerationResult
	if err := row.Scan(
		&result.ID,
		&result.RequestID,
		&result.Classification,
		&result.Confidence,
		&result.Reasoning,
		&result.LLMResponse,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ModerationResult{}, ErrResultNotFound
		}
		return models.ModerationResult{}, err
	}
	return result, nil
}
