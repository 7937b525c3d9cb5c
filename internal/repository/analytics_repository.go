package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// CountByClassification groups a user's moderation results by label,
// joined through the owning request.
func (r *AnalyticsRepository) CountByClassification(ctx context.Context, userEmail string) (map[string]int64, error) {
	const query = `
		SELECT res.classification, COUNT(res.id)
		FROM moderation_results res
		JOIN moderation_requests req ON req.id = res.request_id
		WHERE req.user_email = $1
		GROUP BY res.classification
	`
	rows, err := r.pool.Query(ctx, query, userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var label string
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		counts[label] = count
	}
	return counts, rows.Err()
}
