package service

import (
	"context"
	"fmt"
	"time"
)

type ClassificationCounter interface {
	CountByClassification(ctx context.Context, userEmail string) (map[string]int64, error)
}

type Summary struct {
	User             string
	TotalRequests    int64
	ByClassification map[string]int64
	GeneratedAt      time.Time
}

type AnalyticsService struct {
	store ClassificationCounter
	now   func() time.Time
}

func NewAnalyticsService(store ClassificationCounter) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		now:   time.Now,
	}
}

// Summarize counts a user's moderation results per classification label.
// A user with no history gets an empty map and a zero total.
func (s *AnalyticsService) Summarize(ctx context.Context, userEmail string) (Summary, error) {
	counts, err := s.store.CountByClassification(ctx, userEmail)
	if err != nil {
		return Summary{}, fmt.Errorf("count by classification: %w", err)
	}
	if counts == nil {
		counts = map[string]int64{}
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	return Summary{
		User:             userEmail,
		TotalRequests:    total,
		ByClassification: counts,
		GeneratedAt:      s.now().UTC(),
	}, nil
}
