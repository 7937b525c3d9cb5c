package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

type counterStub struct {
	counts map[string]int64
	err    error
	user   string
}

func (s *counterStub) CountByClassification(_ context.Context, userEmail string) (map[string]int64, error) {
	s.user = userEmail
	return s.counts, s.err
}

func TestSummarizeAggregatesCounts(t *testing.T) {
	store := &counterStub{counts: map[string]int64{"safe": 7, "toxic": 2, "spam": 1}}
	svc := NewAnalyticsService(store)
	fixedNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	summary, err := svc.Summarize(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if store.user != "a@b.com" {
		t.Fatalf("store queried with wrong user: %q", store.user)
	}
	if summary.TotalRequests != 10 {
		t.Fatalf("total: got %d want 10", summary.TotalRequests)
	}
	if summary.ByClassification["toxic"] != 2 {
		t.Fatalf("unexpected counts: %+v", summary.ByClassification)
	}
	if !summary.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("generated at: got %v want %v", summary.GeneratedAt, fixedNow)
	}
}

func TestSummarizeUnknownUserIsEmpty(t *testing.T) {
	svc := NewAnalyticsService(&counterStub{counts: nil})

	summary, err := svc.Summarize(context.Background(), "nobody@b.com")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if summary.TotalRequests != 0 {
		t.Fatalf("total: got %d want 0", summary.TotalRequests)
	}
	if summary.ByClassification == nil || len(summary.ByClassification) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", summary.ByClassification)
	}
}

func TestSummarizeStoreErrorPropagates(t *testing.T) {
	svc := NewAnalyticsService(&counterStub{err: errors.New("db down")})

	if _, err := svc.Summarize(context.Background(), "a@b.com"); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}
