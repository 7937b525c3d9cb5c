package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"moderator/internal/config"
	"moderator/internal/metrics"
)

type stalePendingStub struct {
	count     int64
	err       error
	olderThan time.Time
}

func (s *stalePendingStub) CountStalePending(_ context.Context, olderThan time.Time) (int64, error) {
	s.olderThan = olderThan
	return s.count, s.err
}

func TestScanStalePendingSetsGauge(t *testing.T) {
	store := &stalePendingStub{count: 3}
	m := metrics.New(prometheus.NewRegistry())
	cfg := config.JobsConfig{StaleAfter: 10 * time.Minute, ScanSchedule: "0 */5 * * * *"}

	s := NewScheduler(store, m, cfg, zerolog.Nop())
	s.ScanStalePending(context.Background())

	if got := testutil.ToFloat64(m.StalePending); got != 3 {
		t.Fatalf("gauge: got %v want 3", got)
	}

	wantCutoff := time.Now().UTC().Add(-10 * time.Minute)
	if store.olderThan.After(wantCutoff.Add(time.Second)) || store.olderThan.Before(wantCutoff.Add(-time.Second)) {
		t.Fatalf("cutoff drifted: got %v want about %v", store.olderThan, wantCutoff)
	}
}

func TestScanStalePendingSurvivesStoreError(t *testing.T) {
	store := &stalePendingStub{err: errors.New("db down")}
	m := metrics.New(prometheus.NewRegistry())
	cfg := config.JobsConfig{StaleAfter: 10 * time.Minute, ScanSchedule: "0 */5 * * * *"}

	s := NewScheduler(store, m, cfg, zerolog.Nop())
	s.ScanStalePending(context.Background())

	if got := testutil.ToFloat64(m.StalePending); got != 0 {
		t.Fatalf("gauge must stay untouched on error, got %v", got)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	store := &stalePendingStub{}
	cfg := config.JobsConfig{StaleAfter: time.Minute, ScanSchedule: "0 */5 * * * *"}

	s := NewScheduler(store, nil, cfg, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	store := &stalePendingStub{}
	cfg := config.JobsConfig{StaleAfter: time.Minute, ScanSchedule: "not a cron spec"}

	s := NewScheduler(store, nil, cfg, zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Fatalf("expected error for malformed schedule")
	}
}
