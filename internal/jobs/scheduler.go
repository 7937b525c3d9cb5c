package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"moderator/internal/config"
	"moderator/internal/metrics"
)

type StalePendingCounter interface {
	CountStalePending(ctx context.Context, olderThan time.Time) (int64, error)
}

// Scheduler periodically scans for image requests stuck in pending. The
// deferred path drops failures on the floor from the caller's view; this
// scan makes them visible to operators via log and gauge.
type Scheduler struct {
	cron    *cron.Cron
	store   StalePendingCounter
	metrics *metrics.Metrics
	cfg     config.JobsConfig
	log     zerolog.Logger
}

func NewScheduler(store StalePendingCounter, m *metrics.Metrics, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		store:   store,
		metrics: m,
		cfg:     cfg,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.ScanSchedule, s.scanStalePending); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) scanStalePending() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.ScanStalePending(ctx)
}

// ScanStalePending runs one scan cycle.
func (s *Scheduler) ScanStalePending(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.StaleAfter)
	count, err := s.store.CountStalePending(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("stale pending scan failed")
		return
	}

	if s.metrics != nil {
		s.metrics.StalePending.Set(float64(count))
	}
	if count > 0 {
		s.log.Warn().
			Int64("count", count).
			Dur("stale_after", s.cfg.StaleAfter).
			Msg("image requests stuck in pending")
	}
}
