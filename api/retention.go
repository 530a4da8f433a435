/*
retention.go - Scheduled purge of old evaluation runs

PURPOSE:
  Evaluation runs accumulate with every batch. The retention scheduler
  deletes runs older than a configured number of days on a cron schedule.

DESIGN:
  - robfig/cron drives the schedule (standard 5-field spec or @descriptor)
  - RunOnce does the work and takes "now" so tests control the clock
  - Days == 0 disables the job; runs are kept forever

USAGE:
  rs := NewRetentionScheduler(store, "@daily", 30, log)
  if err := rs.Start(); err != nil { ... }
  defer rs.Stop()

SEE ALSO:
  - store/sqlite/sqlite.go: PurgeRunsBefore
  - config/config.go: retention settings
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RetentionScheduler purges evaluation runs past their retention period.
type RetentionScheduler struct {
	Store         Store
	Schedule      string
	RetentionDays int

	cron *cron.Cron
	log  zerolog.Logger
}

// NewRetentionScheduler creates a new scheduler.
func NewRetentionScheduler(store Store, schedule string, days int, log zerolog.Logger) *RetentionScheduler {
	return &RetentionScheduler{
		Store:         store,
		Schedule:      schedule,
		RetentionDays: days,
		cron:          cron.New(),
		log:           log.With().Str("component", "retention").Logger(),
	}
}

// Start registers the purge job and starts the cron loop.
func (rs *RetentionScheduler) Start() error {
	if rs.RetentionDays <= 0 {
		rs.log.Info().Msg("Retention disabled, not starting")
		return nil
	}

	_, err := rs.cron.AddFunc(rs.Schedule, func() {
		if _, err := rs.RunOnce(context.Background(), time.Now()); err != nil {
			rs.log.Error().Err(err).Msg("Retention purge failed")
		}
	})
	if err != nil {
		return err
	}

	rs.cron.Start()
	rs.log.Info().
		Str("schedule", rs.Schedule).
		Int("days", rs.RetentionDays).
		Msg("Retention scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running purge to finish.
func (rs *RetentionScheduler) Stop() {
	ctx := rs.cron.Stop()
	<-ctx.Done()
	rs.log.Info().Msg("Retention scheduler stopped")
}

// RunOnce deletes runs created more than RetentionDays before now.
func (rs *RetentionScheduler) RunOnce(ctx context.Context, now time.Time) (int64, error) {
	if rs.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := now.AddDate(0, 0, -rs.RetentionDays)
	n, err := rs.Store.PurgeRunsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	rs.log.Info().
		Int64("purged", n).
		Time("cutoff", cutoff).
		Msg("Retention purge complete")
	return n, nil
}
