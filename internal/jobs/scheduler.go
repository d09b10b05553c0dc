// Package jobs runs periodic maintenance. All credit-metered operations are
// strictly request-scoped; nothing here touches the ledger.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aurasflow/backend/internal/auth"
	"github.com/aurasflow/backend/internal/logger"
)

// BatchSweeper is implemented by batch stores that need explicit expiry.
type BatchSweeper interface {
	Sweep() int
}

// Scheduler owns the cron-driven maintenance tasks: expired refresh-token
// cleanup and stale in-memory batch sweeping.
type Scheduler struct {
	cron    *cron.Cron
	auth    *auth.Service
	sweeper BatchSweeper
}

func NewScheduler(authService *auth.Service, sweeper BatchSweeper) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		auth:    authService,
		sweeper: sweeper,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.cleanupExpiredTokens); err != nil {
		return err
	}

	if s.sweeper != nil {
		if _, err := s.cron.AddFunc("@every 10m", s.sweepBatches); err != nil {
			return err
		}
	}

	s.cron.Start()
	logger.Info().Msg("maintenance scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("maintenance scheduler stop timed out")
	}
}

func (s *Scheduler) cleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.auth.CleanupExpiredTokens(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("refresh token cleanup failed")
		return
	}
	if removed > 0 {
		logger.Info().Int64("removed", removed).Msg("expired refresh tokens removed")
	}
}

func (s *Scheduler) sweepBatches() {
	if removed := s.sweeper.Sweep(); removed > 0 {
		logger.Debug().Int("removed", removed).Msg("stale content batches swept")
	}
}
