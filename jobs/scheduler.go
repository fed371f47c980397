// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"pointsgame/service"
)

const (
	// PurgeClaimsSchedule removes expired grid claims
	PurgeClaimsSchedule = "@every 5m"

	// DailyStatsSchedule logs system statistics at midnight UTC
	DailyStatsSchedule = "0 0 * * *"
)

// Scheduler owns the cron runner and the jobs it triggers
type Scheduler struct {
	cron       *cron.Cron
	uowFactory service.UnitOfWorkFactory
	analytics  service.AnalyticsService
	now        func() time.Time
}

// NewScheduler creates a scheduler running in UTC
func NewScheduler(uowFactory service.UnitOfWorkFactory, analytics service.AnalyticsService) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		uowFactory: uowFactory,
		analytics:  analytics,
		now:        time.Now,
	}
}

// Start registers every job and starts the runner
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(PurgeClaimsSchedule, func() {
		if _, err := s.PurgeExpiredClaims(ctx); err != nil {
			log.WithError(err).Error("[CRON] Failed to purge expired grid claims")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule claim purge: %w", err)
	}

	if _, err := s.cron.AddFunc(DailyStatsSchedule, func() {
		if err := s.LogDailyStats(ctx); err != nil {
			log.WithError(err).Error("[CRON] Failed to compute daily stats")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily stats: %w", err)
	}

	s.cron.Start()
	log.WithField("jobs", len(s.cron.Entries())).Info("Job scheduler started")
	return nil
}

// Stop halts the runner and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Job scheduler stopped")
}

// PurgeExpiredClaims deletes unclaimed grid claims past their expiry
func (s *Scheduler) PurgeExpiredClaims(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.GridClaimRepository().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired claims: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if deleted > 0 {
		log.WithField("deleted", deleted).Info("[CRON] Purged expired grid claims")
	}
	return deleted, nil
}

// LogDailyStats writes a one-line summary of the system to the log
func (s *Scheduler) LogDailyStats(ctx context.Context) error {
	stats, err := s.analytics.SystemStats(ctx)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"total_accounts":   stats.TotalAccounts,
		"active_accounts":  stats.ActiveAccounts,
		"total_balance":    stats.TotalBalance,
		"recent_games":     stats.RecentGames,
		"total_game_spend": stats.TotalGameSpend,
		"win_ratio":        stats.WinRatio,
	}).Info("[CRON] Daily stats")
	return nil
}
