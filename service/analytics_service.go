package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pointsgame/models"
)

const (
	defaultFeedLimit        = 50
	maxFeedLimit            = 200
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	notificationLimit       = 10
	recentActivityWindow    = 7 * 24 * time.Hour
	topSpendersLimit        = 5
)

type analyticsService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewAnalyticsService creates a new read-only analytics service
func NewAnalyticsService(uowFactory UnitOfWorkFactory) AnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *analyticsService) Feed(ctx context.Context, query models.FeedQuery) (*models.FeedPage, error) {
	query.Limit = clampLimit(query.Limit, defaultFeedLimit, maxFeedLimit)
	if query.Page < 1 {
		query.Page = 1
	}

	kinds := models.FeedKinds
	if query.AccountID != nil {
		kinds = models.AccountFeedKinds
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, total, err := uow.HistoryRepository().Feed(ctx, query, kinds)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity feed: %w", err)
	}

	return &models.FeedPage{
		Entries:    entries,
		Page:       query.Page,
		Limit:      query.Limit,
		Total:      total,
		TotalPages: (total + query.Limit - 1) / query.Limit,
	}, nil
}

func (s *analyticsService) Leaderboard(ctx context.Context, limit int) (*models.Leaderboard, error) {
	limit = clampLimit(limit, defaultLeaderboardLimit, maxLeaderboardLimit)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, total, err := uow.AnalyticsRepository().Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	for i, entry := range entries {
		entry.Rank = i + 1
	}

	return &models.Leaderboard{Entries: entries, TotalUsers: total}, nil
}

func (s *analyticsService) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	since := s.now().Add(-recentActivityWindow)
	stats, err := uow.AnalyticsRepository().SystemStats(ctx, since, topSpendersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute system stats: %w", err)
	}
	stats.WinRatio = stats.Outcomes.WinRatio()
	return stats, nil
}

func (s *analyticsService) AccountHistory(ctx context.Context, accountID uuid.UUID, filter models.HistoryFilter, limit int) (*models.AccountHistory, error) {
	kinds, ok := filter.Kinds()
	if !ok {
		return nil, invalidInput("unknown history filter %q", filter)
	}
	limit = clampLimit(limit, defaultFeedLimit, maxFeedLimit)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	entries, err := uow.HistoryRepository().ListByAccount(ctx, accountID, kinds, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	aggregates, err := uow.AnalyticsRepository().AccountAggregates(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate history: %w", err)
	}

	return &models.AccountHistory{
		Entries:        entries,
		Stats:          *aggregates,
		CurrentBalance: account.Balance,
	}, nil
}

func (s *analyticsService) Notifications(ctx context.Context, accountID uuid.UUID, since *time.Time) ([]*models.SabotageRecord, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	records, err := uow.SabotageRepository().ListForTarget(ctx, accountID, since, notificationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return records, nil
}

func (s *analyticsService) AccountSummaries(ctx context.Context) ([]*models.AccountSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	summaries, err := uow.AnalyticsRepository().AccountSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list account summaries: %w", err)
	}
	return summaries, nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
