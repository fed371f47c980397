package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pointsgame/models"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerService
	analytics  AnalyticsService
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory, ledger LedgerService, analytics AnalyticsService) AdminService {
	return &adminService{
		uowFactory: uowFactory,
		ledger:     ledger,
		analytics:  analytics,
	}
}

func (s *adminService) AdjustBalance(ctx context.Context, actor models.Session, accountID uuid.UUID, amount int64, direction models.AdjustDirection, reason string) (*models.AdjustResult, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, invalidInput("amount must be positive")
	}
	return s.ledger.AdjustBalance(ctx, accountID, amount, direction, actor.AccountID, reason)
}

func (s *adminService) ForceTrigger(ctx context.Context, actor models.Session, targetID uuid.UUID, itemID string) (*models.ForceTriggerResult, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if targetID == uuid.Nil || itemID == "" {
		return nil, invalidInput("target id and item id are required")
	}
	return s.ledger.ForceTrigger(ctx, actor.AccountID, targetID, itemID)
}

func (s *adminService) GiftItem(ctx context.Context, actor models.Session, accountID uuid.UUID, itemID string) (*models.InventoryEntry, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.ledger.GrantItem(ctx, GrantRequest{
		AccountID:       accountID,
		ItemID:          itemID,
		Uses:            1,
		Kind:            models.HistoryKindAdminAction,
		Outcome:         models.OutcomePowerupGiven,
		ActorID:         &actor.AccountID,
		RequireCategory: categoryPtr(models.CategoryFor),
		Details:         map[string]any{"admin_username": actor.Username},
	})
}

func (s *adminService) ResetInventory(ctx context.Context, actor models.Session, accountID uuid.UUID) ([]*models.InventoryEntry, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.ledger.ResetInventory(ctx, accountID, actor.AccountID)
}

func (s *adminService) SetActive(ctx context.Context, actor models.Session, accountID uuid.UUID, active bool) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if accountID == actor.AccountID && !active {
		return invalidInput("cannot deactivate your own account")
	}

	return s.ledger.SetActive(ctx, accountID, actor.AccountID, active, map[string]any{"admin_username": actor.Username})
}

func (s *adminService) ListAccounts(ctx context.Context, actor models.Session) ([]*models.AccountSummary, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.analytics.AccountSummaries(ctx)
}

func (s *adminService) AdminItems(ctx context.Context, actor models.Session) ([]*models.ItemDefinition, []*models.Account, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.ItemRepository().List(ctx, ItemFilter{
		Category:   categoryPtr(models.CategoryAgainst),
		AdminOnly:  boolPtr(true),
		ActiveOnly: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list admin items: %w", err)
	}

	targets, err := uow.AccountRepository().ListTargets(ctx, actor.AccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list targets: %w", err)
	}
	return items, targets, nil
}

func (s *adminService) Feed(ctx context.Context, actor models.Session, query models.FeedQuery) (*models.FeedPage, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.analytics.Feed(ctx, query)
}

func (s *adminService) SystemStats(ctx context.Context, actor models.Session) (*models.SystemStats, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.analytics.SystemStats(ctx)
}
