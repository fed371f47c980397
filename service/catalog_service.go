package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pointsgame/models"
)

type catalogService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerService
}

// NewCatalogService creates a new catalog service
func NewCatalogService(uowFactory UnitOfWorkFactory, ledger LedgerService) CatalogService {
	return &catalogService{
		uowFactory: uowFactory,
		ledger:     ledger,
	}
}

func (s *catalogService) Inventory(ctx context.Context, accountID uuid.UUID) ([]*models.InventoryView, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return loadInventoryView(ctx, uow, accountID)
}

func (s *catalogService) UseItem(ctx context.Context, accountID uuid.UUID, itemID string) (*models.ConsumeResult, error) {
	return s.ledger.ConsumeItem(ctx, accountID, itemID, ConsumeOptions{})
}

func (s *catalogService) SabotageOptions(ctx context.Context, accountID uuid.UUID) ([]*models.ItemDefinition, []*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.ItemRepository().List(ctx, ItemFilter{
		Category:   categoryPtr(models.CategoryAgainst),
		AdminOnly:  boolPtr(false),
		ActiveOnly: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sabotage items: %w", err)
	}

	targets, err := uow.AccountRepository().ListTargets(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list targets: %w", err)
	}

	return items, targets, nil
}

func (s *catalogService) Sabotage(ctx context.Context, attackerID, targetID uuid.UUID, itemID string) (*models.SabotageResult, error) {
	if targetID == uuid.Nil || itemID == "" {
		return nil, invalidInput("target id and item id are required")
	}
	return s.ledger.ExecuteSabotage(ctx, attackerID, targetID, itemID)
}

// loadInventoryView joins the account's entries with their definitions.
// Inactive definitions are left out; CanUse needs a remaining use and enough balance for the cost.
func loadInventoryView(ctx context.Context, uow UnitOfWork, accountID uuid.UUID) ([]*models.InventoryView, error) {
	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	entries, err := uow.InventoryRepository().ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	items, err := uow.ItemRepository().List(ctx, ItemFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	byID := make(map[string]*models.ItemDefinition, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	views := make([]*models.InventoryView, 0, len(entries))
	for _, entry := range entries {
		item, ok := byID[entry.ItemID]
		if !ok {
			continue
		}
		views = append(views, &models.InventoryView{
			Item:          item,
			RemainingUses: entry.RemainingUses,
			CanUse:        entry.RemainingUses > 0 && account.Balance >= item.Cost,
		})
	}
	return views, nil
}
