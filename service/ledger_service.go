package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pointsgame/events"
	"pointsgame/models"
)

// maxCASAttempts bounds the compare-and-set retry loop for clamped writes
const maxCASAttempts = 3

var errBalanceContention = errors.New("balance changed concurrently too many times")

// Action describes what a debit-and-act operation logs
type Action struct {
	Kind     models.HistoryKind
	Game     models.Game
	Outcome  string
	Winnings int64
	ItemID   *string
	Details  map[string]any

	// Within runs in the same transaction after the history entry was written
	Within func(ctx context.Context, uow UnitOfWork, entry *models.HistoryEntry) error
}

// ConsumeOptions marks an item use triggered on behalf of someone else
type ConsumeOptions struct {
	ActorID        *uuid.UUID
	AdminTriggered bool
}

// GrantRequest describes an inventory grant and the history entry recorded for it
type GrantRequest struct {
	AccountID       uuid.UUID
	ItemID          string
	Uses            int
	Kind            models.HistoryKind
	Game            models.Game
	Outcome         string
	ActorID         *uuid.UUID
	RequireCategory *models.ItemCategory
	Details         map[string]any

	// Before runs in the grant's transaction ahead of the inventory write
	Before func(ctx context.Context, uow UnitOfWork) error
}

type ledgerService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *ledgerService) DebitAndAct(ctx context.Context, accountID uuid.UUID, amount int64, action Action) (*models.ActResult, error) {
	if amount < 0 {
		return nil, invalidInput("amount cannot be negative")
	}
	if action.Winnings < 0 {
		return nil, invalidInput("winnings cannot be negative")
	}
	if action.Kind == "" {
		action.Kind = models.HistoryKindGamePlay
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	change, err := uow.AccountRepository().ApplyDelta(ctx, accountID, amount, action.Winnings)
	if err != nil {
		return nil, fmt.Errorf("failed to apply balance change: %w", err)
	}

	entry := &models.HistoryEntry{
		AccountID:     accountID,
		Kind:          action.Kind,
		Game:          gamePtr(action.Game),
		ItemID:        action.ItemID,
		AmountSpent:   amount,
		AmountWon:     action.Winnings,
		BalanceBefore: change.Before,
		BalanceAfter:  change.After,
		Outcome:       action.Outcome,
		Details:       action.Details,
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return nil, err
	}

	if action.Within != nil {
		if err := action.Within(ctx, uow, entry); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ActResult{
		BalanceBefore: change.Before,
		NewBalance:    change.After,
		Outcome:       action.Outcome,
		Entry:         entry,
	}, nil
}

func (s *ledgerService) ConsumeItem(ctx context.Context, accountID uuid.UUID, itemID string, opts ConsumeOptions) (*models.ConsumeResult, error) {
	if itemID == "" {
		return nil, invalidInput("item id is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	inv, err := uow.InventoryRepository().Decrement(ctx, accountID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume item: %w", err)
	}

	change, err := uow.AccountRepository().ApplyDelta(ctx, accountID, item.Cost, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to charge item cost: %w", err)
	}

	outcome := models.OutcomeUsed
	if opts.AdminTriggered {
		outcome = models.OutcomeTriggered
	}
	entry := &models.HistoryEntry{
		AccountID:      accountID,
		ActorID:        opts.ActorID,
		Kind:           models.HistoryKindItemUse,
		ItemID:         stringPtr(item.ID),
		AmountSpent:    item.Cost,
		BalanceBefore:  change.Before,
		BalanceAfter:   change.After,
		Outcome:        outcome,
		AdminTriggered: opts.AdminTriggered,
		Details: map[string]any{
			"item_name":      item.Name,
			"remaining_uses": inv.RemainingUses,
		},
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ConsumeResult{
		ItemID:        item.ID,
		RemainingUses: inv.RemainingUses,
		NewBalance:    change.After,
	}, nil
}

func (s *ledgerService) GrantItem(ctx context.Context, req GrantRequest) (*models.InventoryEntry, error) {
	if req.Uses < 1 {
		return nil, invalidInput("uses must be at least 1")
	}
	if req.ItemID == "" {
		return nil, invalidInput("item id is required")
	}
	if req.Kind == "" {
		return nil, invalidInput("history kind is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if req.RequireCategory != nil && item.Category != *req.RequireCategory {
		return nil, invalidInput("item %s is not a %s item", item.ID, *req.RequireCategory)
	}
	if !item.IsActive {
		return nil, invalidInput("item %s is not active", item.ID)
	}

	account, err := uow.AccountRepository().GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if req.Before != nil {
		if err := req.Before(ctx, uow); err != nil {
			return nil, err
		}
	}

	inv, err := uow.InventoryRepository().Grant(ctx, req.AccountID, item.ID, req.Uses)
	if err != nil {
		return nil, fmt.Errorf("failed to grant item: %w", err)
	}

	details := map[string]any{
		"item_name":      item.Name,
		"uses":           req.Uses,
		"remaining_uses": inv.RemainingUses,
	}
	for k, v := range req.Details {
		details[k] = v
	}

	entry := &models.HistoryEntry{
		AccountID:      req.AccountID,
		ActorID:        req.ActorID,
		Kind:           req.Kind,
		Game:           gamePtr(req.Game),
		ItemID:         stringPtr(item.ID),
		BalanceBefore:  account.Balance,
		BalanceAfter:   account.Balance,
		Outcome:        req.Outcome,
		AdminTriggered: req.Kind == models.HistoryKindAdminAction,
		Details:        details,
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ItemGrantedEvent{
		AccountID:     req.AccountID,
		ItemID:        item.ID,
		Uses:          req.Uses,
		RemainingUses: inv.RemainingUses,
		Kind:          req.Kind,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inv, nil
}

func (s *ledgerService) ExecuteSabotage(ctx context.Context, attackerID, targetID uuid.UUID, itemID string) (*models.SabotageResult, error) {
	if attackerID == targetID {
		return nil, invalidInput("cannot sabotage yourself")
	}

	item, attacker, target, err := s.loadSabotage(ctx, attackerID, targetID, itemID)
	if err != nil {
		return nil, err
	}

	attackerChange, err := s.chargeAttacker(ctx, attacker, target, item)
	if err != nil {
		return nil, err
	}

	result, err := s.applyToTarget(ctx, attacker, target, item)
	if err != nil {
		at := s.now().UTC()
		log.WithFields(log.Fields{
			"attacker_id":          attackerID,
			"target_id":            targetID,
			"item_id":              item.ID,
			"timestamp":            at,
			"attacker_new_balance": attackerChange.After,
		}).WithError(err).Error("Sabotage charged attacker but was not applied to target")

		return nil, &PartialSabotageError{
			AttackerID:         attackerID,
			TargetID:           targetID,
			ItemID:             item.ID,
			At:                 at,
			AttackerNewBalance: attackerChange.After,
			Err:                err,
		}
	}

	result.AttackerNewBalance = attackerChange.After
	return result, nil
}

// loadSabotage validates a sabotage before anything is written
func (s *ledgerService) loadSabotage(ctx context.Context, attackerID, targetID uuid.UUID, itemID string) (*models.ItemDefinition, *models.Account, *models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, nil, nil, ErrItemNotFound
	}
	if item.Category != models.CategoryAgainst || !item.IsActive {
		return nil, nil, nil, invalidInput("item %s cannot be used for sabotage", item.ID)
	}
	if item.AdminOnly {
		return nil, nil, nil, ErrPermissionDenied
	}

	attacker, err := uow.AccountRepository().GetByID(ctx, attackerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get attacker: %w", err)
	}
	if attacker == nil {
		return nil, nil, nil, ErrAccountNotFound
	}

	target, err := uow.AccountRepository().GetByID(ctx, targetID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get target: %w", err)
	}
	if target == nil {
		return nil, nil, nil, ErrAccountNotFound
	}
	if !target.IsActive || target.IsAdmin {
		return nil, nil, nil, invalidInput("account %s cannot be targeted", target.Username)
	}

	return item, attacker, target, nil
}

// chargeAttacker is the first of the two sabotage transactions
func (s *ledgerService) chargeAttacker(ctx context.Context, attacker, target *models.Account, item *models.ItemDefinition) (*models.BalanceChange, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	change, err := uow.AccountRepository().ApplyDelta(ctx, attacker.ID, item.Cost, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to charge attacker: %w", err)
	}

	entry := &models.HistoryEntry{
		AccountID:     attacker.ID,
		Kind:          models.HistoryKindSabotageSent,
		ItemID:        stringPtr(item.ID),
		AmountSpent:   item.Cost,
		BalanceBefore: change.Before,
		BalanceAfter:  change.After,
		Outcome:       models.OutcomeUsed,
		Details: map[string]any{
			"item_name":       item.Name,
			"target_id":       target.ID.String(),
			"target_username": target.Username,
		},
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return change, nil
}

// applyToTarget is the second sabotage transaction
func (s *ledgerService) applyToTarget(ctx context.Context, attacker, target *models.Account, item *models.ItemDefinition) (*models.SabotageResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deduction := item.PointsDeducted()
	change, _, err := clampedWrite(ctx, uow, target.ID, func(acct *models.Account) (int64, error) {
		return clampSub(acct.Balance, deduction), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply deduction to target: %w", err)
	}
	lost := change.Before - change.After

	entry := &models.HistoryEntry{
		AccountID:     target.ID,
		ActorID:       &attacker.ID,
		Kind:          models.HistoryKindSabotageReceived,
		ItemID:        stringPtr(item.ID),
		BalanceBefore: change.Before,
		BalanceAfter:  change.After,
		Outcome:       models.OutcomeSabotaged,
		Details: map[string]any{
			"item_name":         item.Name,
			"attacker_username": attacker.Username,
			"points_lost":       lost,
		},
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return nil, err
	}

	record := &models.SabotageRecord{
		AttackerID:            attacker.ID,
		AttackerUsername:      attacker.Username,
		TargetID:              target.ID,
		TargetUsername:        target.Username,
		ItemID:                item.ID,
		ItemName:              item.Name,
		PointsSpent:           item.Cost,
		PointsDeducted:        lost,
		DurationSeconds:       item.DurationSeconds,
		TimerReductionSeconds: item.TimerReduction(),
	}
	if err := uow.SabotageRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record sabotage: %w", err)
	}

	uow.EventBus().Publish(sabotageEvent(record))

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.SabotageResult{
		TargetNewBalance: change.After,
		PointsDeducted:   lost,
		Record:           record,
	}, nil
}

func (s *ledgerService) AdjustBalance(ctx context.Context, accountID uuid.UUID, amount int64, direction models.AdjustDirection, actorID uuid.UUID, reason string) (*models.AdjustResult, error) {
	if !direction.Valid() {
		return nil, invalidInput("direction must be add or subtract")
	}
	if amount < 0 {
		return nil, invalidInput("amount cannot be negative")
	}
	if reason == "" {
		reason = "Admin adjustment"
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	change, account, err := clampedWrite(ctx, uow, accountID, func(acct *models.Account) (int64, error) {
		if direction == models.AdjustAdd {
			if amount > math.MaxInt64-acct.Balance {
				return 0, invalidInput("adjustment would overflow the balance")
			}
			return acct.Balance + amount, nil
		}
		return clampSub(acct.Balance, amount), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}

	outcome := models.OutcomePointsAdded
	if direction == models.AdjustSubtract {
		outcome = models.OutcomePointsDeducted
	}
	entry := &models.HistoryEntry{
		AccountID:      accountID,
		ActorID:        &actorID,
		Kind:           models.HistoryKindAdminAction,
		AmountSpent:    max(0, change.Before-change.After),
		AmountWon:      max(0, change.After-change.Before),
		BalanceBefore:  change.Before,
		BalanceAfter:   change.After,
		Outcome:        outcome,
		AdminTriggered: true,
		Details: map[string]any{
			"action":           string(direction),
			"requested_amount": amount,
			"reason":           reason,
		},
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.AdjustResult{
		AccountID:  accountID,
		Username:   account.Username,
		OldBalance: change.Before,
		NewBalance: change.After,
		Change:     change.Delta(),
	}, nil
}

func (s *ledgerService) ForceTrigger(ctx context.Context, adminID, targetID uuid.UUID, itemID string) (*models.ForceTriggerResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.Category != models.CategoryAgainst || !item.AdminOnly {
		return nil, invalidInput("item %s is not an admin-only AGAINST item", item.ID)
	}

	admin, err := uow.AccountRepository().GetByID(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin account: %w", err)
	}
	if admin == nil {
		return nil, ErrAccountNotFound
	}

	total := item.Cost + item.PointsDeducted()
	change, target, err := clampedWrite(ctx, uow, targetID, func(acct *models.Account) (int64, error) {
		if acct.Balance < item.Cost {
			return 0, ErrInsufficientFunds
		}
		return clampSub(acct.Balance, total), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply item to target: %w", err)
	}
	lost := change.Before - change.After

	entry := &models.HistoryEntry{
		AccountID:      targetID,
		ActorID:        &adminID,
		Kind:           models.HistoryKindItemUse,
		ItemID:         stringPtr(item.ID),
		AmountSpent:    lost,
		BalanceBefore:  change.Before,
		BalanceAfter:   change.After,
		Outcome:        models.OutcomeTriggered,
		AdminTriggered: true,
		Details: map[string]any{
			"item_name":               item.Name,
			"admin_username":          admin.Username,
			"duration_seconds":        item.DurationSeconds,
			"timer_reduction_seconds": item.TimerReduction(),
			"points_deducted":         item.PointsDeducted(),
		},
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return nil, err
	}

	record := &models.SabotageRecord{
		AttackerID:            admin.ID,
		AttackerUsername:      admin.Username,
		TargetID:              target.ID,
		TargetUsername:        target.Username,
		ItemID:                item.ID,
		ItemName:              item.Name,
		PointsDeducted:        lost,
		DurationSeconds:       item.DurationSeconds,
		TimerReductionSeconds: item.TimerReduction(),
		AdminTriggered:        true,
	}
	if err := uow.SabotageRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record sabotage: %w", err)
	}

	uow.EventBus().Publish(sabotageEvent(record))

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ForceTriggerResult{
		TargetID:         target.ID,
		TargetUsername:   target.Username,
		TargetOldBalance: change.Before,
		TargetNewBalance: change.After,
		ActorBalance:     admin.Balance,
		PointsDeducted:   lost,
		Record:           record,
	}, nil
}

func (s *ledgerService) ResetInventory(ctx context.Context, accountID, actorID uuid.UUID) ([]*models.InventoryEntry, error) {
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

	items, err := uow.ItemRepository().List(ctx, ItemFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	entries, err := uow.InventoryRepository().Replace(ctx, accountID, items)
	if err != nil {
		return nil, fmt.Errorf("failed to reset inventory: %w", err)
	}

	entry := &models.HistoryEntry{
		AccountID:      accountID,
		ActorID:        &actorID,
		Kind:           models.HistoryKindAdminAction,
		BalanceBefore:  account.Balance,
		BalanceAfter:   account.Balance,
		Outcome:        models.OutcomeInventoryReset,
		AdminTriggered: true,
		Details:        map[string]any{"items": len(entries)},
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}

func (s *ledgerService) SetActive(ctx context.Context, accountID, actorID uuid.UUID, active bool, details map[string]any) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if err := uow.AccountRepository().SetActive(ctx, accountID, active); err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	outcome := models.OutcomeDeactivated
	if active {
		outcome = models.OutcomeActivated
	}
	entry := &models.HistoryEntry{
		AccountID:      accountID,
		ActorID:        &actorID,
		Kind:           models.HistoryKindAdminAction,
		BalanceBefore:  account.Balance,
		BalanceAfter:   account.Balance,
		Outcome:        outcome,
		AdminTriggered: true,
		Details:        details,
	}
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *ledgerService) RecordAudit(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.Kind == "" || entry.Outcome == "" {
		return invalidInput("audit entries need a kind and an outcome")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, entry.AccountID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}

	entry.BalanceBefore = account.Balance
	entry.BalanceAfter = account.Balance
	entry.AmountSpent = 0
	entry.AmountWon = 0
	if err := RecordHistory(ctx, uow, entry); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// clampedWrite reads the account and writes compute's result guarded by the version it read,
// retrying on a concurrent write. compute may veto the write by returning an error.
func clampedWrite(ctx context.Context, uow UnitOfWork, accountID uuid.UUID, compute func(*models.Account) (int64, error)) (*models.BalanceChange, *models.Account, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		account, err := uow.AccountRepository().GetByID(ctx, accountID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil {
			return nil, nil, ErrAccountNotFound
		}

		newBalance, err := compute(account)
		if err != nil {
			return nil, nil, err
		}
		if newBalance == account.Balance {
			return &models.BalanceChange{
				AccountID: accountID,
				Before:    account.Balance,
				After:     account.Balance,
				Version:   account.Version,
			}, account, nil
		}

		change, ok, err := uow.AccountRepository().CompareAndSetBalance(ctx, accountID, account.Version, newBalance)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to write balance: %w", err)
		}
		if ok {
			account.Balance = change.After
			account.Version = change.Version
			return change, account, nil
		}

		log.WithFields(log.Fields{
			"account_id": accountID,
			"attempt":    attempt,
		}).Debug("Balance version conflict, retrying")
	}
	return nil, nil, errBalanceContention
}

func clampSub(balance, amount int64) int64 {
	if amount >= balance {
		return 0
	}
	return balance - amount
}

func sabotageEvent(record *models.SabotageRecord) events.SabotageEvent {
	return events.SabotageEvent{
		SabotageID:     record.ID,
		AttackerID:     record.AttackerID,
		TargetID:       record.TargetID,
		ItemID:         record.ItemID,
		PointsDeducted: record.PointsDeducted,
		AdminTriggered: record.AdminTriggered,
		At:             record.CreatedAt,
	}
}
