package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pointsgame/models"
)

// testRepos bundles one mock per repository behind a single mock unit of work
type testRepos struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	accounts  *MockAccountRepository
	items     *MockItemRepository
	inventory *MockInventoryRepository
	history   *MockHistoryRepository
	sabotages *MockSabotageRepository
	claims    *MockGridClaimRepository
	analytics *MockAnalyticsRepository
	bus       *MockEventPublisher
}

func newTestRepos() *testRepos {
	r := &testRepos{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		accounts:  new(MockAccountRepository),
		items:     new(MockItemRepository),
		inventory: new(MockInventoryRepository),
		history:   new(MockHistoryRepository),
		sabotages: new(MockSabotageRepository),
		claims:    new(MockGridClaimRepository),
		analytics: new(MockAnalyticsRepository),
		bus:       new(MockEventPublisher),
	}
	r.uow.SetRepositories(MockRepositories{
		Accounts:  r.accounts,
		Items:     r.items,
		Inventory: r.inventory,
		History:   r.history,
		Sabotages: r.sabotages,
		Claims:    r.claims,
		Analytics: r.analytics,
		Bus:       r.bus,
	})
	r.factory.On("Create").Return(r.uow)
	r.uow.On("Begin", mock.Anything).Return(nil)
	r.uow.On("Rollback").Return(nil)
	r.bus.On("Publish", mock.Anything).Return()
	return r
}

func (r *testRepos) expectCommit() {
	r.uow.On("Commit").Return(nil)
}

func (r *testRepos) assertAll(t *testing.T) {
	r.factory.AssertExpectations(t)
	r.uow.AssertExpectations(t)
	r.accounts.AssertExpectations(t)
	r.items.AssertExpectations(t)
	r.inventory.AssertExpectations(t)
	r.history.AssertExpectations(t)
	r.sabotages.AssertExpectations(t)
	r.claims.AssertExpectations(t)
}

func pointDrain() *models.ItemDefinition {
	return &models.ItemDefinition{
		ID:       "point_drain",
		Name:     "Point Drain",
		Category: models.CategoryAgainst,
		Cost:     10,
		MaxUses:  2,
		IsActive: true,
		Effect:   &models.AgainstEffect{PointsDeducted: 15},
	}
}

func hintItem() *models.ItemDefinition {
	return &models.ItemDefinition{
		ID:       "hint",
		Name:     "Hint",
		Category: models.CategoryFor,
		Cost:     10,
		MaxUses:  3,
		IsActive: true,
	}
}

func TestLedgerService_DebitAndAct_Conservation(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	repos.expectCommit()
	accountID := uuid.New()

	repos.accounts.On("ApplyDelta", ctx, accountID, int64(20), int64(60)).
		Return(&models.BalanceChange{AccountID: accountID, Before: 100, After: 140}, nil)
	repos.history.On("Record", ctx, mock.MatchedBy(func(e *models.HistoryEntry) bool {
		return e.AccountID == accountID &&
			e.Kind == models.HistoryKindGamePlay &&
			*e.Game == models.GameDie &&
			e.AmountSpent == 20 &&
			e.AmountWon == 60 &&
			e.BalanceBefore == 100 &&
			e.BalanceAfter == 140 &&
			e.BalanceAfter == e.BalanceBefore-e.AmountSpent+e.AmountWon
	})).Return(nil)

	ledger := NewLedgerService(repos.factory)
	result, err := ledger.DebitAndAct(ctx, accountID, 20, Action{
		Game:     models.GameDie,
		Outcome:  models.OutcomeBigWin,
		Winnings: 60,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(140), result.NewBalance)
	assert.Equal(t, models.OutcomeBigWin, result.Outcome)
	repos.assertAll(t)
	repos.bus.AssertNumberOfCalls(t, "Publish", 1)
}

func TestLedgerService_DebitAndAct_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	accountID := uuid.New()

	repos.accounts.On("ApplyDelta", ctx, accountID, int64(20), int64(0)).Return(nil, ErrInsufficientFunds)

	ledger := NewLedgerService(repos.factory)
	_, err := ledger.DebitAndAct(ctx, accountID, 20, Action{Game: models.GameDie, Outcome: models.OutcomeLose})

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	repos.uow.AssertNotCalled(t, "Commit")
	repos.history.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestLedgerService_DebitAndAct_WithinFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	accountID := uuid.New()

	repos.accounts.On("ApplyDelta", ctx, accountID, int64(20), int64(0)).
		Return(&models.BalanceChange{AccountID: accountID, Before: 100, After: 80}, nil)
	repos.history.On("Record", ctx, mock.Anything).Return(nil)

	ledger := NewLedgerService(repos.factory)
	_, err := ledger.DebitAndAct(ctx, accountID, 20, Action{
		Game:    models.GameGrid,
		Outcome: models.OutcomePowerup,
		Within: func(ctx context.Context, uow UnitOfWork, entry *models.HistoryEntry) error {
			return errors.New("claim insert failed")
		},
	})

	assert.EqualError(t, err, "claim insert failed")
	repos.uow.AssertNotCalled(t, "Commit")
}

func TestLedgerService_DebitAndAct_RejectsNegativeAmounts(t *testing.T) {
	repos := newTestRepos()
	ledger := NewLedgerService(repos.factory)

	_, err := ledger.DebitAndAct(context.Background(), uuid.New(), -1, Action{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	repos.factory.AssertNotCalled(t, "Create")
}

func TestLedgerService_ConsumeItem(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("consumes one use and charges the cost", func(t *testing.T) {
		repos := newTestRepos()
		repos.expectCommit()
		repos.items.On("GetByID", ctx, "hint").Return(hintItem(), nil)
		repos.inventory.On("Decrement", ctx, accountID, "hint").
			Return(&models.InventoryEntry{AccountID: accountID, ItemID: "hint", RemainingUses: 2}, nil)
		repos.accounts.On("ApplyDelta", ctx, accountID, int64(10), int64(0)).
			Return(&models.BalanceChange{AccountID: accountID, Before: 50, After: 40}, nil)
		repos.history.On("Record", ctx, mock.MatchedBy(func(e *models.HistoryEntry) bool {
			return e.Kind == models.HistoryKindItemUse && *e.ItemID == "hint" && e.Outcome == models.OutcomeUsed
		})).Return(nil)

		result, err := NewLedgerService(repos.factory).ConsumeItem(ctx, accountID, "hint", ConsumeOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, result.RemainingUses)
		assert.Equal(t, int64(40), result.NewBalance)
		repos.assertAll(t)
	})

	t.Run("no uses remaining", func(t *testing.T) {
		repos := newTestRepos()
		repos.items.On("GetByID", ctx, "hint").Return(hintItem(), nil)
		repos.inventory.On("Decrement", ctx, accountID, "hint").Return(nil, ErrNoUsesRemaining)

		_, err := NewLedgerService(repos.factory).ConsumeItem(ctx, accountID, "hint", ConsumeOptions{})
		assert.ErrorIs(t, err, ErrNoUsesRemaining)
		repos.accounts.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repos.uow.AssertNotCalled(t, "Commit")
	})

	t.Run("unknown item", func(t *testing.T) {
		repos := newTestRepos()
		repos.items.On("GetByID", ctx, "nope").Return(nil, nil)

		_, err := NewLedgerService(repos.factory).ConsumeItem(ctx, accountID, "nope", ConsumeOptions{})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestLedgerService_GrantItem(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("creates or increments the entry", func(t *testing.T) {
		repos := newTestRepos()
		repos.expectCommit()
		repos.items.On("GetByID", ctx, "hint").Return(hintItem(), nil)
		repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Balance: 70}, nil)
		repos.inventory.On("Grant", ctx, accountID, "hint", 1).
			Return(&models.InventoryEntry{AccountID: accountID, ItemID: "hint", RemainingUses: 1}, nil)
		repos.history.On("Record", ctx, mock.MatchedBy(func(e *models.HistoryEntry) bool {
			return e.BalanceBefore == 70 && e.BalanceAfter == 70 && e.Outcome == models.OutcomePowerupClaimed
		})).Return(nil)

		var beforeRan bool
		entry, err := NewLedgerService(repos.factory).GrantItem(ctx, GrantRequest{
			AccountID: accountID,
			ItemID:    "hint",
			Uses:      1,
			Kind:      models.HistoryKindGamePlay,
			Game:      models.GameGridClaim,
			Outcome:   models.OutcomePowerupClaimed,
			Before: func(ctx context.Context, uow UnitOfWork) error {
				beforeRan = true
				return nil
			},
		})
		require.NoError(t, err)
		assert.True(t, beforeRan)
		assert.Equal(t, 1, entry.RemainingUses)
		repos.assertAll(t)
	})

	t.Run("category mismatch", func(t *testing.T) {
		repos := newTestRepos()
		repos.items.On("GetByID", ctx, "point_drain").Return(pointDrain(), nil)

		_, err := NewLedgerService(repos.factory).GrantItem(ctx, GrantRequest{
			AccountID:       accountID,
			ItemID:          "point_drain",
			Uses:            1,
			Kind:            models.HistoryKindAdminAction,
			RequireCategory: categoryPtr(models.CategoryFor),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
		repos.inventory.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("uses must be positive", func(t *testing.T) {
		repos := newTestRepos()
		_, err := NewLedgerService(repos.factory).GrantItem(ctx, GrantRequest{AccountID: accountID, ItemID: "hint", Kind: models.HistoryKindAdminAction})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestLedgerService_ExecuteSabotage(t *testing.T) {
	ctx := context.Background()
	attackerID := uuid.New()
	targetID := uuid.New()

	// clampedWrite updates the account it read, so every subtest gets fresh copies
	accounts := func() (*models.Account, *models.Account) {
		return &models.Account{ID: attackerID, Username: "attacker", Balance: 50, IsActive: true},
			&models.Account{ID: targetID, Username: "target", Balance: 30, Version: 4, IsActive: true}
	}

	t.Run("charges attacker then deducts from target", func(t *testing.T) {
		attacker, target := accounts()
		repos := newTestRepos()
		repos.expectCommit()
		repos.items.On("GetByID", ctx, "point_drain").Return(pointDrain(), nil)
		repos.accounts.On("GetByID", ctx, attacker.ID).Return(attacker, nil)
		repos.accounts.On("GetByID", ctx, target.ID).Return(target, nil)
		repos.accounts.On("ApplyDelta", ctx, attacker.ID, int64(10), int64(0)).
			Return(&models.BalanceChange{AccountID: attacker.ID, Before: 50, After: 40}, nil)
		repos.accounts.On("CompareAndSetBalance", ctx, target.ID, int64(4), int64(15)).
			Return(&models.BalanceChange{AccountID: target.ID, Before: 30, After: 15, Version: 5}, true, nil)
		repos.history.On("Record", ctx, mock.MatchedBy(func(e *models.HistoryEntry) bool {
			return e.Kind == models.HistoryKindSabotageSent && e.AccountID == attacker.ID && e.AmountSpent == 10
		})).Return(nil).Once()
		repos.history.On("Record", ctx, mock.MatchedBy(func(e *models.HistoryEntry) bool {
			return e.Kind == models.HistoryKindSabotageReceived && e.AccountID == target.ID && e.BalanceAfter == 15
		})).Return(nil).Once()
		repos.sabotages.On("Create", ctx, mock.MatchedBy(func(s *models.SabotageRecord) bool {
			return s.PointsDeducted == 15 && s.PointsSpent == 10 && !s.AdminTriggered
		})).Return(nil)

		result, err := NewLedgerService(repos.factory).ExecuteSabotage(ctx, attacker.ID, target.ID, "point_drain")
		require.NoError(t, err)
		assert.Equal(t, int64(40), result.AttackerNewBalance)
		assert.Equal(t, int64(15), result.TargetNewBalance)
		assert.Equal(t, int64(15), result.PointsDeducted)
		repos.uow.AssertNumberOfCalls(t, "Commit", 2)
		repos.assertAll(t)
	})

	t.Run("target failure after charge is reported as partial", func(t *testing.T) {
		attacker, target := accounts()
		repos := newTestRepos()
		repos.expectCommit()
		repos.items.On("GetByID", ctx, "point_drain").Return(pointDrain(), nil)
		repos.accounts.On("GetByID", ctx, attacker.ID).Return(attacker, nil)
		repos.accounts.On("GetByID", ctx, target.ID).Return(target, nil)
		repos.accounts.On("ApplyDelta", ctx, attacker.ID, int64(10), int64(0)).
			Return(&models.BalanceChange{AccountID: attacker.ID, Before: 50, After: 40}, nil)
		repos.accounts.On("CompareAndSetBalance", ctx, target.ID, int64(4), int64(15)).
			Return(nil, false, errors.New("connection reset"))
		repos.history.On("Record", ctx, mock.Anything).Return(nil)

		_, err := NewLedgerService(repos.factory).ExecuteSabotage(ctx, attacker.ID, target.ID, "point_drain")
		require.Error(t, err)

		var partial *PartialSabotageError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, int64(40), partial.AttackerNewBalance)
		assert.Equal(t, attacker.ID, partial.AttackerID)
		assert.Equal(t, target.ID, partial.TargetID)
		assert.Equal(t, KindPartialSabotage, KindOf(err))
		repos.uow.AssertNumberOfCalls(t, "Commit", 1)
		repos.sabotages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cannot target yourself", func(t *testing.T) {
		repos := newTestRepos()
		_, err := NewLedgerService(repos.factory).ExecuteSabotage(ctx, attackerID, attackerID, "point_drain")
		assert.ErrorIs(t, err, ErrInvalidInput)
		repos.factory.AssertNotCalled(t, "Create")
	})

	t.Run("admin-only items are denied", func(t *testing.T) {
		repos := newTestRepos()
		item := pointDrain()
		item.AdminOnly = true
		repos.items.On("GetByID", ctx, "point_drain").Return(item, nil)

		_, err := NewLedgerService(repos.factory).ExecuteSabotage(ctx, attackerID, targetID, "point_drain")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("FOR items cannot sabotage", func(t *testing.T) {
		repos := newTestRepos()
		repos.items.On("GetByID", ctx, "hint").Return(hintItem(), nil)

		_, err := NewLedgerService(repos.factory).ExecuteSabotage(ctx, attackerID, targetID, "hint")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("inactive or admin targets are rejected", func(t *testing.T) {
		for name, mutate := range map[string]func(*models.Account){
			"inactive": func(a *models.Account) { a.IsActive = false },
			"admin":    func(a *models.Account) { a.IsAdmin = true },
		} {
			t.Run(name, func(t *testing.T) {
				attacker, target := accounts()
				mutate(target)
				repos := newTestRepos()
				repos.items.On("GetByID", ctx, "point_drain").Return(pointDrain(), nil)
				repos.accounts.On("GetByID", ctx, attacker.ID).Return(attacker, nil)
				repos.accounts.On("GetByID", ctx, target.ID).Return(target, nil)

				_, err := NewLedgerService(repos.factory).ExecuteSabotage(ctx, attacker.ID, target.ID, "point_drain")
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Equal(t, KindInvalidInput, KindOf(err))
				repos.accounts.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				repos.uow.AssertNotCalled(t, "Commit")
			})
		}
	})

	t.Run("insufficient attacker funds leave target untouched", func(t *testing.T) {
		attacker, target := accounts()
		repos := newTestRepos()
		repos.items.On("GetByID", ctx, "point_drain").Return(pointDrain(), nil)
		repos.accounts.On("GetByID", ctx, attacker.ID).Return(attacker, nil)
		repos.accounts.On("GetByID", ctx, target.ID).Return(target, nil)
		repos.accounts.On("ApplyDelta", ctx, attacker.ID, int64(10), int64(0)).Return(nil, ErrInsufficientFunds)

		_, err := NewLedgerService(repos.factory).ExecuteSabotage(ctx, attacker.ID, target.ID, "point_drain")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NotEqual(t, KindPartialSabotage, KindOf(err))
		repos.accounts.AssertNotCalled(t, "CompareAndSetBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLedgerService_AdjustBalance(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	accountID := uuid.New()

	t.Run("subtract clamps at zero", func(t *testing.T) {
		repos := newTestRepos()
		repos.expectCommit()
		repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Username: "p", Balance: 30, Version: 1}, nil)
		repos.accounts.On("CompareAndSetBalance", ctx, accountID, int64(1), int64(0)).
			Return(&models.BalanceChange{AccountID: accountID, Before: 30, After: 0, Version: 2}, true, nil)
		repos.history.On("Record", ctx, mock.MatchedBy(func(e *models.HistoryEntry) bool {
			return e.Kind == models.HistoryKindAdminAction &&
				e.AmountSpent == 30 &&
				e.Outcome == models.OutcomePointsDeducted &&
				*e.ActorID == adminID &&
				e.Details["reason"] == "cheating"
		})).Return(nil)

		result, err := NewLedgerService(repos.factory).AdjustBalance(ctx, accountID, 100, models.AdjustSubtract, adminID, "cheating")
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.NewBalance)
		assert.Equal(t, int64(-30), result.Change)
		repos.assertAll(t)
	})

	t.Run("retries on version conflict", func(t *testing.T) {
		repos := newTestRepos()
		repos.expectCommit()
		repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Balance: 30, Version: 1}, nil).Once()
		repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Balance: 45, Version: 2}, nil).Once()
		repos.accounts.On("CompareAndSetBalance", ctx, accountID, int64(1), int64(40)).Return(nil, false, nil).Once()
		repos.accounts.On("CompareAndSetBalance", ctx, accountID, int64(2), int64(55)).
			Return(&models.BalanceChange{AccountID: accountID, Before: 45, After: 55, Version: 3}, true, nil).Once()
		repos.history.On("Record", ctx, mock.Anything).Return(nil)

		result, err := NewLedgerService(repos.factory).AdjustBalance(ctx, accountID, 10, models.AdjustAdd, adminID, "")
		require.NoError(t, err)
		assert.Equal(t, int64(45), result.OldBalance)
		assert.Equal(t, int64(55), result.NewBalance)
		repos.assertAll(t)
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		repos := newTestRepos()
		repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Balance: 30, Version: 1}, nil)
		repos.accounts.On("CompareAndSetBalance", ctx, accountID, int64(1), int64(40)).Return(nil, false, nil)

		_, err := NewLedgerService(repos.factory).AdjustBalance(ctx, accountID, 10, models.AdjustAdd, adminID, "")
		require.Error(t, err)
		repos.accounts.AssertNumberOfCalls(t, "CompareAndSetBalance", maxCASAttempts)
		repos.uow.AssertNotCalled(t, "Commit")
	})

	t.Run("add that would overflow is invalid input", func(t *testing.T) {
		repos := newTestRepos()
		repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Balance: 10, Version: 1}, nil)

		_, err := NewLedgerService(repos.factory).AdjustBalance(ctx, accountID, math.MaxInt64, models.AdjustAdd, adminID, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, KindInvalidInput, KindOf(err))
		repos.accounts.AssertNotCalled(t, "CompareAndSetBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repos.uow.AssertNotCalled(t, "Commit")
	})

	t.Run("invalid direction", func(t *testing.T) {
		repos := newTestRepos()
		_, err := NewLedgerService(repos.factory).AdjustBalance(ctx, accountID, 10, "double", adminID, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestLedgerService_ForceTrigger_TargetCannotCoverCost(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	adminID := uuid.New()
	targetID := uuid.New()

	item := pointDrain()
	item.ID = "admin_strike"
	item.AdminOnly = true
	item.Cost = 25
	repos.items.On("GetByID", ctx, "admin_strike").Return(item, nil)
	repos.accounts.On("GetByID", ctx, adminID).Return(&models.Account{ID: adminID, Username: "root", IsAdmin: true}, nil)
	repos.accounts.On("GetByID", ctx, targetID).Return(&models.Account{ID: targetID, Balance: 10}, nil)

	_, err := NewLedgerService(repos.factory).ForceTrigger(ctx, adminID, targetID, "admin_strike")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	repos.accounts.AssertNotCalled(t, "CompareAndSetBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_SetActive(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	actorID := uuid.New()
	details := map[string]any{"admin_username": "root"}

	t.Run("status change and audit commit together", func(t *testing.T) {
		repos := newTestRepos()
		repos.expectCommit()

		repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Balance: 40, IsActive: true}, nil)
		repos.accounts.On("SetActive", ctx, accountID, false).Return(nil)
		repos.history.On("Record", ctx, mock.MatchedBy(func(e *models.HistoryEntry) bool {
			return e.Kind == models.HistoryKindAdminAction &&
				e.Outcome == models.OutcomeDeactivated &&
				e.AdminTriggered &&
				*e.ActorID == actorID &&
				e.BalanceBefore == 40 && e.BalanceAfter == 40
		})).Return(nil)

		err := NewLedgerService(repos.factory).SetActive(ctx, accountID, actorID, false, details)
		require.NoError(t, err)
		repos.assertAll(t)
		repos.uow.AssertNumberOfCalls(t, "Commit", 1)
		repos.bus.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("failed audit insert leaves the flag uncommitted", func(t *testing.T) {
		repos := newTestRepos()

		repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Balance: 40, IsActive: true}, nil)
		repos.accounts.On("SetActive", ctx, accountID, false).Return(nil)
		repos.history.On("Record", ctx, mock.Anything).Return(errors.New("history insert failed"))

		err := NewLedgerService(repos.factory).SetActive(ctx, accountID, actorID, false, details)
		require.Error(t, err)
		assert.Equal(t, KindInternal, KindOf(err))
		repos.uow.AssertNotCalled(t, "Commit")
		repos.uow.AssertCalled(t, "Rollback")
	})

	t.Run("unknown account", func(t *testing.T) {
		repos := newTestRepos()

		repos.accounts.On("GetByID", ctx, accountID).Return(nil, nil)

		err := NewLedgerService(repos.factory).SetActive(ctx, accountID, actorID, true, details)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		repos.accounts.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
		repos.uow.AssertNotCalled(t, "Commit")
	})
}

func TestLedgerService_RecordAudit(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	repos.expectCommit()
	accountID := uuid.New()

	repos.accounts.On("GetByID", ctx, accountID).Return(&models.Account{ID: accountID, Balance: 77}, nil)
	repos.history.On("Record", ctx, mock.MatchedBy(func(e *models.HistoryEntry) bool {
		return e.BalanceBefore == 77 && e.BalanceAfter == 77 && e.Kind == models.HistoryKindTimerControl
	})).Return(nil)

	err := NewLedgerService(repos.factory).RecordAudit(ctx, &models.HistoryEntry{
		AccountID: accountID,
		Kind:      models.HistoryKindTimerControl,
		Outcome:   models.OutcomeTimerExtended,
	})
	require.NoError(t, err)
	repos.bus.AssertNotCalled(t, "Publish", mock.Anything)
}
