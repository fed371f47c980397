package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointsgame/config"
	"pointsgame/events"
	"pointsgame/models"
	"pointsgame/ratelimit"
	"pointsgame/repository/testutil"
	"pointsgame/service"
)

// fixedSource always draws the same index and the same float
type fixedSource struct {
	index int
	float float64
}

func (s fixedSource) Intn(n int) int {
	return min(s.index, n-1)
}

func (s fixedSource) Float64() float64 {
	return s.float
}

type ledgerFixture struct {
	db      *testutil.TestDatabase
	ledger  service.LedgerService
	games   func(src fixedSource) service.GameService
	factory service.UnitOfWorkFactory
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ledger := service.NewLedgerService(factory)

	limiter := ratelimit.New(ratelimit.WithSweepInterval(0))
	t.Cleanup(limiter.Close)

	return &ledgerFixture{
		db:      testDB,
		ledger:  ledger,
		factory: factory,
		games: func(src fixedSource) service.GameService {
			return service.NewGameService(factory, ledger, limiter, src)
		},
	}
}

func (f *ledgerFixture) account(t *testing.T, username string, balance int64) *models.Account {
	return testutil.SeedAccount(t, f.db.DB, testutil.CreateTestAccount(username, balance))
}

func TestLedger_DieScenario(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	player := f.account(t, "roller", 100)

	// Index 5 is face 6
	play, err := f.games(fixedSource{index: 5}).PlayDie(ctx, player.ID, 20)
	require.NoError(t, err)

	assert.Equal(t, 6, play.Face)
	assert.Equal(t, int64(60), play.Payout)
	assert.Equal(t, models.OutcomeBigWin, play.Outcome)
	assert.Equal(t, int64(140), play.NewBalance)
	assert.Equal(t, int64(140), testutil.Balance(t, f.db.DB, player.ID))
	assert.Equal(t, 1, testutil.CountRows(t, f.db.DB, "history_entries", "account_id = $1 AND kind = 'game_play'", player.ID))
}

func TestLedger_ReelJackpot(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	player := f.account(t, "spinner", 100)

	play, err := f.games(fixedSource{index: 5}).PlayReel(ctx, player.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"💎", "💎", "💎"}, play.Symbols)
	assert.Equal(t, int64(500), play.Payout)
	assert.Equal(t, models.OutcomeWin, play.Outcome)
	assert.Equal(t, int64(590), testutil.Balance(t, f.db.DB, player.ID))
}

func TestLedger_InsufficientFundsLeavesStateUnchanged(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	player := f.account(t, "broke", 5)

	_, err := f.games(fixedSource{index: 5}).PlayDie(ctx, player.ID, 20)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	assert.Equal(t, service.KindInsufficientFunds, service.KindOf(err))

	assert.Equal(t, int64(5), testutil.Balance(t, f.db.DB, player.ID))
	assert.Equal(t, 0, testutil.CountRows(t, f.db.DB, "history_entries", "account_id = $1", player.ID))
}

func TestLedger_SabotageScenario(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	attacker := f.account(t, "attacker", 50)
	target := f.account(t, "target", 30)

	result, err := f.ledger.ExecuteSabotage(ctx, attacker.ID, target.ID, "point_drain")
	require.NoError(t, err)

	assert.Equal(t, int64(40), result.AttackerNewBalance)
	assert.Equal(t, int64(15), result.TargetNewBalance)
	assert.Equal(t, int64(15), result.PointsDeducted)

	assert.Equal(t, int64(40), testutil.Balance(t, f.db.DB, attacker.ID))
	assert.Equal(t, int64(15), testutil.Balance(t, f.db.DB, target.ID))
	assert.Equal(t, 1, testutil.CountRows(t, f.db.DB, "history_entries", "account_id = $1 AND kind = 'sabotage_sent'", attacker.ID))
	assert.Equal(t, 1, testutil.CountRows(t, f.db.DB, "history_entries", "account_id = $1 AND kind = 'sabotage_received'", target.ID))
	assert.Equal(t, 1, testutil.CountRows(t, f.db.DB, "sabotages", "target_id = $1", target.ID))
}

func TestLedger_SabotageClampsTargetAtZero(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	attacker := f.account(t, "attacker", 50)
	target := f.account(t, "poor", 4)

	result, err := f.ledger.ExecuteSabotage(ctx, attacker.ID, target.ID, "point_drain")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TargetNewBalance)
	assert.Equal(t, int64(4), result.PointsDeducted)
	assert.Equal(t, int64(4), result.Record.PointsDeducted)
}

func TestLedger_GridClaimScenario(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	player := f.account(t, "scratcher", 100)
	_, err := f.db.DB.Exec(ctx, `DELETE FROM inventory WHERE account_id = $1 AND item_id = 'hint'`, player.ID)
	require.NoError(t, err)

	games := f.games(fixedSource{float: 0.1})

	play, err := games.PlayGrid(ctx, player.ID, 4)
	require.NoError(t, err)
	require.Equal(t, models.OutcomePowerup, play.Outcome)
	require.NotNil(t, play.ClaimID)
	assert.Equal(t, int64(80), play.NewBalance)
	assert.NotEmpty(t, play.OfferedItems)

	entry, err := games.ClaimGridItem(ctx, player.ID, *play.ClaimID, "hint")
	require.NoError(t, err)
	assert.Equal(t, 1, entry.RemainingUses)

	// A claim can only be redeemed once
	_, err = games.ClaimGridItem(ctx, player.ID, *play.ClaimID, "hint")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	play, err = games.PlayGrid(ctx, player.ID, 0)
	require.NoError(t, err)
	entry, err = games.ClaimGridItem(ctx, player.ID, *play.ClaimID, "hint")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.RemainingUses)

	// Claims cannot redeem AGAINST items
	play, err = games.PlayGrid(ctx, player.ID, 1)
	require.NoError(t, err)
	_, err = games.ClaimGridItem(ctx, player.ID, *play.ClaimID, "point_drain")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestLedger_ConcurrentConsumeOfLastUse(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	player := f.account(t, "racer", 100)
	testutil.SetRemainingUses(t, f.db.DB, player.ID, "hint", 1)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.ConsumeItem(ctx, player.ID, "hint", service.ConsumeOptions{})
		}(i)
	}
	wg.Wait()

	var successes, exhausted int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrNoUsesRemaining), errors.Is(err, service.ErrInsufficientFunds):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, exhausted)
	assert.Equal(t, int64(90), testutil.Balance(t, f.db.DB, player.ID))
}

func TestLedger_BalanceNeverNegative(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	admin := testutil.SeedAccount(t, f.db.DB, testutil.CreateTestAdmin("house"))
	player := f.account(t, "victim", 30)

	check := func() {
		assert.GreaterOrEqual(t, testutil.Balance(t, f.db.DB, player.ID), int64(0))
	}

	_, err := f.ledger.AdjustBalance(ctx, player.ID, 1000, models.AdjustSubtract, admin.ID, "reset")
	require.NoError(t, err)
	check()
	assert.Equal(t, int64(0), testutil.Balance(t, f.db.DB, player.ID))

	_, err = f.ledger.ForceTrigger(ctx, admin.ID, player.ID, "admin_penalty")
	require.NoError(t, err)
	check()

	_, err = f.ledger.ConsumeItem(ctx, player.ID, "hint", service.ConsumeOptions{})
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	check()

	_, err = f.ledger.AdjustBalance(ctx, player.ID, 25, models.AdjustAdd, admin.ID, "")
	require.NoError(t, err)
	_, err = f.games(fixedSource{}).PlayDie(ctx, player.ID, 25)
	require.NoError(t, err)
	check()
	assert.Equal(t, int64(0), testutil.Balance(t, f.db.DB, player.ID))

	// Inventory counters are untouched by the failed consume
	var uses int
	require.NoError(t, f.db.DB.QueryRow(ctx,
		`SELECT remaining_uses FROM inventory WHERE account_id = $1 AND item_id = 'hint'`, player.ID).Scan(&uses))
	assert.Equal(t, 3, uses)
}

func TestLedger_ForceTriggerRequiresAdminOnlyItem(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	admin := testutil.SeedAccount(t, f.db.DB, testutil.CreateTestAdmin("house"))
	player := f.account(t, "player", 80)

	_, err := f.ledger.ForceTrigger(ctx, admin.ID, player.ID, "point_drain")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	result, err := f.ledger.ForceTrigger(ctx, admin.ID, player.ID, "admin_penalty")
	require.NoError(t, err)
	assert.Equal(t, int64(30), result.TargetNewBalance)
	assert.Equal(t, int64(0), result.ActorBalance)
	assert.True(t, result.Record.AdminTriggered)
	assert.Equal(t, 1, testutil.CountRows(t, f.db.DB, "history_entries",
		"account_id = $1 AND kind = 'item_use' AND admin_triggered AND actor_id = $2", player.ID, admin.ID))
}

func TestLedger_ResetInventory(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	admin := testutil.SeedAccount(t, f.db.DB, testutil.CreateTestAdmin("house"))
	player := f.account(t, "player", 80)
	testutil.SetRemainingUses(t, f.db.DB, player.ID, "hint", 0)

	entries, err := f.ledger.ResetInventory(ctx, player.ID, admin.ID)
	require.NoError(t, err)
	for _, e := range entries {
		if e.ItemID == "hint" {
			assert.Equal(t, 3, e.RemainingUses)
		}
	}

	_, err = f.ledger.ResetInventory(ctx, uuid.New(), admin.ID)
	assert.ErrorIs(t, err, service.ErrAccountNotFound)
}
