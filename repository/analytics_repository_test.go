package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointsgame/models"
	"pointsgame/repository/testutil"
	"pointsgame/service"
)

func TestAnalyticsRepository_LeaderboardOrdering(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	repo := NewAnalyticsRepository(f.db.DB)

	first := f.account(t, "first", 100)
	second := f.account(t, "second", 100)
	rich := f.account(t, "rich", 300)
	testutil.SeedAccount(t, f.db.DB, testutil.CreateTestAdmin("house"))

	_, err := f.games(fixedSource{index: 0}).PlayDie(ctx, first.ID, 10)
	require.NoError(t, err)
	_, err = f.ledger.AdjustBalance(ctx, first.ID, 10, models.AdjustAdd, rich.ID, "refund")
	require.NoError(t, err)

	entries, total, err := repo.Leaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 3)

	assert.Equal(t, rich.ID, entries[0].AccountID)
	// Equal balances keep insertion order
	assert.Equal(t, first.ID, entries[1].AccountID)
	assert.Equal(t, second.ID, entries[2].AccountID)

	assert.Equal(t, int64(10), entries[1].TotalSpent)
	assert.Equal(t, 1, entries[1].GamesPlayed)
}

func TestAnalyticsRepository_AccountAggregates(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	repo := NewAnalyticsRepository(f.db.DB)

	player := f.account(t, "player", 200)
	target := f.account(t, "target", 200)

	_, err := f.games(fixedSource{index: 5}).PlayDie(ctx, player.ID, 20)
	require.NoError(t, err)
	_, err = f.ledger.ConsumeItem(ctx, player.ID, "hint", service.ConsumeOptions{})
	require.NoError(t, err)
	_, err = f.ledger.ExecuteSabotage(ctx, player.ID, target.ID, "point_drain")
	require.NoError(t, err)

	agg, err := repo.AccountAggregates(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20+10+10), agg.TotalSpent)
	assert.Equal(t, int64(60), agg.TotalWon)
	assert.Equal(t, 1, agg.ItemsUsed)
	assert.Equal(t, 1, agg.GamesPlayed)

	targetAgg, err := repo.AccountAggregates(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), targetAgg.TotalSpent)
}

func TestAnalyticsRepository_ReadsAreIdempotent(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	repo := NewAnalyticsRepository(f.db.DB)

	player := f.account(t, "player", 200)
	games := f.games(fixedSource{index: 3, float: 0.9})
	_, err := games.PlayReel(ctx, player.ID)
	require.NoError(t, err)
	_, err = games.PlayGrid(ctx, player.ID, 2)
	require.NoError(t, err)

	since := time.Now().Add(-time.Hour)

	board1, total1, err := repo.Leaderboard(ctx, 10)
	require.NoError(t, err)
	board2, total2, err := repo.Leaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, total1, total2)
	assert.Equal(t, board1, board2)

	stats1, err := repo.SystemStats(ctx, since, 5)
	require.NoError(t, err)
	stats2, err := repo.SystemStats(ctx, since, 5)
	require.NoError(t, err)
	assert.Equal(t, stats1, stats2)

	assert.Equal(t, 2, stats1.RecentGames)
	assert.Equal(t, 1, stats1.GamesByType[models.GameReel])
	assert.Equal(t, 1, stats1.GamesByType[models.GameGrid])
	assert.Equal(t, int64(30), stats1.TotalGameSpend)
	require.Len(t, stats1.TopSpenders, 1)
	assert.Equal(t, player.ID, stats1.TopSpenders[0].AccountID)
}

func TestHistoryRepository_FeedPagination(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	repo := NewHistoryRepository(f.db.DB)

	player := f.account(t, "player", 500)
	games := f.games(fixedSource{index: 0})
	for i := 0; i < 5; i++ {
		_, err := games.PlayDie(ctx, player.ID, 1)
		require.NoError(t, err)
	}

	page1, total, err := repo.Feed(ctx, models.FeedQuery{Page: 1, Limit: 2}, models.FeedKinds)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "player", page1[0].Username)
	assert.True(t, page1[0].ID > page1[1].ID)

	page3, _, err := repo.Feed(ctx, models.FeedQuery{Page: 3, Limit: 2}, models.FeedKinds)
	require.NoError(t, err)
	require.Len(t, page3, 1)

	own, err := repo.ListByAccount(ctx, player.ID, []models.HistoryKind{models.HistoryKindItemUse}, 10)
	require.NoError(t, err)
	assert.Empty(t, own)

	all, err := repo.ListByAccount(ctx, player.ID, nil, 10)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, map[string]any{"bet": float64(1), "face": float64(1), "multiplier": "0", "payout": float64(0)}, all[0].Details)
}
