package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pointsgame/database"
	"pointsgame/models"
)

// aggregateSelect sums one account's history. Grid claims are logged as game plays but are not games.
const aggregateSelect = `
	SELECT
		COALESCE(SUM(h.amount_spent) FILTER (WHERE h.kind IN ('item_use', 'game_play', 'sabotage_sent')), 0)::bigint AS total_spent,
		COALESCE(SUM(h.amount_won) FILTER (WHERE h.kind = 'game_play'), 0)::bigint AS total_won,
		COUNT(*) FILTER (WHERE h.kind = 'item_use') AS items_used,
		COUNT(*) FILTER (WHERE h.kind = 'game_play' AND h.game <> 'grid_claim') AS games_played
	FROM history_entries h
`

// AnalyticsRepository implements the AnalyticsRepository interface
type AnalyticsRepository struct {
	q queryable
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *database.DB) *AnalyticsRepository {
	return &AnalyticsRepository{q: db.Pool}
}

// newAnalyticsRepositoryWithTx creates a new analytics repository with a transaction
func newAnalyticsRepositoryWithTx(tx queryable) *AnalyticsRepository {
	return &AnalyticsRepository{q: tx}
}

// Leaderboard ranks active non-admin accounts by balance, oldest first on ties
func (r *AnalyticsRepository) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, int, error) {
	var total int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE is_active AND NOT is_admin`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leaderboard accounts: %w", err)
	}

	query := `
		SELECT a.id, a.username, a.balance, a.created_at,
			agg.total_spent, agg.total_won, agg.items_used, agg.games_played
		FROM accounts a
		CROSS JOIN LATERAL (` + aggregateSelect + ` WHERE h.account_id = a.id) agg
		WHERE a.is_active AND NOT a.is_admin
		ORDER BY a.balance DESC, a.seq ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		err := rows.Scan(
			&e.AccountID,
			&e.Username,
			&e.Balance,
			&e.JoinedAt,
			&e.TotalSpent,
			&e.TotalWon,
			&e.ItemsUsed,
			&e.GamesPlayed,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return entries, total, nil
}

// AccountAggregates sums the history of one account
func (r *AnalyticsRepository) AccountAggregates(ctx context.Context, accountID uuid.UUID) (*models.ActivityAggregates, error) {
	var agg models.ActivityAggregates
	err := r.q.QueryRow(ctx, aggregateSelect+` WHERE h.account_id = $1`, accountID).Scan(
		&agg.TotalSpent,
		&agg.TotalWon,
		&agg.ItemsUsed,
		&agg.GamesPlayed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate history for %s: %w", accountID, err)
	}
	return &agg, nil
}

// AccountSummaries returns every account with its aggregates in creation order
func (r *AnalyticsRepository) AccountSummaries(ctx context.Context) ([]*models.AccountSummary, error) {
	query := `
		SELECT a.id, a.username, a.email, a.balance, a.is_active, a.is_admin, a.created_at,
			agg.total_spent, agg.total_won, agg.items_used, agg.games_played
		FROM accounts a
		CROSS JOIN LATERAL (` + aggregateSelect + ` WHERE h.account_id = a.id) agg
		ORDER BY a.seq
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list account summaries: %w", err)
	}
	defer rows.Close()

	summaries := []*models.AccountSummary{}
	for rows.Next() {
		var s models.AccountSummary
		err := rows.Scan(
			&s.AccountID,
			&s.Username,
			&s.Email,
			&s.Balance,
			&s.IsActive,
			&s.IsAdmin,
			&s.CreatedAt,
			&s.TotalSpent,
			&s.TotalWon,
			&s.ItemsUsed,
			&s.GamesPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account summary: %w", err)
		}
		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account summaries: %w", err)
	}
	return summaries, nil
}

// SystemStats computes the admin dashboard aggregates
func (r *AnalyticsRepository) SystemStats(ctx context.Context, since time.Time, topSpenders int) (*models.SystemStats, error) {
	stats := &models.SystemStats{
		ItemUsage:   []*models.ItemUsage{},
		GamesByType: map[models.Game]int{},
		TopSpenders: []*models.Spender{},
	}

	accountsQuery := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active), COALESCE(SUM(balance), 0)::bigint,
			COUNT(*) FILTER (WHERE created_at > $1)
		FROM accounts
	`
	err := r.q.QueryRow(ctx, accountsQuery, since).Scan(
		&stats.TotalAccounts,
		&stats.ActiveAccounts,
		&stats.TotalBalance,
		&stats.RecentAccounts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	gamesQuery := `
		SELECT
			COUNT(*) FILTER (WHERE created_at > $1),
			COALESCE(SUM(amount_spent), 0)::bigint,
			COUNT(*) FILTER (WHERE outcome IN ('win', 'big_win', 'small_win')),
			COUNT(*) FILTER (WHERE outcome = 'lose'),
			COUNT(*)
		FROM history_entries
		WHERE kind = 'game_play' AND game <> 'grid_claim'
	`
	err = r.q.QueryRow(ctx, gamesQuery, since).Scan(
		&stats.RecentGames,
		&stats.TotalGameSpend,
		&stats.Outcomes.Wins,
		&stats.Outcomes.Losses,
		&stats.Outcomes.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate games: %w", err)
	}

	if err := r.gamesByType(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.itemUsage(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.topSpenders(ctx, stats, topSpenders); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *AnalyticsRepository) gamesByType(ctx context.Context, stats *models.SystemStats) error {
	rows, err := r.q.Query(ctx, `
		SELECT game, COUNT(*)
		FROM history_entries
		WHERE kind = 'game_play' AND game <> 'grid_claim'
		GROUP BY game
		ORDER BY game
	`)
	if err != nil {
		return fmt.Errorf("failed to count games by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			game  string
			count int
		)
		if err := rows.Scan(&game, &count); err != nil {
			return fmt.Errorf("failed to scan game count: %w", err)
		}
		stats.GamesByType[models.Game(game)] = count
	}
	return rows.Err()
}

func (r *AnalyticsRepository) itemUsage(ctx context.Context, stats *models.SystemStats) error {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.name, d.cost, COUNT(h.id)
		FROM item_definitions d
		LEFT JOIN history_entries h ON h.item_id = d.id AND h.kind = 'item_use'
		GROUP BY d.id, d.name, d.cost
		ORDER BY COUNT(h.id) DESC, d.id
	`)
	if err != nil {
		return fmt.Errorf("failed to count item usage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.ItemUsage
		if err := rows.Scan(&u.ItemID, &u.Name, &u.Cost, &u.TotalUses); err != nil {
			return fmt.Errorf("failed to scan item usage: %w", err)
		}
		stats.ItemUsage = append(stats.ItemUsage, &u)
	}
	return rows.Err()
}

func (r *AnalyticsRepository) topSpenders(ctx context.Context, stats *models.SystemStats, limit int) error {
	rows, err := r.q.Query(ctx, `
		SELECT a.id, a.username, SUM(h.amount_spent)::bigint AS spent
		FROM history_entries h
		JOIN accounts a ON a.id = h.account_id
		WHERE h.kind IN ('item_use', 'game_play', 'sabotage_sent')
		GROUP BY a.id, a.username
		HAVING SUM(h.amount_spent) > 0
		ORDER BY spent DESC, a.username
		LIMIT $1
	`, limit)
	if err != nil {
		return fmt.Errorf("failed to list top spenders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Spender
		if err := rows.Scan(&s.AccountID, &s.Username, &s.TotalSpent); err != nil {
			return fmt.Errorf("failed to scan spender: %w", err)
		}
		stats.TopSpenders = append(stats.TopSpenders, &s)
	}
	return rows.Err()
}
