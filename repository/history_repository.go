package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pointsgame/database"
	"pointsgame/models"
)

const historyColumns = `h.id, h.account_id, a.username, h.actor_id, h.kind, h.game, h.item_id, h.amount_spent, h.amount_won,
	h.balance_before, h.balance_after, h.outcome, h.admin_triggered, h.details, h.created_at`

// HistoryRepository implements the HistoryRepository interface
type HistoryRepository struct {
	q queryable
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{q: db.Pool}
}

// newHistoryRepositoryWithTx creates a new history repository with a transaction
func newHistoryRepositoryWithTx(tx queryable) *HistoryRepository {
	return &HistoryRepository{q: tx}
}

// Record appends a history entry
func (r *HistoryRepository) Record(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}

	var game *string
	if entry.Game != nil {
		g := string(*entry.Game)
		game = &g
	}

	query := `
		INSERT INTO history_entries (
			account_id, actor_id, kind, game, item_id, amount_spent, amount_won,
			balance_before, balance_after, outcome, admin_triggered, details
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.AccountID,
		entry.ActorID,
		string(entry.Kind),
		game,
		entry.ItemID,
		entry.AmountSpent,
		entry.AmountWon,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.Outcome,
		entry.AdminTriggered,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s history for account %s: %w", entry.Kind, entry.AccountID, err)
	}
	return nil
}

// ListByAccount returns the newest entries of one account, optionally narrowed to kinds
func (r *HistoryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, kinds []models.HistoryKind, limit int) ([]*models.HistoryEntry, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM history_entries h
		JOIN accounts a ON a.id = h.account_id
		WHERE h.account_id = $1
		  AND ($2::text[] IS NULL OR h.kind = ANY($2))
		ORDER BY h.created_at DESC, h.id DESC
		LIMIT $3
	`

	return r.list(ctx, query, accountID, kindStrings(kinds), limit)
}

// Feed returns one page of entries across accounts, newest first, and the number of matching entries
func (r *HistoryRepository) Feed(ctx context.Context, query models.FeedQuery, kinds []models.HistoryKind) ([]*models.HistoryEntry, int, error) {
	kindArgs := kindStrings(kinds)

	countQuery := `
		SELECT COUNT(*)
		FROM history_entries h
		WHERE ($1::text[] IS NULL OR h.kind = ANY($1))
		  AND ($2::uuid IS NULL OR h.account_id = $2)
	`
	var total int
	if err := r.q.QueryRow(ctx, countQuery, kindArgs, query.AccountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activity: %w", err)
	}

	pageQuery := `
		SELECT ` + historyColumns + `
		FROM history_entries h
		JOIN accounts a ON a.id = h.account_id
		WHERE ($1::text[] IS NULL OR h.kind = ANY($1))
		  AND ($2::uuid IS NULL OR h.account_id = $2)
		ORDER BY h.created_at DESC, h.id DESC
		LIMIT $3 OFFSET $4
	`
	offset := (query.Page - 1) * query.Limit
	entries, err := r.list(ctx, pageQuery, kindArgs, query.AccountID, query.Limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *HistoryRepository) list(ctx context.Context, query string, args ...any) ([]*models.HistoryEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []*models.HistoryEntry{}
	for rows.Next() {
		var (
			entry models.HistoryEntry
			kind  string
			game  *string
		)
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Username,
			&entry.ActorID,
			&kind,
			&game,
			&entry.ItemID,
			&entry.AmountSpent,
			&entry.AmountWon,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.Outcome,
			&entry.AdminTriggered,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Kind = models.HistoryKind(kind)
		if game != nil {
			g := models.Game(*game)
			entry.Game = &g
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// kindStrings converts kinds for a text[] parameter, nil meaning no filter
func kindStrings(kinds []models.HistoryKind) []string {
	if kinds == nil {
		return nil
	}
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
