package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pointsgame/database"
	"pointsgame/models"
	"pointsgame/service"
)

// InventoryRepository implements the InventoryRepository interface
type InventoryRepository struct {
	q queryable
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{q: db.Pool}
}

// newInventoryRepositoryWithTx creates a new inventory repository with a transaction
func newInventoryRepositoryWithTx(tx queryable) *InventoryRepository {
	return &InventoryRepository{q: tx}
}

// Decrement consumes one use of an item, failing if none remain
func (r *InventoryRepository) Decrement(ctx context.Context, accountID uuid.UUID, itemID string) (*models.InventoryEntry, error) {
	query := `
		UPDATE inventory
		SET remaining_uses = remaining_uses - 1, updated_at = NOW()
		WHERE account_id = $1 AND item_id = $2 AND remaining_uses > 0
		RETURNING account_id, item_id, remaining_uses, updated_at
	`

	var entry models.InventoryEntry
	err := r.q.QueryRow(ctx, query, accountID, itemID).Scan(
		&entry.AccountID,
		&entry.ItemID,
		&entry.RemainingUses,
		&entry.UpdatedAt,
	)
	if err == nil {
		return &entry, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to consume item %s: %w", itemID, err)
	}

	var owned bool
	err = r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory WHERE account_id = $1 AND item_id = $2)`, accountID, itemID).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("failed to check inventory: %w", err)
	}
	if !owned {
		return nil, service.ErrItemNotOwned
	}
	return nil, service.ErrNoUsesRemaining
}

// Grant adds uses to an entry, creating it when missing
func (r *InventoryRepository) Grant(ctx context.Context, accountID uuid.UUID, itemID string, uses int) (*models.InventoryEntry, error) {
	if uses < 1 {
		return nil, fmt.Errorf("uses must be at least 1")
	}

	query := `
		INSERT INTO inventory (account_id, item_id, remaining_uses)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, item_id)
		DO UPDATE SET remaining_uses = inventory.remaining_uses + EXCLUDED.remaining_uses, updated_at = NOW()
		RETURNING account_id, item_id, remaining_uses, updated_at
	`

	var entry models.InventoryEntry
	err := r.q.QueryRow(ctx, query, accountID, itemID, uses).Scan(
		&entry.AccountID,
		&entry.ItemID,
		&entry.RemainingUses,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to grant item %s: %w", itemID, err)
	}
	return &entry, nil
}

// Replace resets the account's inventory to one entry per item at its max uses
func (r *InventoryRepository) Replace(ctx context.Context, accountID uuid.UUID, items []*models.ItemDefinition) ([]*models.InventoryEntry, error) {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory WHERE account_id = $1`, accountID); err != nil {
		return nil, fmt.Errorf("failed to clear inventory: %w", err)
	}

	if len(items) == 0 {
		return []*models.InventoryEntry{}, nil
	}

	ids := make([]string, len(items))
	uses := make([]int32, len(items))
	for i, item := range items {
		ids[i] = item.ID
		uses[i] = int32(item.MaxUses)
	}

	query := `
		INSERT INTO inventory (account_id, item_id, remaining_uses)
		SELECT $1, t.item_id, t.uses
		FROM UNNEST($2::text[], $3::int[]) AS t(item_id, uses)
	`
	if _, err := r.q.Exec(ctx, query, accountID, ids, uses); err != nil {
		return nil, fmt.Errorf("failed to seed inventory: %w", err)
	}

	return r.ListByAccount(ctx, accountID)
}

// ListByAccount returns every inventory entry of an account
func (r *InventoryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.InventoryEntry, error) {
	query := `
		SELECT account_id, item_id, remaining_uses, updated_at
		FROM inventory
		WHERE account_id = $1
		ORDER BY item_id
	`

	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	entries := []*models.InventoryEntry{}
	for rows.Next() {
		var entry models.InventoryEntry
		if err := rows.Scan(&entry.AccountID, &entry.ItemID, &entry.RemainingUses, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}
	return entries, nil
}
