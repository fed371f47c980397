package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"pointsgame/database"
	"pointsgame/models"
	"pointsgame/service"
)

const itemColumns = `id, name, description, category, cost, max_uses, duration_seconds, admin_only, is_active,
	points_deducted, timer_reduction_seconds, instructions`

// ItemRepository implements the ItemRepository interface
type ItemRepository struct {
	q queryable
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{q: db.Pool}
}

// newItemRepositoryWithTx creates a new item repository with a transaction
func newItemRepositoryWithTx(tx queryable) *ItemRepository {
	return &ItemRepository{q: tx}
}

func scanItem(row rowScanner) (*models.ItemDefinition, error) {
	var (
		item           models.ItemDefinition
		pointsDeducted int64
		timerReduction int
	)
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Category,
		&item.Cost,
		&item.MaxUses,
		&item.DurationSeconds,
		&item.AdminOnly,
		&item.IsActive,
		&pointsDeducted,
		&timerReduction,
		&item.Instructions,
	)
	if err != nil {
		return nil, err
	}

	if item.Category == models.CategoryAgainst {
		item.Effect = &models.AgainstEffect{
			PointsDeducted:        pointsDeducted,
			TimerReductionSeconds: timerReduction,
		}
	}
	return &item, nil
}

// GetByID retrieves an item definition by its ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.ItemDefinition, error) {
	query := `SELECT ` + itemColumns + ` FROM item_definitions WHERE id = $1`

	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return item, nil
}

// List returns item definitions matching the filter
func (r *ItemRepository) List(ctx context.Context, filter service.ItemFilter) ([]*models.ItemDefinition, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.AdminOnly != nil {
		args = append(args, *filter.AdminOnly)
		conditions = append(conditions, fmt.Sprintf("admin_only = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	query := `SELECT ` + itemColumns + ` FROM item_definitions`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY category DESC, cost, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*models.ItemDefinition{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}
