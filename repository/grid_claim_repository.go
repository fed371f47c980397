package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pointsgame/database"
	"pointsgame/models"
)

const gridClaimColumns = `id, account_id, history_entry_id, offered_item_ids, claimed_item_id, created_at, expires_at, claimed_at`

// GridClaimRepository implements the GridClaimRepository interface
type GridClaimRepository struct {
	q queryable
}

// NewGridClaimRepository creates a new grid claim repository
func NewGridClaimRepository(db *database.DB) *GridClaimRepository {
	return &GridClaimRepository{q: db.Pool}
}

// newGridClaimRepositoryWithTx creates a new grid claim repository with a transaction
func newGridClaimRepositoryWithTx(tx queryable) *GridClaimRepository {
	return &GridClaimRepository{q: tx}
}

func scanGridClaim(row rowScanner) (*models.GridClaim, error) {
	var c models.GridClaim
	err := row.Scan(
		&c.ID,
		&c.AccountID,
		&c.HistoryEntryID,
		&c.OfferedItemIDs,
		&c.ClaimedItemID,
		&c.CreatedAt,
		&c.ExpiresAt,
		&c.ClaimedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create stores a new claim ticket
func (r *GridClaimRepository) Create(ctx context.Context, claim *models.GridClaim) error {
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}

	query := `
		INSERT INTO grid_claims (id, account_id, history_entry_id, offered_item_ids, created_at, expires_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), $6)
		RETURNING created_at
	`

	var createdAt *time.Time
	if !claim.CreatedAt.IsZero() {
		createdAt = &claim.CreatedAt
	}
	err := r.q.QueryRow(ctx, query,
		claim.ID,
		claim.AccountID,
		claim.HistoryEntryID,
		claim.OfferedItemIDs,
		createdAt,
		claim.ExpiresAt,
	).Scan(&claim.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create grid claim: %w", err)
	}
	return nil
}

// GetByID retrieves a claim by its ID
func (r *GridClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GridClaim, error) {
	query := `SELECT ` + gridClaimColumns + ` FROM grid_claims WHERE id = $1`

	claim, err := scanGridClaim(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grid claim %s: %w", id, err)
	}
	return claim, nil
}

// Redeem marks an open claim as used in a single conditional update
func (r *GridClaimRepository) Redeem(ctx context.Context, id, accountID uuid.UUID, itemID string, now time.Time) (*models.GridClaim, error) {
	query := `
		UPDATE grid_claims
		SET claimed_item_id = $3, claimed_at = $4
		WHERE id = $1
		  AND account_id = $2
		  AND claimed_at IS NULL
		  AND expires_at > $4
		  AND $3 = ANY(offered_item_ids)
		RETURNING ` + gridClaimColumns

	claim, err := scanGridClaim(r.q.QueryRow(ctx, query, id, accountID, itemID, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to redeem grid claim %s: %w", id, err)
	}
	return claim, nil
}

// DeleteExpired removes unclaimed tickets that expired before cutoff
func (r *GridClaimRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM grid_claims WHERE claimed_at IS NULL AND expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired grid claims: %w", err)
	}
	return result.RowsAffected(), nil
}
