package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pointsgame/database"
	"pointsgame/models"
)

// SabotageRepository implements the SabotageRepository interface
type SabotageRepository struct {
	q queryable
}

// NewSabotageRepository creates a new sabotage repository
func NewSabotageRepository(db *database.DB) *SabotageRepository {
	return &SabotageRepository{q: db.Pool}
}

// newSabotageRepositoryWithTx creates a new sabotage repository with a transaction
func newSabotageRepositoryWithTx(tx queryable) *SabotageRepository {
	return &SabotageRepository{q: tx}
}

// Create records a sabotage
func (r *SabotageRepository) Create(ctx context.Context, record *models.SabotageRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := `
		INSERT INTO sabotages (
			id, attacker_id, attacker_username, target_id, target_username, item_id, item_name,
			points_spent, points_deducted, duration_seconds, timer_reduction_seconds, admin_triggered
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.ID,
		record.AttackerID,
		record.AttackerUsername,
		record.TargetID,
		record.TargetUsername,
		record.ItemID,
		record.ItemName,
		record.PointsSpent,
		record.PointsDeducted,
		record.DurationSeconds,
		record.TimerReductionSeconds,
		record.AdminTriggered,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record sabotage on %s: %w", record.TargetID, err)
	}
	return nil
}

// ListForTarget returns the sabotages aimed at targetID after since, newest first
func (r *SabotageRepository) ListForTarget(ctx context.Context, targetID uuid.UUID, since *time.Time, limit int) ([]*models.SabotageRecord, error) {
	query := `
		SELECT id, attacker_id, attacker_username, target_id, target_username, item_id, item_name,
			points_spent, points_deducted, duration_seconds, timer_reduction_seconds, admin_triggered, created_at
		FROM sabotages
		WHERE target_id = $1
		  AND ($2::timestamptz IS NULL OR created_at > $2)
		ORDER BY created_at DESC, id
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, targetID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sabotages for %s: %w", targetID, err)
	}
	defer rows.Close()

	records := []*models.SabotageRecord{}
	for rows.Next() {
		var s models.SabotageRecord
		err := rows.Scan(
			&s.ID,
			&s.AttackerID,
			&s.AttackerUsername,
			&s.TargetID,
			&s.TargetUsername,
			&s.ItemID,
			&s.ItemName,
			&s.PointsSpent,
			&s.PointsDeducted,
			&s.DurationSeconds,
			&s.TimerReductionSeconds,
			&s.AdminTriggered,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sabotage: %w", err)
		}
		records = append(records, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sabotages: %w", err)
	}
	return records, nil
}
