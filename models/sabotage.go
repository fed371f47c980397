package models

import (
	"time"

	"github.com/google/uuid"
)

// SabotageRecord is the global log entry for an AGAINST item applied to a target
type SabotageRecord struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	AttackerID            uuid.UUID `db:"attacker_id" json:"attacker_id"`
	AttackerUsername      string    `db:"attacker_username" json:"attacker_username"`
	TargetID              uuid.UUID `db:"target_id" json:"target_id"`
	TargetUsername        string    `db:"target_username" json:"target_username"`
	ItemID                string    `db:"item_id" json:"item_id"`
	ItemName              string    `db:"item_name" json:"item_name"`
	PointsSpent           int64     `db:"points_spent" json:"points_spent"`
	PointsDeducted        int64     `db:"points_deducted" json:"points_deducted"`
	DurationSeconds       int       `db:"duration_seconds" json:"duration_seconds"`
	TimerReductionSeconds int       `db:"timer_reduction_seconds" json:"timer_reduction_seconds"`
	AdminTriggered        bool      `db:"admin_triggered" json:"admin_triggered"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}

// GridClaim proves that a powerup grid reveal happened and can be redeemed once
type GridClaim struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	AccountID      uuid.UUID  `db:"account_id" json:"-"`
	HistoryEntryID int64      `db:"history_entry_id" json:"-"`
	OfferedItemIDs []string   `db:"offered_item_ids" json:"offered_item_ids"`
	ClaimedItemID  *string    `db:"claimed_item_id" json:"claimed_item_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt      time.Time  `db:"expires_at" json:"expires_at"`
	ClaimedAt      *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
}

// Offers reports whether itemID is one of the offered items
func (c *GridClaim) Offers(itemID string) bool {
	for _, id := range c.OfferedItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
