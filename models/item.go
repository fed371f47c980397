package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemCategory tags an item definition as self-beneficial or offensive
type ItemCategory string

const (
	CategoryFor     ItemCategory = "FOR"
	CategoryAgainst ItemCategory = "AGAINST"
)

// Valid reports whether the category is one of the known values
func (c ItemCategory) Valid() bool {
	return c == CategoryFor || c == CategoryAgainst
}

// AgainstEffect holds the fields that only apply to AGAINST items
type AgainstEffect struct {
	PointsDeducted        int64 `json:"points_deducted"`
	TimerReductionSeconds int   `json:"timer_reduction_seconds"`
}

// ItemDefinition is a catalog entry for a limited-use effect.
// Effect is non-nil exactly when Category is CategoryAgainst.
type ItemDefinition struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Description     string         `db:"description" json:"description"`
	Category        ItemCategory   `db:"category" json:"category"`
	Cost            int64          `db:"cost" json:"cost"`
	MaxUses         int            `db:"max_uses" json:"max_uses"`
	DurationSeconds int            `db:"duration_seconds" json:"duration_seconds"`
	AdminOnly       bool           `db:"admin_only" json:"admin_only"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	Instructions    string         `db:"instructions" json:"instructions,omitempty"`
	Effect          *AgainstEffect `json:"effect,omitempty"`
}

// PointsDeducted returns the additional deduction applied to a target, zero for FOR items
func (d *ItemDefinition) PointsDeducted() int64 {
	if d.Effect == nil {
		return 0
	}
	return d.Effect.PointsDeducted
}

// TimerReduction returns the timer reduction in seconds, zero for FOR items
func (d *ItemDefinition) TimerReduction() int {
	if d.Effect == nil {
		return 0
	}
	return d.Effect.TimerReductionSeconds
}

// InventoryEntry is one account's remaining uses of one item
type InventoryEntry struct {
	AccountID     uuid.UUID `db:"account_id" json:"-"`
	ItemID        string    `db:"item_id" json:"item_id"`
	RemainingUses int       `db:"remaining_uses" json:"remaining_uses"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryView joins an inventory entry with its definition for display
type InventoryView struct {
	Item          *ItemDefinition `json:"item"`
	RemainingUses int             `json:"remaining_uses"`
	CanUse        bool            `json:"can_use"`
}
