package models

import (
	"time"

	"github.com/google/uuid"
)

// ActResult is returned by every debit-and-act ledger operation
type ActResult struct {
	BalanceBefore int64         `json:"balance_before"`
	NewBalance    int64         `json:"new_balance"`
	Outcome       string        `json:"outcome"`
	Entry         *HistoryEntry `json:"-"`
}

// ConsumeResult is returned when an inventory item is used
type ConsumeResult struct {
	ItemID        string `json:"item_id"`
	RemainingUses int    `json:"remaining_uses"`
	NewBalance    int64  `json:"new_balance"`
}

// SabotageResult carries both sides of a sabotage
type SabotageResult struct {
	AttackerNewBalance int64           `json:"attacker_new_balance"`
	TargetNewBalance   int64           `json:"target_new_balance"`
	PointsDeducted     int64           `json:"points_deducted"`
	Record             *SabotageRecord `json:"sabotage"`
}

// AdjustResult is returned by an administrative balance adjustment
type AdjustResult struct {
	AccountID  uuid.UUID `json:"account_id"`
	Username   string    `json:"username"`
	OldBalance int64     `json:"old_balance"`
	NewBalance int64     `json:"new_balance"`
	Change     int64     `json:"change"`
}

// ForceTriggerResult is returned when an admin forces an AGAINST item on a target
type ForceTriggerResult struct {
	TargetID         uuid.UUID       `json:"target_id"`
	TargetUsername   string          `json:"target_username"`
	TargetOldBalance int64           `json:"target_old_balance"`
	TargetNewBalance int64           `json:"target_new_balance"`
	ActorBalance     int64           `json:"actor_balance"`
	PointsDeducted   int64           `json:"points_deducted"`
	Record           *SabotageRecord `json:"sabotage"`
}

// ReelPlay is the outcome of one reel spin as seen by the player
type ReelPlay struct {
	Symbols    []string `json:"symbols"`
	Payout     int64    `json:"payout"`
	Outcome    string   `json:"outcome"`
	Cost       int64    `json:"cost"`
	NewBalance int64    `json:"new_balance"`
}

// DiePlay is the outcome of one die roll as seen by the player
type DiePlay struct {
	Face       int    `json:"face"`
	Multiplier string `json:"multiplier"`
	Bet        int64  `json:"bet"`
	Payout     int64  `json:"payout"`
	Outcome    string `json:"outcome"`
	NewBalance int64  `json:"new_balance"`
}

// GridPlay is the outcome of one grid reveal as seen by the player
type GridPlay struct {
	Position     int               `json:"position"`
	Grid         []string          `json:"grid"`
	Outcome      string            `json:"outcome"`
	Cost         int64             `json:"cost"`
	NewBalance   int64             `json:"new_balance"`
	OfferedItems []*ItemDefinition `json:"offered_items"`
	ClaimID      *uuid.UUID        `json:"claim_id,omitempty"`
	ClaimExpires *time.Time        `json:"claim_expires_at,omitempty"`
}
