package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryKind represents the type of economic event recorded in history
type HistoryKind string

const (
	HistoryKindItemUse          HistoryKind = "item_use"
	HistoryKindGamePlay         HistoryKind = "game_play"
	HistoryKindSabotageSent     HistoryKind = "sabotage_sent"
	HistoryKindSabotageReceived HistoryKind = "sabotage_received"
	HistoryKindAdminAction      HistoryKind = "admin_action"
	HistoryKindTimerControl     HistoryKind = "timer_control"
)

// Game identifies which mini-game produced a game_play entry
type Game string

const (
	GameReel      Game = "reel"
	GameDie       Game = "die"
	GameGrid      Game = "grid"
	GameGridClaim Game = "grid_claim"
)

// Outcome tags shared by generators and history
const (
	OutcomeWin            = "win"
	OutcomeBigWin         = "big_win"
	OutcomeSmallWin       = "small_win"
	OutcomeLose           = "lose"
	OutcomeSmallLoss      = "small_loss"
	OutcomePartialRefund  = "partial_refund"
	OutcomePowerup        = "powerup"
	OutcomePenalty        = "penalty"
	OutcomeUsed           = "used"
	OutcomeTriggered      = "triggered"
	OutcomeSabotaged      = "sabotaged"
	OutcomePowerupClaimed = "powerup_claimed"
	OutcomePowerupGiven   = "powerup_given"
	OutcomePointsAdded    = "points_added"
	OutcomePointsDeducted = "points_deducted"
	OutcomeInventoryReset = "inventory_reset"
	OutcomeDeactivated    = "deactivated"
	OutcomeActivated      = "activated"
	OutcomeTimerExtended  = "timer_extended"
	OutcomeTimerReduced   = "timer_reduced"
)

// HistoryEntry is an immutable record of one economic event on one account
type HistoryEntry struct {
	ID             int64          `db:"id" json:"id"`
	AccountID      uuid.UUID      `db:"account_id" json:"account_id"`
	Username       string         `db:"-" json:"username,omitempty"`
	ActorID        *uuid.UUID     `db:"actor_id" json:"actor_id,omitempty"`
	Kind           HistoryKind    `db:"kind" json:"kind"`
	Game           *Game          `db:"game" json:"game,omitempty"`
	ItemID         *string        `db:"item_id" json:"item_id,omitempty"`
	AmountSpent    int64          `db:"amount_spent" json:"amount_spent"`
	AmountWon      int64          `db:"amount_won" json:"amount_won"`
	BalanceBefore  int64          `db:"balance_before" json:"balance_before"`
	BalanceAfter   int64          `db:"balance_after" json:"balance_after"`
	Outcome        string         `db:"outcome" json:"outcome"`
	AdminTriggered bool           `db:"admin_triggered" json:"admin_triggered"`
	Details        map[string]any `db:"details" json:"details,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// MovesBalance reports whether the entry changed the account balance
func (e *HistoryEntry) MovesBalance() bool {
	return e.BalanceBefore != e.BalanceAfter
}

// HistoryFilter narrows an account's history listing
type HistoryFilter string

const (
	HistoryFilterAll      HistoryFilter = "all"
	HistoryFilterItems    HistoryFilter = "items"
	HistoryFilterGames    HistoryFilter = "games"
	HistoryFilterSabotage HistoryFilter = "sabotage"
	HistoryFilterAdmin    HistoryFilter = "admin"
)

// Kinds returns the history kinds selected by the filter, nil meaning every kind
func (f HistoryFilter) Kinds() ([]HistoryKind, bool) {
	switch f {
	case "", HistoryFilterAll:
		return nil, true
	case HistoryFilterItems:
		return []HistoryKind{HistoryKindItemUse}, true
	case HistoryFilterGames:
		return []HistoryKind{HistoryKindGamePlay}, true
	case HistoryFilterSabotage:
		return []HistoryKind{HistoryKindSabotageSent, HistoryKindSabotageReceived}, true
	case HistoryFilterAdmin:
		return []HistoryKind{HistoryKindAdminAction, HistoryKindTimerControl}, true
	default:
		return nil, false
	}
}

// FeedKinds are the history kinds merged into the global activity feed
var FeedKinds = []HistoryKind{HistoryKindItemUse, HistoryKindGamePlay, HistoryKindSabotageSent}

// AccountFeedKinds are merged into a single account's feed
var AccountFeedKinds = []HistoryKind{HistoryKindItemUse, HistoryKindGamePlay, HistoryKindSabotageSent, HistoryKindSabotageReceived}
