package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityAggregates are summed from one account's history entries
type ActivityAggregates struct {
	TotalSpent  int64 `json:"total_spent"`
	TotalWon    int64 `json:"total_won"`
	ItemsUsed   int   `json:"items_used"`
	GamesPlayed int   `json:"games_played"`
}

// LeaderboardEntry represents one ranked account
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	Balance   int64     `json:"balance"`
	JoinedAt  time.Time `json:"joined_at"`
	ActivityAggregates
}

// Leaderboard is a ranked page of accounts plus the number of eligible accounts
type Leaderboard struct {
	Entries    []*LeaderboardEntry `json:"leaderboard"`
	TotalUsers int                 `json:"total_users"`
}

// AccountSummary is the admin view of an account
type AccountSummary struct {
	AccountID uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Balance   int64     `json:"balance"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	ActivityAggregates
}

// FeedQuery selects a page of the merged activity feed
type FeedQuery struct {
	AccountID *uuid.UUID
	Page      int
	Limit     int
}

// FeedPage is a page of the merged activity feed
type FeedPage struct {
	Entries    []*HistoryEntry `json:"activity"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// AccountHistory is an account's own history listing with aggregates
type AccountHistory struct {
	Entries        []*HistoryEntry    `json:"history"`
	Stats          ActivityAggregates `json:"stats"`
	CurrentBalance int64              `json:"current_balance"`
}

// ItemUsage counts uses of one item definition
type ItemUsage struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Cost      int64  `json:"cost"`
	TotalUses int    `json:"total_uses"`
}

// OutcomeCounts are system-wide win/loss tallies over game plays
type OutcomeCounts struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Total  int `json:"total"`
}

// WinRatio returns wins over total plays, zero when nothing was played
func (o OutcomeCounts) WinRatio() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.Wins) / float64(o.Total)
}

// Spender is an entry in the top spenders list
type Spender struct {
	AccountID  uuid.UUID `json:"account_id"`
	Username   string    `json:"username"`
	TotalSpent int64     `json:"total_spent"`
}

// SystemStats are system-wide aggregates for the admin dashboard
type SystemStats struct {
	TotalAccounts  int           `json:"total_accounts"`
	ActiveAccounts int           `json:"active_accounts"`
	TotalBalance   int64         `json:"total_balance"`
	RecentAccounts int           `json:"recent_accounts"`
	RecentGames    int           `json:"recent_games"`
	ItemUsage      []*ItemUsage  `json:"item_usage"`
	GamesByType    map[Game]int  `json:"games_by_type"`
	TotalGameSpend int64         `json:"total_game_spend"`
	Outcomes       OutcomeCounts `json:"outcomes"`
	WinRatio       float64       `json:"win_ratio"`
	TopSpenders    []*Spender    `json:"top_spenders"`
}
