package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pointsgame/events"
	"pointsgame/models"
)

// AccountRepository defines the interface for account data access.
// Balance writes are single conditional statements; callers never write a balance they computed from a stale read.
type AccountRepository interface {
	// Create inserts a new account, assigning ID when it is zero
	Create(ctx context.Context, account *models.Account) error

	// GetByID retrieves an account, returning nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// GetByEmail retrieves an account by case-insensitive email, returning nil when it does not exist
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// ExistsByUsernameOrEmail reports whether either identifier is taken
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// ApplyDelta subtracts debit and adds credit in one statement guarded by balance >= debit.
	// Returns ErrAccountNotFound or ErrInsufficientFunds when no row was updated.
	ApplyDelta(ctx context.Context, id uuid.UUID, debit, credit int64) (*models.BalanceChange, error)

	// CompareAndSetBalance writes newBalance only if the stored version still equals expectedVersion.
	// The returned bool is false on a version conflict.
	CompareAndSetBalance(ctx context.Context, id uuid.UUID, expectedVersion, newBalance int64) (*models.BalanceChange, bool, error)

	// SetActive toggles the account's active flag
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// SetAdmin grants or revokes the admin flag
	SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error

	// ListAll returns every account ordered by creation
	ListAll(ctx context.Context) ([]*models.Account, error)

	// ListTargets returns active non-admin accounts other than excludeID
	ListTargets(ctx context.Context, excludeID uuid.UUID) ([]*models.Account, error)
}

// ItemFilter narrows catalog listings
type ItemFilter struct {
	Category   *models.ItemCategory
	AdminOnly  *bool
	ActiveOnly bool
}

// ItemRepository defines read access to the item catalog
type ItemRepository interface {
	// GetByID retrieves a definition, returning nil when it does not exist
	GetByID(ctx context.Context, id string) (*models.ItemDefinition, error)

	// List returns definitions matching filter ordered by category then cost
	List(ctx context.Context, filter ItemFilter) ([]*models.ItemDefinition, error)
}

// InventoryRepository defines the interface for per-account item counters
type InventoryRepository interface {
	// Decrement consumes one use guarded by remaining_uses > 0.
	// Returns ErrItemNotOwned or ErrNoUsesRemaining when no row was updated.
	Decrement(ctx context.Context, accountID uuid.UUID, itemID string) (*models.InventoryEntry, error)

	// Grant creates the entry with uses or adds uses to it
	Grant(ctx context.Context, accountID uuid.UUID, itemID string, uses int) (*models.InventoryEntry, error)

	// Replace drops every entry of the account and writes one per item at max_uses
	Replace(ctx context.Context, accountID uuid.UUID, items []*models.ItemDefinition) ([]*models.InventoryEntry, error)

	// ListByAccount returns the account's entries ordered by item id
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.InventoryEntry, error)
}

// HistoryRepository defines the append-only audit log
type HistoryRepository interface {
	// Record appends entry, filling ID and CreatedAt
	Record(ctx context.Context, entry *models.HistoryEntry) error

	// ListByAccount returns the newest entries of an account, nil kinds meaning every kind
	ListByAccount(ctx context.Context, accountID uuid.UUID, kinds []models.HistoryKind, limit int) ([]*models.HistoryEntry, error)

	// Feed returns one page of entries of the given kinds across all accounts plus the total count
	Feed(ctx context.Context, query models.FeedQuery, kinds []models.HistoryKind) ([]*models.HistoryEntry, int, error)
}

// SabotageRepository defines the global sabotage log
type SabotageRepository interface {
	// Create inserts record, assigning ID when it is zero
	Create(ctx context.Context, record *models.SabotageRecord) error

	// ListForTarget returns records aimed at targetID newer than since, newest first
	ListForTarget(ctx context.Context, targetID uuid.UUID, since *time.Time, limit int) ([]*models.SabotageRecord, error)
}

// GridClaimRepository defines the interface for powerup claim tickets
type GridClaimRepository interface {
	// Create inserts claim, assigning ID when it is zero
	Create(ctx context.Context, claim *models.GridClaim) error

	// GetByID retrieves a claim, returning nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*models.GridClaim, error)

	// Redeem marks the claim as used for itemID if it belongs to accountID, is unclaimed,
	// unexpired at now and offers itemID. The returned claim is nil when any condition failed.
	Redeem(ctx context.Context, id, accountID uuid.UUID, itemID string, now time.Time) (*models.GridClaim, error)

	// DeleteExpired removes unclaimed claims that expired before cutoff
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// AnalyticsRepository defines aggregate reads over history and accounts
type AnalyticsRepository interface {
	// Leaderboard returns the top limit active non-admin accounts and the eligible count
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, int, error)

	// AccountAggregates sums one account's history
	AccountAggregates(ctx context.Context, accountID uuid.UUID) (*models.ActivityAggregates, error)

	// AccountSummaries returns every account with its aggregates
	AccountSummaries(ctx context.Context) ([]*models.AccountSummary, error)

	// SystemStats computes system-wide aggregates, counting recent activity after since
	SystemStats(ctx context.Context, since time.Time, topSpenders int) (*models.SystemStats, error)
}

// EventPublisher queues domain events on a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork scopes repositories to one database transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	ItemRepository() ItemRepository
	InventoryRepository() InventoryRepository
	HistoryRepository() HistoryRepository
	SabotageRepository() SabotageRepository
	GridClaimRepository() GridClaimRepository
	AnalyticsRepository() AnalyticsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// LedgerService performs every balance and inventory mutation
type LedgerService interface {
	// DebitAndAct charges amount and credits action.Winnings in one atomic step and logs the play
	DebitAndAct(ctx context.Context, accountID uuid.UUID, amount int64, action Action) (*models.ActResult, error)

	// ConsumeItem uses one inventory charge and debits the item cost
	ConsumeItem(ctx context.Context, accountID uuid.UUID, itemID string, opts ConsumeOptions) (*models.ConsumeResult, error)

	// GrantItem creates or increments an inventory entry
	GrantItem(ctx context.Context, req GrantRequest) (*models.InventoryEntry, error)

	// ExecuteSabotage charges the attacker and then applies the item to the target
	ExecuteSabotage(ctx context.Context, attackerID, targetID uuid.UUID, itemID string) (*models.SabotageResult, error)

	// AdjustBalance adds or subtracts amount, clamping at zero
	AdjustBalance(ctx context.Context, accountID uuid.UUID, amount int64, direction models.AdjustDirection, actorID uuid.UUID, reason string) (*models.AdjustResult, error)

	// ForceTrigger applies an admin-only AGAINST item to a target without charging the admin
	ForceTrigger(ctx context.Context, adminID, targetID uuid.UUID, itemID string) (*models.ForceTriggerResult, error)

	// ResetInventory restores every catalog item to max_uses
	ResetInventory(ctx context.Context, accountID, actorID uuid.UUID) ([]*models.InventoryEntry, error)

	// SetActive toggles the account's active flag and audits it in the same transaction
	SetActive(ctx context.Context, accountID, actorID uuid.UUID, active bool, details map[string]any) error

	// RecordAudit appends a history entry that does not move the balance
	RecordAudit(ctx context.Context, entry *models.HistoryEntry) error
}

// GameService plays the mini-games
type GameService interface {
	PlayReel(ctx context.Context, accountID uuid.UUID) (*models.ReelPlay, error)
	PlayDie(ctx context.Context, accountID uuid.UUID, bet int64) (*models.DiePlay, error)
	PlayGrid(ctx context.Context, accountID uuid.UUID, position int) (*models.GridPlay, error)

	// ClaimGridItem redeems a powerup claim for one of its offered items
	ClaimGridItem(ctx context.Context, accountID, claimID uuid.UUID, itemID string) (*models.InventoryEntry, error)
}

// CatalogService exposes inventory and sabotage options to players
type CatalogService interface {
	// Inventory returns the caller's items joined with their definitions
	Inventory(ctx context.Context, accountID uuid.UUID) ([]*models.InventoryView, error)

	// UseItem consumes one of the caller's items
	UseItem(ctx context.Context, accountID uuid.UUID, itemID string) (*models.ConsumeResult, error)

	// SabotageOptions returns the purchasable AGAINST items and the eligible targets
	SabotageOptions(ctx context.Context, accountID uuid.UUID) ([]*models.ItemDefinition, []*models.Account, error)

	// Sabotage executes an AGAINST item on a target
	Sabotage(ctx context.Context, attackerID, targetID uuid.UUID, itemID string) (*models.SabotageResult, error)
}

// AnalyticsService is the read-only activity and statistics reader
type AnalyticsService interface {
	Feed(ctx context.Context, query models.FeedQuery) (*models.FeedPage, error)
	Leaderboard(ctx context.Context, limit int) (*models.Leaderboard, error)
	SystemStats(ctx context.Context) (*models.SystemStats, error)
	AccountHistory(ctx context.Context, accountID uuid.UUID, filter models.HistoryFilter, limit int) (*models.AccountHistory, error)
	Notifications(ctx context.Context, accountID uuid.UUID, since *time.Time) ([]*models.SabotageRecord, error)
	AccountSummaries(ctx context.Context) ([]*models.AccountSummary, error)
}

// AdminService is the administrative control surface. Every method requires an admin session.
type AdminService interface {
	AdjustBalance(ctx context.Context, actor models.Session, accountID uuid.UUID, amount int64, direction models.AdjustDirection, reason string) (*models.AdjustResult, error)
	ForceTrigger(ctx context.Context, actor models.Session, targetID uuid.UUID, itemID string) (*models.ForceTriggerResult, error)
	GiftItem(ctx context.Context, actor models.Session, accountID uuid.UUID, itemID string) (*models.InventoryEntry, error)
	ResetInventory(ctx context.Context, actor models.Session, accountID uuid.UUID) ([]*models.InventoryEntry, error)
	SetActive(ctx context.Context, actor models.Session, accountID uuid.UUID, active bool) error
	ListAccounts(ctx context.Context, actor models.Session) ([]*models.AccountSummary, error)
	AdminItems(ctx context.Context, actor models.Session) ([]*models.ItemDefinition, []*models.Account, error)
	Feed(ctx context.Context, actor models.Session, query models.FeedQuery) (*models.FeedPage, error)
	SystemStats(ctx context.Context, actor models.Session) (*models.SystemStats, error)
}

// TimerService records timer control actions
type TimerService interface {
	Control(ctx context.Context, actor models.Session, req TimerRequest) (*TimerResult, error)
}

// AuthService handles registration, login and session tokens
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.Account, string, error)
	Login(ctx context.Context, email, password string, rememberMe bool) (*models.Account, string, time.Duration, error)
	ParseToken(token string) (*models.Session, error)
	Me(ctx context.Context, accountID uuid.UUID) (*models.Account, []*models.InventoryView, error)
}
