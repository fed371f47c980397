package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pointsgame/events"
	"pointsgame/models"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, id uuid.UUID, debit, credit int64) (*models.BalanceChange, error) {
	args := m.Called(ctx, id, debit, credit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BalanceChange), args.Error(1)
}

func (m *MockAccountRepository) CompareAndSetBalance(ctx context.Context, id uuid.UUID, expectedVersion, newBalance int64) (*models.BalanceChange, bool, error) {
	args := m.Called(ctx, id, expectedVersion, newBalance)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.BalanceChange), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	args := m.Called(ctx, id, admin)
	return args.Error(0)
}

func (m *MockAccountRepository) ListAll(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ListTargets(ctx context.Context, excludeID uuid.UUID) ([]*models.Account, error) {
	args := m.Called(ctx, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*models.ItemDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemDefinition), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, filter ItemFilter) ([]*models.ItemDefinition, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemDefinition), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Decrement(ctx context.Context, accountID uuid.UUID, itemID string) (*models.InventoryEntry, error) {
	args := m.Called(ctx, accountID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryEntry), args.Error(1)
}

func (m *MockInventoryRepository) Grant(ctx context.Context, accountID uuid.UUID, itemID string, uses int) (*models.InventoryEntry, error) {
	args := m.Called(ctx, accountID, itemID, uses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryEntry), args.Error(1)
}

func (m *MockInventoryRepository) Replace(ctx context.Context, accountID uuid.UUID, items []*models.ItemDefinition) ([]*models.InventoryEntry, error) {
	args := m.Called(ctx, accountID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryEntry), args.Error(1)
}

func (m *MockInventoryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.InventoryEntry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryEntry), args.Error(1)
}

// MockHistoryRepository is a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Record(ctx context.Context, entry *models.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, kinds []models.HistoryKind, limit int) ([]*models.HistoryEntry, error) {
	args := m.Called(ctx, accountID, kinds, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) Feed(ctx context.Context, query models.FeedQuery, kinds []models.HistoryKind) ([]*models.HistoryEntry, int, error) {
	args := m.Called(ctx, query, kinds)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.HistoryEntry), args.Int(1), args.Error(2)
}

// MockSabotageRepository is a mock implementation of SabotageRepository
type MockSabotageRepository struct {
	mock.Mock
}

func (m *MockSabotageRepository) Create(ctx context.Context, record *models.SabotageRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSabotageRepository) ListForTarget(ctx context.Context, targetID uuid.UUID, since *time.Time, limit int) ([]*models.SabotageRecord, error) {
	args := m.Called(ctx, targetID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SabotageRecord), args.Error(1)
}

// MockGridClaimRepository is a mock implementation of GridClaimRepository
type MockGridClaimRepository struct {
	mock.Mock
}

func (m *MockGridClaimRepository) Create(ctx context.Context, claim *models.GridClaim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockGridClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GridClaim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GridClaim), args.Error(1)
}

func (m *MockGridClaimRepository) Redeem(ctx context.Context, id, accountID uuid.UUID, itemID string, now time.Time) (*models.GridClaim, error) {
	args := m.Called(ctx, id, accountID, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GridClaim), args.Error(1)
}

func (m *MockGridClaimRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockAnalyticsRepository is a mock implementation of AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, int, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Int(1), args.Error(2)
}

func (m *MockAnalyticsRepository) AccountAggregates(ctx context.Context, accountID uuid.UUID) (*models.ActivityAggregates, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityAggregates), args.Error(1)
}

func (m *MockAnalyticsRepository) AccountSummaries(ctx context.Context) ([]*models.AccountSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AccountSummary), args.Error(1)
}

func (m *MockAnalyticsRepository) SystemStats(ctx context.Context, since time.Time, topSpenders int) (*models.SystemStats, error) {
	args := m.Called(ctx, since, topSpenders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SystemStats), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Begin, Commit and Rollback are recorded; repository getters return whatever SetRepositories configured.
type MockUnitOfWork struct {
	mock.Mock

	accounts  AccountRepository
	items     ItemRepository
	inventory InventoryRepository
	history   HistoryRepository
	sabotages SabotageRepository
	claims    GridClaimRepository
	analytics AnalyticsRepository
	bus       EventPublisher
}

// MockRepositories groups the repositories handed out by a MockUnitOfWork
type MockRepositories struct {
	Accounts  AccountRepository
	Items     ItemRepository
	Inventory InventoryRepository
	History   HistoryRepository
	Sabotages SabotageRepository
	Claims    GridClaimRepository
	Analytics AnalyticsRepository
	Bus       EventPublisher
}

// SetRepositories configures the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(repos MockRepositories) {
	m.accounts = repos.Accounts
	m.items = repos.Items
	m.inventory = repos.Inventory
	m.history = repos.History
	m.sabotages = repos.Sabotages
	m.claims = repos.Claims
	m.analytics = repos.Analytics
	m.bus = repos.Bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository { return m.accounts }
func (m *MockUnitOfWork) ItemRepository() ItemRepository { return m.items }
func (m *MockUnitOfWork) InventoryRepository() InventoryRepository { return m.inventory }
func (m *MockUnitOfWork) HistoryRepository() HistoryRepository { return m.history }
func (m *MockUnitOfWork) SabotageRepository() SabotageRepository { return m.sabotages }
func (m *MockUnitOfWork) GridClaimRepository() GridClaimRepository { return m.claims }
func (m *MockUnitOfWork) AnalyticsRepository() AnalyticsRepository { return m.analytics }
func (m *MockUnitOfWork) EventBus() EventPublisher { return m.bus }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
