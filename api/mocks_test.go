package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pointsgame/models"
	"pointsgame/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*models.Account, string, error) {
	args := m.Called(ctx, username, email, password)
	account, _ := args.Get(0).(*models.Account)
	return account, args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*models.Account, string, time.Duration, error) {
	args := m.Called(ctx, email, password, rememberMe)
	account, _ := args.Get(0).(*models.Account)
	return account, args.String(1), args.Get(2).(time.Duration), args.Error(3)
}

func (m *MockAuthService) ParseToken(token string) (*models.Session, error) {
	args := m.Called(token)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, accountID uuid.UUID) (*models.Account, []*models.InventoryView, error) {
	args := m.Called(ctx, accountID)
	account, _ := args.Get(0).(*models.Account)
	views, _ := args.Get(1).([]*models.InventoryView)
	return account, views, args.Error(2)
}

type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) PlayReel(ctx context.Context, accountID uuid.UUID) (*models.ReelPlay, error) {
	args := m.Called(ctx, accountID)
	play, _ := args.Get(0).(*models.ReelPlay)
	return play, args.Error(1)
}

func (m *MockGameService) PlayDie(ctx context.Context, accountID uuid.UUID, bet int64) (*models.DiePlay, error) {
	args := m.Called(ctx, accountID, bet)
	play, _ := args.Get(0).(*models.DiePlay)
	return play, args.Error(1)
}

func (m *MockGameService) PlayGrid(ctx context.Context, accountID uuid.UUID, position int) (*models.GridPlay, error) {
	args := m.Called(ctx, accountID, position)
	play, _ := args.Get(0).(*models.GridPlay)
	return play, args.Error(1)
}

func (m *MockGameService) ClaimGridItem(ctx context.Context, accountID, claimID uuid.UUID, itemID string) (*models.InventoryEntry, error) {
	args := m.Called(ctx, accountID, claimID, itemID)
	entry, _ := args.Get(0).(*models.InventoryEntry)
	return entry, args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Inventory(ctx context.Context, accountID uuid.UUID) ([]*models.InventoryView, error) {
	args := m.Called(ctx, accountID)
	views, _ := args.Get(0).([]*models.InventoryView)
	return views, args.Error(1)
}

func (m *MockCatalogService) UseItem(ctx context.Context, accountID uuid.UUID, itemID string) (*models.ConsumeResult, error) {
	args := m.Called(ctx, accountID, itemID)
	result, _ := args.Get(0).(*models.ConsumeResult)
	return result, args.Error(1)
}

func (m *MockCatalogService) SabotageOptions(ctx context.Context, accountID uuid.UUID) ([]*models.ItemDefinition, []*models.Account, error) {
	args := m.Called(ctx, accountID)
	items, _ := args.Get(0).([]*models.ItemDefinition)
	targets, _ := args.Get(1).([]*models.Account)
	return items, targets, args.Error(2)
}

func (m *MockCatalogService) Sabotage(ctx context.Context, attackerID, targetID uuid.UUID, itemID string) (*models.SabotageResult, error) {
	args := m.Called(ctx, attackerID, targetID, itemID)
	result, _ := args.Get(0).(*models.SabotageResult)
	return result, args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Feed(ctx context.Context, query models.FeedQuery) (*models.FeedPage, error) {
	args := m.Called(ctx, query)
	page, _ := args.Get(0).(*models.FeedPage)
	return page, args.Error(1)
}

func (m *MockAnalyticsService) Leaderboard(ctx context.Context, limit int) (*models.Leaderboard, error) {
	args := m.Called(ctx, limit)
	board, _ := args.Get(0).(*models.Leaderboard)
	return board, args.Error(1)
}

func (m *MockAnalyticsService) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*models.SystemStats)
	return stats, args.Error(1)
}

func (m *MockAnalyticsService) AccountHistory(ctx context.Context, accountID uuid.UUID, filter models.HistoryFilter, limit int) (*models.AccountHistory, error) {
	args := m.Called(ctx, accountID, filter, limit)
	history, _ := args.Get(0).(*models.AccountHistory)
	return history, args.Error(1)
}

func (m *MockAnalyticsService) Notifications(ctx context.Context, accountID uuid.UUID, since *time.Time) ([]*models.SabotageRecord, error) {
	args := m.Called(ctx, accountID, since)
	records, _ := args.Get(0).([]*models.SabotageRecord)
	return records, args.Error(1)
}

func (m *MockAnalyticsService) AccountSummaries(ctx context.Context) ([]*models.AccountSummary, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]*models.AccountSummary)
	return summaries, args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) AdjustBalance(ctx context.Context, actor models.Session, accountID uuid.UUID, amount int64, direction models.AdjustDirection, reason string) (*models.AdjustResult, error) {
	args := m.Called(ctx, actor, accountID, amount, direction, reason)
	result, _ := args.Get(0).(*models.AdjustResult)
	return result, args.Error(1)
}

func (m *MockAdminService) ForceTrigger(ctx context.Context, actor models.Session, targetID uuid.UUID, itemID string) (*models.ForceTriggerResult, error) {
	args := m.Called(ctx, actor, targetID, itemID)
	result, _ := args.Get(0).(*models.ForceTriggerResult)
	return result, args.Error(1)
}

func (m *MockAdminService) GiftItem(ctx context.Context, actor models.Session, accountID uuid.UUID, itemID string) (*models.InventoryEntry, error) {
	args := m.Called(ctx, actor, accountID, itemID)
	entry, _ := args.Get(0).(*models.InventoryEntry)
	return entry, args.Error(1)
}

func (m *MockAdminService) ResetInventory(ctx context.Context, actor models.Session, accountID uuid.UUID) ([]*models.InventoryEntry, error) {
	args := m.Called(ctx, actor, accountID)
	entries, _ := args.Get(0).([]*models.InventoryEntry)
	return entries, args.Error(1)
}

func (m *MockAdminService) SetActive(ctx context.Context, actor models.Session, accountID uuid.UUID, active bool) error {
	args := m.Called(ctx, actor, accountID, active)
	return args.Error(0)
}

func (m *MockAdminService) ListAccounts(ctx context.Context, actor models.Session) ([]*models.AccountSummary, error) {
	args := m.Called(ctx, actor)
	summaries, _ := args.Get(0).([]*models.AccountSummary)
	return summaries, args.Error(1)
}

func (m *MockAdminService) AdminItems(ctx context.Context, actor models.Session) ([]*models.ItemDefinition, []*models.Account, error) {
	args := m.Called(ctx, actor)
	items, _ := args.Get(0).([]*models.ItemDefinition)
	targets, _ := args.Get(1).([]*models.Account)
	return items, targets, args.Error(2)
}

func (m *MockAdminService) Feed(ctx context.Context, actor models.Session, query models.FeedQuery) (*models.FeedPage, error) {
	args := m.Called(ctx, actor, query)
	page, _ := args.Get(0).(*models.FeedPage)
	return page, args.Error(1)
}

func (m *MockAdminService) SystemStats(ctx context.Context, actor models.Session) (*models.SystemStats, error) {
	args := m.Called(ctx, actor)
	stats, _ := args.Get(0).(*models.SystemStats)
	return stats, args.Error(1)
}

type MockTimerService struct {
	mock.Mock
}

func (m *MockTimerService) Control(ctx context.Context, actor models.Session, req service.TimerRequest) (*service.TimerResult, error) {
	args := m.Called(ctx, actor, req)
	result, _ := args.Get(0).(*service.TimerResult)
	return result, args.Error(1)
}
