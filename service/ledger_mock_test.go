package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pointsgame/models"
)

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) DebitAndAct(ctx context.Context, accountID uuid.UUID, amount int64, action Action) (*models.ActResult, error) {
	args := m.Called(ctx, accountID, amount, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActResult), args.Error(1)
}

func (m *MockLedgerService) ConsumeItem(ctx context.Context, accountID uuid.UUID, itemID string, opts ConsumeOptions) (*models.ConsumeResult, error) {
	args := m.Called(ctx, accountID, itemID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConsumeResult), args.Error(1)
}

func (m *MockLedgerService) GrantItem(ctx context.Context, req GrantRequest) (*models.InventoryEntry, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryEntry), args.Error(1)
}

func (m *MockLedgerService) ExecuteSabotage(ctx context.Context, attackerID, targetID uuid.UUID, itemID string) (*models.SabotageResult, error) {
	args := m.Called(ctx, attackerID, targetID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SabotageResult), args.Error(1)
}

func (m *MockLedgerService) AdjustBalance(ctx context.Context, accountID uuid.UUID, amount int64, direction models.AdjustDirection, actorID uuid.UUID, reason string) (*models.AdjustResult, error) {
	args := m.Called(ctx, accountID, amount, direction, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdjustResult), args.Error(1)
}

func (m *MockLedgerService) ForceTrigger(ctx context.Context, adminID, targetID uuid.UUID, itemID string) (*models.ForceTriggerResult, error) {
	args := m.Called(ctx, adminID, targetID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ForceTriggerResult), args.Error(1)
}

func (m *MockLedgerService) ResetInventory(ctx context.Context, accountID, actorID uuid.UUID) ([]*models.InventoryEntry, error) {
	args := m.Called(ctx, accountID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryEntry), args.Error(1)
}

func (m *MockLedgerService) SetActive(ctx context.Context, accountID, actorID uuid.UUID, active bool, details map[string]any) error {
	args := m.Called(ctx, accountID, actorID, active, details)
	return args.Error(0)
}

func (m *MockLedgerService) RecordAudit(ctx context.Context, entry *models.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// stubSource always draws the same index and the same float
type stubSource struct {
	index int
	float float64
}

func (s stubSource) Intn(n int) int {
	return min(s.index, n-1)
}

func (s stubSource) Float64() float64 {
	return s.float
}
