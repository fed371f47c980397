package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pointsgame/database"
	"pointsgame/events"
	"pointsgame/service"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	accountRepo      service.AccountRepository
	itemRepo         service.ItemRepository
	inventoryRepo    service.InventoryRepository
	historyRepo      service.HistoryRepository
	sabotageRepo     service.SabotageRepository
	gridClaimRepo    service.GridClaimRepository
	analyticsRepo    service.AnalyticsRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.itemRepo = newItemRepositoryWithTx(tx)
	u.inventoryRepo = newInventoryRepositoryWithTx(tx)
	u.historyRepo = newHistoryRepositoryWithTx(tx)
	u.sabotageRepo = newSabotageRepositoryWithTx(tx)
	u.gridClaimRepo = newGridClaimRepositoryWithTx(tx)
	u.analyticsRepo = newAnalyticsRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes queued events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards queued events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// ItemRepository returns the item repository for this unit of work
func (u *unitOfWork) ItemRepository() service.ItemRepository {
	if u.itemRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.itemRepo
}

// InventoryRepository returns the inventory repository for this unit of work
func (u *unitOfWork) InventoryRepository() service.InventoryRepository {
	if u.inventoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.inventoryRepo
}

// HistoryRepository returns the history repository for this unit of work
func (u *unitOfWork) HistoryRepository() service.HistoryRepository {
	if u.historyRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.historyRepo
}

// SabotageRepository returns the sabotage repository for this unit of work
func (u *unitOfWork) SabotageRepository() service.SabotageRepository {
	if u.sabotageRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.sabotageRepo
}

// GridClaimRepository returns the grid claim repository for this unit of work
func (u *unitOfWork) GridClaimRepository() service.GridClaimRepository {
	if u.gridClaimRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gridClaimRepo
}

// AnalyticsRepository returns the analytics repository for this unit of work
func (u *unitOfWork) AnalyticsRepository() service.AnalyticsRepository {
	if u.analyticsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.analyticsRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
