package service

import (
	"context"
	"fmt"

	"pointsgame/events"
	"pointsgame/models"
)

// RecordHistory appends a history entry and queues the matching events.
// Every balance or inventory mutation goes through here so the audit log and the bus agree.
func RecordHistory(ctx context.Context, uow UnitOfWork, entry *models.HistoryEntry) error {
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}

	if err := uow.HistoryRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}

	if entry.MovesBalance() {
		uow.EventBus().Publish(events.BalanceChangeEvent{
			AccountID:    entry.AccountID,
			OldBalance:   entry.BalanceBefore,
			NewBalance:   entry.BalanceAfter,
			ChangeAmount: entry.BalanceAfter - entry.BalanceBefore,
			Kind:         entry.Kind,
			Outcome:      entry.Outcome,
		})
	}

	return nil
}

func gamePtr(g models.Game) *models.Game {
	if g == "" {
		return nil
	}
	return &g
}

func stringPtr(s string) *string {
	return &s
}
