package service

import (
	"context"

	"github.com/google/uuid"

	"pointsgame/models"
)

// TimerAction is the kind of timer control request
type TimerAction string

const (
	TimerExtend TimerAction = "extend"
	TimerReduce TimerAction = "reduce"
)

// maxTimerSeconds bounds a single timer adjustment
const maxTimerSeconds = 3600

// TimerRequest asks to extend the caller's timer or, for admins, reduce someone else's
type TimerRequest struct {
	Action    TimerAction
	Seconds   int
	AccountID uuid.UUID
}

// TimerResult echoes the recorded timer change
type TimerResult struct {
	AccountID uuid.UUID   `json:"account_id"`
	Action    TimerAction `json:"action"`
	Seconds   int         `json:"seconds"`
	Outcome   string      `json:"outcome"`
}

type timerService struct {
	ledger LedgerService
}

// NewTimerService creates a new timer service. Timers live on the client; only the audit entry is stored.
func NewTimerService(ledger LedgerService) TimerService {
	return &timerService{ledger: ledger}
}

func (s *timerService) Control(ctx context.Context, actor models.Session, req TimerRequest) (*TimerResult, error) {
	if req.Seconds <= 0 || req.Seconds > maxTimerSeconds {
		return nil, invalidInput("seconds must be between 1 and %d", maxTimerSeconds)
	}

	var (
		target  uuid.UUID
		outcome string
	)
	switch req.Action {
	case TimerExtend:
		target = actor.AccountID
		outcome = models.OutcomeTimerExtended
	case TimerReduce:
		if err := RequireAdmin(actor); err != nil {
			return nil, err
		}
		if req.AccountID == uuid.Nil {
			return nil, invalidInput("account id is required to reduce a timer")
		}
		target = req.AccountID
		outcome = models.OutcomeTimerReduced
	default:
		return nil, invalidInput("action must be extend or reduce")
	}

	entry := &models.HistoryEntry{
		AccountID:      target,
		ActorID:        &actor.AccountID,
		Kind:           models.HistoryKindTimerControl,
		Outcome:        outcome,
		AdminTriggered: req.Action == TimerReduce,
		Details: map[string]any{
			"action":  string(req.Action),
			"seconds": req.Seconds,
		},
	}
	if err := s.ledger.RecordAudit(ctx, entry); err != nil {
		return nil, err
	}

	return &TimerResult{
		AccountID: target,
		Action:    req.Action,
		Seconds:   req.Seconds,
		Outcome:   outcome,
	}, nil
}
