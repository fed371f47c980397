package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pointsgame/config"
	"pointsgame/games"
	"pointsgame/models"
	"pointsgame/ratelimit"
)

// RateLimiter is the subset of ratelimit.Limiter the game service needs
type RateLimiter interface {
	Allow(key string, max int, window time.Duration) ratelimit.Result
}

type gameService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerService
	limiter    RateLimiter
	source     games.Source
	now        func() time.Time
}

// NewGameService creates a new game service drawing outcomes from source
func NewGameService(uowFactory UnitOfWorkFactory, ledger LedgerService, limiter RateLimiter, source games.Source) GameService {
	return &gameService{
		uowFactory: uowFactory,
		ledger:     ledger,
		limiter:    limiter,
		source:     source,
		now:        time.Now,
	}
}

func (s *gameService) PlayReel(ctx context.Context, accountID uuid.UUID) (*models.ReelPlay, error) {
	cfg := config.Get()
	if err := s.checkRate("reel", accountID, cfg.ReelRateLimit, cfg.GameRateWindow); err != nil {
		return nil, err
	}

	spin := games.SpinReel(s.source)
	result, err := s.ledger.DebitAndAct(ctx, accountID, games.ReelCost, Action{
		Kind:     models.HistoryKindGamePlay,
		Game:     models.GameReel,
		Outcome:  spin.Outcome,
		Winnings: spin.Payout,
		Details: map[string]any{
			"symbols": spin.Symbols,
			"payout":  spin.Payout,
		},
	})
	if err != nil {
		return nil, err
	}

	return &models.ReelPlay{
		Symbols:    spin.Symbols,
		Payout:     spin.Payout,
		Outcome:    spin.Outcome,
		Cost:       games.ReelCost,
		NewBalance: result.NewBalance,
	}, nil
}

func (s *gameService) PlayDie(ctx context.Context, accountID uuid.UUID, bet int64) (*models.DiePlay, error) {
	roll, err := games.RollDie(s.source, bet)
	if err != nil {
		if errors.Is(err, games.ErrInvalidBet) {
			return nil, invalidInput("bet must be a positive number of points")
		}
		return nil, err
	}

	result, err := s.ledger.DebitAndAct(ctx, accountID, bet, Action{
		Kind:     models.HistoryKindGamePlay,
		Game:     models.GameDie,
		Outcome:  roll.Outcome,
		Winnings: roll.Payout,
		Details: map[string]any{
			"face":       roll.Face,
			"multiplier": roll.Multiplier.String(),
			"bet":        bet,
			"payout":     roll.Payout,
		},
	})
	if err != nil {
		return nil, err
	}

	return &models.DiePlay{
		Face:       roll.Face,
		Multiplier: roll.Multiplier.String(),
		Bet:        bet,
		Payout:     roll.Payout,
		Outcome:    roll.Outcome,
		NewBalance: result.NewBalance,
	}, nil
}

func (s *gameService) PlayGrid(ctx context.Context, accountID uuid.UUID, position int) (*models.GridPlay, error) {
	if position < 0 || position >= games.GridCells {
		return nil, invalidInput("position must be between 0 and %d", games.GridCells-1)
	}

	cfg := config.Get()
	if err := s.checkRate("grid", accountID, cfg.GridRateLimit, cfg.GameRateWindow); err != nil {
		return nil, err
	}

	board, err := games.RevealGrid(s.source, position)
	if err != nil {
		return nil, invalidInput("%s", err.Error())
	}

	var (
		offered []*models.ItemDefinition
		claim   *models.GridClaim
	)
	result, err := s.ledger.DebitAndAct(ctx, accountID, games.GridCost, Action{
		Kind:    models.HistoryKindGamePlay,
		Game:    models.GameGrid,
		Outcome: board.Outcome,
		Details: map[string]any{
			"position": position,
			"grid":     board.Cells,
		},
		Within: func(ctx context.Context, uow UnitOfWork, entry *models.HistoryEntry) error {
			if board.Outcome != models.OutcomePowerup {
				return nil
			}

			items, err := uow.ItemRepository().List(ctx, ItemFilter{
				Category:   categoryPtr(models.CategoryFor),
				AdminOnly:  boolPtr(false),
				ActiveOnly: true,
			})
			if err != nil {
				return fmt.Errorf("failed to list powerup items: %w", err)
			}
			offered = items
			if len(items) == 0 {
				return nil
			}

			ids := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			now := s.now().UTC()
			claim = &models.GridClaim{
				AccountID:      accountID,
				HistoryEntryID: entry.ID,
				OfferedItemIDs: ids,
				CreatedAt:      now,
				ExpiresAt:      now.Add(cfg.GridClaimTTL),
			}
			if err := uow.GridClaimRepository().Create(ctx, claim); err != nil {
				return fmt.Errorf("failed to create grid claim: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	play := &models.GridPlay{
		Position:     position,
		Grid:         board.Cells,
		Outcome:      board.Outcome,
		Cost:         games.GridCost,
		NewBalance:   result.NewBalance,
		OfferedItems: offered,
	}
	if play.OfferedItems == nil {
		play.OfferedItems = []*models.ItemDefinition{}
	}
	if claim != nil {
		play.ClaimID = &claim.ID
		play.ClaimExpires = &claim.ExpiresAt
	}
	return play, nil
}

func (s *gameService) ClaimGridItem(ctx context.Context, accountID, claimID uuid.UUID, itemID string) (*models.InventoryEntry, error) {
	if claimID == uuid.Nil {
		return nil, invalidInput("claim id is required")
	}
	if itemID == "" {
		return nil, invalidInput("item id is required")
	}

	return s.ledger.GrantItem(ctx, GrantRequest{
		AccountID:       accountID,
		ItemID:          itemID,
		Uses:            1,
		Kind:            models.HistoryKindGamePlay,
		Game:            models.GameGridClaim,
		Outcome:         models.OutcomePowerupClaimed,
		RequireCategory: categoryPtr(models.CategoryFor),
		Details:         map[string]any{"claim_id": claimID.String()},
		Before: func(ctx context.Context, uow UnitOfWork) error {
			redeemed, err := uow.GridClaimRepository().Redeem(ctx, claimID, accountID, itemID, s.now().UTC())
			if err != nil {
				return fmt.Errorf("failed to redeem grid claim: %w", err)
			}
			if redeemed == nil {
				return invalidInput("claim %s is expired, already used or does not offer %s", claimID, itemID)
			}
			return nil
		},
	})
}

func (s *gameService) checkRate(game string, accountID uuid.UUID, max int, window time.Duration) error {
	res := s.limiter.Allow(game+":"+accountID.String(), max, window)
	if !res.Allowed {
		return &RateLimitedError{Action: game, ResetAt: res.ResetAt}
	}
	return nil
}

func categoryPtr(c models.ItemCategory) *models.ItemCategory {
	return &c
}

func boolPtr(b bool) *bool {
	return &b
}
