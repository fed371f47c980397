package games

import (
	"errors"

	"github.com/shopspring/decimal"

	"pointsgame/models"
)

// ErrInvalidBet is returned for a bet that is not positive
var ErrInvalidBet = errors.New("bet must be positive")

type dieFace struct {
	multiplier decimal.Decimal
	outcome    string
}

var dieFaces = map[int]dieFace{
	1: {decimal.Zero, models.OutcomeLose},
	2: {decimal.RequireFromString("0.5"), models.OutcomePartialRefund},
	3: {decimal.RequireFromString("0.8"), models.OutcomeSmallLoss},
	4: {decimal.RequireFromString("1.2"), models.OutcomeWin},
	5: {decimal.NewFromInt(2), models.OutcomeWin},
	6: {decimal.NewFromInt(3), models.OutcomeBigWin},
}

// DieResult is one roll of a six-sided die against a bet
type DieResult struct {
	Face       int
	Multiplier decimal.Decimal
	Bet        int64
	Payout     int64
	Outcome    string
}

// RollDie rolls a uniform face and scores it against bet
func RollDie(src Source, bet int64) (DieResult, error) {
	if bet <= 0 {
		return DieResult{}, ErrInvalidBet
	}
	return DieOutcomeForFace(bet, src.Intn(6)+1)
}

// DieOutcomeForFace scores a known face. The payout is floor(bet * multiplier).
func DieOutcomeForFace(bet int64, face int) (DieResult, error) {
	if bet <= 0 {
		return DieResult{}, ErrInvalidBet
	}
	f, ok := dieFaces[face]
	if !ok {
		return DieResult{}, errors.New("die face must be between 1 and 6")
	}

	payout := decimal.NewFromInt(bet).Mul(f.multiplier).Floor().IntPart()
	return DieResult{
		Face:       face,
		Multiplier: f.multiplier,
		Bet:        bet,
		Payout:     payout,
		Outcome:    f.outcome,
	}, nil
}
