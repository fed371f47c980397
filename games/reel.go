package games

import (
	"strings"

	"pointsgame/models"
)

// ReelCost is the fixed price of one spin
const ReelCost int64 = 10

// ReelSymbols are the faces of each reel
var ReelSymbols = []string{"🍒", "🍋", "🍊", "🍇", "⭐", "💎"}

var (
	triplePayouts = map[string]int64{
		"💎💎💎": 500,
		"⭐⭐⭐": 200,
		"🍒🍒🍒": 100,
		"🍇🍇🍇": 80,
		"🍊🍊🍊": 60,
		"🍋🍋🍋": 40,
	}
	prefixPayouts = map[string]int64{
		"💎💎": 50,
		"⭐⭐": 30,
		"🍒🍒": 20,
	}
)

// ReelResult is one spin of three reels
type ReelResult struct {
	Symbols []string
	Payout  int64
	Outcome string
}

// SpinReel draws three independent symbols and scores them
func SpinReel(src Source) ReelResult {
	symbols := []string{
		ReelSymbols[src.Intn(len(ReelSymbols))],
		ReelSymbols[src.Intn(len(ReelSymbols))],
		ReelSymbols[src.Intn(len(ReelSymbols))],
	}
	return ScoreReel(symbols)
}

// ScoreReel applies the payout table to a fixed set of symbols.
// A triple beats a matching two-symbol prefix.
func ScoreReel(symbols []string) ReelResult {
	result := ReelResult{Symbols: symbols, Outcome: models.OutcomeLose}
	if len(symbols) != 3 {
		return result
	}

	if payout, ok := triplePayouts[strings.Join(symbols, "")]; ok {
		result.Payout = payout
		result.Outcome = models.OutcomeWin
		return result
	}

	if symbols[0] == symbols[1] {
		if payout, ok := prefixPayouts[symbols[0]+symbols[1]]; ok {
			result.Payout = payout
			result.Outcome = models.OutcomeSmallWin
		}
	}
	return result
}
