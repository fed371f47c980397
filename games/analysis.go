package games

import (
	"fmt"
	"io"
	"math"

	"pointsgame/models"
)

// GameReport summarises a batch of simulated plays of one game
type GameReport struct {
	Game          models.Game
	Trials        int
	TotalStaked   int64
	TotalReturned int64
	Outcomes      map[string]int
}

// ReturnToPlayer is the share of staked points paid back
func (r GameReport) ReturnToPlayer() float64 {
	if r.TotalStaked == 0 {
		return 0
	}
	return float64(r.TotalReturned) / float64(r.TotalStaked)
}

// HouseEdge is the expected points kept per point staked
func (r GameReport) HouseEdge() float64 {
	return 1 - r.ReturnToPlayer()
}

// SimulateReel plays the reel trials times
func SimulateReel(src Source, trials int) GameReport {
	report := GameReport{Game: models.GameReel, Trials: trials, Outcomes: make(map[string]int)}
	for i := 0; i < trials; i++ {
		res := SpinReel(src)
		report.TotalStaked += ReelCost
		report.TotalReturned += res.Payout
		report.Outcomes[res.Outcome]++
	}
	return report
}

// SimulateDie rolls the die trials times at a fixed bet
func SimulateDie(src Source, trials int, bet int64) GameReport {
	report := GameReport{Game: models.GameDie, Trials: trials, Outcomes: make(map[string]int)}
	for i := 0; i < trials; i++ {
		res, err := RollDie(src, bet)
		if err != nil {
			break
		}
		report.TotalStaked += bet
		report.TotalReturned += res.Payout
		report.Outcomes[res.Outcome]++
	}
	return report
}

// SimulateGrid reveals a random cell trials times. Grid payouts are items, so
// TotalReturned stays zero and the powerup rate is the interesting figure.
func SimulateGrid(src Source, trials int) GameReport {
	report := GameReport{Game: models.GameGrid, Trials: trials, Outcomes: make(map[string]int)}
	for i := 0; i < trials; i++ {
		res, err := RevealGrid(src, src.Intn(GridCells))
		if err != nil {
			break
		}
		report.TotalStaked += GridCost
		report.Outcomes[res.Outcome]++
	}
	return report
}

// PowerupChiSquared tests the observed grid powerup rate against PowerupProbability
func PowerupChiSquared(report GameReport) float64 {
	n := float64(report.Trials)
	if n == 0 {
		return 0
	}
	expectedWins := n * PowerupProbability
	expectedLosses := n * (1 - PowerupProbability)
	wins := float64(report.Outcomes[models.OutcomePowerup])
	return math.Pow(wins-expectedWins, 2)/expectedWins +
		math.Pow(n-wins-expectedLosses, 2)/expectedLosses
}

// WriteReport prints a human readable summary of reports to w
func WriteReport(w io.Writer, reports ...GameReport) {
	fmt.Fprintln(w, "=== Game Return Analysis ===")
	for _, r := range reports {
		fmt.Fprintf(w, "\n%s: %d trials, staked %d, returned %d\n", r.Game, r.Trials, r.TotalStaked, r.TotalReturned)
		if r.Game == models.GameGrid {
			fmt.Fprintf(w, "  powerup rate: %.4f (expected %.2f), chi-squared %.2f\n",
				float64(r.Outcomes[models.OutcomePowerup])/math.Max(1, float64(r.Trials)),
				PowerupProbability, PowerupChiSquared(r))
		} else {
			fmt.Fprintf(w, "  return to player: %.4f, house edge: %+.4f\n", r.ReturnToPlayer(), r.HouseEdge())
		}
		for outcome, count := range r.Outcomes {
			fmt.Fprintf(w, "  %-15s %8d\n", outcome, count)
		}
	}
}
