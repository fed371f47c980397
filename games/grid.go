package games

import (
	"errors"

	"pointsgame/models"
)

const (
	// GridCost is the fixed price of one reveal
	GridCost int64 = 20
	// GridCells is the number of cells on the board
	GridCells = 9
	// PowerupProbability is the chance a single cell holds a powerup
	PowerupProbability = 0.4
)

// ErrInvalidPosition is returned for a position outside the board
var ErrInvalidPosition = errors.New("position must be between 0 and 8")

// GridResult is a generated board and the cell the player revealed
type GridResult struct {
	Cells    []string
	Position int
	Outcome  string
}

// Revealed returns the outcome of the chosen cell
func (r GridResult) Revealed() string {
	return r.Cells[r.Position]
}

// RevealGrid fills nine cells independently and reveals the one at position
func RevealGrid(src Source, position int) (GridResult, error) {
	if position < 0 || position >= GridCells {
		return GridResult{}, ErrInvalidPosition
	}

	cells := make([]string, GridCells)
	for i := range cells {
		if src.Float64() < PowerupProbability {
			cells[i] = models.OutcomePowerup
		} else {
			cells[i] = models.OutcomePenalty
		}
	}

	return GridResult{
		Cells:    cells,
		Position: position,
		Outcome:  cells[position],
	}, nil
}
