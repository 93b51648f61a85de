package tictactoe

import (
	"errors"
	"math/rand"

	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
)

// Power-up lines are picked inside this window around the origin, which
// covers the typical active play area.
const (
	MinCoord = -10
	MaxCoord = 10
)

var ErrEvenLineLength = errors.New("power-up line length must be odd")

// ClearRandomLine - removes a random horizontal or vertical segment of
// length cells centred inside the window. Cells that are already empty are
// skipped. Returns the coordinates that were actually cleared.
func ClearRandomLine(board *entity.Board, length int, rng *rand.Rand) ([]entity.Coordinate, error) {
	if length%2 == 0 {
		return nil, ErrEvenLineLength
	}

	half := length / 2
	axis := MinCoord + rng.Intn(MaxCoord-MinCoord+1)
	horizontal := rng.Intn(2) == 0

	var cleared []entity.Coordinate
	for offset := -half; offset <= half; offset++ {
		pos := entity.Coordinate{X: offset, Y: axis}
		if !horizontal {
			pos = entity.Coordinate{X: axis, Y: offset}
		}

		if board.Get(pos) == entity.EmptyCell {
			continue
		}

		board.Remove(pos)
		cleared = append(cleared, pos)
	}

	return cleared, nil
}
