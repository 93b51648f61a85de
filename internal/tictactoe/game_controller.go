package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/infinitettt-backend/internal/apperror"
	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
)

// TurnResult describes one fully resolved turn: the lines the placement
// completed and the cells cleared for them.
type TurnResult struct {
	Lines   []Line              `json:"lines,omitempty"`
	Cleared []entity.Coordinate `json:"cleared,omitempty"`
}

// MakeTurn - resolves one full turn: validates the placement, commits it,
// detects completed lines through the placed cell, clears them, awards one
// point per line, records the last active cell and hands the turn to the
// other mark. The game is mutated only after validation succeeds.
func MakeTurn(game *entity.Game, playerMark string, pos entity.Coordinate) (*TurnResult, error) {
	if game.IsFinished() {
		return nil, apperror.ErrGameFinished
	}

	if game.Turn != playerMark {
		return nil, fmt.Errorf("invalid turn: %w", apperror.ErrNotYourTurn)
	}

	if err := game.Board.Place(pos, playerMark); err != nil {
		return nil, fmt.Errorf("invalid turn: %w", err)
	}

	lines := LinesThrough(game.Board, pos, playerMark)
	cleared := ClearLines(game.Board, lines)

	game.Scores[playerMark] += len(lines)
	game.LastMove = &pos
	game.Turn = toggleMark(playerMark)

	return &TurnResult{Lines: lines, Cleared: cleared}, nil
}

func toggleMark(currentMark string) string {
	if currentMark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
