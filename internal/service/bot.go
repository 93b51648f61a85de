package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/rocketscienceinc/infinitettt-backend/internal/apperror"
	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/tictactoe"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// maxRadiusGrowth bounds the defensive expansion of the candidate search.
// On a finite set of occupied cells expansion always finds an empty cell long
// before this cap; hitting it means something is pathologically wrong.
const maxRadiusGrowth = 64

var (
	ErrBotNotFound       = errors.New("bot player not found")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// Level binds a difficulty name to its candidate-search bounds: the Chebyshev
// view radius seeding the move search and, for hard play, the minimax depth.
type Level struct {
	ViewRadius  int
	SearchDepth int
}

type learningStore interface {
	RecordMove(ctx context.Context, pos entity.Coordinate, success bool) error
	MoveScore(ctx context.Context, pos entity.Coordinate) (int, error)
}

type BotService interface {
	SuggestMove(ctx context.Context, game *entity.Game, mark, difficulty string) (entity.Coordinate, error)
	MakeTurn(ctx context.Context, game *entity.Game) (*tictactoe.TurnResult, error)
}

type botService struct {
	logger   *slog.Logger
	levels   map[string]Level
	learning learningStore
	rng      *rand.Rand
}

func NewBotService(logger *slog.Logger, levels map[string]Level, learning learningStore, rng *rand.Rand) BotService {
	return &botService{
		logger:   logger,
		levels:   levels,
		learning: learning,
		rng:      rng,
	}
}

// SuggestMove - picks a move for mark without touching the game. Candidates
// are the empty cells within the difficulty's view radius of the last active
// cell; easy and medium select uniformly at random, hard runs the minimax
// search. Returns ErrNoMoveAvailable when even the expanded search finds no
// empty cell.
func (that *botService) SuggestMove(ctx context.Context, game *entity.Game, mark, difficulty string) (entity.Coordinate, error) {
	level, ok := that.levels[difficulty]
	if !ok {
		return entity.Coordinate{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}

	var center entity.Coordinate
	if game.LastMove != nil {
		center = *game.LastMove
	}

	candidates, err := candidateCells(game.Board, center, level.ViewRadius)
	if err != nil {
		return entity.Coordinate{}, fmt.Errorf("failed to collect candidate cells: %w", err)
	}

	if difficulty == DifficultyHard {
		return that.minimaxMove(ctx, game.Board, candidates, mark, level), nil
	}

	return candidates[that.rng.Intn(len(candidates))], nil
}

// MakeTurn - resolves one full bot turn on the game and records the outcome
// in the learning store.
func (that *botService) MakeTurn(ctx context.Context, game *entity.Game) (*tictactoe.TurnResult, error) {
	botPlayer := game.BotPlayer()
	if botPlayer == nil {
		return nil, ErrBotNotFound
	}

	pos, err := that.SuggestMove(ctx, game, botPlayer.Mark, game.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("bot failed to choose a move: %w", err)
	}

	result, err := tictactoe.MakeTurn(game, botPlayer.Mark, pos)
	if err != nil {
		return nil, fmt.Errorf("bot failed to make turn: %w", err)
	}

	if that.learning != nil {
		if err = that.learning.RecordMove(ctx, pos, len(result.Lines) > 0); err != nil {
			that.logger.Error("failed to record bot move", "cell", pos, "error", err)
		}
	}

	return result, nil
}

// candidateCells - empty cells within the view radius of center, expanding
// the radius one step at a time until at least one is found. The board is
// unbounded, so expansion terminates; the cap is purely defensive.
func candidateCells(board *entity.Board, center entity.Coordinate, radius int) ([]entity.Coordinate, error) {
	for grow := 0; grow <= maxRadiusGrowth; grow++ {
		if cells := emptyCellsWithin(board, center, radius+grow); len(cells) > 0 {
			return cells, nil
		}
	}

	return nil, apperror.ErrNoMoveAvailable
}

// emptyCellsWithin enumerates empty cells in lexicographic order, which keeps
// move selection reproducible for a given board.
func emptyCellsWithin(board *entity.Board, center entity.Coordinate, radius int) []entity.Coordinate {
	var cells []entity.Coordinate

	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			pos := center.Add(dx, dy)
			if board.Get(pos) == entity.EmptyCell {
				cells = append(cells, pos)
			}
		}
	}

	return cells
}

func opponentOf(mark string) string {
	if mark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
