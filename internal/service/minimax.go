package service

import (
	"context"
	"math"

	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/tictactoe"
)

// lineValue is the weight of one cleared triple in the search. It dwarfs the
// threat heuristic and the learned bias so a concrete line always outranks a
// speculative one.
const lineValue = 100

// minimaxMove - depth-limited minimax with alpha-beta pruning over the
// bounded candidate neighborhood. Positions are valued by net cleared-line
// advantage for the bot; exhausted depth falls back to a two-in-a-row threat
// heuristic. Candidates arrive in lexicographic order and ties keep the
// first-found move, so the choice is deterministic.
func (that *botService) minimaxMove(ctx context.Context, board *entity.Board, candidates []entity.Coordinate, botMark string, level Level) entity.Coordinate {
	best := candidates[0]
	bestValue := math.MinInt / 2

	for _, pos := range candidates {
		next, lines := simulate(board, pos, botMark)

		// Each candidate is searched with a full window. A narrowed window
		// would let a cutoff return a bound instead of the exact value, and
		// the learned bias on top of a bound can flip the comparison.
		value := lines*lineValue + that.search(next, pos, opponentOf(botMark), botMark, level, level.SearchDepth-1, math.MinInt/2, math.MaxInt/2)
		value += that.learnedBias(ctx, pos)

		if value > bestValue {
			bestValue = value
			best = pos
		}
	}

	return best
}

// search - evaluates the position with mover to act. Candidate generation is
// re-bounded to the view radius around the previous move at every ply, which
// is what keeps recursion finite on an unbounded board.
func (that *botService) search(board *entity.Board, center entity.Coordinate, mover, botMark string, level Level, depth, alpha, beta int) int {
	if depth <= 0 {
		return threatScore(board, center, botMark, level.ViewRadius) - threatScore(board, center, opponentOf(botMark), level.ViewRadius)
	}

	candidates := emptyCellsWithin(board, center, level.ViewRadius)
	if len(candidates) == 0 {
		return threatScore(board, center, botMark, level.ViewRadius) - threatScore(board, center, opponentOf(botMark), level.ViewRadius)
	}

	maximizing := mover == botMark

	best := math.MinInt / 2
	if !maximizing {
		best = math.MaxInt / 2
	}

	for _, pos := range candidates {
		next, lines := simulate(board, pos, mover)
		reward := lines * lineValue

		// The child is searched in its own value frame: the line reward is
		// added to the child's result, so the bounds handed down must be
		// shifted by the same amount or cutoffs fire against stale numbers.
		if maximizing {
			value := reward + that.search(next, pos, opponentOf(mover), botMark, level, depth-1, alpha-reward, beta-reward)
			if value > best {
				best = value
			}
			if best > alpha {
				alpha = best
			}
		} else {
			value := that.search(next, pos, opponentOf(mover), botMark, level, depth-1, alpha+reward, beta+reward) - reward
			if value < best {
				best = value
			}
			if best < beta {
				beta = best
			}
		}

		if beta <= alpha {
			break
		}
	}

	return best
}

// simulate - plays mark at pos on a clone of the board, clears any completed
// lines, and reports how many lines the placement completed.
func simulate(board *entity.Board, pos entity.Coordinate, mark string) (*entity.Board, int) {
	next := board.Clone()
	_ = next.Place(pos, mark) // candidates are empty by construction

	lines := tictactoe.LinesThrough(next, pos, mark)
	tictactoe.ClearLines(next, lines)

	return next, len(lines)
}

// threatScore - counts the open two-in-a-row lines of mark near center. A
// pair is open when at least one of its extension cells is empty, so it can
// still grow into a triple. Deterministic and bounded by the neighborhood.
func threatScore(board *entity.Board, center entity.Coordinate, mark string, radius int) int {
	score := 0

	for _, pos := range board.OccupiedNear(center, radius) {
		if board.Get(pos) != mark {
			continue
		}

		for _, dir := range tictactoe.Directions {
			next := pos.Add(dir[0], dir[1])
			if board.Get(next) != mark {
				continue
			}

			before := pos.Add(-dir[0], -dir[1])
			after := pos.Add(2*dir[0], 2*dir[1])
			if board.Get(before) == entity.EmptyCell || board.Get(after) == entity.EmptyCell {
				score++
			}
		}
	}

	return score
}

// learnedBias - learned score for pos from earlier sessions; zero when the
// store is absent or unreadable. Never fails the move.
func (that *botService) learnedBias(ctx context.Context, pos entity.Coordinate) int {
	if that.learning == nil {
		return 0
	}

	score, err := that.learning.MoveScore(ctx, pos)
	if err != nil {
		that.logger.Debug("failed to read learned move score", "cell", pos, "error", err)
		return 0
	}

	return score
}
