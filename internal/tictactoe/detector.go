package tictactoe

import (
	"sort"

	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
)

// Line is an ordered triple of collinear, unit-spaced coordinates. A line is
// complete when all three cells hold the same mark.
type Line [3]entity.Coordinate

// Directions - the four axis directions a line can run along: horizontal,
// vertical, and the two diagonals.
var Directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// LinesThrough - returns every completed line of mark that passes through
// pos. For each direction the three length-3 windows containing pos are
// examined, so pos may be the first, second or third member of a triple.
// Multiple simultaneous lines are all reported.
func LinesThrough(board *entity.Board, pos entity.Coordinate, mark string) []Line {
	if mark == entity.EmptyCell || board.Get(pos) != mark {
		return nil
	}

	var lines []Line

	for _, dir := range Directions {
		for offset := -2; offset <= 0; offset++ {
			var line Line
			complete := true

			for i := range line {
				cell := pos.Add(dir[0]*(offset+i), dir[1]*(offset+i))
				if board.Get(cell) != mark {
					complete = false
					break
				}
				line[i] = cell
			}

			if complete {
				lines = append(lines, line)
			}
		}
	}

	return lines
}

// ClearLines - removes every cell belonging to any of the lines, each cell
// exactly once even when it is shared by two lines. Returns the cleared
// coordinates in lexicographic order.
func ClearLines(board *entity.Board, lines []Line) []entity.Coordinate {
	seen := make(map[entity.Coordinate]struct{})

	var cleared []entity.Coordinate
	for _, line := range lines {
		for _, cell := range line {
			if _, ok := seen[cell]; ok {
				continue
			}
			seen[cell] = struct{}{}

			board.Remove(cell)
			cleared = append(cleared, cell)
		}
	}

	sort.Slice(cleared, func(i, j int) bool { return cleared[i].Less(cleared[j]) })

	return cleared
}
