package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Coordinate is a cell position on the unbounded grid. Both axes are signed
// integers with no bound on magnitude.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String - renders the coordinate in the "x,y" wire format.
func (that Coordinate) String() string {
	return strconv.Itoa(that.X) + "," + strconv.Itoa(that.Y)
}

// ParseCoordinate - parses the "x,y" wire format used by the network relay.
func ParseCoordinate(raw string) (Coordinate, error) {
	xPart, yPart, ok := strings.Cut(strings.TrimSpace(raw), ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, raw)
	}

	x, err := strconv.Atoi(strings.TrimSpace(xPart))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, raw)
	}

	y, err := strconv.Atoi(strings.TrimSpace(yPart))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, raw)
	}

	return Coordinate{X: x, Y: y}, nil
}

func (that Coordinate) Add(dx, dy int) Coordinate {
	return Coordinate{X: that.X + dx, Y: that.Y + dy}
}

// Chebyshev - max-axis distance between two coordinates.
func (that Coordinate) Chebyshev(other Coordinate) int {
	dx := abs(that.X - other.X)
	dy := abs(that.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Less - lexicographic order, used wherever a deterministic cell enumeration
// is required.
func (that Coordinate) Less(other Coordinate) bool {
	if that.X != other.X {
		return that.X < other.X
	}
	return that.Y < other.Y
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
