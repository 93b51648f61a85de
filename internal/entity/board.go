package entity

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rocketscienceinc/infinitettt-backend/internal/apperror"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

// bucketSize is the edge length of one coarse-grid bucket of the spatial
// index. Neighborhood queries touch only the buckets overlapping the query
// square, so they stay sub-linear as the board grows.
const bucketSize = 8

type bucketKey struct {
	X, Y int
}

// Cell pairs an occupied coordinate with its mark, for snapshots.
type Cell struct {
	Pos  Coordinate `json:"pos"`
	Mark string     `json:"mark"`
}

// Board is the sparse mapping from coordinate to mark and the sole source of
// truth for board state. A coordinate is present iff it is occupied; absence
// means empty. There are no bounds on the key space.
type Board struct {
	cells   map[Coordinate]string
	buckets map[bucketKey]map[Coordinate]struct{}
}

func NewBoard() *Board {
	return &Board{
		cells:   make(map[Coordinate]string),
		buckets: make(map[bucketKey]map[Coordinate]struct{}),
	}
}

// Place - inserts mark at pos. Returns ErrCellOccupied if pos is taken.
func (that *Board) Place(pos Coordinate, mark string) error {
	if _, ok := that.cells[pos]; ok {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, pos)
	}

	that.cells[pos] = mark

	key := bucketOf(pos)
	if that.buckets[key] == nil {
		that.buckets[key] = make(map[Coordinate]struct{})
	}
	that.buckets[key][pos] = struct{}{}

	return nil
}

// Remove - deletes the entry at pos. Removing an empty cell is a no-op, which
// keeps line clearing idempotent.
func (that *Board) Remove(pos Coordinate) {
	if _, ok := that.cells[pos]; !ok {
		return
	}

	delete(that.cells, pos)

	key := bucketOf(pos)
	delete(that.buckets[key], pos)
	if len(that.buckets[key]) == 0 {
		delete(that.buckets, key)
	}
}

// Get - returns the mark at pos, or EmptyCell when the cell is unoccupied.
func (that *Board) Get(pos Coordinate) string {
	return that.cells[pos]
}

func (that *Board) Len() int {
	return len(that.cells)
}

// OccupiedNear - returns the occupied coordinates within Chebyshev distance
// radius of center, in lexicographic order.
func (that *Board) OccupiedNear(center Coordinate, radius int) []Coordinate {
	var found []Coordinate

	loX := floorDiv(center.X-radius, bucketSize)
	hiX := floorDiv(center.X+radius, bucketSize)
	loY := floorDiv(center.Y-radius, bucketSize)
	hiY := floorDiv(center.Y+radius, bucketSize)

	for bx := loX; bx <= hiX; bx++ {
		for by := loY; by <= hiY; by++ {
			for pos := range that.buckets[bucketKey{X: bx, Y: by}] {
				if pos.Chebyshev(center) <= radius {
					found = append(found, pos)
				}
			}
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Less(found[j]) })

	return found
}

// SnapshotNear - returns the occupied cells within Chebyshev distance radius
// of center, ordered lexicographically, for rendering.
func (that *Board) SnapshotNear(center Coordinate, radius int) []Cell {
	coords := that.OccupiedNear(center, radius)

	cells := make([]Cell, 0, len(coords))
	for _, pos := range coords {
		cells = append(cells, Cell{Pos: pos, Mark: that.cells[pos]})
	}

	return cells
}

// Cells - returns every occupied cell in lexicographic order.
func (that *Board) Cells() []Cell {
	coords := make([]Coordinate, 0, len(that.cells))
	for pos := range that.cells {
		coords = append(coords, pos)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })

	cells := make([]Cell, 0, len(coords))
	for _, pos := range coords {
		cells = append(cells, Cell{Pos: pos, Mark: that.cells[pos]})
	}

	return cells
}

// Clone - returns an independent copy of the board. Move search simulates
// placements on clones so the live board is never touched.
func (that *Board) Clone() *Board {
	clone := NewBoard()
	for pos, mark := range that.cells {
		_ = clone.Place(pos, mark)
	}

	return clone
}

// MarshalJSON - serializes the board as a sparse {"x,y": mark} object.
func (that *Board) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(that.cells))
	for pos, mark := range that.cells {
		flat[pos.String()] = mark
	}

	return json.Marshal(flat)
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("failed to unmarshal board cells: %w", err)
	}

	that.cells = make(map[Coordinate]string, len(flat))
	that.buckets = make(map[bucketKey]map[Coordinate]struct{})

	for raw, mark := range flat {
		pos, err := ParseCoordinate(raw)
		if err != nil {
			return fmt.Errorf("failed to unmarshal board cell %q: %w", raw, err)
		}

		if err = that.Place(pos, mark); err != nil {
			return fmt.Errorf("failed to restore board cell %q: %w", raw, err)
		}
	}

	return nil
}

func bucketOf(pos Coordinate) bucketKey {
	return bucketKey{X: floorDiv(pos.X, bucketSize), Y: floorDiv(pos.Y, bucketSize)}
}

// floorDiv rounds toward negative infinity so negative coordinates land in
// the right bucket.
func floorDiv(a, n int) int {
	q := a / n
	if a%n != 0 && (a < 0) != (n < 0) {
		q--
	}

	return q
}
