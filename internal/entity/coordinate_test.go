package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	t.Run("Parses a plain coordinate pair", func(t *testing.T) {
		// Given: a wire-format coordinate line
		raw := "3,-2"

		// When: parsing it
		pos, err := ParseCoordinate(raw)

		// Then: both axes are decoded
		require.NoError(t, err)
		assert.Equal(t, Coordinate{X: 3, Y: -2}, pos)
	})

	t.Run("Tolerates surrounding whitespace", func(t *testing.T) {
		// Given: a line with stray spaces, as a newline-stripped read produces
		raw := "  -7 , 12 \r"

		// When: parsing it
		pos, err := ParseCoordinate(raw)

		// Then: the coordinate parses cleanly
		require.NoError(t, err)
		assert.Equal(t, Coordinate{X: -7, Y: 12}, pos)
	})

	t.Run("Rejects malformed input", func(t *testing.T) {
		// Given: inputs that are not "x,y" pairs of integers
		for _, raw := range []string{"", "5", "a,b", "1;2", "1,2,3", "1.5,2"} {
			// When: parsing them
			_, err := ParseCoordinate(raw)

			// Then: each is rejected with ErrMalformedCoordinate
			assert.ErrorIs(t, err, ErrMalformedCoordinate, "input %q", raw)
		}
	})

	t.Run("String round-trips through ParseCoordinate", func(t *testing.T) {
		// Given: a coordinate with negative components
		pos := Coordinate{X: -31, Y: 8}

		// When: rendering and re-parsing it
		parsed, err := ParseCoordinate(pos.String())

		// Then: the original coordinate comes back
		require.NoError(t, err)
		assert.Equal(t, pos, parsed)
	})
}

func TestCoordinate_Chebyshev(t *testing.T) {
	// Given: two coordinates differing more on the y axis
	a := Coordinate{X: 1, Y: -4}
	b := Coordinate{X: 3, Y: 2}

	// When: measuring the distance both ways
	// Then: the larger axis delta wins and the metric is symmetric
	assert.Equal(t, 6, a.Chebyshev(b))
	assert.Equal(t, 6, b.Chebyshev(a))
	assert.Equal(t, 0, a.Chebyshev(a))
}

func TestCoordinate_Less(t *testing.T) {
	// Given: coordinates ordered by x first, then y
	assert.True(t, Coordinate{X: -1, Y: 100}.Less(Coordinate{X: 0, Y: -100}))
	assert.True(t, Coordinate{X: 2, Y: 1}.Less(Coordinate{X: 2, Y: 3}))
	assert.False(t, Coordinate{X: 2, Y: 3}.Less(Coordinate{X: 2, Y: 3}))
}
