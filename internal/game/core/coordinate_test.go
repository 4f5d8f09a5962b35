package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinate_IndexRoundTrip(t *testing.T) {
	cols := 15
	for idx := 0; idx < 13*cols; idx += 7 {
		c := FromIndex(idx, cols)
		assert.Equal(t, idx, c.ToIndex(cols))
	}
}

func TestCoordinate_Step(t *testing.T) {
	origin := NewCoordinate(5, 5)

	tests := []struct {
		dir      Direction
		n        int
		expected Coordinate
	}{
		{DirUp, 2, NewCoordinate(3, 5)},
		{DirDown, 3, NewCoordinate(8, 5)},
		{DirLeft, 1, NewCoordinate(5, 4)},
		{DirRight, 2, NewCoordinate(5, 7)},
		{DirNone, 4, origin},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, origin.Step(tt.dir, tt.n))
		})
	}
	assert.Equal(t, NewCoordinate(4, 5), origin.Add(DirUp))
}

func TestCoordinate_DistanceTo(t *testing.T) {
	a := NewCoordinate(1, 1)
	b := NewCoordinate(4, 3)
	assert.Equal(t, 5, a.DistanceTo(b))
	assert.Equal(t, 5, b.DistanceTo(a))
	assert.Equal(t, 0, a.DistanceTo(a))
}

func TestBlastDirections(t *testing.T) {
	seen := map[Direction]bool{}
	for _, d := range BlastDirections {
		assert.Equal(t, 1, abs(d.DRow)+abs(d.DCol), "direction %s must be a unit vector", d)
		seen[d] = true
	}
	assert.Len(t, seen, 4)
	assert.True(t, DirLeft.IsHorizontal())
	assert.True(t, DirUp.IsVertical())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
