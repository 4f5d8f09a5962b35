package core

import "fmt"

// Coordinate is a cell position on the grid. Row grows downwards, Col to the right.
type Coordinate struct {
	Row, Col int
}

// NewCoordinate creates a new coordinate with the given row and column
func NewCoordinate(row, col int) Coordinate {
	return Coordinate{Row: row, Col: col}
}

// FromIndex creates a coordinate from a row-major grid index
func FromIndex(idx, cols int) Coordinate {
	return Coordinate{
		Row: idx / cols,
		Col: idx % cols,
	}
}

// ToIndex converts the coordinate to a row-major grid index
func (c Coordinate) ToIndex(cols int) int {
	return c.Row*cols + c.Col
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(rows, cols int) bool {
	return c.Row >= 0 && c.Row < rows && c.Col >= 0 && c.Col < cols
}

// Add returns the coordinate moved by the direction vector
func (c Coordinate) Add(d Direction) Coordinate {
	return Coordinate{Row: c.Row + d.DRow, Col: c.Col + d.DCol}
}

// Step returns the coordinate n steps away in direction d
func (c Coordinate) Step(d Direction, n int) Coordinate {
	return Coordinate{Row: c.Row + d.DRow*n, Col: c.Col + d.DCol*n}
}

// DistanceTo calculates the Manhattan distance to another coordinate
func (c Coordinate) DistanceTo(other Coordinate) int {
	dr := c.Row - other.Row
	dc := c.Col - other.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Direction is a unit vector along one grid axis.
type Direction struct {
	DRow, DCol int
}

var (
	DirNone  = Direction{}
	DirUp    = Direction{DRow: -1}
	DirDown  = Direction{DRow: 1}
	DirLeft  = Direction{DCol: -1}
	DirRight = Direction{DCol: 1}
)

// BlastDirections is the order in which blast rays are walked.
var BlastDirections = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// IsHorizontal reports whether the direction runs along a row
func (d Direction) IsHorizontal() bool { return d.DCol != 0 }

// IsVertical reports whether the direction runs along a column
func (d Direction) IsVertical() bool { return d.DRow != 0 }

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirNone:
		return "none"
	default:
		return fmt.Sprintf("(%d,%d)", d.DRow, d.DCol)
	}
}
