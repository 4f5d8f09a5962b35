package core

import "strings"

// CellKind is what currently occupies a grid cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellOutline
	CellWall
	CellSoftWall
	CellBomb
)

func (k CellKind) IsEmpty() bool { return k == CellEmpty }

// IsPermanent reports whether the cell can never be destroyed by a blast
func (k CellKind) IsPermanent() bool { return k == CellOutline || k == CellWall }

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellOutline:
		return "outline"
	case CellWall:
		return "wall"
	case CellSoftWall:
		return "soft_wall"
	case CellBomb:
		return "bomb"
	default:
		return "unknown"
	}
}

// Symbol returns the single character used in text dumps of the grid
func (k CellKind) Symbol() byte {
	switch k {
	case CellOutline:
		return '#'
	case CellWall:
		return 'W'
	case CellSoftWall:
		return 'S'
	case CellBomb:
		return 'B'
	default:
		return '.'
	}
}

// Grid is the fixed-size cell matrix of a level.
type Grid struct {
	Rows, Cols int
	C          []CellKind // length = Rows*Cols (row-major)
}

func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, C: make([]CellKind, rows*cols)}
}

func (g *Grid) Idx(c Coordinate) int            { return c.Row*g.Cols + c.Col }
func (g *Grid) Coord(idx int) Coordinate        { return FromIndex(idx, g.Cols) }
func (g *Grid) InBounds(c Coordinate) bool      { return c.IsValid(g.Rows, g.Cols) }
func (g *Grid) At(c Coordinate) CellKind        { return g.C[g.Idx(c)] }
func (g *Grid) Set(c Coordinate, kind CellKind) { g.C[g.Idx(c)] = kind }
func (g *Grid) Size() int                       { return len(g.C) }

// Row returns the cells of row r; the slice aliases the grid.
func (g *Grid) Row(r int) []CellKind {
	return g.C[r*g.Cols : (r+1)*g.Cols]
}

// Count returns the number of cells of the given kind
func (g *Grid) Count(kind CellKind) int {
	n := 0
	for _, k := range g.C {
		if k == kind {
			n++
		}
	}
	return n
}

func (g *Grid) Clone() *Grid {
	c := &Grid{Rows: g.Rows, Cols: g.Cols, C: make([]CellKind, len(g.C))}
	copy(c.C, g.C)
	return c
}

// String renders the grid one row per line using CellKind symbols
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.Rows * (g.Cols + 1))
	for r := 0; r < g.Rows; r++ {
		for _, k := range g.Row(r) {
			sb.WriteByte(k.Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
