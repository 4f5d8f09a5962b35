package core

import "fmt"

// TemplateMark is the fixed designation of a template cell.
type TemplateMark uint8

const (
	MarkOpen TemplateMark = iota
	MarkOutline
	MarkWall
	MarkReserved // player start zone, soft walls never spawn here
)

// Template marks permanent walls and no-spawn zones. It is immutable after parsing.
type Template struct {
	rows, cols int
	marks      []TemplateMark
}

// DefaultTemplateRows is the classic 13x15 arena.
//
//	'#' outline, 'W' wall, 'x' reserved start zone, '.' open
var DefaultTemplateRows = []string{
	"###############",
	"#xx.........xx#",
	"#xW.W.W.W.W.Wx#",
	"#x...........x#",
	"#.W.W.W.W.W.W.#",
	"#.............#",
	"#.W.W.W.W.W.W.#",
	"#.............#",
	"#.W.W.W.W.W.W.#",
	"#x...........x#",
	"#xW.W.W.W.W.Wx#",
	"#xx.........xx#",
	"###############",
}

// DefaultTemplate returns the classic arena template
func DefaultTemplate() *Template {
	return MustParseTemplate(DefaultTemplateRows)
}

// ParseTemplate builds a template from its text rows. The template must be
// rectangular and its border must consist only of outline cells, which keeps
// every blast ray inside the grid.
func ParseTemplate(rows []string) (*Template, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty template", ErrInvalidTemplate)
	}
	t := &Template{
		rows:  len(rows),
		cols:  len(rows[0]),
		marks: make([]TemplateMark, len(rows)*len(rows[0])),
	}
	for r, line := range rows {
		if len(line) != t.cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidTemplate, r, len(line), t.cols)
		}
		for c := 0; c < len(line); c++ {
			var m TemplateMark
			switch line[c] {
			case '#':
				m = MarkOutline
			case 'W':
				m = MarkWall
			case 'x':
				m = MarkReserved
			case '.', ' ':
				m = MarkOpen
			default:
				return nil, fmt.Errorf("%w: unknown symbol %q at (%d,%d)", ErrInvalidTemplate, line[c], r, c)
			}
			t.marks[r*t.cols+c] = m
		}
	}
	for idx, m := range t.marks {
		c := FromIndex(idx, t.cols)
		onBorder := c.Row == 0 || c.Col == 0 || c.Row == t.rows-1 || c.Col == t.cols-1
		if onBorder && m != MarkOutline {
			return nil, fmt.Errorf("%w: border cell %s is not an outline", ErrInvalidTemplate, c)
		}
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error
func MustParseTemplate(rows []string) *Template {
	t, err := ParseTemplate(rows)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) Rows() int { return t.rows }
func (t *Template) Cols() int { return t.cols }

func (t *Template) InBounds(c Coordinate) bool { return c.IsValid(t.rows, t.cols) }

// Mark returns the template designation at c
func (t *Template) Mark(c Coordinate) TemplateMark {
	return t.marks[c.ToIndex(t.cols)]
}

// IsSpawnable reports whether a soft wall may be placed at c
func (t *Template) IsSpawnable(c Coordinate) bool {
	return t.Mark(c) == MarkOpen
}

// BaseGrid returns a grid holding only the template's permanent cells
func (t *Template) BaseGrid() *Grid {
	g := NewGrid(t.rows, t.cols)
	for idx, m := range t.marks {
		switch m {
		case MarkOutline:
			g.C[idx] = CellOutline
		case MarkWall:
			g.C[idx] = CellWall
		}
	}
	return g
}
