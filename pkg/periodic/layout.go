package periodic

import (
	"errors"
	"fmt"

	"github.com/jreel/js-chem/pkg/elements"
)

// ErrUnknownSize is returned for a Size that has no layout.
var ErrUnknownSize = errors.New("unknown table size")

// Size selects the shape of the table.
type Size string

const (
	// SizeTypical is the common 18-column table with the f-block in two
	// detached rows underneath.
	SizeTypical Size = "typical"
	// SizeLong places the f-block between the s- and d-blocks (32 columns).
	SizeLong Size = "long"
	// SizeCompact is the 18-column table without the detached f-block rows.
	SizeCompact Size = "compact"
	// SizeMain shows only the s- and p-blocks.
	SizeMain Size = "main"
	// SizeLeftStep is Janet's left-step table, ordered f, d, p, s.
	SizeLeftStep Size = "leftstep"
)

// Sizes lists every supported size.
var Sizes = []Size{SizeTypical, SizeLong, SizeCompact, SizeMain, SizeLeftStep}

// Cell is one position of a Grid. Rows and columns are 1-based.
type Cell struct {
	Row     int
	Col     int
	Element *elements.Element
	// Marker is the placeholder text shown where a detached series belongs.
	Marker string
	// Series is "lanthanide" or "actinide" for marker cells that carry a class.
	Series string
}

// Empty reports whether the cell holds neither an element nor a marker.
func (c Cell) Empty() bool {
	return c.Element == nil && c.Marker == ""
}

// Grid is a computed table layout.
type Grid struct {
	Size  Size
	Rows  int
	Cols  int
	cells []Cell
}

func newGrid(size Size, rows, cols int) *Grid {
	g := &Grid{Size: size, Rows: rows, Cols: cols, cells: make([]Cell, rows*cols)}
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			g.cells[(r-1)*cols+c-1] = Cell{Row: r, Col: c}
		}
	}
	return g
}

// At returns the cell at row r and column c, or nil if it is out of range.
func (g *Grid) At(r, c int) *Cell {
	if r < 1 || r > g.Rows || c < 1 || c > g.Cols {
		return nil
	}
	return &g.cells[(r-1)*g.Cols+c-1]
}

// Row returns the cells of row r from left to right.
func (g *Grid) Row(r int) []Cell {
	if r < 1 || r > g.Rows {
		return nil
	}
	return g.cells[(r-1)*g.Cols : r*g.Cols]
}

// Elements returns the placed elements in reading order.
func (g *Grid) Elements() []elements.Element {
	var out []elements.Element
	for _, c := range g.cells {
		if c.Element != nil {
			out = append(out, *c.Element)
		}
	}
	return out
}

type placement struct {
	rows, cols int
	// place returns the position of e, or ok=false to leave it out.
	place   func(e elements.Element) (row, col int, ok bool)
	markers []Cell
}

var placements = map[Size]placement{
	SizeTypical: {
		rows: 10, cols: 18,
		place: func(e elements.Element) (int, int, bool) {
			if e.IsSeries() {
				return e.Period + 3, e.Column(), true
			}
			return e.Period, e.Column(), true
		},
		markers: []Cell{
			{Row: 6, Col: 3, Marker: "*", Series: "lanthanide"},
			{Row: 9, Col: 2, Marker: "*"},
			{Row: 7, Col: 3, Marker: "**", Series: "actinide"},
			{Row: 10, Col: 2, Marker: "**"},
		},
	},
	SizeLong: {
		rows: 7, cols: 32,
		place: func(e elements.Element) (int, int, bool) {
			if !e.IsSeries() && e.Column() >= 4 {
				return e.Period, e.Column() + 14, true
			}
			return e.Period, e.Column(), true
		},
	},
	SizeCompact: {
		rows: 7, cols: 18,
		place: func(e elements.Element) (int, int, bool) {
			if e.IsSeries() {
				return 0, 0, false
			}
			return e.Period, e.Column(), true
		},
		markers: []Cell{
			{Row: 6, Col: 3, Marker: "*", Series: "lanthanide"},
			{Row: 7, Col: 3, Marker: "**", Series: "actinide"},
		},
	},
	SizeMain: {
		rows: 7, cols: 8,
		place: func(e elements.Element) (int, int, bool) {
			switch g := e.Column(); {
			case e.IsSeries():
				return 0, 0, false
			case g <= 2:
				return e.Period, g, true
			case g >= 13:
				return e.Period, g - 10, true
			}
			return 0, 0, false
		},
	},
	SizeLeftStep: {
		rows: 8, cols: 32,
		place: func(e elements.Element) (int, int, bool) {
			g := e.Column()
			switch e.Block {
			case "s":
				if g == 18 {
					// Helium heads the alkaline earth column.
					return e.Period, 32, true
				}
				return e.Period, 30 + g, true
			case "f":
				if g == 17 {
					// Lutetium and lawrencium complete the d-block.
					return e.Period + 1, 15, true
				}
				return e.Period + 1, g - 2, true
			case "d":
				return e.Period + 1, 15 + g - 3, true
			case "p":
				return e.Period + 1, 25 + g - 13, true
			}
			return 0, 0, false
		},
	},
}

// Layout places els on a grid of the given size. Elements that the size
// does not show are skipped; an element whose position falls outside the
// grid or collides with another is an error.
func Layout(els []elements.Element, size Size) (*Grid, error) {
	p, ok := placements[size]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSize, size)
	}
	g := newGrid(size, p.rows, p.cols)
	for _, m := range p.markers {
		*g.At(m.Row, m.Col) = m
	}
	for i := range els {
		r, c, show := p.place(els[i])
		if !show {
			continue
		}
		cell := g.At(r, c)
		if cell == nil {
			return nil, fmt.Errorf("%s does not fit a %s table (row %d, column %d)", els[i].Symbol, size, r, c)
		}
		if !cell.Empty() {
			return nil, fmt.Errorf("%s collides with another entry at row %d, column %d", els[i].Symbol, r, c)
		}
		e := els[i]
		cell.Element = &e
	}
	return g, nil
}
