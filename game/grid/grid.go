package grid

import (
	"fmt"
	"strings"
)

// directions in expansion order: down, right, up, left
var directions = [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// Grid is a width×height array of cell kinds stored row-major.
type Grid struct {
	width  int
	height int
	cells  []CellKind
}

// New creates an open grid and applies the placement.
// A reward or hazard aimed at a cell that is already special is ignored.
func New(width, height int, p Placement) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}

	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]CellKind, width*height),
	}
	for i := range g.cells {
		g.cells[i] = Open
	}

	if err := g.place(p.Obstacles, Obstacle); err != nil {
		return nil, err
	}
	if err := g.place(p.Rewards, Reward); err != nil {
		return nil, err
	}
	if err := g.place(p.Hazards, Hazard); err != nil {
		return nil, err
	}

	return g, nil
}

// place sets kind on each coordinate that is still open
func (g *Grid) place(coords []Coordinate, kind CellKind) error {
	for _, c := range coords {
		if !g.InBounds(c) {
			return fmt.Errorf("%w: %s placement at %s", ErrOutOfBounds, kind, c)
		}
		i := g.index(c)
		if g.cells[i] == Open {
			g.cells[i] = kind
		}
	}
	return nil
}

// FromLayout parses rows of layout characters into a grid
func FromLayout(rows []string) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: layout is empty", ErrInvalidDimensions)
	}

	width := len(rows[0])
	g := &Grid{
		width:  width,
		height: len(rows),
		cells:  make([]CellKind, width*len(rows)),
	}

	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidLayout, y, len(row), width)
		}
		for x := 0; x < width; x++ {
			kind, ok := KindFromChar(row[x])
			if !ok {
				return nil, fmt.Errorf("%w: unknown character %q at (%d,%d)", ErrInvalidLayout, row[x], x, y)
			}
			g.cells[y*width+x] = kind
		}
	}

	return g, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds reports whether c lies inside the grid
func (g *Grid) InBounds(c Coordinate) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

func (g *Grid) index(c Coordinate) int {
	return c.Y*g.width + c.X
}

// At returns the kind of the cell at c
func (g *Grid) At(c Coordinate) (CellKind, error) {
	if !g.InBounds(c) {
		return "", fmt.Errorf("%w: %s in %dx%d grid", ErrOutOfBounds, c, g.width, g.height)
	}
	return g.cells[g.index(c)], nil
}

// Set replaces the kind of the cell at c
func (g *Grid) Set(c Coordinate, kind CellKind) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s in %dx%d grid", ErrOutOfBounds, c, g.width, g.height)
	}
	g.cells[g.index(c)] = kind
	return nil
}

// Normalize forces each coordinate to Open. Start and goal cells go through here
// so that neither can hold an obstacle.
func (g *Grid) Normalize(coords ...Coordinate) error {
	for _, c := range coords {
		if err := g.Set(c, Open); err != nil {
			return err
		}
	}
	return nil
}

// TraversalCost returns the cost of entering c. Obstacles return ErrImpassable;
// every other kind costs 1. Reward and hazard effects are not part of the cost.
func (g *Grid) TraversalCost(c Coordinate) (int, error) {
	kind, err := g.At(c)
	if err != nil {
		return 0, err
	}
	if kind == Obstacle {
		return 0, ErrImpassable
	}
	return 1, nil
}

// Neighbors returns the in-bounds cells one axis-aligned step away from c
func (g *Grid) Neighbors(c Coordinate) []Coordinate {
	out := make([]Coordinate, 0, 4)
	for _, d := range directions {
		n := c.Add(d[0], d[1])
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	cells := make([]CellKind, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// Count returns how many cells hold kind
func (g *Grid) Count(kind CellKind) int {
	n := 0
	for _, k := range g.cells {
		if k == kind {
			n++
		}
	}
	return n
}

// Rows renders the grid in layout form, one string per row
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	buf := make([]byte, g.width)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			buf[x] = g.cells[y*g.width+x].Char()
		}
		rows[y] = string(buf)
	}
	return rows
}

// String renders the grid as newline-separated layout rows
func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}
