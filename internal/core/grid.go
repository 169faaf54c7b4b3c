package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDimensions is returned when a grid is requested with a non-positive size.
var ErrInvalidDimensions = errors.New("grid dimensions must be positive")

// Cell is the binary state of a single grid position.
type Cell uint8

const (
	// Dead marks an empty cell.
	Dead Cell = iota
	// Alive marks a live cell.
	Alive
)

// Int returns 1 for a live cell and 0 otherwise, for neighbor sums.
func (c Cell) Int() int {
	if c == Alive {
		return 1
	}
	return 0
}

// IsAlive reports whether the cell is live.
func (c Cell) IsAlive() bool { return c == Alive }

// Grid stores a toroidal 2D grid of cells in row-major order. Its dimensions
// are fixed at construction.
type Grid struct {
	rows, cols int
	data       []Cell
}

// NewGrid allocates an all-dead grid with the given dimensions.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, rows, cols)
	}
	return &Grid{rows: rows, cols: cols, data: make([]Cell, rows*cols)}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// ParseGrid builds a grid from rows of text where '#' or 'O' is alive and
// anything else is dead. All rows must have the same length.
func ParseGrid(lines ...string) (*Grid, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}
	g, err := NewGrid(len(lines), len(lines[0]))
	if err != nil {
		return nil, err
	}
	for r, line := range lines {
		if len(line) != g.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", r, len(line), g.cols)
		}
		for c, ch := range line {
			if ch == '#' || ch == 'O' {
				g.data[g.Index(r, c)] = Alive
			}
		}
	}
	return g, nil
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid) Cells() []Cell { return g.data }

// Index returns the linear slice index for (row, col). No wrapping is applied.
func (g *Grid) Index(row, col int) int { return row*g.cols + col }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *Grid) Wrap(row, col int) (int, int) {
	row = (row%g.rows + g.rows) % g.rows
	col = (col%g.cols + g.cols) % g.cols
	return row, col
}

// At returns the cell at (row, col) with wrap-around indexing.
func (g *Grid) At(row, col int) Cell {
	row, col = g.Wrap(row, col)
	return g.data[g.Index(row, col)]
}

// Set stores a cell at (row, col) with wrap-around indexing.
func (g *Grid) Set(row, col int, c Cell) {
	row, col = g.Wrap(row, col)
	g.data[g.Index(row, col)] = c
}

// Population counts live cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.data {
		n += c.Int()
	}
	return n
}

// SameSize reports whether both grids have identical dimensions.
func (g *Grid) SameSize(o *Grid) bool {
	return g.rows == o.rows && g.cols == o.cols
}

// Equal reports whether both grids have the same size and contents.
func (g *Grid) Equal(o *Grid) bool {
	if !g.SameSize(o) {
		return false
	}
	for i, c := range g.data {
		if o.data[i] != c {
			return false
		}
	}
	return true
}

// String renders the grid as rows of '#' (alive) and '.' (dead).
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.data[g.Index(r, c)] == Alive {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
