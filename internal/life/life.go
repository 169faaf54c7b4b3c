// Package life implements Conway's Game of Life on a toroidal core.Grid.
//
// The functions here are pure with respect to their grid arguments: they read
// the source, write only the destination they are given, and retain nothing.
package life

import (
	"fmt"

	"led-life/internal/core"
)

const (
	// seedRange is the number of equally likely draws per cell.
	seedRange = 8
	// seedAlive is the draw that makes a cell start alive (p = 1/seedRange).
	seedAlive = 0
)

// CreateInitialGrid returns a new rows x cols grid where every cell is
// independently alive with probability 1/8.
func CreateInitialGrid(rows, cols int, rng *core.RNG) (*core.Grid, error) {
	g, err := core.NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}
	cells := g.Cells()
	for i := range cells {
		if rng.IntN(seedRange) == seedAlive {
			cells[i] = core.Alive
		}
	}
	return g, nil
}

// CountLiveNeighbors sums the eight cells around (row, col) with wrap-around.
// On grids smaller than 3x3 a neighbor may be counted more than once, and a
// cell may count itself.
func CountLiveNeighbors(g *core.Grid, row, col int) int {
	rows, cols := g.Rows(), g.Cols()
	cells := g.Cells()
	neighbors := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			ny := ((row+dy)%rows + rows) % rows
			nx := ((col+dx)%cols + cols) % cols
			neighbors += cells[g.Index(ny, nx)].Int()
		}
	}
	return neighbors
}

// ComputeNextGeneration writes the successor of src into dst. Both grids must
// have the same dimensions; dst is overwritten and nothing is allocated.
func ComputeNextGeneration(src, dst *core.Grid) {
	mustMatch("ComputeNextGeneration", src, dst)
	cur, nxt := src.Cells(), dst.Cells()
	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			idx := src.Index(y, x)
			nxt[idx] = NextState(cur[idx], CountLiveNeighbors(src, y, x))
		}
	}
}

// NextState applies the B3/S23 rule to a single cell.
func NextState(c core.Cell, neighbors int) core.Cell {
	if neighbors == 3 || (neighbors == 2 && c.IsAlive()) {
		return core.Alive
	}
	return core.Dead
}

// GridsDiffer reports whether any cell differs between a and b. The scan is
// row-major and stops at the first difference.
func GridsDiffer(a, b *core.Grid) bool {
	mustMatch("GridsDiffer", a, b)
	bc := b.Cells()
	for i, c := range a.Cells() {
		if bc[i] != c {
			return true
		}
	}
	return false
}

func mustMatch(op string, a, b *core.Grid) {
	if !a.SameSize(b) {
		panic(fmt.Sprintf("life.%s: grid size mismatch %dx%d vs %dx%d", op, a.Rows(), a.Cols(), b.Rows(), b.Cols()))
	}
}
