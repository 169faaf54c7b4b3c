// Package render defines the panel abstraction the simulation paints into and
// the registry of concrete output backends.
package render

import (
	"context"

	"led-life/internal/core"
)

// Color is an RGB triple applied to live cells.
type Color struct {
	R, G, B uint8
}

// Black is the color of dead cells and of a cleared panel.
var Black = Color{}

// RandomColor returns a color with every channel in [1, 255], so live cells
// never blend into the black background.
func RandomColor(rng *core.RNG) Color {
	return Color{
		R: uint8(rng.IntRange(1, 255)),
		G: uint8(rng.IntRange(1, 255)),
		B: uint8(rng.IntRange(1, 255)),
	}
}

// Panel is an addressable RGB output surface. x is the grid column and y the
// grid row.
type Panel interface {
	Clear()
	SetPixel(x, y int, r, g, b uint8)
}

// Presenter is implemented by panels that buffer pixels until a frame is
// complete. Present is called once per painted frame.
type Presenter interface {
	Present(generation int) error
}

// Host is implemented by backends that must own the calling goroutine, such as
// a GUI event loop. Host runs sim alongside the backend loop and returns once
// both have finished. Cancelling ctx or closing the backend stops sim.
type Host interface {
	Host(ctx context.Context, sim func(context.Context) error) error
}

// Paint clears the panel and sets every pixel of the grid: black for dead
// cells, c for live ones, in row-major order.
func Paint(p Panel, g *core.Grid, c Color) {
	p.Clear()
	cells := g.Cells()
	cols := g.Cols()
	for y := 0; y < g.Rows(); y++ {
		row := cells[g.Index(y, 0) : g.Index(y, 0)+cols]
		for x, cell := range row {
			if cell.IsAlive() {
				p.SetPixel(x, y, c.R, c.G, c.B)
				continue
			}
			p.SetPixel(x, y, 0, 0, 0)
		}
	}
}
