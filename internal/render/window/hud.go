//go:build ebiten

package window

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const hudPadding = 4

// hud draws the generation counter and live cell count over the top-left
// corner of the window. H toggles it.
type hud struct {
	visible bool
	pixel   *ebiten.Image
}

func newHUD(visible bool) *hud {
	h := &hud{visible: visible}
	h.pixel = ebiten.NewImage(1, 1)
	h.pixel.Fill(color.White)
	return h
}

func (h *hud) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		h.visible = !h.visible
	}
}

func (h *hud) Draw(screen *ebiten.Image, generation, live int) {
	if !h.visible {
		return
	}
	face := basicfont.Face7x13
	line := fmt.Sprintf("gen %d  live %d", generation, live)
	bounds := text.BoundString(face, line)

	bg := color.RGBA{R: 24, G: 26, B: 32, A: 200}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(bounds.Dx()+2*hudPadding), float64(face.Height+2*hudPadding))
	op.ColorM.Scale(float64(bg.R)/255.0, float64(bg.G)/255.0, float64(bg.B)/255.0, float64(bg.A)/255.0)
	screen.DrawImage(h.pixel, op)

	text.Draw(screen, line, face, hudPadding, hudPadding+face.Ascent, color.RGBA{R: 220, G: 220, B: 230, A: 255})
}
