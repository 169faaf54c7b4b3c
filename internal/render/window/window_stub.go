//go:build !ebiten

package window

import (
	"context"
	"errors"

	"led-life/internal/render"
)

// ErrNotBuilt is returned when the binary was built without the ebiten tag.
var ErrNotBuilt = errors.New("the window backend requires building with the 'ebiten' tag (go build -tags ebiten ./cmd/life)")

func init() {
	render.Register("window", func(context.Context, render.Size, map[string]string) (render.Panel, error) {
		return nil, ErrNotBuilt
	})
}
