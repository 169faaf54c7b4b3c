//go:build !linux

package hub75

import (
	"context"
	"errors"

	"led-life/internal/render"
)

// ErrUnsupported is returned on platforms without GPIO character devices.
var ErrUnsupported = errors.New("the hub75 backend requires linux GPIO character devices")

func init() {
	render.Register("hub75", func(context.Context, render.Size, map[string]string) (render.Panel, error) {
		return nil, ErrUnsupported
	})
}
