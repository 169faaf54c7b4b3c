//go:build linux

package hub75

import (
	"context"

	"github.com/warthog618/go-gpiocdev"

	"led-life/internal/ctxlog"
	"led-life/internal/render"
)

// Open requests the panel's GPIO lines on cfg.Chip as outputs.
func Open(ctx context.Context, size render.Size, cfg Config) (*Panel, error) {
	logger := ctxlog.FromContext(ctx).With("backend", "hub75", "chip", cfg.Chip)
	logger.Info("requesting GPIO lines", "width", size.W, "height", size.H, "pwm_bits", cfg.PWMBits)

	p, err := newPanel(size, cfg, func(offset int) (line, error) {
		l, err := gpiocdev.RequestLine(cfg.Chip, offset, gpiocdev.AsOutput(0))
		if err != nil {
			return nil, err
		}
		logger.Debug("requested GPIO line", "offset", offset)
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func init() {
	render.Register("hub75", func(ctx context.Context, size render.Size, opts map[string]string) (render.Panel, error) {
		return Open(ctx, size, FromMap(opts))
	})
}
