// Package window shows the simulation in a desktop window using ebiten. The
// real backend needs the ebiten build tag; without it the backend reports how
// to enable it.
package window

import (
	"fmt"
	"strconv"
	"time"
)

// Config controls the window backend.
type Config struct {
	Scale int
	TPS   int
	Title string
	// HUD shows the generation counter in the window; H toggles it.
	HUD bool
	// Hold keeps the last frame on screen after the run ends, until the
	// window is closed or the duration elapses.
	Hold time.Duration
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Scale: 10, TPS: 60, Title: "led-life", HUD: true}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["scale"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Scale = parsed
		}
	}
	if v, ok := cfg["tps"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.TPS = parsed
		}
	}
	if v, ok := cfg["title"]; ok && v != "" {
		c.Title = v
	}
	if v, ok := cfg["hud"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.HUD = parsed
		}
	}
	if v, ok := cfg["hold"]; ok {
		if parsed, err := time.ParseDuration(v); err == nil && parsed >= 0 {
			c.Hold = parsed
		}
	}
	return c
}

// title labels the window with the generation on screen.
func title(base string, generation int) string {
	return fmt.Sprintf("%s - generation %d", base, generation)
}
