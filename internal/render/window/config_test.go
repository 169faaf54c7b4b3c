package window

import (
	"testing"
	"time"
)

func TestFromMapDefaults(t *testing.T) {
	if got := FromMap(nil); got != DefaultConfig() {
		t.Fatalf("FromMap(nil)=%+v, expected defaults", got)
	}
}

func TestFromMapOverrides(t *testing.T) {
	c := FromMap(map[string]string{
		"scale": "4",
		"tps":   "30",
		"title": "life",
		"hold":  "2s",
		"hud":   "false",
	})
	if c.Scale != 4 || c.TPS != 30 || c.Title != "life" || c.Hold != 2*time.Second || c.HUD {
		t.Fatalf("unexpected config %+v", c)
	}
}

func TestFromMapIgnoresInvalidValues(t *testing.T) {
	c := FromMap(map[string]string{
		"scale": "0",
		"tps":   "fast",
		"hold":  "-1s",
		"hud":   "maybe",
	})
	def := DefaultConfig()
	if c.Scale != def.Scale || c.TPS != def.TPS || c.Hold != def.Hold || c.HUD != def.HUD {
		t.Fatalf("invalid values should keep defaults, got %+v", c)
	}
}

func TestTitle(t *testing.T) {
	if got := title("led-life", 12); got != "led-life - generation 12" {
		t.Fatalf("title=%q", got)
	}
}
