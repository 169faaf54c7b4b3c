// Package hub75 drives a HUB75 RGB LED matrix directly over GPIO character
// devices.
//
// The panel is refreshed with binary-coded modulation: each color channel is
// reduced to PWMBits bit planes, and every plane is shifted out row pair by row
// pair and held for a time proportional to its weight. A frame is scanned
// repeatedly for FrameTime so it stays lit between generations.
package hub75

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Pins maps HUB75 signals to GPIO line offsets on Chip.
type Pins struct {
	R1, G1, B1 int // upper half data
	R2, G2, B2 int // lower half data
	CLK        int
	OE         int // output enable, active low
	LAT        int
	A, B, C, D int
	E          int // only used by 64-row panels
}

// DefaultPins returns the Adafruit RGB Matrix Bonnet mapping.
func DefaultPins() Pins {
	return Pins{
		R1: 5, G1: 13, B1: 6,
		R2: 12, G2: 16, B2: 23,
		CLK: 17, OE: 4, LAT: 21,
		A: 22, B: 26, C: 27, D: 20, E: 24,
	}
}

// Config controls the HUB75 backend.
type Config struct {
	Chip       string
	Pins       Pins
	PWMBits    int
	Brightness int // percent, 1..100
	// RGBSequence is the order in which the panel's R, G and B inputs take
	// the red, green and blue channels, for example "RBG".
	RGBSequence string
	// Inverse drives the data lines active low.
	Inverse bool
	// Slowdown holds CLK and LAT high for this many extra writes.
	Slowdown int
	// LSBTime is how long the least significant bit plane of a row stays lit.
	LSBTime time.Duration
	// FrameTime is the minimum time each generation is kept on the panel.
	FrameTime time.Duration
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Chip:        "gpiochip0",
		Pins:        DefaultPins(),
		PWMBits:     3,
		Brightness:  100,
		RGBSequence: "RGB",
		LSBTime:     80 * time.Microsecond,
		FrameTime:   100 * time.Millisecond,
	}
}

// FromMap populates a Config from a string map. Pins are set with pin_<name>
// keys, for example pin_r1=5 or pin_oe=4.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["chip"]; ok && v != "" {
		c.Chip = v
	}
	if v, ok := cfg["pwm_bits"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 8 {
			c.PWMBits = parsed
		}
	}
	if v, ok := cfg["brightness"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 100 {
			c.Brightness = parsed
		}
	}
	if v, ok := cfg["rgb_sequence"]; ok {
		if _, err := channelOrder(v); err == nil {
			c.RGBSequence = strings.ToUpper(v)
		}
	}
	if v, ok := cfg["inverse"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Inverse = parsed
		}
	}
	if v, ok := cfg["slowdown"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 4 {
			c.Slowdown = parsed
		}
	}
	if v, ok := cfg["lsb_time"]; ok {
		if parsed, err := time.ParseDuration(v); err == nil && parsed >= 0 {
			c.LSBTime = parsed
		}
	}
	if v, ok := cfg["frame_time"]; ok {
		if parsed, err := time.ParseDuration(v); err == nil && parsed >= 0 {
			c.FrameTime = parsed
		}
	}
	for name, dst := range c.Pins.byName() {
		if v, ok := cfg["pin_"+name]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
				*dst = parsed
			}
		}
	}
	return c
}

func (p *Pins) byName() map[string]*int {
	return map[string]*int{
		"r1": &p.R1, "g1": &p.G1, "b1": &p.B1,
		"r2": &p.R2, "g2": &p.G2, "b2": &p.B2,
		"clk": &p.CLK, "oe": &p.OE, "lat": &p.LAT,
		"a": &p.A, "b": &p.B, "c": &p.C, "d": &p.D, "e": &p.E,
	}
}

// channelOrder maps each of the panel's R, G and B inputs to the index of the
// color channel it takes, given a permutation of "RGB".
func channelOrder(seq string) ([3]int, error) {
	var order [3]int
	seq = strings.ToUpper(seq)
	if len(seq) != 3 {
		return order, fmt.Errorf("rgb sequence %q must be a permutation of RGB", seq)
	}
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		idx := strings.IndexByte("RGB", seq[i])
		if idx < 0 || seen[seq[i]] {
			return order, fmt.Errorf("rgb sequence %q must be a permutation of RGB", seq)
		}
		seen[seq[i]] = true
		order[i] = idx
	}
	return order, nil
}

// addressLines returns how many row address lines a panel of height h needs.
func addressLines(h int) (int, error) {
	if h <= 0 || h%2 != 0 {
		return 0, fmt.Errorf("panel height must be a positive even number, got %d", h)
	}
	half := h / 2
	n := 0
	for 1<<n < half {
		n++
	}
	if n > 5 {
		return 0, fmt.Errorf("panel height %d needs more than 5 address lines", h)
	}
	return n, nil
}
