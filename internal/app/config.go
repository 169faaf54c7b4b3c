package app

import (
	"errors"
	"flag"
	"fmt"
	"maps"
	"slices"
	"strings"

	"led-life/internal/sim"
)

// Config represents the full set of run parameters, from defaults, an
// optional HCL file and command-line flags.
type Config struct {
	ConfigFile string

	Rows        int
	Cols        int
	Generations int
	Seed        int64
	FPS         int
	ColorMode   string

	Backend        string
	BackendOptions map[string]string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// DefaultConfig returns a Config sized for a single 32x64 panel.
func DefaultConfig() *Config {
	s := sim.DefaultConfig()
	return &Config{
		Rows:           s.Rows,
		Cols:           s.Cols,
		Generations:    s.Generations,
		FPS:            s.FPS,
		ColorMode:      string(s.ColorMode),
		Backend:        "term",
		BackendOptions: map[string]string{},
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.BackendOptions = maps.Clone(c.BackendOptions)
	if out.BackendOptions == nil {
		out.BackendOptions = map[string]string{}
	}
	return &out
}

// Bind attaches the configuration to the provided FlagSet. Flag defaults are
// the current field values, so binding a file-loaded Config keeps the file's
// values for every flag left unset.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "HCL run file")
	fs.IntVar(&c.Rows, "rows", c.Rows, "panel height in cells")
	fs.IntVar(&c.Cols, "cols", c.Cols, "panel width in cells")
	fs.IntVar(&c.Generations, "generations", c.Generations, "maximum number of generations")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the initial grids and colors, 0 picks one from the clock")
	fs.IntVar(&c.FPS, "fps", c.FPS, "frames per second, 0 runs unthrottled")
	fs.StringVar(&c.ColorMode, "color", c.ColorMode, "color mode: 'frame' redraws every frame, 'run' keeps one color")
	fs.StringVar(&c.Backend, "backend", c.Backend, "render backend")
	if c.BackendOptions == nil {
		c.BackendOptions = map[string]string{}
	}
	fs.Var(kvList(c.BackendOptions), "set", "backend option in key=value form (repeatable)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: 'debug', 'info', 'warn' or 'error'")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: 'text' or 'json'")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "append logs to this file instead of stderr")
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	errs := []error{c.SimConfig().Validate()}
	if c.Backend == "" {
		errs = append(errs, errors.New("backend must not be empty"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", c.LogFormat))
	}
	return errors.Join(errs...)
}

// SimConfig extracts the runner parameters.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Rows:        c.Rows,
		Cols:        c.Cols,
		Generations: c.Generations,
		FPS:         c.FPS,
		ColorMode:   sim.ColorMode(c.ColorMode),
	}
}

// kvList collects repeatable key=value flags into a map.
type kvList map[string]string

func (l kvList) String() string {
	parts := make([]string, 0, len(l))
	for _, k := range slices.Sorted(maps.Keys(l)) {
		parts = append(parts, k+"="+l[k])
	}
	return strings.Join(parts, ",")
}

func (l kvList) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	l[key] = strings.TrimSpace(val)
	return nil
}
