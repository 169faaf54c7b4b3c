// Package sim drives the Game of Life generation loop and hands every
// finished generation to a render.Panel.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"led-life/internal/core"
	"led-life/internal/life"
	"led-life/internal/render"
)

// State is a step of the runner lifecycle.
type State int

const (
	StateInitializing State = iota
	StateRunning
	StateStable
	StateExhausted
	StateInterrupted
	StateRendered
	StateDone
)

var stateNames = [...]string{
	StateInitializing: "initializing",
	StateRunning:      "running",
	StateStable:       "stable",
	StateExhausted:    "exhausted",
	StateInterrupted:  "interrupted",
	StateRendered:     "rendered",
	StateDone:         "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ColorMode selects how often the live-cell color is re-drawn.
type ColorMode string

const (
	// ColorPerFrame draws a fresh color for every render call.
	ColorPerFrame ColorMode = "frame"
	// ColorPerRun draws one color and keeps it for the whole run.
	ColorPerRun ColorMode = "run"
)

// Config holds the parameters of a single run.
type Config struct {
	Rows        int
	Cols        int
	Generations int
	FPS         int
	ColorMode   ColorMode
}

// DefaultConfig matches a single 32x64 HUB75 panel.
func DefaultConfig() Config {
	return Config{Rows: 32, Cols: 64, Generations: 100000, ColorMode: ColorPerFrame}
}

// Validate rejects configurations the runner cannot execute.
func (c Config) Validate() error {
	var errs []error
	if c.Rows <= 0 || c.Cols <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %dx%d", core.ErrInvalidDimensions, c.Rows, c.Cols))
	}
	if c.Generations <= 0 {
		errs = append(errs, fmt.Errorf("generations must be positive, got %d", c.Generations))
	}
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("fps must not be negative, got %d", c.FPS))
	}
	switch c.ColorMode {
	case ColorPerFrame, ColorPerRun:
	default:
		errs = append(errs, fmt.Errorf("unknown color mode %q", c.ColorMode))
	}
	return errors.Join(errs...)
}

// Initializer creates one of the two starting grids.
type Initializer func(rows, cols int, rng *core.RNG) (*core.Grid, error)

// Result summarizes a finished run.
type Result struct {
	// Outcome is StateStable, StateExhausted or StateInterrupted. When Run
	// returns an error it is the state the runner failed in instead:
	// StateInitializing, StateRunning, or the loop outcome if only the final
	// render failed.
	Outcome State
	// Generation is the counter value at exit, used to label the final frame.
	Generation int
	// Frames counts render calls, the final render included.
	Frames int
	// Population is the number of live cells in the final frame.
	Population int
}

// Option customizes a Runner.
type Option func(*Runner)

// WithInitializer replaces the random starting grids.
func WithInitializer(fn Initializer) Option {
	return func(r *Runner) { r.initGrid = fn }
}

// WithRNG sets the generator used for the starting grids and colors.
func WithRNG(rng *core.RNG) Option {
	return func(r *Runner) { r.rng = rng }
}

// WithLogger sets the logger for lifecycle and per-frame messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// Runner owns the current and next generation buffers and the render panel.
type Runner struct {
	cfg      Config
	panel    render.Panel
	rng      *core.RNG
	initGrid Initializer
	pacer    *core.FixedStep
	logger   *slog.Logger

	state    State
	cur, nxt *core.Grid
	runColor render.Color
	frames   int
}

// New validates cfg and returns a Runner painting into panel.
func New(cfg Config, panel render.Panel, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if panel == nil {
		return nil, errors.New("sim: nil panel")
	}
	r := &Runner{
		cfg:      cfg,
		panel:    panel,
		initGrid: life.CreateInitialGrid,
		pacer:    core.NewFixedStep(cfg.FPS),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = core.NewRNG(0)
	}
	return r, nil
}

// State reports the current lifecycle state.
func (r *Runner) State() State { return r.state }

// Run executes the simulation until the grid stabilizes, the generation cap
// is reached or ctx is cancelled. Cancellation is a normal outcome and is not
// reported as an error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	r.setState(StateInitializing)
	if err := r.initialize(); err != nil {
		return Result{Outcome: StateInitializing}, err
	}

	r.setState(StateRunning)
	r.pacer.Start()
	outcome := StateExhausted
	last := 0
	for gen := 1; gen <= r.cfg.Generations; gen++ {
		last = gen
		if gen > 1 {
			// A cancelled wait is picked up by the check below.
			_ = r.pacer.Wait(ctx)
		}
		if ctx.Err() != nil {
			outcome = StateInterrupted
			break
		}
		if !life.GridsDiffer(r.cur, r.nxt) {
			outcome = StateStable
			break
		}
		if err := r.render(ctx, gen); err != nil {
			return r.result(StateRunning, gen), err
		}
		life.ComputeNextGeneration(r.cur, r.nxt)
		r.cur, r.nxt = r.nxt, r.cur
	}
	r.setState(outcome)

	if err := r.render(ctx, last); err != nil {
		if outcome != StateInterrupted {
			return r.result(outcome, last), err
		}
		r.logger.Warn("final render after interrupt failed", "generation", last, "error", err)
	}
	r.setState(StateRendered)

	res := r.result(outcome, last)
	r.logger.Info("simulation finished",
		"outcome", outcome.String(),
		"generation", res.Generation,
		"frames", res.Frames,
		"population", res.Population)
	r.setState(StateDone)
	return res, nil
}

func (r *Runner) initialize() error {
	cur, err := r.initGrid(r.cfg.Rows, r.cfg.Cols, r.rng)
	if err != nil {
		return fmt.Errorf("create current grid: %w", err)
	}
	nxt, err := r.initGrid(r.cfg.Rows, r.cfg.Cols, r.rng)
	if err != nil {
		return fmt.Errorf("create next grid: %w", err)
	}
	if !cur.SameSize(nxt) || cur.Rows() != r.cfg.Rows || cur.Cols() != r.cfg.Cols {
		return fmt.Errorf("initializer returned %dx%d and %dx%d grids, want %dx%d",
			cur.Rows(), cur.Cols(), nxt.Rows(), nxt.Cols(), r.cfg.Rows, r.cfg.Cols)
	}
	r.cur, r.nxt = cur, nxt
	r.frames = 0
	if r.cfg.ColorMode == ColorPerRun {
		r.runColor = render.RandomColor(r.rng)
	}
	r.logger.Info("simulation initialized",
		"rows", r.cfg.Rows,
		"cols", r.cfg.Cols,
		"generations", r.cfg.Generations,
		"seed", r.rng.Seed(),
		"population", cur.Population())
	return nil
}

func (r *Runner) render(ctx context.Context, gen int) error {
	c := r.runColor
	if r.cfg.ColorMode != ColorPerRun {
		c = render.RandomColor(r.rng)
	}
	render.Paint(r.panel, r.cur, c)
	r.frames++
	if p, ok := r.panel.(render.Presenter); ok {
		if err := p.Present(gen); err != nil {
			return fmt.Errorf("present generation %d: %w", gen, err)
		}
	}
	if r.logger.Enabled(ctx, slog.LevelDebug) {
		r.logger.Debug("frame rendered",
			"generation", gen,
			"population", r.cur.Population(),
			"r", c.R, "g", c.G, "b", c.B)
	}
	return nil
}

func (r *Runner) setState(s State) {
	r.state = s
	r.logger.Debug("runner state", "state", s.String())
}

func (r *Runner) result(outcome State, gen int) Result {
	res := Result{Outcome: outcome, Generation: gen, Frames: r.frames}
	if r.cur != nil {
		res.Population = r.cur.Population()
	}
	return res
}
