// Package app wires the configuration, the logger, a render backend and the
// simulation runner into one process lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"led-life/internal/core"
	"led-life/internal/ctxlog"
	"led-life/internal/render"
	"led-life/internal/sim"
)

// Backends that draw on the controlling terminal. Their log output is held
// back until the screen has been restored.
var terminalBackends = map[string]bool{"term": true}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	cfg    *Config
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger

	logFile *os.File
	held    *heldLog
}

// New validates cfg and prepares the logger. Banner lines go to outW; log
// records go to cfg.LogFile when set, else errW.
func New(outW, errW io.Writer, cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, outW: outW, errW: errW}

	var logW io.Writer = errW
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		logW = f
	case terminalBackends[cfg.Backend]:
		a.held = &heldLog{}
		logW = a.held
	}
	a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	a.logger.Debug("Logger configured successfully.")
	return a, nil
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Run opens the configured backend and runs one simulation on it.
func (a *App) Run(ctx context.Context) (sim.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	fmt.Fprintln(a.outW, "Simple Game of Life")
	fmt.Fprintln(a.outW, "Press <Ctrl-C> to exit.")

	res, err := a.simulate(ctx)

	fmt.Fprintln(a.outW, "End of the game.")
	return res, err
}

func (a *App) simulate(ctx context.Context) (res sim.Result, err error) {
	cfg := a.cfg
	size := render.Size{W: cfg.Cols, H: cfg.Rows}
	a.logger.Info("opening backend", "backend", cfg.Backend, "width", size.W, "height", size.H)

	panel, err := render.Open(ctx, cfg.Backend, size, cfg.BackendOptions)
	if err != nil {
		return sim.Result{}, err
	}
	if c, ok := panel.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("closing backend %q: %w", cfg.Backend, cerr))
			}
		}()
	}

	rng := core.NewRNG(cfg.Seed)
	a.logger.Info("seeded random generator", "seed", rng.Seed())

	runner, err := sim.New(cfg.SimConfig(), panel, sim.WithRNG(rng), sim.WithLogger(a.logger))
	if err != nil {
		return sim.Result{}, err
	}

	run := func(ctx context.Context) error {
		var err error
		res, err = runner.Run(ctx)
		return err
	}
	if host, ok := panel.(render.Host); ok {
		a.logger.Debug("backend hosts the simulation", "backend", cfg.Backend)
		err = host.Host(ctx, run)
	} else {
		err = run(ctx)
	}
	return res, err
}

// Close releases the log file and flushes held log output to errW.
func (a *App) Close() error {
	var errs []error
	if a.held != nil {
		errs = append(errs, a.held.flushTo(a.errW))
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}
