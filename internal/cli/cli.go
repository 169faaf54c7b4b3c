// Package cli parses command-line arguments into an app.Config and maps
// usage problems to process exit codes.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"led-life/internal/app"
	"led-life/internal/render"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// Values come from the defaults, then the -config file, then the flags that
// were given explicitly.
func Parse(ctx context.Context, args []string, output io.Writer) (*app.Config, bool, error) {
	cfg := app.DefaultConfig()
	listBackends, err := parseInto(cfg, args, output)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if listBackends {
		fmt.Fprintln(output, strings.Join(render.Backends(), "\n"))
		return nil, true, nil
	}

	if cfg.ConfigFile != "" {
		fileCfg, err := app.LoadFile(ctx, cfg.ConfigFile, app.DefaultConfig())
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		fileCfg.ConfigFile = cfg.ConfigFile
		// The file-loaded values become the flag defaults, so only
		// explicit flags override them.
		if _, err := parseInto(fileCfg, args, io.Discard); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, false, nil
}

func parseInto(cfg *app.Config, args []string, output io.Writer) (bool, error) {
	flagSet := flag.NewFlagSet("led-life", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
led-life - Conway's Game of Life on an RGB LED panel.

Usage:
  led-life [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	cfg.Bind(flagSet)
	listBackends := flagSet.Bool("list-backends", false, "print the available render backends and exit")

	if err := flagSet.Parse(args); err != nil {
		return false, err
	}
	if flagSet.NArg() > 0 {
		return false, fmt.Errorf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))
	}
	return *listBackends, nil
}
