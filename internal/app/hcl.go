package app

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"led-life/internal/ctxlog"
)

// fileRoot is the shape of an HCL run file. Every field is optional; unset
// fields keep the value of the base Config.
type fileRoot struct {
	Rows        *int          `hcl:"rows,optional"`
	Cols        *int          `hcl:"cols,optional"`
	Generations *int          `hcl:"generations,optional"`
	Seed        *int64        `hcl:"seed,optional"`
	FPS         *int          `hcl:"fps,optional"`
	Color       *string       `hcl:"color,optional"`
	Backend     *backendBlock `hcl:"backend,block"`
	Log         *logBlock     `hcl:"log,block"`
}

type backendBlock struct {
	Name    string            `hcl:"name,label"`
	Options map[string]string `hcl:"options,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
	File   *string `hcl:"file,optional"`
}

// LoadFile reads an HCL run file and applies it on top of base.
func LoadFile(ctx context.Context, path string, base *Config) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadBytes(ctx, src, path, base)
}

// LoadBytes parses src as an HCL run file and returns a copy of base with
// the file's values applied. The expressions in the file can reference
// panel.rows and panel.cols of base and call min and max.
func LoadBytes(ctx context.Context, src []byte, filename string, base *Config) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "file", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(base), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	cfg := base.Clone()
	setIf(&cfg.Rows, root.Rows)
	setIf(&cfg.Cols, root.Cols)
	setIf(&cfg.Generations, root.Generations)
	setIf(&cfg.Seed, root.Seed)
	setIf(&cfg.FPS, root.FPS)
	setIf(&cfg.ColorMode, root.Color)
	if b := root.Backend; b != nil {
		cfg.Backend = b.Name
		for k, v := range b.Options {
			cfg.BackendOptions[k] = v
		}
	}
	if l := root.Log; l != nil {
		setIf(&cfg.LogLevel, l.Level)
		setIf(&cfg.LogFormat, l.Format)
		setIf(&cfg.LogFile, l.File)
	}

	logger.Debug("HCL loading complete.", "file", filename, "backend", cfg.Backend, "rows", cfg.Rows, "cols", cfg.Cols)
	return cfg, nil
}

func evalContext(base *Config) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"panel": cty.ObjectVal(map[string]cty.Value{
				"rows": cty.NumberIntVal(int64(base.Rows)),
				"cols": cty.NumberIntVal(int64(base.Cols)),
			}),
		},
		Functions: map[string]function.Function{
			"min": stdlib.MinFunc,
			"max": stdlib.MaxFunc,
		},
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
