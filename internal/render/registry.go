package render

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownBackend is returned by Open for names nothing has registered.
var ErrUnknownBackend = errors.New("unknown backend")

// Size describes the dimensions of a panel in pixels.
type Size struct {
	W int
	H int
}

// Factory opens a panel of the given size using backend-specific options.
type Factory func(ctx context.Context, size Size, opts map[string]string) (Panel, error)

var backends = map[string]Factory{}

// Register adds a backend factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	backends[name] = f
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open constructs the named backend.
func Open(ctx context.Context, name string, size Size, opts map[string]string) (Panel, error) {
	f, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownBackend, name, Backends())
	}
	p, err := f(ctx, size, opts)
	if err != nil {
		return nil, fmt.Errorf("open backend %q: %w", name, err)
	}
	return p, nil
}

func init() {
	Register("null", func(_ context.Context, size Size, _ map[string]string) (Panel, error) {
		return NewFrameBuffer(size.W, size.H), nil
	})
}
