// Package term renders the simulation in a terminal with tcell, drawing each
// cell as a block of true-color background.
package term

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"led-life/internal/ctxlog"
	"led-life/internal/render"
)

// Config controls the terminal backend.
type Config struct {
	// CellWidth is the number of terminal columns per grid column; two keeps
	// cells roughly square.
	CellWidth int
	Status    bool
	Hold      time.Duration
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{CellWidth: 2, Status: true}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["cell_width"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.CellWidth = parsed
		}
	}
	if v, ok := cfg["status"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Status = parsed
		}
	}
	if v, ok := cfg["hold"]; ok {
		if parsed, err := time.ParseDuration(v); err == nil && parsed >= 0 {
			c.Hold = parsed
		}
	}
	return c
}

// Panel draws into a tcell screen.
type Panel struct {
	screen tcell.Screen
	cfg    Config
	size   render.Size

	quit     chan struct{}
	quitOnce sync.Once
	finiOnce sync.Once
}

// New initializes the terminal and returns a panel drawing into it.
func New(size render.Size, cfg Config) (*Panel, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	return newPanel(screen, size, cfg), nil
}

func newPanel(screen tcell.Screen, size render.Size, cfg Config) *Panel {
	screen.HideCursor()
	screen.Clear()
	return &Panel{screen: screen, cfg: cfg, size: size, quit: make(chan struct{})}
}

// Clear blanks the screen.
func (p *Panel) Clear() {
	p.screen.Clear()
}

// SetPixel colors the block for grid cell (x, y).
func (p *Panel) SetPixel(x, y int, r, g, b uint8) {
	style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	for i := 0; i < p.cfg.CellWidth; i++ {
		p.screen.SetContent(x*p.cfg.CellWidth+i, y, ' ', nil, style)
	}
}

// Present draws the status line and flushes the frame to the terminal.
func (p *Panel) Present(generation int) error {
	if p.cfg.Status {
		p.drawStatus(fmt.Sprintf("generation %d  (q to quit)", generation))
	}
	p.screen.Show()
	return nil
}

func (p *Panel) drawStatus(text string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	x := 0
	for _, ch := range text {
		p.screen.SetContent(x, p.size.H, ch, nil, style)
		x++
	}
}

// Quit reports when the user asked to stop.
func (p *Panel) Quit() <-chan struct{} { return p.quit }

func (p *Panel) requestQuit() {
	p.quitOnce.Do(func() { close(p.quit) })
}

// Host runs the simulation on the calling goroutine while a second goroutine
// reads keyboard input. q, Esc and Ctrl-C cancel the simulation.
func (p *Panel) Host(ctx context.Context, sim func(context.Context) error) error {
	logger := ctxlog.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.pollEvents(cancel)
		return nil
	})

	err := sim(gctx)
	if err == nil && p.cfg.Hold > 0 {
		logger.Debug("holding final frame", "hold", p.cfg.Hold)
		select {
		case <-time.After(p.cfg.Hold):
		case <-p.quit:
		case <-gctx.Done():
		}
	}

	p.Close()
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	return err
}

// pollEvents blocks until the screen is finalized.
func (p *Panel) pollEvents(cancel context.CancelFunc) {
	for {
		ev := p.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				p.requestQuit()
				cancel()
			}
		case *tcell.EventResize:
			p.screen.Sync()
		}
	}
}

// Close restores the terminal. It is safe to call more than once.
func (p *Panel) Close() error {
	p.finiOnce.Do(p.screen.Fini)
	return nil
}

func init() {
	render.Register("term", func(_ context.Context, size render.Size, opts map[string]string) (render.Panel, error) {
		return New(size, FromMap(opts))
	})
}
