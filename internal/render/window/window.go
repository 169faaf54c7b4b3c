//go:build ebiten

package window

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/sync/errgroup"

	"led-life/internal/ctxlog"
	"led-life/internal/render"
)

// Game adapts the panel to the ebiten.Game interface.
type Game struct {
	cfg  Config
	w, h int
	img  *ebiten.Image
	buf  []byte
	hud  *hud

	mu         sync.Mutex
	pending    *render.FrameBuffer
	hasPending bool
	generation int
	live       int
	titleGen   int

	shown     chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newGame(cfg Config, w, h int) *Game {
	return &Game{
		cfg:      cfg,
		w:        w,
		h:        h,
		img:      ebiten.NewImage(w, h),
		buf:      make([]byte, 4*w*h),
		hud:      newHUD(cfg.HUD),
		pending:  render.NewFrameBuffer(w, h),
		titleGen: -1,
		shown:    make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

func (g *Game) close() {
	g.closeOnce.Do(func() { close(g.closed) })
}

func (g *Game) isClosed() bool {
	select {
	case <-g.closed:
		return true
	default:
		return false
	}
}

// Update handles input and keeps the window title in sync with the generation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.close()
	}
	if g.isClosed() {
		return ebiten.Termination
	}
	g.hud.Update()
	g.mu.Lock()
	gen := g.generation
	g.mu.Unlock()
	if gen != g.titleGen {
		g.titleGen = gen
		ebiten.SetWindowTitle(title(g.cfg.Title, gen))
	}
	return nil
}

// Draw uploads a pending frame, if any, and paints the scaled grid.
func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	gen, live := g.generation, g.live
	if g.hasPending {
		g.pending.RGBA(g.buf)
		g.img.WritePixels(g.buf)
		g.hasPending = false
		select {
		case g.shown <- struct{}{}:
		default:
		}
	}
	g.mu.Unlock()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.cfg.Scale), float64(g.cfg.Scale))
	screen.DrawImage(g.img, op)
	g.hud.Draw(screen, gen, live)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w * g.cfg.Scale, g.h * g.cfg.Scale
}

// Panel paints into a frame buffer and hands finished frames to the window.
type Panel struct {
	*render.FrameBuffer
	game *Game
}

// New creates a window panel of the given size.
func New(size render.Size, cfg Config) *Panel {
	return &Panel{
		FrameBuffer: render.NewFrameBuffer(size.W, size.H),
		game:        newGame(cfg, size.W, size.H),
	}
}

// Present blocks until the window has drawn the frame, so generations are
// shown one by one at most at the window's tick rate. Frames presented after
// the window was closed are dropped.
func (p *Panel) Present(generation int) error {
	g := p.game
	if g.isClosed() {
		return nil
	}
	live := 0
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			if p.Pixel(x, y) != render.Black {
				live++
			}
		}
	}
	g.mu.Lock()
	g.pending.CopyFrom(p.FrameBuffer)
	g.hasPending = true
	g.generation = generation
	g.live = live
	g.mu.Unlock()

	select {
	case <-g.shown:
	case <-g.closed:
	}
	return nil
}

// Host runs the ebiten loop on the calling goroutine, which must be the main
// goroutine, and the simulation on a separate one. Closing the window
// cancels the simulation.
func (p *Panel) Host(ctx context.Context, sim func(context.Context) error) error {
	logger := ctxlog.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-p.game.closed:
			logger.Info("window closed")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		defer p.game.close()
		err := sim(gctx)
		if err == nil && p.game.cfg.Hold > 0 {
			logger.Debug("holding final frame", "hold", p.game.cfg.Hold)
			select {
			case <-time.After(p.game.cfg.Hold):
			case <-p.game.closed:
			case <-gctx.Done():
			}
		}
		return err
	})

	ebiten.SetWindowTitle(p.game.cfg.Title)
	ebiten.SetTPS(p.game.cfg.TPS)
	ebiten.SetWindowSize(p.FrameBuffer.W*p.game.cfg.Scale, p.FrameBuffer.H*p.game.cfg.Scale)

	runErr := ebiten.RunGame(p.game)
	p.game.close()
	cancel()

	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		return runErr
	}
	return nil
}

// Close shuts the window down.
func (p *Panel) Close() error {
	p.game.close()
	return nil
}

func init() {
	render.Register("window", func(_ context.Context, size render.Size, opts map[string]string) (render.Panel, error) {
		return New(size, FromMap(opts)), nil
	})
}
