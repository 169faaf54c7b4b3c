package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"led-life/internal/core"
	"led-life/internal/render"
)

// recordedFrame captures what the runner painted between two Present calls.
type recordedFrame struct {
	clears     int
	pixels     int
	generation int
	colors     map[render.Color]int
	lit        int
	clearFirst bool
}

// recorder is a fake panel that records call order.
type recorder struct {
	frames  []recordedFrame
	cur     recordedFrame
	calls   int
	present func(gen int) error
}

func (r *recorder) Clear() {
	if r.calls == 0 {
		r.cur.clearFirst = true
	}
	r.calls++
	r.cur.clears++
}

func (r *recorder) SetPixel(x, y int, red, green, blue uint8) {
	r.calls++
	r.cur.pixels++
	if red == 0 && green == 0 && blue == 0 {
		return
	}
	if r.cur.colors == nil {
		r.cur.colors = map[render.Color]int{}
	}
	r.cur.colors[render.Color{R: red, G: green, B: blue}]++
	r.cur.lit++
}

func (r *recorder) Present(gen int) error {
	r.cur.generation = gen
	r.frames = append(r.frames, r.cur)
	r.cur = recordedFrame{}
	r.calls = 0
	if r.present != nil {
		return r.present(gen)
	}
	return nil
}

func (r *recorder) generations() []int {
	out := make([]int, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.generation
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedGrids returns an initializer that hands out the given grids in order.
func fixedGrids(t *testing.T, grids ...*core.Grid) Initializer {
	t.Helper()
	i := 0
	return func(rows, cols int, _ *core.RNG) (*core.Grid, error) {
		require.Less(t, i, len(grids), "initializer called too often")
		g := grids[i]
		i++
		return g, nil
	}
}

func parse(t *testing.T, lines ...string) *core.Grid {
	t.Helper()
	g, err := core.ParseGrid(lines...)
	require.NoError(t, err)
	return g
}

func empty(t *testing.T, rows, cols int) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(rows, cols)
	require.NoError(t, err)
	return g
}

func glider8x8(t *testing.T) *core.Grid {
	return parse(t,
		".#......",
		"..#.....",
		"###.....",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
}

func newRunner(t *testing.T, cfg Config, panel render.Panel, opts ...Option) *Runner {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithRNG(core.NewRNG(1))}, opts...)
	r, err := New(cfg, panel, opts...)
	require.NoError(t, err)
	return r
}

func TestRunnerStopsOnStillLife(t *testing.T) {
	block := parse(t,
		"......",
		"......",
		"..##..",
		"..##..",
		"......",
		"......",
	)
	rec := &recorder{}
	cfg := Config{Rows: 6, Cols: 6, Generations: 100, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, block, empty(t, 6, 6))))

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateStable, res.Outcome)
	assert.Equal(t, 2, res.Generation)
	assert.Equal(t, 2, res.Frames)
	assert.Equal(t, 4, res.Population)
	assert.Equal(t, []int{1, 2}, rec.generations())
	assert.Equal(t, StateDone, r.State())
}

func TestRunnerStopsImmediatelyWhenInitialGridsMatch(t *testing.T) {
	a := glider8x8(t)
	b := glider8x8(t)
	rec := &recorder{}
	cfg := Config{Rows: 8, Cols: 8, Generations: 10, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, a, b)))

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateStable, res.Outcome)
	assert.Equal(t, 1, res.Generation)
	assert.Equal(t, []int{1}, rec.generations(), "only the final render should happen")
}

func TestRunnerRespectsGenerationCap(t *testing.T) {
	const n = 20
	rec := &recorder{}
	cfg := Config{Rows: 8, Cols: 8, Generations: n, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, res.Outcome)
	assert.Equal(t, n, res.Generation)
	assert.Equal(t, n+1, res.Frames, "n loop renders plus the final render")

	want := make([]int, 0, n+1)
	for gen := 1; gen <= n; gen++ {
		want = append(want, gen)
	}
	want = append(want, n)
	assert.Equal(t, want, rec.generations())
}

func TestRenderOrdering(t *testing.T) {
	rec := &recorder{}
	cfg := Config{Rows: 8, Cols: 8, Generations: 12, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, rec.frames)

	prev := 0
	for i, f := range rec.frames {
		assert.True(t, f.clearFirst, "frame %d must start with Clear", i)
		assert.Equal(t, 1, f.clears, "frame %d clears", i)
		assert.Equal(t, cfg.Rows*cfg.Cols, f.pixels, "frame %d pixels", i)
		assert.Equal(t, 5, f.lit, "a glider always has five live cells")

		last := i == len(rec.frames)-1
		if last {
			assert.Equal(t, prev, f.generation, "final render repeats the exit generation")
		} else {
			assert.Equal(t, prev+1, f.generation, "frame %d must follow %d without gaps", i, prev)
		}
		prev = f.generation
	}
}

func TestColorPerFrameUsesOneColorPerFrame(t *testing.T) {
	rec := &recorder{}
	cfg := Config{Rows: 8, Cols: 8, Generations: 30, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	distinct := map[render.Color]bool{}
	for _, f := range rec.frames {
		require.Len(t, f.colors, 1, "every live cell in a frame shares one color")
		for c := range f.colors {
			assert.NotZero(t, c.R)
			assert.NotZero(t, c.G)
			assert.NotZero(t, c.B)
			distinct[c] = true
		}
	}
	assert.Greater(t, len(distinct), 1, "color should be redrawn between frames")
}

func TestColorPerRunKeepsOneColor(t *testing.T) {
	rec := &recorder{}
	cfg := Config{Rows: 8, Cols: 8, Generations: 10, ColorMode: ColorPerRun}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	distinct := map[render.Color]bool{}
	for _, f := range rec.frames {
		for c := range f.colors {
			distinct[c] = true
		}
	}
	assert.Len(t, distinct, 1)
}

func TestInterruptStopsLoopAndRendersFinalFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{present: func(gen int) error {
		if gen == 3 {
			cancel()
		}
		return nil
	}}
	cfg := Config{Rows: 8, Cols: 8, Generations: 1000, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	res, err := r.Run(ctx)
	require.NoError(t, err, "interruption is not an error")

	assert.Equal(t, StateInterrupted, res.Outcome)
	assert.Equal(t, 4, res.Generation)
	assert.Equal(t, []int{1, 2, 3, 4}, rec.generations())
	assert.Equal(t, 5, res.Population, "final frame must be a complete generation")
}

func TestInterruptedFinalRenderErrorIsNotReturned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{present: func(int) error { return errors.New("panel gone") }}
	cfg := Config{Rows: 8, Cols: 8, Generations: 10, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateInterrupted, res.Outcome)
	assert.Equal(t, 1, res.Generation)
}

func TestPresentErrorAbortsRun(t *testing.T) {
	boom := errors.New("device unplugged")
	rec := &recorder{present: func(gen int) error {
		if gen == 2 {
			return boom
		}
		return nil
	}}
	cfg := Config{Rows: 8, Cols: 8, Generations: 10, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	res, err := r.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateRunning, res.Outcome)
	assert.Equal(t, StateRunning, r.State())
	assert.Equal(t, 2, res.Generation)
	assert.Equal(t, []int{1, 2}, rec.generations())
}

func TestRunnerWithRandomGridsTerminates(t *testing.T) {
	rec := &recorder{}
	cfg := Config{Rows: 16, Cols: 16, Generations: 50, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, []State{StateStable, StateExhausted}, res.Outcome)
	assert.LessOrEqual(t, res.Frames, cfg.Generations+1)
	assert.Equal(t, res.Frames, len(rec.frames))
}

func TestRunnerWorksWithoutPresenter(t *testing.T) {
	fb := render.NewFrameBuffer(8, 8)
	cfg := Config{Rows: 8, Cols: 8, Generations: 4, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, fb, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Frames)

	lit := 0
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			if fb.Pixel(x, y) != render.Black {
				lit++
			}
		}
	}
	assert.Equal(t, 5, lit)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	rec := &recorder{}
	for name, cfg := range map[string]Config{
		"rows":        {Rows: 0, Cols: 4, Generations: 1, ColorMode: ColorPerFrame},
		"cols":        {Rows: 4, Cols: -1, Generations: 1, ColorMode: ColorPerFrame},
		"generations": {Rows: 4, Cols: 4, Generations: 0, ColorMode: ColorPerFrame},
		"fps":         {Rows: 4, Cols: 4, Generations: 1, FPS: -1, ColorMode: ColorPerFrame},
		"color":       {Rows: 4, Cols: 4, Generations: 1, ColorMode: "rainbow"},
	} {
		_, err := New(cfg, rec)
		assert.Error(t, err, name)
	}

	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestInitializerSizeMismatchIsRejected(t *testing.T) {
	rec := &recorder{}
	cfg := Config{Rows: 8, Cols: 8, Generations: 4, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, empty(t, 8, 8), empty(t, 8, 9))))

	res, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateInitializing, res.Outcome)
	assert.Empty(t, rec.frames)
}

func TestPacedRunHoldsEveryFrameOneStep(t *testing.T) {
	var shown []time.Time
	rec := &recorder{present: func(int) error {
		shown = append(shown, time.Now())
		return nil
	}}
	cfg := Config{Rows: 8, Cols: 8, Generations: 4, FPS: 20, ColorMode: ColorPerFrame}
	r := newRunner(t, cfg, rec, WithInitializer(fixedGrids(t, glider8x8(t), empty(t, 8, 8))))

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 4}, rec.generations())

	step := time.Second / 20
	for i := 1; i < 4; i++ {
		gap := shown[i].Sub(shown[i-1])
		assert.GreaterOrEqual(t, gap, step-10*time.Millisecond,
			"generation %d was shown for %v", i, gap)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "stable", StateStable.String())
	assert.Equal(t, "State(42)", State(42).String())
}
