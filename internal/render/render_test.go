package render

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"led-life/internal/core"
)

func TestPaintUsesColorForLiveCellsAndBlackOtherwise(t *testing.T) {
	g, err := core.ParseGrid(
		"#..",
		".#.",
	)
	if err != nil {
		t.Fatal(err)
	}
	fb := NewFrameBuffer(3, 2)
	fb.SetPixel(2, 1, 9, 9, 9) // stale pixel must be cleared

	c := Color{R: 10, G: 20, B: 30}
	Paint(fb, g, c)

	want := []uint8{
		10, 20, 30, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 10, 20, 30, 0, 0, 0,
	}
	if diff := cmp.Diff(want, fb.RGB()); diff != "" {
		t.Fatalf("painted frame mismatch (-want +got):\n%s", diff)
	}
	if got := fb.Pixel(1, 1); got != c {
		t.Fatalf("Pixel(1,1)=%v, expected %v", got, c)
	}
}

func TestFrameBufferIgnoresOutOfRangePixels(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.SetPixel(-1, 0, 1, 1, 1)
	fb.SetPixel(2, 0, 1, 1, 1)
	fb.SetPixel(0, 5, 1, 1, 1)
	for _, v := range fb.RGB() {
		if v != 0 {
			t.Fatal("out-of-range writes must be dropped")
		}
	}
	if fb.Pixel(9, 9) != Black {
		t.Fatal("out-of-range reads should be black")
	}
}

func TestRGBAIsOpaque(t *testing.T) {
	fb := NewFrameBuffer(2, 1)
	fb.SetPixel(0, 0, 1, 2, 3)
	buf := make([]byte, 4*2)
	fb.RGBA(buf)
	want := []byte{1, 2, 3, 255, 0, 0, 0, 255}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Fatalf("RGBA mismatch (-want +got):\n%s", diff)
	}
}

func TestRandomColorNeverUsesZeroChannels(t *testing.T) {
	rng := core.NewRNG(3)
	for i := 0; i < 5000; i++ {
		c := RandomColor(rng)
		if c.R == 0 || c.G == 0 || c.B == 0 {
			t.Fatalf("color %v has a zero channel", c)
		}
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), "does-not-exist", Size{W: 1, H: 1}, nil); err == nil {
		t.Fatal("expected unknown backend error")
	}
}

func TestNullBackendIsRegistered(t *testing.T) {
	p, err := Open(context.Background(), "null", Size{W: 4, H: 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	fb, ok := p.(*FrameBuffer)
	if !ok {
		t.Fatalf("null backend returned %T", p)
	}
	if fb.W != 4 || fb.H != 2 {
		t.Fatalf("size=%dx%d, expected 4x2", fb.W, fb.H)
	}
}
