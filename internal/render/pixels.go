package render

// FrameBuffer is an in-memory RGB panel. Backends paint into it and push the
// finished frame to their device on Present.
type FrameBuffer struct {
	W, H int
	pix  []uint8
}

// NewFrameBuffer allocates a black frame buffer of w x h pixels.
func NewFrameBuffer(w, h int) *FrameBuffer {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &FrameBuffer{W: w, H: h, pix: make([]uint8, 3*w*h)}
}

// Clear zeros out the entire frame buffer.
func (fb *FrameBuffer) Clear() {
	for i := range fb.pix {
		fb.pix[i] = 0
	}
}

// SetPixel sets a pixel color. Out-of-range coordinates are ignored.
func (fb *FrameBuffer) SetPixel(x, y int, r, g, b uint8) {
	if x < 0 || x >= fb.W || y < 0 || y >= fb.H {
		return
	}
	base := 3 * (y*fb.W + x)
	fb.pix[base+0] = r
	fb.pix[base+1] = g
	fb.pix[base+2] = b
}

// Pixel returns the color at (x, y), or black when out of range.
func (fb *FrameBuffer) Pixel(x, y int) Color {
	if x < 0 || x >= fb.W || y < 0 || y >= fb.H {
		return Black
	}
	base := 3 * (y*fb.W + x)
	return Color{R: fb.pix[base], G: fb.pix[base+1], B: fb.pix[base+2]}
}

// RGB exposes the packed RGB bytes in row-major order.
func (fb *FrameBuffer) RGB() []uint8 { return fb.pix }

// CopyFrom copies the contents of a frame buffer of the same size.
func (fb *FrameBuffer) CopyFrom(src *FrameBuffer) {
	copy(fb.pix, src.pix)
}

// RGBA converts the frame into opaque RGBA pixels in buf, which must hold
// 4*W*H bytes.
func (fb *FrameBuffer) RGBA(buf []byte) {
	for i := 0; i < fb.W*fb.H; i++ {
		src, dst := i*3, i*4
		buf[dst+0] = fb.pix[src+0]
		buf[dst+1] = fb.pix[src+1]
		buf[dst+2] = fb.pix[src+2]
		buf[dst+3] = 0xff
	}
}
