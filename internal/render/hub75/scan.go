package hub75

import (
	"errors"
	"fmt"
	"time"

	"led-life/internal/render"
)

// line is a single GPIO output. *gpiocdev.Line satisfies it.
type line interface {
	SetValue(value int) error
	Close() error
}

// Panel buffers a frame and scans it out to the matrix on Present.
type Panel struct {
	*render.FrameBuffer
	cfg   Config
	order [3]int

	r1, g1, b1, r2, g2, b2 line
	clk, oe, lat           line
	addr                   []line

	sleep func(time.Duration)
	now   func() time.Time
}

func newPanel(size render.Size, cfg Config, open func(offset int) (line, error)) (p *Panel, err error) {
	nAddr, err := addressLines(size.H)
	if err != nil {
		return nil, err
	}
	order, err := channelOrder(cfg.RGBSequence)
	if err != nil {
		return nil, err
	}
	p = &Panel{
		FrameBuffer: render.NewFrameBuffer(size.W, size.H),
		cfg:         cfg,
		order:       order,
		sleep:       time.Sleep,
		now:         time.Now,
	}
	defer func() {
		if err != nil {
			p.Close()
			p = nil
		}
	}()

	pins := cfg.Pins
	for _, req := range []struct {
		dst    *line
		offset int
		name   string
	}{
		{&p.r1, pins.R1, "R1"}, {&p.g1, pins.G1, "G1"}, {&p.b1, pins.B1, "B1"},
		{&p.r2, pins.R2, "R2"}, {&p.g2, pins.G2, "G2"}, {&p.b2, pins.B2, "B2"},
		{&p.clk, pins.CLK, "CLK"}, {&p.oe, pins.OE, "OE"}, {&p.lat, pins.LAT, "LAT"},
	} {
		l, err := open(req.offset)
		if err != nil {
			return p, fmt.Errorf("request %s (line %d): %w", req.name, req.offset, err)
		}
		*req.dst = l
	}
	addrPins := []int{pins.A, pins.B, pins.C, pins.D, pins.E}
	for i := 0; i < nAddr; i++ {
		l, err := open(addrPins[i])
		if err != nil {
			return p, fmt.Errorf("request address line %d (line %d): %w", i, addrPins[i], err)
		}
		p.addr = append(p.addr, l)
	}
	// Start blanked.
	if err := p.oe.SetValue(1); err != nil {
		return p, err
	}
	return p, nil
}

// Present scans the buffered frame until FrameTime has elapsed, at least once.
func (p *Panel) Present(int) error {
	start := p.now()
	for {
		if err := p.scan(); err != nil {
			return err
		}
		if p.now().Sub(start) >= p.cfg.FrameTime {
			return nil
		}
	}
}

// scan shifts out every bit plane of every row pair once.
func (p *Panel) scan() error {
	half := p.H / 2
	for plane := 0; plane < p.cfg.PWMBits; plane++ {
		for row := 0; row < half; row++ {
			if err := p.shiftRow(row, half, plane); err != nil {
				return err
			}
			if err := p.showRow(row, plane); err != nil {
				return err
			}
		}
	}
	return p.oe.SetValue(1)
}

func (p *Panel) shiftRow(row, half, plane int) error {
	for x := 0; x < p.W; x++ {
		top := p.channels(p.Pixel(x, row))
		bottom := p.channels(p.Pixel(x, row+half))
		for _, pv := range []struct {
			l line
			v uint8
		}{
			{p.r1, top[0]}, {p.g1, top[1]}, {p.b1, top[2]},
			{p.r2, bottom[0]}, {p.g2, bottom[1]}, {p.b2, bottom[2]},
		} {
			if err := pv.l.SetValue(p.bit(pv.v, plane)); err != nil {
				return err
			}
		}
		if err := p.pulse(p.clk); err != nil {
			return err
		}
	}
	return nil
}

func (p *Panel) showRow(row, plane int) error {
	if err := p.oe.SetValue(1); err != nil {
		return err
	}
	for i, l := range p.addr {
		if err := l.SetValue((row >> i) & 1); err != nil {
			return err
		}
	}
	if err := p.pulse(p.lat); err != nil {
		return err
	}
	if err := p.oe.SetValue(0); err != nil {
		return err
	}
	p.sleep(p.cfg.LSBTime << plane)
	return nil
}

// channels reorders c into the values for the panel's R, G and B inputs.
func (p *Panel) channels(c render.Color) [3]uint8 {
	v := [3]uint8{c.R, c.G, c.B}
	return [3]uint8{v[p.order[0]], v[p.order[1]], v[p.order[2]]}
}

// bit returns bit plane `plane` of the brightness-scaled channel value,
// counting from the least significant of the PWMBits kept bits.
func (p *Panel) bit(v uint8, plane int) int {
	scaled := int(v) * p.cfg.Brightness / 100
	b := (scaled >> (8 - p.cfg.PWMBits + plane)) & 1
	if p.cfg.Inverse {
		b ^= 1
	}
	return b
}

func (p *Panel) pulse(l line) error {
	for i := 0; i <= p.cfg.Slowdown; i++ {
		if err := l.SetValue(1); err != nil {
			return err
		}
	}
	return l.SetValue(0)
}

// Close blanks the panel and releases every GPIO line.
func (p *Panel) Close() error {
	var errs []error
	if p.oe != nil {
		errs = append(errs, p.oe.SetValue(1))
	}
	for _, l := range append([]line{p.r1, p.g1, p.b1, p.r2, p.g2, p.b2, p.clk, p.oe, p.lat}, p.addr...) {
		if l != nil {
			errs = append(errs, l.Close())
		}
	}
	return errors.Join(errs...)
}

