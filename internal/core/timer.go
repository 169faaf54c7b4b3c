package core

import (
	"context"
	"time"
)

// FixedStep paces a loop at a steady frames-per-second rate.
type FixedStep struct {
	step time.Duration
	next time.Time
	now  func() time.Time
}

// NewFixedStep constructs a FixedStep targeting the given FPS. A non-positive
// rate returns nil, which Wait treats as unthrottled.
func NewFixedStep(fps int) *FixedStep {
	if fps <= 0 {
		return nil
	}
	return &FixedStep{step: time.Second / time.Duration(fps), now: time.Now}
}

// Start marks the current instant as the beginning of the first frame, so
// the next Wait holds that frame for a full step.
func (f *FixedStep) Start() {
	if f == nil {
		return
	}
	f.next = f.now().Add(f.step)
}

// Step returns the duration of a single frame.
func (f *FixedStep) Step() time.Duration {
	if f == nil {
		return 0
	}
	return f.step
}

// Wait blocks until the next frame boundary or until ctx is done. Without a
// prior Start the first call only arms the deadline. Frames that overran
// their budget do not accumulate debt.
func (f *FixedStep) Wait(ctx context.Context) error {
	if f == nil {
		return ctx.Err()
	}
	now := f.now()
	if f.next.IsZero() || now.After(f.next) {
		f.next = now.Add(f.step)
		return ctx.Err()
	}
	t := time.NewTimer(f.next.Sub(now))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		f.next = f.next.Add(f.step)
		return nil
	}
}
