package interact

import (
	"sync"
	"time"
)

// DefaultFrameInterval is one display frame at 60Hz.
const DefaultFrameInterval = time.Second / 60

// FrameScheduler coalesces repaint requests so that any number of requests
// made within one frame cause a single paint on the next Tick.
type FrameScheduler struct {
	mu      sync.Mutex
	pending bool
	paint   func()
	frames  int
}

// NewFrameScheduler creates a scheduler that calls paint on productive ticks.
func NewFrameScheduler(paint func()) *FrameScheduler {
	return &FrameScheduler{paint: paint}
}

// RequestFrame marks a paint as pending.
func (f *FrameScheduler) RequestFrame() {
	f.mu.Lock()
	f.pending = true
	f.mu.Unlock()
}

// Tick runs the pending paint, if any, and reports whether it painted.
func (f *FrameScheduler) Tick() bool {
	f.mu.Lock()
	if !f.pending {
		f.mu.Unlock()
		return false
	}
	f.pending = false
	f.frames++
	f.mu.Unlock()

	f.paint()
	return true
}

// Frames returns the number of paints performed.
func (f *FrameScheduler) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}
