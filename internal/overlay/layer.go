package overlay

import (
	"image"
	"sync"

	"floorlink/internal/interact"
)

// Source supplies the frame to paint.
type Source func() Frame

// Layer owns the most recent overlay image. Registry changes repaint it
// immediately through Invalidate; drag moves go through RequestFrame and are
// coalesced to one paint per Tick.
type Layer struct {
	renderer *Renderer
	source   Source
	frames   *interact.FrameScheduler

	mu     sync.RWMutex
	last   *image.RGBA
	paints int
}

// NewLayer creates a layer painting frames from source.
func NewLayer(r *Renderer, source Source) *Layer {
	l := &Layer{renderer: r, source: source}
	l.frames = interact.NewFrameScheduler(l.paint)
	return l
}

// Invalidate repaints now.
func (l *Layer) Invalidate() {
	l.paint()
}

// RequestFrame schedules a repaint for the next Tick.
func (l *Layer) RequestFrame() {
	l.frames.RequestFrame()
}

// Tick performs a pending frame request.
func (l *Layer) Tick() bool {
	return l.frames.Tick()
}

// Image returns the last painted image, or nil before the first paint.
func (l *Layer) Image() *image.RGBA {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}

// Paints returns how many times the layer has been painted.
func (l *Layer) Paints() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paints
}

func (l *Layer) paint() {
	img := l.renderer.Paint(l.source())
	l.mu.Lock()
	l.last = img
	l.paints++
	l.mu.Unlock()
}
