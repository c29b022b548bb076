// Package interact implements pointer-driven repositioning of items on the
// document.
//
// A drag moves the item locally on every pointer move and writes the final
// document position to the registry exactly once, on release.
package interact

import (
	"floorlink/internal/domain"
	"floorlink/internal/geometry"
)

// State is the drag machine state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Committer receives the single position update issued on release.
type Committer interface {
	Update(patch domain.ItemPatch) bool
}

// FrameRequester is asked for a repaint after each local move. Requests are
// expected to be coalesced to at most one paint per display frame.
type FrameRequester interface {
	RequestFrame()
}

// Viewport describes where the document is drawn on screen.
type Viewport struct {
	Origin domain.Point
	Scale  float64
}

// Dragger is the pointer state machine. It is not safe for concurrent use.
type Dragger struct {
	commit     Committer
	frames     FrameRequester
	handleSize float64

	state    State
	id       string
	position domain.Point
	moves    int
}

// NewDragger creates an idle dragger. handleSize is in screen pixels.
func NewDragger(commit Committer, frames FrameRequester, handleSize float64) *Dragger {
	if handleSize <= 0 {
		handleSize = geometry.DefaultHandleSize
	}
	return &Dragger{commit: commit, frames: frames, handleSize: handleSize}
}

// State returns the current state.
func (d *Dragger) State() State {
	return d.state
}

// Target returns the id being dragged, if any.
func (d *Dragger) Target() (string, bool) {
	return d.id, d.state == Dragging
}

// Moves returns how many moves the current drag has seen.
func (d *Dragger) Moves() int {
	return d.moves
}

// PointerDown hit-tests the handles of items and starts a drag on a hit.
// It returns the hit id. Down while already dragging is ignored.
func (d *Dragger) PointerDown(screen domain.Point, vp Viewport, items []domain.Item) (string, bool) {
	if d.state == Dragging {
		return d.id, false
	}
	p := geometry.ToDocumentSpace(screen, vp.Origin, vp.Scale)
	id, ok := geometry.HitTest(p, items, d.handleSize/scaleOf(vp))
	if !ok {
		return "", false
	}
	for _, item := range items {
		if item.ID == id {
			d.position = item.DocumentPosition
			break
		}
	}
	d.state = Dragging
	d.id = id
	d.moves = 0
	return id, true
}

// PointerMove updates the local position of the dragged item. The registry
// is not touched.
func (d *Dragger) PointerMove(screen domain.Point, vp Viewport) bool {
	if d.state != Dragging {
		return false
	}
	d.position = geometry.ToDocumentSpace(screen, vp.Origin, vp.Scale)
	d.moves++
	if d.frames != nil {
		d.frames.RequestFrame()
	}
	return true
}

// PointerUp ends the drag and commits the last local position. Up without a
// drag in progress does nothing.
func (d *Dragger) PointerUp() bool {
	if d.state != Dragging {
		return false
	}
	id, pos := d.id, d.position
	d.Reset()
	return d.commit.Update(domain.ItemPatch{ID: id, DocumentPosition: &pos})
}

// Reset abandons an in-progress drag without committing.
func (d *Dragger) Reset() {
	d.state = Idle
	d.id = ""
	d.moves = 0
}

// Overlay returns items with the in-flight position applied to the dragged
// one. The input slice is not modified.
func (d *Dragger) Overlay(items []domain.Item) []domain.Item {
	if d.state != Dragging {
		return items
	}
	out := make([]domain.Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == d.id {
			out[i].DocumentPosition = d.position
		}
	}
	return out
}

func scaleOf(vp Viewport) float64 {
	if vp.Scale <= 0 {
		return 1
	}
	return vp.Scale
}
