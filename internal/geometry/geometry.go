// Package geometry converts between screen and document coordinates and
// hit-tests item drag handles.
package geometry

import "floorlink/internal/domain"

// DefaultHandleSize is the side length of an item's drag handle in screen
// pixels.
const DefaultHandleSize = 20.0

// ToDocumentSpace converts a screen point to document coordinates given the
// top-left screen origin of the rendered document and the current scale.
// Non-positive scales are treated as 1.
func ToDocumentSpace(screen, origin domain.Point, scale float64) domain.Point {
	if scale <= 0 {
		scale = 1
	}
	return screen.Sub(origin).Scale(1 / scale)
}

// ToScreenSpace is the inverse of ToDocumentSpace.
func ToScreenSpace(doc, origin domain.Point, scale float64) domain.Point {
	if scale <= 0 {
		scale = 1
	}
	return doc.Scale(scale).Add(origin)
}

// Rect is an axis-aligned rectangle with inclusive bounds.
type Rect struct {
	Min, Max domain.Point
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p domain.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// HandleRect returns the drag handle square for an item whose label is
// drawn at anchor. The square extends size units right of and above the
// anchor.
func HandleRect(anchor domain.Point, size float64) Rect {
	return Rect{
		Min: domain.Point{X: anchor.X, Y: anchor.Y - size},
		Max: domain.Point{X: anchor.X + size, Y: anchor.Y},
	}
}

// HitTest returns the id of the item whose handle contains p. Items are
// searched from last to first so the one drawn on top wins. Positions are
// taken from each item's DocumentPosition.
func HitTest(p domain.Point, items []domain.Item, handleSize float64) (string, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		if HandleRect(items[i].DocumentPosition, handleSize).Contains(p) {
			return items[i].ID, true
		}
	}
	return "", false
}
