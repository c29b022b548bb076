// Package registry holds the single source of truth for placed items, the
// current selection, the zoom factor and the active content reference.
//
// Every consumer (the overlay, the diagram reconciler, the property editor)
// reads through Get and writes through Add, Update or Remove, and learns
// about changes by subscribing. Listeners run synchronously after a mutation
// is fully applied and always observe the new state.
package registry

import "floorlink/internal/domain"

// Zoom limits and step used by ZoomIn and ZoomOut.
const (
	DefaultMinZoom  = 0.5
	DefaultMaxZoom  = 4.0
	DefaultZoomStep = 0.1
)

// EventType identifies what changed.
type EventType string

const (
	EventItemAdded        EventType = "item_added"
	EventItemUpdated      EventType = "item_updated"
	EventItemRemoved      EventType = "item_removed"
	EventSelectionChanged EventType = "selection_changed"
	EventZoomChanged      EventType = "zoom_changed"
	EventContentChanged   EventType = "content_changed"
	EventReplaced         EventType = "replaced"
)

// Event describes a single applied mutation.
type Event struct {
	Type    EventType        `json:"type"`
	ItemID  string           `json:"item_id,omitempty"`
	Changed domain.FieldMask `json:"changed,omitempty"`
}

// Listener is notified after each mutation.
type Listener func(Event)

// Registry is the contract every component programs against.
type Registry interface {
	// Get returns a copy of the current state.
	Get() domain.Snapshot
	// Add inserts a new item. It returns false, leaving the registry
	// untouched, if the id is empty or already present.
	Add(item domain.Item) bool
	// Update shallow-merges a patch into the item with patch.ID. It returns
	// false and changes nothing if the item does not exist.
	Update(patch domain.ItemPatch) bool
	// Remove deletes an item and clears the selection if it pointed at it.
	Remove(id string) bool
	// Select sets the selected id; the empty string clears it.
	Select(id string)
	// SetZoom stores the zoom factor clamped to the configured range and
	// returns the stored value.
	SetZoom(zoom float64) float64
	// SetContent replaces the active content reference.
	SetContent(ref *domain.ContentRef)
	// Replace swaps all items and the content reference at once.
	Replace(items []domain.Item, ref *domain.ContentRef) error
	// Subscribe registers a listener and returns a function removing it.
	Subscribe(l Listener) (unsubscribe func())
}
