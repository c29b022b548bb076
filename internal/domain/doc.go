// Package domain defines the core types of the floorlink layout editor.
//
// # Core Types
//
// Item is an element placed on a background document. It carries identity
// fields (id, label, type), a position in the connectivity diagram, a
// position on the document, and an ordered list of user Properties.
//
// Properties preserves insertion order. Renaming a key keeps it at its index
// so the property editor never reshuffles rows under the user.
//
// Snapshot is a read-only view of the registry; Project is the persisted form
// of a session (content reference plus items).
//
// ItemType describes a catalog entry used when placing new items.
//
// # Coordinate spaces
//
// Screen points are pixels on the rendered document at the current zoom.
// Document points are zoom-independent. Diagram positions live in their own
// space owned by the layout.
//
// # Design Principles
//
// - Value types, copied on read
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
package domain
