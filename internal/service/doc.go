// Package service runs the floorlink editing session.
//
// A Session owns every stateful component: the item registry, the drag
// machine, the overlay layer, the diagram reconciler and its view, the
// property editor and the content viewer. All of them are driven from a
// single event-loop goroutine started by Run; callers submit work with Do
// (or the typed wrappers built on it) and never touch the components
// directly.
//
// After each command the session settles: if the diagram-relevant content
// of the items changed it reconciles the diagram and copies the laid-out
// positions back into the registry, and if anything in the registry changed
// it repaints the overlay. Drag moves only request a frame; the loop's frame
// ticker paints at most once per interval.
//
// # Event System
//
// Registry changes, diagram passes and content state transitions are
// published on an EventBus. The server bridges the bus to SSE clients.
package service
