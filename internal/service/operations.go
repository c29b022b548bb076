package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"floorlink/internal/diagram"
	"floorlink/internal/domain"
	"floorlink/internal/editor"
)

// Snapshot returns a copy of the registry state.
func (s *Session) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.Do(ctx, func() error {
		snap = s.store.Get()
		return nil
	})
	return snap, err
}

// Place creates an item of typeName at a document point.
func (s *Session) Place(ctx context.Context, typeName string, at domain.Point) (domain.Item, error) {
	var item domain.Item
	err := s.Do(ctx, func() error {
		var err error
		item, err = s.catalog.Place(typeName, at, s.store.Get().Items)
		if err != nil {
			return err
		}
		s.store.Add(item)
		return nil
	})
	return item, err
}

// AddItems inserts finished items, skipping ids already present. It
// returns how many were added.
func (s *Session) AddItems(ctx context.Context, items []domain.Item) (int, error) {
	added := 0
	err := s.Do(ctx, func() error {
		for _, item := range items {
			if s.store.Add(item) {
				added++
			}
		}
		return nil
	})
	return added, err
}

// UpdateItem applies a patch. The diagram position belongs to the layout
// and cannot be patched. It returns false when the item does not exist.
func (s *Session) UpdateItem(ctx context.Context, patch domain.ItemPatch) (bool, error) {
	if patch.Position != nil {
		return false, fmt.Errorf("diagram position is owned by the layout")
	}
	if patch.Properties != nil {
		if err := validateProperties(*patch.Properties); err != nil {
			return false, err
		}
	}
	var ok bool
	err := s.Do(ctx, func() error {
		ok = s.store.Update(patch)
		return nil
	})
	return ok, err
}

func validateProperties(props domain.Properties) error {
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		switch {
		case strings.TrimSpace(p.Key) == "":
			return editor.ErrBlankKey
		case domain.IsIdentityField(p.Key):
			return fmt.Errorf("%w: %q", editor.ErrIdentityKey, p.Key)
		case seen[p.Key]:
			return fmt.Errorf("%w: %q", editor.ErrDuplicateKey, p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

// Remove deletes an item.
func (s *Session) Remove(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.Do(ctx, func() error {
		ok = s.store.Remove(id)
		return nil
	})
	return ok, err
}

// Select sets or clears ("") the selection.
func (s *Session) Select(ctx context.Context, id string) error {
	return s.Do(ctx, func() error {
		if id != "" {
			if _, err := s.store.Item(id); err != nil {
				return nil
			}
		}
		s.store.Select(id)
		return nil
	})
}

// SetZoom stores a clamped zoom factor and returns it.
func (s *Session) SetZoom(ctx context.Context, zoom float64) (float64, error) {
	var z float64
	err := s.Do(ctx, func() error {
		z = s.store.SetZoom(zoom)
		return nil
	})
	return z, err
}

// ZoomIn steps the zoom up.
func (s *Session) ZoomIn(ctx context.Context) (float64, error) {
	var z float64
	err := s.Do(ctx, func() error {
		z = s.store.ZoomIn()
		return nil
	})
	return z, err
}

// ZoomOut steps the zoom down.
func (s *Session) ZoomOut(ctx context.Context) (float64, error) {
	var z float64
	err := s.Do(ctx, func() error {
		z = s.store.ZoomOut()
		return nil
	})
	return z, err
}

// SetOrigin sets where the document's top-left corner sits on screen.
func (s *Session) SetOrigin(ctx context.Context, origin domain.Point) error {
	return s.Do(ctx, func() error {
		s.origin = origin
		return nil
	})
}

// ============================================================================
// Pointer
// ============================================================================

// PointerDown starts a drag on the handle under a screen point.
func (s *Session) PointerDown(ctx context.Context, screen domain.Point) (string, bool, error) {
	var (
		id  string
		hit bool
	)
	err := s.Do(ctx, func() error {
		id, hit = s.dragger.PointerDown(screen, s.viewport(), s.store.Get().Items)
		return nil
	})
	return id, hit, err
}

// PointerMove moves the dragged item locally and requests a frame.
func (s *Session) PointerMove(ctx context.Context, screen domain.Point) (bool, error) {
	var moved bool
	err := s.Do(ctx, func() error {
		moved = s.dragger.PointerMove(screen, s.viewport())
		return nil
	})
	return moved, err
}

// PointerUp ends a drag, committing the final document position.
func (s *Session) PointerUp(ctx context.Context) (bool, error) {
	var committed bool
	err := s.Do(ctx, func() error {
		committed = s.dragger.PointerUp()
		return nil
	})
	return committed, err
}

// PointerCancel abandons a drag without committing.
func (s *Session) PointerCancel(ctx context.Context) error {
	return s.Do(ctx, func() error {
		if _, dragging := s.dragger.Target(); dragging {
			s.dragger.Reset()
			s.dirty = true
		}
		return nil
	})
}

// ============================================================================
// Diagram
// ============================================================================

// DiagramView is the JSON form of the displayed diagram.
type DiagramView struct {
	Nodes    []diagram.Node `json:"nodes"`
	Edges    []diagram.Edge `json:"edges"`
	Selected string         `json:"selected,omitempty"`
}

// Diagram returns the current nodes and edges.
func (s *Session) Diagram(ctx context.Context) (DiagramView, error) {
	var v DiagramView
	err := s.Do(ctx, func() error {
		v = DiagramView{
			Nodes:    s.graph.Nodes(),
			Edges:    s.graph.Edges(),
			Selected: s.graph.Highlighted(),
		}
		return nil
	})
	return v, err
}

// Tap selects the item behind a diagram node.
func (s *Session) Tap(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.Do(ctx, func() error {
		ok = s.view.Tap(id)
		return nil
	})
	return ok, err
}

// ExportDiagram renders the diagram as "dot" or "png".
func (s *Session) ExportDiagram(ctx context.Context, format string) ([]byte, error) {
	exp, err := diagram.ExporterFor(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = s.Do(ctx, func() error {
		return exp.Export(s.graph, &buf)
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================================
// Editor
// ============================================================================

// EditorView is the inspector for the selected item.
type EditorView struct {
	Target string       `json:"target"`
	Rows   []editor.Row `json:"rows"`
}

// Editor returns the inspector rows for the selected item.
func (s *Session) Editor(ctx context.Context) (EditorView, error) {
	var v EditorView
	err := s.Do(ctx, func() error {
		v.Target = s.editor.Target()
		if v.Target == "" {
			return nil
		}
		rows, err := s.editor.Rows()
		if err != nil {
			return err
		}
		v.Rows = rows
		return nil
	})
	return v, err
}

// EditBegin puts a field into edit mode.
func (s *Session) EditBegin(ctx context.Context, ref editor.FieldRef) error {
	return s.Do(ctx, func() error { return s.editor.Begin(ref) })
}

// EditInput replaces a field's draft.
func (s *Session) EditInput(ctx context.Context, ref editor.FieldRef, text string) error {
	return s.Do(ctx, func() error { return s.editor.Input(ref, text) })
}

// EditCommit writes a field's draft through the registry.
func (s *Session) EditCommit(ctx context.Context, ref editor.FieldRef) error {
	return s.Do(ctx, func() error { return s.editor.Commit(ref) })
}

// EditCancel drops a field's draft.
func (s *Session) EditCancel(ctx context.Context, ref editor.FieldRef) error {
	return s.Do(ctx, func() error {
		s.editor.Cancel(ref)
		return nil
	})
}

// SetIdentity changes the label or type. The id is read-only.
func (s *Session) SetIdentity(ctx context.Context, name, value string) error {
	return s.Do(ctx, func() error { return s.editor.SetIdentity(name, value) })
}

// SetValue changes a property value.
func (s *Session) SetValue(ctx context.Context, key, value string) error {
	return s.Do(ctx, func() error { return s.editor.SetValue(key, value) })
}

// Rename renames a property in place, optionally replacing its value.
func (s *Session) Rename(ctx context.Context, oldKey, newKey string, value *string) error {
	return s.Do(ctx, func() error { return s.editor.Rename(oldKey, newKey, value) })
}

// AddProperty appends a property to the selected item.
func (s *Session) AddProperty(ctx context.Context, key, value string) error {
	return s.Do(ctx, func() error { return s.editor.AddProperty(key, value) })
}

// RemoveProperty deletes a property from the selected item.
func (s *Session) RemoveProperty(ctx context.Context, key string) error {
	return s.Do(ctx, func() error { return s.editor.RemoveProperty(key) })
}

// ============================================================================
// Catalog
// ============================================================================

// Types lists the item types available for placement.
func (s *Session) Types(ctx context.Context) ([]domain.ItemType, error) {
	var types []domain.ItemType
	err := s.Do(ctx, func() error {
		types = s.catalog.All()
		return nil
	})
	return types, err
}

// DefineType adds a type from a finished form: name, icon and the raw
// property string ("ip=10.0.0.1,uplink").
func (s *Session) DefineType(ctx context.Context, name, icon, rawProps string) (domain.ItemType, error) {
	var t domain.ItemType
	err := s.Do(ctx, func() error {
		var err error
		t, err = s.catalog.Define(name, icon, rawProps)
		return err
	})
	return t, err
}
