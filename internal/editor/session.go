// Package editor implements the property editor for the selected item.
//
// Identity fields (id, label, type) are always listed first and edited in
// place; their keys cannot be renamed and the id itself is read-only. User
// properties follow in their stored order and can be added, renamed and
// changed. Every field follows the same protocol: begin, edit the draft,
// then commit (on blur or confirm) or cancel. Commits are written through
// the registry's Update and never applied to items directly.
package editor

import (
	"errors"
	"strings"

	"floorlink/internal/domain"
)

var (
	// ErrBlankKey is returned when a property key is empty or whitespace.
	ErrBlankKey = errors.New("property key is blank")
	// ErrIdentityKey is returned when a user property would shadow or
	// rename an identity field.
	ErrIdentityKey = errors.New("identity field keys cannot be renamed")
	// ErrImmutableID is returned when editing the id value.
	ErrImmutableID = errors.New("item id is read-only")
	// ErrDuplicateKey is returned when a rename targets an existing key.
	ErrDuplicateKey = errors.New("property key already exists")
	// ErrNoItem is returned when no item is bound or it no longer exists.
	ErrNoItem = errors.New("no item to edit")
	// ErrUnknownField is returned for fields the item does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotEditing is returned when a field is not in edit mode.
	ErrNotEditing = errors.New("field is not being edited")
)

// Store is the registry subset the editor uses.
type Store interface {
	Get() domain.Snapshot
	Update(patch domain.ItemPatch) bool
}

// FieldKind distinguishes the three kinds of editable cell.
type FieldKind int

const (
	IdentityValue FieldKind = iota
	PropertyKey
	PropertyValue
)

// FieldRef names one editable cell. Name is the identity field name or the
// property key.
type FieldRef struct {
	Kind FieldKind
	Name string
}

// Identity refers to an identity field's value.
func Identity(name string) FieldRef { return FieldRef{Kind: IdentityValue, Name: name} }

// Key refers to a property's key cell.
func Key(key string) FieldRef { return FieldRef{Kind: PropertyKey, Name: key} }

// Value refers to a property's value cell.
func Value(key string) FieldRef { return FieldRef{Kind: PropertyValue, Name: key} }

// Row is one line of the editor as displayed.
type Row struct {
	Identity bool   `json:"identity"`
	Key      string `json:"key"`
	Value    string `json:"value"`
	Editing  string `json:"editing,omitempty"` // "key" or "value"
	Draft    string `json:"draft,omitempty"`
}

// Session edits one item at a time.
type Session struct {
	store  Store
	target string
	fields map[FieldRef]*Field
}

// NewSession creates a session with no item bound.
func NewSession(store Store) *Session {
	return &Session{store: store, fields: make(map[FieldRef]*Field)}
}

// Bind switches the session to another item. Pending edits are dropped.
func (s *Session) Bind(id string) {
	if id == s.target {
		return
	}
	s.target = id
	s.fields = make(map[FieldRef]*Field)
}

// Target returns the bound item id.
func (s *Session) Target() string {
	return s.target
}

// Item returns the bound item as currently stored.
func (s *Session) Item() (domain.Item, error) {
	if s.target == "" {
		return domain.Item{}, ErrNoItem
	}
	item, ok := s.store.Get().Lookup(s.target)
	if !ok {
		return domain.Item{}, ErrNoItem
	}
	return item, nil
}

// Rows lists identity fields followed by user properties in order.
func (s *Session) Rows() ([]Row, error) {
	item, err := s.Item()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(domain.IdentityFields)+len(item.Properties))
	for _, name := range domain.IdentityFields {
		v, _ := item.Identity(name)
		rows = append(rows, s.decorate(Row{Identity: true, Key: name, Value: v}, Identity(name), FieldRef{}))
	}
	for _, p := range item.Properties {
		rows = append(rows, s.decorate(Row{Key: p.Key, Value: p.Value}, Value(p.Key), Key(p.Key)))
	}
	return rows, nil
}

func (s *Session) decorate(r Row, value, key FieldRef) Row {
	if f, ok := s.fields[key]; ok && key.Name != "" {
		if d, editing := f.Draft(); editing {
			r.Editing, r.Draft = "key", d
			return r
		}
	}
	if f, ok := s.fields[value]; ok {
		if d, editing := f.Draft(); editing {
			r.Editing, r.Draft = "value", d
		}
	}
	return r
}

// State returns the edit state of a field.
func (s *Session) State(ref FieldRef) FieldState {
	if f, ok := s.fields[ref]; ok {
		return f.State()
	}
	return Viewing
}

// Begin puts a field into edit mode with its current content as draft.
func (s *Session) Begin(ref FieldRef) error {
	item, err := s.Item()
	if err != nil {
		return err
	}
	var current string
	switch ref.Kind {
	case IdentityValue:
		if ref.Name == domain.FieldID {
			return ErrImmutableID
		}
		v, ok := item.Identity(ref.Name)
		if !ok {
			return ErrUnknownField
		}
		current = v
	case PropertyKey:
		if !item.Properties.Has(ref.Name) {
			return ErrUnknownField
		}
		current = ref.Name
	case PropertyValue:
		v, ok := item.Properties.Get(ref.Name)
		if !ok {
			return ErrUnknownField
		}
		current = v
	}

	f, ok := s.fields[ref]
	if !ok {
		f = &Field{}
		s.fields[ref] = f
	}
	f.Begin(current)
	return nil
}

// Input replaces the draft of a field in edit mode.
func (s *Session) Input(ref FieldRef, text string) error {
	f, ok := s.fields[ref]
	if !ok || !f.Edit(text) {
		return ErrNotEditing
	}
	return nil
}

// Cancel abandons an edit.
func (s *Session) Cancel(ref FieldRef) {
	if f, ok := s.fields[ref]; ok {
		f.Cancel()
		delete(s.fields, ref)
	}
}

// Commit ends an edit and writes the draft through the store. Blur and
// confirm both commit. An unchanged draft writes nothing. A rejected draft
// leaves the field in edit mode so the user can correct it.
func (s *Session) Commit(ref FieldRef) error {
	f, ok := s.fields[ref]
	if !ok || f.State() != Editing {
		return ErrNotEditing
	}
	draft, _ := f.Draft()

	var err error
	switch ref.Kind {
	case IdentityValue:
		err = s.SetIdentity(ref.Name, draft)
	case PropertyKey:
		err = s.Rename(ref.Name, draft, nil)
	case PropertyValue:
		err = s.SetValue(ref.Name, draft)
	}
	if err != nil {
		return err
	}
	f.End()
	delete(s.fields, ref)
	return nil
}

// SetIdentity writes label or type.
func (s *Session) SetIdentity(name, value string) error {
	item, err := s.Item()
	if err != nil {
		return err
	}
	patch := domain.ItemPatch{ID: item.ID}
	switch name {
	case domain.FieldID:
		return ErrImmutableID
	case domain.FieldLabel:
		if item.Label == value {
			return nil
		}
		patch.Label = &value
	case domain.FieldType:
		if item.Type == value {
			return nil
		}
		patch.Type = &value
	default:
		return ErrUnknownField
	}
	s.store.Update(patch)
	return nil
}

// SetValue changes the value of an existing property.
func (s *Session) SetValue(key, value string) error {
	item, err := s.Item()
	if err != nil {
		return err
	}
	cur, ok := item.Properties.Get(key)
	if !ok {
		return ErrUnknownField
	}
	if cur == value {
		return nil
	}
	props := item.Properties.Set(key, value)
	s.store.Update(domain.ItemPatch{ID: item.ID, Properties: &props})
	return nil
}

// Rename changes a property key in place, keeping its position. When value
// is nil the old value is carried over.
func (s *Session) Rename(oldKey, newKey string, value *string) error {
	newKey = strings.TrimSpace(newKey)
	if newKey == "" {
		return ErrBlankKey
	}
	if domain.IsIdentityField(newKey) {
		return ErrIdentityKey
	}
	item, err := s.Item()
	if err != nil {
		return err
	}
	if !item.Properties.Has(oldKey) {
		return ErrUnknownField
	}
	if newKey != oldKey && item.Properties.Has(newKey) {
		return ErrDuplicateKey
	}
	if newKey == oldKey {
		if value == nil {
			return nil
		}
		return s.SetValue(oldKey, *value)
	}

	props, _ := item.Properties.Rename(oldKey, newKey, value)
	s.store.Update(domain.ItemPatch{ID: item.ID, Properties: &props})

	// Cells keyed by the old name now refer to nothing.
	delete(s.fields, Value(oldKey))
	return nil
}

// AddProperty appends a new property. A blank key is rejected with no
// change; an existing key has its value replaced in place.
func (s *Session) AddProperty(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrBlankKey
	}
	if domain.IsIdentityField(key) {
		return ErrIdentityKey
	}
	item, err := s.Item()
	if err != nil {
		return err
	}
	props := item.Properties.Set(key, value)
	if props.Equal(item.Properties) {
		return nil
	}
	s.store.Update(domain.ItemPatch{ID: item.ID, Properties: &props})
	return nil
}

// RemoveProperty deletes a user property.
func (s *Session) RemoveProperty(key string) error {
	item, err := s.Item()
	if err != nil {
		return err
	}
	if !item.Properties.Has(key) {
		return ErrUnknownField
	}
	props := item.Properties.Delete(key)
	s.store.Update(domain.ItemPatch{ID: item.ID, Properties: &props})
	delete(s.fields, Key(key))
	delete(s.fields, Value(key))
	return nil
}
