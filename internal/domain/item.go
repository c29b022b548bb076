package domain

// Identity field names. They are always present on an item and are edited
// through the identity section of the property editor, never as user
// properties.
const (
	FieldID    = "id"
	FieldLabel = "label"
	FieldType  = "type"
)

// IdentityFields lists the identity field names in display order.
var IdentityFields = []string{FieldID, FieldLabel, FieldType}

// IsIdentityField reports whether name is one of the identity fields.
func IsIdentityField(name string) bool {
	switch name {
	case FieldID, FieldLabel, FieldType:
		return true
	}
	return false
}

// Item is a placed element: it sits on the document at DocumentPosition and
// appears as a node in the diagram at Position.
type Item struct {
	ID               string     `json:"id"`
	Label            string     `json:"label"`
	Type             string     `json:"type"`
	Position         Point      `json:"position"`
	DocumentPosition Point      `json:"document_position"`
	Properties       Properties `json:"properties"`
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	i.Properties = i.Properties.Clone()
	return i
}

// Identity returns the value of an identity field.
func (i Item) Identity(name string) (string, bool) {
	switch name {
	case FieldID:
		return i.ID, true
	case FieldLabel:
		return i.Label, true
	case FieldType:
		return i.Type, true
	}
	return "", false
}

// ItemPatch is a partial update. Nil fields are left untouched. ID selects
// the item and is never changed by a patch.
type ItemPatch struct {
	ID               string
	Label            *string
	Type             *string
	Position         *Point
	DocumentPosition *Point
	Properties       *Properties
}

// FieldMask records which item fields a patch touched.
type FieldMask uint8

const (
	MaskLabel FieldMask = 1 << iota
	MaskType
	MaskPosition
	MaskDocumentPosition
	MaskProperties
)

// Has reports whether all bits of f are set.
func (m FieldMask) Has(f FieldMask) bool {
	return m&f == f
}

// Mask returns the set of fields the patch carries.
func (p ItemPatch) Mask() FieldMask {
	var m FieldMask
	if p.Label != nil {
		m |= MaskLabel
	}
	if p.Type != nil {
		m |= MaskType
	}
	if p.Position != nil {
		m |= MaskPosition
	}
	if p.DocumentPosition != nil {
		m |= MaskDocumentPosition
	}
	if p.Properties != nil {
		m |= MaskProperties
	}
	return m
}

// Apply merges the patch into item (shallow merge) and returns the result.
func (p ItemPatch) Apply(item Item) Item {
	out := item.Clone()
	if p.Label != nil {
		out.Label = *p.Label
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.DocumentPosition != nil {
		out.DocumentPosition = *p.DocumentPosition
	}
	if p.Properties != nil {
		out.Properties = p.Properties.Clone()
	}
	return out
}
