package domain

// ItemType is a catalog entry describing a placeable kind of item.
type ItemType struct {
	Name        string     `json:"name"`
	Label       string     `json:"label"`
	Icon        string     `json:"icon,omitempty"`
	Description string     `json:"description,omitempty"`
	Properties  Properties `json:"properties"` // defaults copied onto newly placed items
}
