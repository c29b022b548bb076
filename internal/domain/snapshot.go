package domain

// Snapshot is a read-only copy of the registry state.
type Snapshot struct {
	Items    []Item
	Selected string // empty when nothing is selected
	Zoom     float64
	Content  *ContentRef
}

// Lookup finds an item by id.
func (s Snapshot) Lookup(id string) (Item, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// IDs returns item ids in rendering order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.Items))
	for i, item := range s.Items {
		ids[i] = item.ID
	}
	return ids
}
