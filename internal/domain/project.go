package domain

// ProjectVersion is the current snapshot format version.
const ProjectVersion = 1

// Project is a persistable snapshot of a session: the active content
// reference, optionally its bytes, and every placed item in rendering order.
type Project struct {
	Version  int         `json:"version"`
	Content  *ContentRef `json:"content,omitempty"`
	Document []byte      `json:"document,omitempty"`
	Items    []Item      `json:"items"`
}

// Validate checks item id uniqueness and non-empty ids.
func (p *Project) Validate() error {
	seen := make(map[string]bool, len(p.Items))
	for _, item := range p.Items {
		if item.ID == "" {
			return ErrEmptyID
		}
		if seen[item.ID] {
			return &DuplicateIDError{ID: item.ID}
		}
		seen[item.ID] = true
	}
	return nil
}
