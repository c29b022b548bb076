package domain

// ContentKind classifies the background content an item layout is drawn on.
type ContentKind string

const (
	ContentDocument ContentKind = "document" // paginated, e.g. a floor plan export
	ContentImage    ContentKind = "image"
)

// ContentRef is an opaque reference to the active background content.
type ContentRef struct {
	Handle string      `json:"handle" yaml:"handle"`
	Kind   ContentKind `json:"kind" yaml:"kind"`
	Name   string      `json:"name,omitempty" yaml:"name,omitempty"`
	Page   int         `json:"page,omitempty" yaml:"page,omitempty"`
}
