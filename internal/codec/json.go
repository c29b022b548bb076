package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"floorlink/internal/domain"
)

// JSONCodec handles JSON import/export. Property order survives a round
// trip because domain.Properties encodes itself as an ordered object.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a project from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Project, error) {
	var p domain.Project
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return finish(&p)
}

// Export writes a project as indented JSON
func (c *JSONCodec) Export(p *domain.Project, w io.Writer) error {
	out := *p
	if out.Version == 0 {
		out.Version = domain.ProjectVersion
	}
	if out.Items == nil {
		out.Items = []domain.Item{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
