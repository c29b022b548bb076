package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"floorlink/internal/domain"
)

// Importer reads a project snapshot from some format.
type Importer interface {
	Parse(r io.Reader) (*domain.Project, error)
	Format() string
}

// Exporter writes a project snapshot in some format.
type Exporter interface {
	Export(p *domain.Project, w io.Writer) error
	Format() string
}

// Codec is both.
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for "json", "yaml" or "ansible-inventory".
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "ansible", "ansible-inventory":
		return NewAnsibleCodec(), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// ForPath picks a codec from a file extension, defaulting to JSON.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLCodec()
	}
	return NewJSONCodec()
}

// finish validates a parsed project and stamps the version.
func finish(p *domain.Project) (*domain.Project, error) {
	if p.Version == 0 {
		p.Version = domain.ProjectVersion
	}
	if p.Version > domain.ProjectVersion {
		return nil, fmt.Errorf("project version %d is newer than supported %d", p.Version, domain.ProjectVersion)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
