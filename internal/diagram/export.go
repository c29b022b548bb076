package diagram

import (
	"errors"
	"fmt"
	"io"
)

// ErrEmptyGraph is returned when exporting a graph with no nodes to a
// format that needs at least one.
var ErrEmptyGraph = errors.New("nothing to export")

// Exporter writes a graph in some output format.
type Exporter interface {
	Export(g *Graph, w io.Writer) error
	Format() string
}

// ExporterFor returns the exporter for "dot" or "png".
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "dot":
		return &DotExporter{}, nil
	case "png":
		return NewPNGExporter(), nil
	}
	return nil, fmt.Errorf("unsupported diagram format: %s", format)
}
