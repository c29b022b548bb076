package diagram

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// DotExporter writes a graph as Graphviz DOT, keeping edge colours and
// laying ranks top to bottom.
type DotExporter struct {
	Name string
}

func (x *DotExporter) Format() string {
	return "dot"
}

func (x *DotExporter) Export(g *Graph, w io.Writer) error {
	name := x.Name
	if name == "" {
		name = "floorlink"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "digraph %s {\n", dotQuote(name))
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=ellipse, style=filled, fillcolor=\"#4299e1\", fontcolor=white];\n")

	selected := g.Highlighted()
	for _, n := range g.Nodes() {
		attrs := fmt.Sprintf("label=%s", dotQuote(n.Label+"\n("+n.Type+")"))
		if n.ID == selected {
			attrs += ", penwidth=3, color=\"#f6ad55\""
		}
		fmt.Fprintf(&b, "  %s [%s];\n", dotQuote(n.ID), attrs)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %s -> %s [label=%s, color=%s];\n",
			dotQuote(e.From), dotQuote(e.To), dotQuote(e.Key), dotQuote(e.Color))
	}
	b.WriteString("}\n")

	_, err := w.Write(b.Bytes())
	return err
}

func dotQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
