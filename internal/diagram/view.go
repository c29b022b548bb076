package diagram

// Selector is the registry capability the diagram view needs.
type Selector interface {
	Select(id string)
}

// View is the interactive side of the diagram. Tapping a node selects the
// corresponding item; that is the only registry write the view performs.
type View struct {
	graph *Graph
	sel   Selector
}

// NewView binds a graph to a selection target.
func NewView(graph *Graph, sel Selector) *View {
	return &View{graph: graph, sel: sel}
}

// Tap selects the item behind node id. Taps on unknown ids are ignored.
func (v *View) Tap(id string) bool {
	if _, ok := v.graph.Node(id); !ok {
		return false
	}
	v.graph.Highlight(id)
	v.sel.Select(id)
	return true
}

// Graph returns the underlying graph.
func (v *View) Graph() *Graph {
	return v.graph
}
