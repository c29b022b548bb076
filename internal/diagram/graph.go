package diagram

import (
	"sync"

	"floorlink/internal/domain"
)

// Viewport is the pan offset and zoom of the diagram view.
type Viewport struct {
	Pan  domain.Point `json:"pan"`
	Zoom float64      `json:"zoom"`
}

// Graph is the in-memory Surface. It keeps nodes and edges in insertion
// order together with view state (viewport, highlighted node) that survives
// reconciliation. It also counts mutating calls so callers can tell whether
// a pass was a no-op.
type Graph struct {
	mu        sync.RWMutex
	nodes     map[string]Node
	nodeOrder []string
	edges     map[string]Edge
	edgeOrder []string
	viewport  Viewport
	selected  string
	mutations int
}

var _ Surface = (*Graph)(nil)

// NewGraph creates an empty graph at zoom 1.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]Node),
		edges:    make(map[string]Edge),
		viewport: Viewport{Zoom: 1},
	}
}

func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		n.Properties = n.Properties.Clone()
		out = append(out, n)
	}
	return out
}

func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Edge looks up an edge by id.
func (g *Graph) Edge(id string) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	return e, ok
}

func (g *Graph) AddNode(n Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[n.ID]; !ok {
		g.nodeOrder = append(g.nodeOrder, n.ID)
	}
	g.nodes[n.ID] = n
	g.mutations++
}

// UpdateNode replaces displayed fields. Position is kept: it belongs to the
// layout.
func (g *Graph) UpdateNode(n Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cur, ok := g.nodes[n.ID]
	if !ok {
		return
	}
	n.Position = cur.Position
	g.nodes[n.ID] = n
	g.mutations++
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph) RemoveNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	g.nodeOrder = removeID(g.nodeOrder, id)
	for _, eid := range append([]string(nil), g.edgeOrder...) {
		e := g.edges[eid]
		if e.From == id || e.To == id {
			delete(g.edges, eid)
			g.edgeOrder = removeID(g.edgeOrder, eid)
		}
	}
	if g.selected == id {
		g.selected = ""
	}
	g.mutations++
}

func (g *Graph) AddEdge(e Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.edges[e.ID]; !ok {
		g.edgeOrder = append(g.edgeOrder, e.ID)
	}
	g.edges[e.ID] = e
	g.mutations++
}

func (g *Graph) UpdateEdge(e Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.edges[e.ID]; !ok {
		return
	}
	g.edges[e.ID] = e
	g.mutations++
}

func (g *Graph) RemoveEdge(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.edges[id]; !ok {
		return
	}
	delete(g.edges, id)
	g.edgeOrder = removeID(g.edgeOrder, id)
	g.mutations++
}

// SetPositions moves nodes. Unknown ids are ignored; unchanged positions do
// not count as mutations.
func (g *Graph) SetPositions(pos map[string]domain.Point) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, p := range pos {
		n, ok := g.nodes[id]
		if !ok || n.Position == p {
			continue
		}
		n.Position = p
		g.nodes[id] = n
		g.mutations++
	}
}

// Mutations returns the number of effective mutating calls so far.
func (g *Graph) Mutations() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mutations
}

// Viewport returns the current pan and zoom.
func (g *Graph) Viewport() Viewport {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.viewport
}

// SetViewport sets pan and zoom.
func (g *Graph) SetViewport(v Viewport) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	g.viewport = v
}

// Highlight marks the node shown as selected in the view.
func (g *Graph) Highlight(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id != "" {
		if _, ok := g.nodes[id]; !ok {
			return
		}
	}
	g.selected = id
}

// Highlighted returns the highlighted node id.
func (g *Graph) Highlighted() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selected
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
