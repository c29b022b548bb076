package diagram

import "floorlink/internal/domain"

// Node is the diagram's view of an item.
type Node struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Type       string            `json:"type"`
	Properties domain.Properties `json:"properties"`
	Position   domain.Point      `json:"position"`
}

// NodeFromItem builds a node from an item, taking its diagram position.
func NodeFromItem(item domain.Item) Node {
	return Node{
		ID:         item.ID,
		Label:      item.Label,
		Type:       item.Type,
		Properties: item.Properties.Clone(),
		Position:   item.Position,
	}
}

// sameContent compares the displayed fields, ignoring position.
func (n Node) sameContent(o Node) bool {
	return n.Label == o.Label && n.Type == o.Type && n.Properties.Equal(o.Properties)
}

// Surface is whatever renders the diagram. The reconciler only issues
// incremental calls against it and never rebuilds it wholesale.
type Surface interface {
	Nodes() []Node
	Edges() []Edge
	AddNode(n Node)
	UpdateNode(n Node)
	RemoveNode(id string)
	AddEdge(e Edge)
	UpdateEdge(e Edge)
	RemoveEdge(id string)
	SetPositions(pos map[string]domain.Point)
}
