package diagram

import (
	"floorlink/internal/domain"
)

// Edge is a derived relationship: item From has a property Key whose value
// is the id of item To.
type Edge struct {
	ID    string `json:"id"`
	From  string `json:"from"`
	To    string `json:"to"`
	Key   string `json:"key"`
	Color string `json:"color"`
}

// EdgeID is the deterministic identity of the edge between two items.
func EdgeID(from, to string) string {
	return from + "->" + to
}

// DeriveEdges returns one edge for each ordered pair (A, B) where some
// property value of A equals B's id. When several properties of A point at
// B, the first in property order names and colours the edge. Self
// references produce no edge. Output follows item order, then property
// order.
func DeriveEdges(items []domain.Item) []Edge {
	ids := make(map[string]bool, len(items))
	for _, item := range items {
		ids[item.ID] = true
	}

	var edges []Edge
	seen := make(map[string]bool)
	for _, item := range items {
		for _, p := range item.Properties {
			if p.Value == "" || p.Value == item.ID || !ids[p.Value] {
				continue
			}
			id := EdgeID(item.ID, p.Value)
			if seen[id] {
				continue
			}
			seen[id] = true
			edges = append(edges, Edge{
				ID:    id,
				From:  item.ID,
				To:    p.Value,
				Key:   p.Key,
				Color: KeyColorHex(p.Key),
			})
		}
	}
	return edges
}
