package diagram

import (
	"fmt"
	"math"

	"floorlink/internal/domain"
)

// Layout computes diagram positions for a node/edge set. Implementations
// must not modify their inputs and must be deterministic.
type Layout interface {
	Layout(nodes []Node, edges []Edge) (map[string]domain.Point, error)
	Name() string
}

// LayeredLayout arranges nodes top to bottom in ranks: edge sources above
// their targets. Each weakly connected component is laid out on its own and
// components are placed left to right.
type LayeredLayout struct {
	NodeSpacing float64
	RankSpacing float64
}

// NewLayeredLayout returns a layered layout with default spacing.
func NewLayeredLayout() *LayeredLayout {
	return &LayeredLayout{NodeSpacing: 120, RankSpacing: 100}
}

func (l *LayeredLayout) Name() string {
	return "layered"
}

func (l *LayeredLayout) Layout(nodes []Node, edges []Edge) (map[string]domain.Point, error) {
	pos := make(map[string]domain.Point, len(nodes))
	if len(nodes) == 0 {
		return pos, nil
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	outgoing := make([][]int, len(nodes))
	incoming := make([][]int, len(nodes))
	for _, e := range edges {
		from, ok := index[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %s: unknown node %s", e.ID, e.From)
		}
		to, ok := index[e.To]
		if !ok {
			return nil, fmt.Errorf("edge %s: unknown node %s", e.ID, e.To)
		}
		// Self-loops do not affect ranks.
		if from == to {
			continue
		}
		outgoing[from] = append(outgoing[from], to)
		incoming[to] = append(incoming[to], from)
	}

	xOffset := 0.0
	for _, comp := range components(len(nodes), outgoing, incoming) {
		layers := assignRanks(comp, outgoing, incoming)

		widest := 0
		for _, layer := range layers {
			if len(layer) > widest {
				widest = len(layer)
			}
		}
		compWidth := float64(widest-1) * l.NodeSpacing
		for rank, layer := range layers {
			start := xOffset + (compWidth-float64(len(layer)-1)*l.NodeSpacing)/2
			for i, n := range layer {
				pos[nodes[n].ID] = domain.Point{
					X: start + float64(i)*l.NodeSpacing,
					Y: float64(rank) * l.RankSpacing,
				}
			}
		}
		xOffset += compWidth + l.NodeSpacing
	}
	return pos, nil
}

// components returns weakly connected components, each listing node
// indices in input order; components are ordered by their first node.
func components(n int, outgoing, incoming [][]int) [][]int {
	comp := make([]int, n)
	for i := range comp {
		comp[i] = -1
	}
	var groups [][]int
	for start := 0; start < n; start++ {
		if comp[start] >= 0 {
			continue
		}
		id := len(groups)
		stack := []int{start}
		comp[start] = id
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, list := range [][]int{outgoing[v], incoming[v]} {
				for _, w := range list {
					if comp[w] < 0 {
						comp[w] = id
						stack = append(stack, w)
					}
				}
			}
		}
		groups = append(groups, nil)
	}
	for v := 0; v < n; v++ {
		groups[comp[v]] = append(groups[comp[v]], v)
	}
	return groups
}

// assignRanks gives each node its longest-path distance from a source.
// Cycles are broken by releasing the earliest remaining node.
func assignRanks(comp []int, outgoing, incoming [][]int) [][]int {
	inComp := make(map[int]bool, len(comp))
	for _, v := range comp {
		inComp[v] = true
	}
	indeg := make(map[int]int, len(comp))
	for _, v := range comp {
		for _, u := range incoming[v] {
			if inComp[u] {
				indeg[v]++
			}
		}
	}

	rank := make(map[int]int, len(comp))
	done := make(map[int]bool, len(comp))
	for len(done) < len(comp) {
		next := -1
		for _, v := range comp {
			if !done[v] && indeg[v] == 0 {
				next = v
				break
			}
		}
		if next < 0 {
			for _, v := range comp {
				if !done[v] {
					next = v
					break
				}
			}
		}
		done[next] = true
		for _, w := range outgoing[next] {
			if done[w] {
				continue
			}
			indeg[w]--
			if r := rank[next] + 1; r > rank[w] {
				rank[w] = r
			}
		}
	}

	maxRank := 0
	for _, r := range rank {
		if r > maxRank {
			maxRank = r
		}
	}
	layers := make([][]int, maxRank+1)
	for _, v := range comp {
		layers[rank[v]] = append(layers[rank[v]], v)
	}
	return layers
}

// GridLayout places nodes on a square grid in input order, ignoring edges.
type GridLayout struct {
	Spacing float64
}

func (g *GridLayout) Name() string {
	return "grid"
}

func (g *GridLayout) Layout(nodes []Node, _ []Edge) (map[string]domain.Point, error) {
	spacing := g.Spacing
	if spacing <= 0 {
		spacing = 120
	}
	cols := int(math.Ceil(math.Sqrt(float64(len(nodes)))))
	pos := make(map[string]domain.Point, len(nodes))
	for i, n := range nodes {
		pos[n.ID] = domain.Point{
			X: float64(i%cols) * spacing,
			Y: float64(i/cols) * spacing,
		}
	}
	return pos, nil
}

// LayoutByName returns the named layout, or the layered layout for an
// unknown name. Zero spacings fall back to each layout's defaults.
func LayoutByName(name string, nodeSpacing, rankSpacing float64) Layout {
	if name == "grid" {
		return &GridLayout{Spacing: nodeSpacing}
	}
	l := NewLayeredLayout()
	if nodeSpacing > 0 {
		l.NodeSpacing = nodeSpacing
	}
	if rankSpacing > 0 {
		l.RankSpacing = rankSpacing
	}
	return l
}
