package diagram

import (
	"log"

	"floorlink/internal/domain"
)

// Result summarises one reconciliation pass.
type Result struct {
	NodesAdded   int
	NodesUpdated int
	NodesRemoved int
	EdgesAdded   int
	EdgesUpdated int
	EdgesRemoved int
	Positions    map[string]domain.Point
}

// Structural reports whether the node or edge set changed.
func (r Result) Structural() bool {
	return r.NodesAdded+r.NodesUpdated+r.NodesRemoved+
		r.EdgesAdded+r.EdgesUpdated+r.EdgesRemoved > 0
}

// Reconciler keeps a Surface in step with the registry items.
type Reconciler struct {
	surface Surface
	layout  Layout
}

// NewReconciler creates a reconciler. A nil layout leaves positions alone.
func NewReconciler(surface Surface, layout Layout) *Reconciler {
	return &Reconciler{surface: surface, layout: layout}
}

// Reconcile diffs items against the surface and applies the minimal set of
// add, update and remove calls, then runs the layout once. Running it twice
// with unchanged items issues no calls the second time.
func (r *Reconciler) Reconcile(items []domain.Item) Result {
	var res Result

	desired := make(map[string]domain.Item, len(items))
	for _, item := range items {
		desired[item.ID] = item
	}
	existing := make(map[string]Node)
	for _, n := range r.surface.Nodes() {
		existing[n.ID] = n
	}

	for id := range existing {
		if _, ok := desired[id]; !ok {
			r.surface.RemoveNode(id)
			res.NodesRemoved++
		}
	}
	for _, item := range items {
		want := NodeFromItem(item)
		cur, ok := existing[item.ID]
		switch {
		case !ok:
			r.surface.AddNode(want)
			res.NodesAdded++
		case !cur.sameContent(want):
			r.surface.UpdateNode(want)
			res.NodesUpdated++
		}
	}

	// Every existing edge starts out stale and is cleared when re-derived.
	stale := make(map[string]Edge)
	for _, e := range r.surface.Edges() {
		stale[e.ID] = e
	}
	for _, e := range DeriveEdges(items) {
		cur, ok := stale[e.ID]
		if !ok {
			r.surface.AddEdge(e)
			res.EdgesAdded++
			continue
		}
		delete(stale, e.ID)
		if cur != e {
			r.surface.UpdateEdge(e)
			res.EdgesUpdated++
		}
	}
	for id := range stale {
		r.surface.RemoveEdge(id)
		res.EdgesRemoved++
	}

	if r.layout != nil {
		pos, err := r.layout.Layout(r.surface.Nodes(), r.surface.Edges())
		if err != nil {
			log.Printf("diagram: %s layout failed: %v", r.layout.Name(), err)
		} else {
			r.surface.SetPositions(pos)
			res.Positions = pos
		}
	}

	if res.Structural() {
		log.Printf("diagram: reconciled nodes +%d ~%d -%d, edges +%d ~%d -%d",
			res.NodesAdded, res.NodesUpdated, res.NodesRemoved,
			res.EdgesAdded, res.EdgesUpdated, res.EdgesRemoved)
	}
	return res
}
