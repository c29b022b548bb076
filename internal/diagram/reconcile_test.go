package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorlink/internal/domain"
)

func TestReconcile(t *testing.T) {
	t.Run("builds nodes and edges", func(t *testing.T) {
		g := NewGraph()
		r := NewReconciler(g, NewLayeredLayout())

		res := r.Reconcile([]domain.Item{
			item("router-1", "router"),
			item("server-1", "server", "uplink", "router-1"),
		})
		assert.Equal(t, 2, res.NodesAdded)
		assert.Equal(t, 1, res.EdgesAdded)
		assert.Len(t, g.Nodes(), 2)
		require.Len(t, g.Edges(), 1)
		assert.Equal(t, KeyColorHex("uplink"), g.Edges()[0].Color)
	})

	t.Run("idempotent", func(t *testing.T) {
		g := NewGraph()
		r := NewReconciler(g, NewLayeredLayout())
		items := []domain.Item{
			item("router-1", "router"),
			item("switch-1", "switch", "uplink", "router-1"),
			item("server-1", "server", "uplink", "switch-1", "backup", "router-1"),
		}

		r.Reconcile(items)
		nodes, edges := g.Nodes(), g.Edges()
		before := g.Mutations()

		res := r.Reconcile(items)
		assert.False(t, res.Structural())
		assert.Equal(t, before, g.Mutations(), "second pass must issue no calls")
		assert.Equal(t, nodes, g.Nodes())
		assert.Equal(t, edges, g.Edges())
	})

	t.Run("removes dangling edges", func(t *testing.T) {
		g := NewGraph()
		r := NewReconciler(g, NewLayeredLayout())
		r.Reconcile([]domain.Item{item("A", "server", "link", "B"), item("B", "switch")})
		require.Len(t, g.Edges(), 1)

		res := r.Reconcile([]domain.Item{item("A", "server", "link", "B")})
		assert.Equal(t, 1, res.NodesRemoved)
		for _, e := range g.Edges() {
			assert.NotEqual(t, "B", e.To)
			assert.NotEqual(t, "B", e.From)
		}
		assert.Empty(t, g.Edges())
	})

	t.Run("recolours when key changes", func(t *testing.T) {
		g := NewGraph()
		r := NewReconciler(g, nil)
		r.Reconcile([]domain.Item{item("A", "server", "link", "B"), item("B", "switch")})

		res := r.Reconcile([]domain.Item{item("A", "server", "uplink", "B"), item("B", "switch")})
		assert.Equal(t, 1, res.EdgesUpdated)
		assert.Equal(t, 0, res.EdgesAdded)
		e, ok := g.Edge(EdgeID("A", "B"))
		require.True(t, ok)
		assert.Equal(t, KeyColorHex("uplink"), e.Color)
	})

	t.Run("drops edge when property cleared", func(t *testing.T) {
		g := NewGraph()
		r := NewReconciler(g, nil)
		r.Reconcile([]domain.Item{item("A", "server", "link", "B"), item("B", "switch")})

		res := r.Reconcile([]domain.Item{item("A", "server", "link", ""), item("B", "switch")})
		assert.Equal(t, 1, res.EdgesRemoved)
		assert.Equal(t, 1, res.NodesUpdated)
		assert.Empty(t, g.Edges())
	})

	t.Run("keeps viewport and highlight", func(t *testing.T) {
		g := NewGraph()
		r := NewReconciler(g, NewLayeredLayout())
		r.Reconcile([]domain.Item{item("A", "server"), item("B", "switch")})
		g.SetViewport(Viewport{Pan: domain.Pt(30, 40), Zoom: 2})
		g.Highlight("A")

		r.Reconcile([]domain.Item{item("A", "server", "uplink", "B"), item("B", "switch"), item("C", "router")})
		assert.Equal(t, Viewport{Pan: domain.Pt(30, 40), Zoom: 2}, g.Viewport())
		assert.Equal(t, "A", g.Highlighted())
	})

	t.Run("layout ignores document position", func(t *testing.T) {
		g := NewGraph()
		r := NewReconciler(g, NewLayeredLayout())
		a := item("A", "server")
		a.DocumentPosition = domain.Pt(10, 10)
		first := r.Reconcile([]domain.Item{a})

		a.DocumentPosition = domain.Pt(500, 500)
		second := r.Reconcile([]domain.Item{a})
		assert.Equal(t, first.Positions, second.Positions)
	})
}

func TestLayoutByName(t *testing.T) {
	grid, ok := LayoutByName("grid", 90, 0).(*GridLayout)
	require.True(t, ok)
	assert.Equal(t, 90.0, grid.Spacing)

	layered, ok := LayoutByName("layered", 0, 80).(*LayeredLayout)
	require.True(t, ok)
	assert.Equal(t, 120.0, layered.NodeSpacing)
	assert.Equal(t, 80.0, layered.RankSpacing)

	_, ok = LayoutByName("force", 0, 0).(*LayeredLayout)
	assert.True(t, ok, "unknown names fall back to layered")
}

func TestLayeredLayout(t *testing.T) {
	l := NewLayeredLayout()

	t.Run("sources above targets", func(t *testing.T) {
		nodes := []Node{{ID: "router"}, {ID: "switch"}, {ID: "server"}}
		edges := []Edge{
			{ID: EdgeID("switch", "router"), From: "switch", To: "router"},
			{ID: EdgeID("server", "switch"), From: "server", To: "switch"},
		}
		pos, err := l.Layout(nodes, edges)
		require.NoError(t, err)
		assert.Less(t, pos["server"].Y, pos["switch"].Y)
		assert.Less(t, pos["switch"].Y, pos["router"].Y)
	})

	t.Run("deterministic", func(t *testing.T) {
		nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
		edges := []Edge{{ID: "a->b", From: "a", To: "b"}, {ID: "c->b", From: "c", To: "b"}}
		p1, err := l.Layout(nodes, edges)
		require.NoError(t, err)
		p2, err := l.Layout(nodes, edges)
		require.NoError(t, err)
		assert.Equal(t, p1, p2)
		assert.Len(t, p1, 4)
	})

	t.Run("cycle terminates", func(t *testing.T) {
		nodes := []Node{{ID: "a"}, {ID: "b"}}
		edges := []Edge{{ID: "a->b", From: "a", To: "b"}, {ID: "b->a", From: "b", To: "a"}}
		pos, err := l.Layout(nodes, edges)
		require.NoError(t, err)
		assert.NotEqual(t, pos["a"], pos["b"])
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		_, err := l.Layout([]Node{{ID: "a"}}, []Edge{{ID: "a->x", From: "a", To: "x"}})
		assert.Error(t, err)
	})
}

func TestViewTap(t *testing.T) {
	g := NewGraph()
	NewReconciler(g, nil).Reconcile([]domain.Item{item("A", "server")})

	var selected string
	v := NewView(g, selectFunc(func(id string) { selected = id }))

	assert.True(t, v.Tap("A"))
	assert.Equal(t, "A", selected)
	assert.Equal(t, "A", g.Highlighted())

	assert.False(t, v.Tap("missing"))
	assert.Equal(t, "A", selected)
}

type selectFunc func(string)

func (f selectFunc) Select(id string) { f(id) }
