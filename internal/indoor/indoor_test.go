package indoor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfinder/core-go/internal/grid"
	"wayfinder/core-go/internal/maperr"
)

func newTestMap(t *testing.T) *Map {
	t.Helper()
	m, err := NewMap("Aulario I", 250, 5, 5)
	require.NoError(t, err)
	return m
}

func ptr[T any](v T) *T { return &v }

func TestNewMap(t *testing.T) {
	m := newTestMap(t)

	assert.True(t, m.Ref.IsDraft())
	assert.Equal(t, []int{0}, m.Floors.Numbers())
	f, err := m.Floors.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "First floor", f.Label)
	assert.Equal(t, 5, f.Grid.Rows())
	assert.NotNil(t, m.Nodes)
	assert.NotNil(t, m.Edges)

	_, err = NewMap("bad", 0, 0, 3)
	assert.True(t, maperr.Is(err, maperr.CodeInvalidDimension))
}

func TestFloors(t *testing.T) {
	m := newTestMap(t)

	_, err := m.Floors.Add(1, "Second floor", 4, 6)
	require.NoError(t, err)

	_, err = m.Floors.Add(1, "Again", 4, 6)
	assert.True(t, maperr.Is(err, maperr.CodeDuplicateFloor))

	_, err = m.Floors.Add(2, "Bad", 0, 6)
	assert.True(t, maperr.Is(err, maperr.CodeInvalidDimension))

	f, ok := m.Floors.Find(1)
	require.True(t, ok)
	assert.Equal(t, 6, f.Grid.Cols())

	_, ok = m.Floors.Find(7)
	assert.False(t, ok)
	_, err = m.Floors.Get(7)
	assert.True(t, maperr.Is(err, maperr.CodeFloorNotFound))

	assert.Equal(t, []int{0, 1}, m.Floors.Numbers())
}

func TestRasterizeAndResizeFloor(t *testing.T) {
	m := newTestMap(t)

	err := m.RasterizeFloor(0, []grid.Point{{X: 1, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 2}, {X: 1, Y: 2}}, grid.Occupied)
	require.NoError(t, err)

	err = m.RasterizeFloor(3, []grid.Point{{X: 0, Y: 0}}, 1)
	assert.True(t, maperr.Is(err, maperr.CodeFloorNotFound))

	before, _ := m.Floors.Find(0)
	old := before.Grid

	require.NoError(t, m.ResizeFloor(0, 6, 7))
	after, _ := m.Floors.Find(0)
	assert.NotSame(t, old, after.Grid)
	assert.Equal(t, 6, after.Grid.Rows())
	assert.Equal(t, []int{0, 1, 1, 1, 0, 0, 0}, after.Grid.Cells()[5])

	err = m.ResizeFloor(0, 0, 0)
	assert.True(t, maperr.Is(err, maperr.CodeInvalidDimension))
	same, _ := m.Floors.Find(0)
	assert.Same(t, after.Grid, same.Grid)
}

func TestAddNode(t *testing.T) {
	m := newTestMap(t)

	n, err := m.AddNode(Node{Name: "Central Hall", Floor: 0, X: 4, Y: 0, Area: [][]int{{1, 1}}})
	require.NoError(t, err)
	assert.True(t, n.Ref.IsDraft())
	assert.Equal(t, m.Ref, n.MapRef)

	got, ok := m.Node(n.Ref)
	require.True(t, ok)
	assert.Equal(t, "Central Hall", got.Name)

	tests := []struct {
		name string
		node Node
		code maperr.Code
	}{
		{"x past cols", Node{Floor: 0, X: 5, Y: 0}, maperr.CodeOutOfBounds},
		{"negative y", Node{Floor: 0, X: 0, Y: -1}, maperr.CodeOutOfBounds},
		{"unknown floor", Node{Floor: 9, X: 0, Y: 0}, maperr.CodeFloorNotFound},
		{"duplicate ref", Node{Ref: n.Ref, Floor: 0}, maperr.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddNode(tt.node)
			assert.True(t, maperr.Is(err, tt.code), "got %v", err)
		})
	}
	assert.Len(t, m.Nodes, 1)
}

func TestUpdateNode(t *testing.T) {
	m := newTestMap(t)
	n, err := m.AddNode(Node{Name: "Hall", X: 1, Y: 1})
	require.NoError(t, err)

	updated, err := m.UpdateNode(n.Ref, NodePatch{Name: ptr("Main Hall"), IsExit: ptr(true), X: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, "Main Hall", updated.Name)
	assert.True(t, updated.IsExit)
	assert.Equal(t, 2, updated.X)
	assert.Equal(t, 1, updated.Y)

	_, err = m.UpdateNode(n.Ref, NodePatch{Y: ptr(10)})
	assert.True(t, maperr.Is(err, maperr.CodeOutOfBounds))
	stored, _ := m.Node(n.Ref)
	assert.Equal(t, 1, stored.Y, "failed update must not be applied")

	_, err = m.UpdateNode(Persisted(99), NodePatch{})
	assert.True(t, maperr.Is(err, maperr.CodeNodeNotFound))
}

func TestRemoveNodeCascadesEdges(t *testing.T) {
	m := newTestMap(t)
	a, _ := m.AddNode(Node{Name: "a"})
	b, _ := m.AddNode(Node{Name: "b", X: 1})
	c, _ := m.AddNode(Node{Name: "c", X: 2})

	_, err := m.AddEdge(a.Ref, b.Ref, 5, "a->b")
	require.NoError(t, err)
	_, err = m.AddEdge(b.Ref, a.Ref, 5, "b->a")
	require.NoError(t, err)
	keep, err := m.AddEdge(a.Ref, c.Ref, 3, "a->c")
	require.NoError(t, err)

	removed, err := m.RemoveNode(b.Ref)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []Edge{keep}, m.Edges)
	assert.Len(t, m.Nodes, 2)

	_, err = m.RemoveNode(b.Ref)
	assert.True(t, maperr.Is(err, maperr.CodeNodeNotFound))
}

func TestEdges(t *testing.T) {
	m := newTestMap(t)
	a, _ := m.AddNode(Node{Name: "a"})
	b, _ := m.AddNode(Node{Name: "b", X: 1})

	e, err := m.AddEdge(a.Ref, b.Ref, 5, "From the entrance, proceed to the hall")
	require.NoError(t, err)
	assert.True(t, e.Ref.IsDraft())
	assert.Equal(t, m.Ref, e.MapRef)

	_, err = m.AddEdge(a.Ref, Persisted(404), 1, "")
	assert.True(t, maperr.Is(err, maperr.CodeNodeNotFound))

	assert.Equal(t, []Edge{e}, m.EdgesFrom(a.Ref))
	assert.Empty(t, m.EdgesFrom(b.Ref))
	assert.NotNil(t, m.EdgesFrom(b.Ref))

	require.NoError(t, m.RemoveEdge(e.Ref))
	assert.Empty(t, m.Edges)
	assert.True(t, maperr.Is(m.RemoveEdge(e.Ref), maperr.CodeEdgeNotFound))
}

func TestExitAndEntranceNodes(t *testing.T) {
	m := newTestMap(t)

	assert.NotNil(t, m.ExitNodes())
	assert.Empty(t, m.ExitNodes())
	assert.NotNil(t, m.EntranceNodes())
	assert.Empty(t, m.EntranceNodes())

	door, _ := m.AddNode(Node{Name: "Door", IsExit: true, IsEntrance: true})
	_, _ = m.AddNode(Node{Name: "Room", X: 1})
	back, _ := m.AddNode(Node{Name: "Back door", IsExit: true, X: 2})

	assert.Equal(t, []Node{door, back}, m.ExitNodes())
	assert.Equal(t, []Node{door}, m.EntranceNodes())
}

func TestNodeByBeacon(t *testing.T) {
	m := newTestMap(t)
	n, _ := m.AddNode(Node{Name: "Hall", BeaconID: "d4fcb04a"})

	got, ok := m.NodeByBeacon("d4fcb04a")
	require.True(t, ok)
	assert.Equal(t, n.Ref, got.Ref)

	_, ok = m.NodeByBeacon("")
	assert.False(t, ok)
}

func TestRekeyAndSetRef(t *testing.T) {
	m := newTestMap(t)
	a, _ := m.AddNode(Node{Name: "a"})
	b, _ := m.AddNode(Node{Name: "b", X: 1})
	e, _ := m.AddEdge(a.Ref, b.Ref, 1, "")

	require.NoError(t, m.RekeyNode(a.Ref, Persisted(10)))
	require.NoError(t, m.RekeyEdge(e.Ref, Persisted(20)))
	m.SetRef(Persisted(3))

	got, ok := m.Edge(Persisted(20))
	require.True(t, ok)
	assert.Equal(t, Persisted(10), got.From)
	assert.Equal(t, Persisted(3), got.MapRef)
	assert.Equal(t, Persisted(3), m.Nodes[1].MapRef)

	assert.True(t, maperr.Is(m.RekeyNode(a.Ref, Persisted(11)), maperr.CodeNodeNotFound))
	assert.True(t, maperr.Is(m.RekeyEdge(e.Ref, Persisted(21)), maperr.CodeEdgeNotFound))
}

func TestCloneIsDeep(t *testing.T) {
	m := newTestMap(t)
	n, _ := m.AddNode(Node{Name: "a", Area: [][]int{{1, 0}}})

	c := m.Clone()
	require.NoError(t, c.RasterizeFloor(0, []grid.Point{{X: 0, Y: 0}}, 1))
	c.Nodes[0].Area[0][0] = 9
	c.Nodes[0].Name = "changed"

	f, _ := m.Floors.Find(0)
	assert.Equal(t, 0, f.Grid.At(4, 0))
	orig, _ := m.Node(n.Ref)
	assert.Equal(t, "a", orig.Name)
	assert.Equal(t, 1, orig.Area[0][0])
}

func TestMapJSONRoundTrip(t *testing.T) {
	m := newTestMap(t)
	a, _ := m.AddNode(Node{Name: "a", Area: [][]int{{1}}})
	b, _ := m.AddNode(Node{Name: "b", X: 1})
	_, _ = m.AddEdge(a.Ref, b.Ref, 4, "go")

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var back Map
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, m.Ref, back.Ref)
	assert.Equal(t, m.Edges, back.Edges)
	assert.Equal(t, m.Nodes, back.Nodes)
	f, err := back.Floors.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 5, f.Grid.Cols())
}
