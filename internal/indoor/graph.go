package indoor

import (
	"wayfinder/core-go/internal/maperr"
)

// Node is a point of interest placed on one floor.
type Node struct {
	Ref        Ref     `json:"id"`
	MapRef     Ref     `json:"map_id"`
	Name       string  `json:"name"`
	BeaconID   string  `json:"beacon_id"`
	Floor      int     `json:"floor_number"`
	IsExit     bool    `json:"is_exit"`
	IsEntrance bool    `json:"is_entrance"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Area       [][]int `json:"area"`
}

func (n Node) clone() Node {
	if n.Area != nil {
		area := make([][]int, len(n.Area))
		for i, row := range n.Area {
			area[i] = append([]int(nil), row...)
		}
		n.Area = area
	}
	return n
}

// Edge is a directed, weighted connection between two nodes of the same map.
type Edge struct {
	Ref     Ref    `json:"id"`
	MapRef  Ref    `json:"map_id"`
	Weight  int    `json:"weight"`
	Comment string `json:"comment"`
	From    Ref    `json:"from_node"`
	To      Ref    `json:"to_node"`
}

// NodePatch carries optional field updates; nil fields are left as they are.
type NodePatch struct {
	Name       *string
	BeaconID   *string
	Floor      *int
	IsExit     *bool
	IsEntrance *bool
	X          *int
	Y          *int
	Area       [][]int
}

func (p NodePatch) apply(n Node) Node {
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.BeaconID != nil {
		n.BeaconID = *p.BeaconID
	}
	if p.Floor != nil {
		n.Floor = *p.Floor
	}
	if p.IsExit != nil {
		n.IsExit = *p.IsExit
	}
	if p.IsEntrance != nil {
		n.IsEntrance = *p.IsEntrance
	}
	if p.X != nil {
		n.X = *p.X
	}
	if p.Y != nil {
		n.Y = *p.Y
	}
	if p.Area != nil {
		n.Area = p.Area
	}
	return n.clone()
}

func (m *Map) nodeIndex(ref Ref) int {
	for i := range m.Nodes {
		if m.Nodes[i].Ref == ref {
			return i
		}
	}
	return -1
}

func (m *Map) edgeIndex(ref Ref) int {
	for i := range m.Edges {
		if m.Edges[i].Ref == ref {
			return i
		}
	}
	return -1
}

// checkPlacement verifies the node's floor exists and (Y, X) is inside its grid.
func (m *Map) checkPlacement(n Node) error {
	f, err := m.Floors.Get(n.Floor)
	if err != nil {
		return err
	}
	if !f.Grid.InBounds(n.Y, n.X) {
		return maperr.New(maperr.CodeOutOfBounds,
			"node position (%d, %d) is outside floor %d (%dx%d)", n.X, n.Y, n.Floor, f.Grid.Rows(), f.Grid.Cols())
	}
	return nil
}

// Node looks up a node by ref.
func (m *Map) Node(ref Ref) (Node, bool) {
	if i := m.nodeIndex(ref); i >= 0 {
		return m.Nodes[i], true
	}
	return Node{}, false
}

// NodeByBeacon returns the first node carrying beaconID.
func (m *Map) NodeByBeacon(beaconID string) (Node, bool) {
	if beaconID == "" {
		return Node{}, false
	}
	for _, n := range m.Nodes {
		if n.BeaconID == beaconID {
			return n, true
		}
	}
	return Node{}, false
}

func (m *Map) Edge(ref Ref) (Edge, bool) {
	if i := m.edgeIndex(ref); i >= 0 {
		return m.Edges[i], true
	}
	return Edge{}, false
}

// AddNode validates placement, assigns a draft ref when n has none and appends
// the node.
func (m *Map) AddNode(n Node) (Node, error) {
	if err := m.checkPlacement(n); err != nil {
		return Node{}, err
	}
	if n.Ref.IsZero() {
		n.Ref = Draft()
	} else if m.nodeIndex(n.Ref) >= 0 {
		return Node{}, maperr.New(maperr.CodeValidation, "node %s already exists", n.Ref)
	}
	n.MapRef = m.Ref
	n = n.clone()
	m.Nodes = append(m.Nodes, n)
	return n, nil
}

// UpdateNode applies patch to the node after re-validating its placement.
func (m *Map) UpdateNode(ref Ref, patch NodePatch) (Node, error) {
	i := m.nodeIndex(ref)
	if i < 0 {
		return Node{}, maperr.New(maperr.CodeNodeNotFound, "node %s not found", ref)
	}
	next := patch.apply(m.Nodes[i])
	if err := m.checkPlacement(next); err != nil {
		return Node{}, err
	}
	m.Nodes[i] = next
	return next, nil
}

// RemoveNode deletes the node and every edge that starts or ends at it.
func (m *Map) RemoveNode(ref Ref) (int, error) {
	i := m.nodeIndex(ref)
	if i < 0 {
		return 0, maperr.New(maperr.CodeNodeNotFound, "node %s not found", ref)
	}
	m.Nodes = append(m.Nodes[:i], m.Nodes[i+1:]...)

	kept := m.Edges[:0]
	removed := 0
	for _, e := range m.Edges {
		if e.From == ref || e.To == ref {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.Edges = kept
	return removed, nil
}

// AddEdge connects two nodes of m. Weights and comments are stored as given.
func (m *Map) AddEdge(from, to Ref, weight int, comment string) (Edge, error) {
	for _, ref := range []Ref{from, to} {
		if m.nodeIndex(ref) < 0 {
			return Edge{}, maperr.New(maperr.CodeNodeNotFound, "node %s is not part of map %s", ref, m.Ref)
		}
	}
	e := Edge{
		Ref:     Draft(),
		MapRef:  m.Ref,
		Weight:  weight,
		Comment: comment,
		From:    from,
		To:      to,
	}
	m.Edges = append(m.Edges, e)
	return e, nil
}

func (m *Map) RemoveEdge(ref Ref) error {
	i := m.edgeIndex(ref)
	if i < 0 {
		return maperr.New(maperr.CodeEdgeNotFound, "edge %s not found", ref)
	}
	m.Edges = append(m.Edges[:i], m.Edges[i+1:]...)
	return nil
}

// EdgesFrom returns the outgoing edges of a node in collection order.
func (m *Map) EdgesFrom(ref Ref) []Edge {
	out := []Edge{}
	for _, e := range m.Edges {
		if e.From == ref {
			out = append(out, e)
		}
	}
	return out
}

func (m *Map) ExitNodes() []Node {
	return m.filterNodes(func(n Node) bool { return n.IsExit })
}

func (m *Map) EntranceNodes() []Node {
	return m.filterNodes(func(n Node) bool { return n.IsEntrance })
}

func (m *Map) filterNodes(keep func(Node) bool) []Node {
	out := []Node{}
	for _, n := range m.Nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// RekeyNode replaces a node's identity and rewrites edge endpoints that pointed
// at the old ref.
func (m *Map) RekeyNode(old, next Ref) error {
	i := m.nodeIndex(old)
	if i < 0 {
		return maperr.New(maperr.CodeNodeNotFound, "node %s not found", old)
	}
	m.Nodes[i].Ref = next
	for j := range m.Edges {
		if m.Edges[j].From == old {
			m.Edges[j].From = next
		}
		if m.Edges[j].To == old {
			m.Edges[j].To = next
		}
	}
	return nil
}

func (m *Map) RekeyEdge(old, next Ref) error {
	i := m.edgeIndex(old)
	if i < 0 {
		return maperr.New(maperr.CodeEdgeNotFound, "edge %s not found", old)
	}
	m.Edges[i].Ref = next
	return nil
}

// SetRef changes the map's identity and the back-reference of every node and edge.
func (m *Map) SetRef(ref Ref) {
	m.Ref = ref
	for i := range m.Nodes {
		m.Nodes[i].MapRef = ref
	}
	for i := range m.Edges {
		m.Edges[i].MapRef = ref
	}
}
