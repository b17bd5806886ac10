// Package mapstore persists indoor maps. Stores are adapters around the map
// core: they never apply grid or graph rules themselves, they only assign
// storage ids to draft entities and load maps back.
package mapstore

import (
	"context"
	"math"

	"wayfinder/core-go/internal/indoor"
	"wayfinder/core-go/internal/maperr"
	"wayfinder/core-go/internal/search"
)

type Store interface {
	ListMaps(ctx context.Context) ([]indoor.MapSummary, error)
	GetMap(ctx context.Context, id int64) (*indoor.Map, error)
	// SaveMap stores m in full and returns a copy whose draft refs (map, nodes
	// and edges) have been replaced by persisted ones and whose Version is the
	// new stored revision. Saving a persisted map whose Version is not the
	// stored one fails with maperr.CodeMapConflict. m itself is not modified.
	SaveMap(ctx context.Context, m *indoor.Map) (*indoor.Map, error)
	DeleteMap(ctx context.Context, id int64) error
	SearchCandidates(ctx context.Context) ([]search.Candidate, error)
	FindNodeByBeacon(ctx context.Context, beaconID string) (indoor.Node, *indoor.Map, error)
}

func mapNotFound(id int64) error {
	return maperr.New(maperr.CodeMapNotFound, "map %d not found", id)
}

func staleMap(id, have, current int64) error {
	return maperr.New(maperr.CodeMapConflict, "map %d changed since version %d (now %d)", id, have, current)
}

func beaconNotFound(beaconID string) error {
	return maperr.New(maperr.CodeNodeNotFound, "no node with beacon %q", beaconID)
}

// checkEdges verifies every edge endpoint names a node of m.
func checkEdges(m *indoor.Map) error {
	for _, e := range m.Edges {
		for _, ref := range []indoor.Ref{e.From, e.To} {
			if _, ok := m.Node(ref); !ok {
				return maperr.New(maperr.CodeNodeNotFound, "edge %s references unknown node %s", e.Ref, ref)
			}
		}
	}
	return nil
}

// checkColumnRanges rejects values the INTEGER columns cannot hold. Every store
// applies it so a map saves the same way whichever backend is configured.
func checkColumnRanges(m *indoor.Map) error {
	for _, f := range m.Floors {
		if !fitsInt32(f.Number) {
			return outOfRange("floor number", f.Number)
		}
	}
	for _, n := range m.Nodes {
		switch {
		case !fitsInt32(n.Floor):
			return outOfRange("floor number of node "+n.Ref.String(), n.Floor)
		case !fitsInt32(n.X):
			return outOfRange("x of node "+n.Ref.String(), n.X)
		case !fitsInt32(n.Y):
			return outOfRange("y of node "+n.Ref.String(), n.Y)
		}
	}
	for _, e := range m.Edges {
		if !fitsInt32(e.Weight) {
			return outOfRange("weight of edge "+e.Ref.String(), e.Weight)
		}
	}
	return nil
}

func fitsInt32(v int) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

func outOfRange(what string, v int) error {
	return maperr.New(maperr.CodeValidation, "%s %d is outside the 32-bit range", what, v)
}
