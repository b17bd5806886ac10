package mapstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wayfinder/core-go/internal/db"
	"wayfinder/core-go/internal/grid"
	"wayfinder/core-go/internal/indoor"
	"wayfinder/core-go/internal/maperr"
	"wayfinder/core-go/internal/search"
	"wayfinder/core-go/internal/sqlcgen"
)

type Postgres struct {
	pool *db.Pool
}

func NewPostgres(pool *db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) ListMaps(ctx context.Context) ([]indoor.MapSummary, error) {
	rows, err := s.pool.Queries().ListMaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	out := make([]indoor.MapSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, summaryFromRow(r))
	}
	return out, nil
}

func (s *Postgres) GetMap(ctx context.Context, id int64) (*indoor.Map, error) {
	var out *indoor.Map
	err := s.pool.InTx(ctx, func(q *sqlcgen.Queries) error {
		m, err := loadMap(ctx, q, id)
		out = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadMap(ctx context.Context, q *sqlcgen.Queries, id int64) (*indoor.Map, error) {
	row, err := q.GetMap(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mapNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get map %d: %w", id, err)
	}

	summary := summaryFromRow(row)
	m := &indoor.Map{
		Ref:         summary.Ref,
		Version:     row.Version,
		Name:        summary.Name,
		NorthAngle:  summary.NorthAngle,
		Latitude:    summary.Latitude,
		Longitude:   summary.Longitude,
		Description: summary.Description,
		Nodes:       []indoor.Node{},
		Edges:       []indoor.Edge{},
	}

	floors, err := q.ListFloors(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list floors of map %d: %w", id, err)
	}
	for _, f := range floors {
		g := &grid.Grid{}
		if err := json.Unmarshal(f.Grid, g); err != nil {
			return nil, fmt.Errorf("decode floor %d of map %d: %w", f.FloorNumber, id, err)
		}
		if _, err := m.Floors.Put(int(f.FloorNumber), f.Label, g); err != nil {
			return nil, err
		}
	}

	nodes, err := q.ListNodes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list nodes of map %d: %w", id, err)
	}
	for _, r := range nodes {
		n, err := nodeFromRow(r)
		if err != nil {
			return nil, err
		}
		m.Nodes = append(m.Nodes, n)
	}

	edges, err := q.ListEdges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list edges of map %d: %w", id, err)
	}
	for _, r := range edges {
		m.Edges = append(m.Edges, indoor.Edge{
			Ref:     indoor.Persisted(r.ID),
			MapRef:  indoor.Persisted(r.MapID),
			Weight:  int(r.Weight),
			Comment: r.Comment,
			From:    indoor.Persisted(r.FromNodeID),
			To:      indoor.Persisted(r.ToNodeID),
		})
	}
	return m, nil
}

func (s *Postgres) SaveMap(ctx context.Context, m *indoor.Map) (*indoor.Map, error) {
	if m == nil {
		return nil, maperr.New(maperr.CodeValidation, "map is required")
	}
	if err := checkEdges(m); err != nil {
		return nil, err
	}
	if err := checkColumnRanges(m); err != nil {
		return nil, err
	}

	var out *indoor.Map
	err := s.pool.InTx(ctx, func(q *sqlcgen.Queries) error {
		// Work on a copy so a rolled back transaction leaves m untouched.
		work := m.Clone()
		if err := saveMap(ctx, q, work); err != nil {
			return err
		}
		out = work
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func saveMap(ctx context.Context, q *sqlcgen.Queries, m *indoor.Map) error {
	if id, ok := m.Ref.ID(); ok {
		row, err := q.UpdateMap(ctx, sqlcgen.UpdateMapParams{
			ID:          id,
			Name:        m.Name,
			NorthAngle:  m.NorthAngle,
			Latitude:    m.Latitude,
			Longitude:   m.Longitude,
			Description: m.Description,
			Version:     m.Version,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			return missingOrStale(ctx, q, id, m.Version)
		}
		if err != nil {
			return fmt.Errorf("update map %d: %w", id, err)
		}
		m.Version = row.Version
	} else {
		row, err := q.CreateMap(ctx, sqlcgen.CreateMapParams{
			Name:        m.Name,
			NorthAngle:  m.NorthAngle,
			Latitude:    m.Latitude,
			Longitude:   m.Longitude,
			Description: m.Description,
		})
		if err != nil {
			return fmt.Errorf("create map: %w", err)
		}
		m.SetRef(indoor.Persisted(row.ID))
		m.Version = row.Version
	}
	mapID, _ := m.Ref.ID()

	if err := q.DeleteFloors(ctx, mapID); err != nil {
		return fmt.Errorf("clear floors of map %d: %w", mapID, err)
	}
	for i, f := range m.Floors {
		raw, err := json.Marshal(f.Grid)
		if err != nil {
			return fmt.Errorf("encode floor %d: %w", f.Number, err)
		}
		if err := q.InsertFloor(ctx, sqlcgen.InsertFloorParams{
			MapID:       mapID,
			FloorNumber: int32(f.Number),
			Label:       f.Label,
			Position:    int32(i),
			Grid:        raw,
		}); err != nil {
			return fmt.Errorf("insert floor %d: %w", f.Number, err)
		}
	}

	// Drop rows that are no longer part of the map before touching the rest.
	if err := q.DeleteEdgesExcept(ctx, mapID, persistedIDs(edgeRefs(m.Edges))); err != nil {
		return fmt.Errorf("prune edges of map %d: %w", mapID, err)
	}
	if err := q.DeleteNodesExcept(ctx, mapID, persistedIDs(nodeRefs(m.Nodes))); err != nil {
		return fmt.Errorf("prune nodes of map %d: %w", mapID, err)
	}

	for _, n := range append([]indoor.Node(nil), m.Nodes...) {
		area, err := encodeArea(n.Area)
		if err != nil {
			return err
		}
		if id, ok := n.Ref.ID(); ok {
			affected, err := q.UpdateNode(ctx, sqlcgen.UpdateNodeParams{
				ID:          id,
				MapID:       mapID,
				Name:        n.Name,
				BeaconID:    n.BeaconID,
				FloorNumber: int32(n.Floor),
				IsExit:      n.IsExit,
				IsEntrance:  n.IsEntrance,
				X:           int32(n.X),
				Y:           int32(n.Y),
				Area:        area,
			})
			if err != nil {
				return fmt.Errorf("update node %d: %w", id, err)
			}
			if affected == 0 {
				return maperr.New(maperr.CodeNodeNotFound, "node %d is not part of map %d", id, mapID)
			}
			continue
		}
		id, err := q.InsertNode(ctx, sqlcgen.InsertNodeParams{
			MapID:       mapID,
			Name:        n.Name,
			BeaconID:    n.BeaconID,
			FloorNumber: int32(n.Floor),
			IsExit:      n.IsExit,
			IsEntrance:  n.IsEntrance,
			X:           int32(n.X),
			Y:           int32(n.Y),
			Area:        area,
		})
		if err != nil {
			return fmt.Errorf("insert node %q: %w", n.Name, err)
		}
		if err := m.RekeyNode(n.Ref, indoor.Persisted(id)); err != nil {
			return err
		}
	}

	// Node refs are all persisted from here on, so edge endpoints resolve to ids.
	for _, e := range append([]indoor.Edge(nil), m.Edges...) {
		from, _ := e.From.ID()
		to, _ := e.To.ID()
		if id, ok := e.Ref.ID(); ok {
			affected, err := q.UpdateEdge(ctx, sqlcgen.UpdateEdgeParams{
				ID:         id,
				MapID:      mapID,
				FromNodeID: from,
				ToNodeID:   to,
				Weight:     int32(e.Weight),
				Comment:    e.Comment,
			})
			if err != nil {
				return fmt.Errorf("update edge %d: %w", id, err)
			}
			if affected == 0 {
				return maperr.New(maperr.CodeEdgeNotFound, "edge %d is not part of map %d", id, mapID)
			}
			continue
		}
		id, err := q.InsertEdge(ctx, sqlcgen.InsertEdgeParams{
			MapID:      mapID,
			FromNodeID: from,
			ToNodeID:   to,
			Weight:     int32(e.Weight),
			Comment:    e.Comment,
		})
		if err != nil {
			return fmt.Errorf("insert edge %s: %w", e.Ref, err)
		}
		if err := m.RekeyEdge(e.Ref, indoor.Persisted(id)); err != nil {
			return err
		}
	}
	return nil
}

// missingOrStale explains why UpdateMap matched no row.
func missingOrStale(ctx context.Context, q *sqlcgen.Queries, id, version int64) error {
	cur, err := q.GetMap(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return mapNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("get map %d: %w", id, err)
	}
	return staleMap(id, version, cur.Version)
}

func (s *Postgres) DeleteMap(ctx context.Context, id int64) error {
	affected, err := s.pool.Queries().DeleteMap(ctx, id)
	if err != nil {
		return fmt.Errorf("delete map %d: %w", id, err)
	}
	if affected == 0 {
		return mapNotFound(id)
	}
	return nil
}

func (s *Postgres) SearchCandidates(ctx context.Context) ([]search.Candidate, error) {
	rows, err := s.pool.Queries().ListNodesWithMaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	summaries := make(map[int64]*indoor.MapSummary)
	out := make([]search.Candidate, 0, len(rows))
	for _, r := range rows {
		n, err := nodeFromRow(r.Node)
		if err != nil {
			return nil, err
		}
		summary, ok := summaries[r.Map.ID]
		if !ok {
			ms := summaryFromRow(r.Map)
			summary = &ms
			summaries[r.Map.ID] = summary
		}
		out = append(out, search.Candidate{Node: n, Map: summary})
	}
	return out, nil
}

func (s *Postgres) FindNodeByBeacon(ctx context.Context, beaconID string) (indoor.Node, *indoor.Map, error) {
	if beaconID == "" {
		return indoor.Node{}, nil, beaconNotFound(beaconID)
	}
	row, err := s.pool.Queries().GetNodeByBeacon(ctx, beaconID)
	if errors.Is(err, pgx.ErrNoRows) {
		return indoor.Node{}, nil, beaconNotFound(beaconID)
	}
	if err != nil {
		return indoor.Node{}, nil, fmt.Errorf("find beacon %q: %w", beaconID, err)
	}
	n, err := nodeFromRow(row)
	if err != nil {
		return indoor.Node{}, nil, err
	}
	m, err := s.GetMap(ctx, row.MapID)
	if err != nil {
		return indoor.Node{}, nil, err
	}
	return n, m, nil
}

func summaryFromRow(r sqlcgen.Map) indoor.MapSummary {
	return indoor.MapSummary{
		Ref:         indoor.Persisted(r.ID),
		Name:        r.Name,
		NorthAngle:  r.NorthAngle,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Description: r.Description,
	}
}

func nodeFromRow(r sqlcgen.Node) (indoor.Node, error) {
	n := indoor.Node{
		Ref:        indoor.Persisted(r.ID),
		MapRef:     indoor.Persisted(r.MapID),
		Name:       r.Name,
		BeaconID:   r.BeaconID,
		Floor:      int(r.FloorNumber),
		IsExit:     r.IsExit,
		IsEntrance: r.IsEntrance,
		X:          int(r.X),
		Y:          int(r.Y),
	}
	if len(r.Area) > 0 {
		if err := json.Unmarshal(r.Area, &n.Area); err != nil {
			return indoor.Node{}, fmt.Errorf("decode area of node %d: %w", r.ID, err)
		}
	}
	return n, nil
}

func encodeArea(area [][]int) ([]byte, error) {
	if area == nil {
		return nil, nil
	}
	raw, err := json.Marshal(area)
	if err != nil {
		return nil, fmt.Errorf("encode node area: %w", err)
	}
	return raw, nil
}

func nodeRefs(nodes []indoor.Node) []indoor.Ref {
	out := make([]indoor.Ref, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Ref)
	}
	return out
}

func edgeRefs(edges []indoor.Edge) []indoor.Ref {
	out := make([]indoor.Ref, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Ref)
	}
	return out
}

func persistedIDs(refs []indoor.Ref) []int64 {
	out := make([]int64, 0, len(refs))
	for _, r := range refs {
		if id, ok := r.ID(); ok {
			out = append(out, id)
		}
	}
	return out
}
