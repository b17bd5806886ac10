package mapstore

import (
	"context"
	"slices"
	"sync"

	"wayfinder/core-go/internal/indoor"
	"wayfinder/core-go/internal/maperr"
	"wayfinder/core-go/internal/search"
)

// Memory keeps maps in process. Ids come from per-store sequences, so two
// Memory stores hand out overlapping ids.
type Memory struct {
	mu       sync.RWMutex
	maps     map[int64]*indoor.Map
	nextMap  int64
	nextNode int64
	nextEdge int64
}

func NewMemory() *Memory {
	return &Memory{maps: make(map[int64]*indoor.Map)}
}

func (s *Memory) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.maps))
	for id := range s.maps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Memory) ListMaps(_ context.Context) ([]indoor.MapSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]indoor.MapSummary, 0, len(s.maps))
	for _, id := range s.sortedIDs() {
		out = append(out, s.maps[id].Summary())
	}
	return out, nil
}

func (s *Memory) GetMap(_ context.Context, id int64) (*indoor.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.maps[id]
	if !ok {
		return nil, mapNotFound(id)
	}
	return m.Clone(), nil
}

func (s *Memory) SaveMap(_ context.Context, m *indoor.Map) (*indoor.Map, error) {
	if m == nil {
		return nil, maperr.New(maperr.CodeValidation, "map is required")
	}
	if err := checkEdges(m); err != nil {
		return nil, err
	}
	if err := checkColumnRanges(m); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := m.Clone()
	if id, ok := out.Ref.ID(); ok {
		stored, exists := s.maps[id]
		if !exists {
			return nil, mapNotFound(id)
		}
		if out.Version != stored.Version {
			return nil, staleMap(id, out.Version, stored.Version)
		}
		out.Version = stored.Version + 1
	} else {
		s.nextMap++
		out.SetRef(indoor.Persisted(s.nextMap))
		out.Version = 1
	}

	for _, n := range slices.Clone(out.Nodes) {
		if n.Ref.IsPersisted() {
			continue
		}
		s.nextNode++
		if err := out.RekeyNode(n.Ref, indoor.Persisted(s.nextNode)); err != nil {
			return nil, err
		}
	}
	for _, e := range slices.Clone(out.Edges) {
		if e.Ref.IsPersisted() {
			continue
		}
		s.nextEdge++
		if err := out.RekeyEdge(e.Ref, indoor.Persisted(s.nextEdge)); err != nil {
			return nil, err
		}
	}

	id, _ := out.Ref.ID()
	s.maps[id] = out
	return out.Clone(), nil
}

func (s *Memory) DeleteMap(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.maps[id]; !ok {
		return mapNotFound(id)
	}
	delete(s.maps, id)
	return nil
}

func (s *Memory) SearchCandidates(_ context.Context) ([]search.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []search.Candidate
	for _, id := range s.sortedIDs() {
		m := s.maps[id]
		summary := m.Summary()
		for _, n := range m.Nodes {
			out = append(out, search.Candidate{Node: n, Map: &summary})
		}
	}
	return out, nil
}

func (s *Memory) FindNodeByBeacon(_ context.Context, beaconID string) (indoor.Node, *indoor.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedIDs() {
		m := s.maps[id]
		if n, ok := m.NodeByBeacon(beaconID); ok {
			return n, m.Clone(), nil
		}
	}
	return indoor.Node{}, nil, beaconNotFound(beaconID)
}
