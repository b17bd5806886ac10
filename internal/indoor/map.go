// Package indoor holds the map aggregate: floors, points of interest and the
// directed edges between them.
//
// A Map owns its floors, nodes and edges. Nodes and edges refer to each other and
// to their map only through Ref values; there are no back-pointers. The package
// performs no locking: callers serialize mutations per map.
package indoor

import (
	"wayfinder/core-go/internal/grid"
)

const defaultFloorLabel = "First floor"

// Map is one building (or campus area) with its floors and routing graph.
//
// Version is the stored revision the map was loaded from; stores bump it on
// every save and refuse a save whose Version is no longer current. Drafts
// carry 0.
type Map struct {
	Ref         Ref     `json:"id"`
	Version     int64   `json:"version"`
	Name        string  `json:"name"`
	NorthAngle  float64 `json:"north_angle"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	Floors      Floors  `json:"floors"`
	Nodes       []Node  `json:"nodes"`
	Edges       []Edge  `json:"edges"`
}

// MapSummary is the map metadata without floors or graph.
type MapSummary struct {
	Ref         Ref     `json:"id"`
	Name        string  `json:"name"`
	NorthAngle  float64 `json:"north_angle"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
}

// NewMap returns a draft map with a single zero-filled floor 0.
func NewMap(name string, northAngle float64, rows, cols int) (*Map, error) {
	m := &Map{
		Ref:        Draft(),
		Name:       name,
		NorthAngle: northAngle,
		Nodes:      []Node{},
		Edges:      []Edge{},
	}
	if _, err := m.Floors.Add(0, defaultFloorLabel, rows, cols); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map) Summary() MapSummary {
	return MapSummary{
		Ref:         m.Ref,
		Name:        m.Name,
		NorthAngle:  m.NorthAngle,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Description: m.Description,
	}
}

// Clone returns a deep copy; grids and node areas are not shared.
func (m *Map) Clone() *Map {
	out := *m
	out.Floors = m.Floors.clone()
	out.Nodes = make([]Node, len(m.Nodes))
	for i, n := range m.Nodes {
		out.Nodes[i] = n.clone()
	}
	out.Edges = append([]Edge{}, m.Edges...)
	return &out
}

// RasterizeFloor draws a closed rectilinear outline on one floor.
func (m *Map) RasterizeFloor(floor int, points []grid.Point, fill int) error {
	f, err := m.Floors.Get(floor)
	if err != nil {
		return err
	}
	return grid.Rasterize(f.Grid, points, fill)
}

// ResizeFloor replaces a floor's grid with a resized copy. The entry keeps its
// old grid if resizing fails.
func (m *Map) ResizeFloor(floor, rows, cols int) error {
	f, err := m.Floors.Get(floor)
	if err != nil {
		return err
	}
	resized, err := grid.Resize(f.Grid, rows, cols)
	if err != nil {
		return err
	}
	f.Grid = resized
	return nil
}
