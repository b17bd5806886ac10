// Package seed loads maps from a YAML document. Floors are given either as an
// explicit grid or as a size plus wall outlines that are rasterized onto it;
// nodes carry a document-local key that edges refer to.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"wayfinder/core-go/internal/grid"
	"wayfinder/core-go/internal/indoor"
	"wayfinder/core-go/internal/maperr"
)

//go:embed default.yaml
var defaultDocument []byte

type Document struct {
	Maps []MapSpec `yaml:"maps"`
}

type MapSpec struct {
	Name        string      `yaml:"name"`
	NorthAngle  float64     `yaml:"north_angle"`
	Latitude    float64     `yaml:"latitude"`
	Longitude   float64     `yaml:"longitude"`
	Description string      `yaml:"description"`
	Floors      []FloorSpec `yaml:"floors"`
	Nodes       []NodeSpec  `yaml:"nodes"`
	Edges       []EdgeSpec  `yaml:"edges"`
}

type FloorSpec struct {
	Number   int           `yaml:"number"`
	Label    string        `yaml:"label"`
	Rows     int           `yaml:"rows"`
	Cols     int           `yaml:"cols"`
	Grid     [][]int       `yaml:"grid"`
	Outlines []OutlineSpec `yaml:"outlines"`
}

// OutlineSpec is a closed polygon of [x, y] points. Fill defaults to a wall.
type OutlineSpec struct {
	Fill   *int    `yaml:"fill"`
	Points [][]int `yaml:"points"`
}

type NodeSpec struct {
	Key      string  `yaml:"key"`
	Name     string  `yaml:"name"`
	BeaconID string  `yaml:"beacon_id"`
	Floor    int     `yaml:"floor"`
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Exit     bool    `yaml:"exit"`
	Entrance bool    `yaml:"entrance"`
	Area     [][]int `yaml:"area"`
}

type EdgeSpec struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Weight  int    `yaml:"weight"`
	Comment string `yaml:"comment"`
}

// Default returns the embedded campus document.
func Default() (*Document, error) {
	return Parse(defaultDocument)
}

// ReadFile parses the document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, maperr.Wrap(maperr.CodeValidation, err, "invalid seed document")
	}
	return &doc, nil
}

// Build turns every map of the document into a draft map.
func Build(doc *Document) ([]*indoor.Map, error) {
	out := make([]*indoor.Map, 0, len(doc.Maps))
	for i, spec := range doc.Maps {
		m, err := buildMap(spec)
		if err != nil {
			return nil, fmt.Errorf("map %d (%q): %w", i, spec.Name, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func buildMap(spec MapSpec) (*indoor.Map, error) {
	if spec.Name == "" {
		return nil, maperr.New(maperr.CodeValidation, "map name is required")
	}
	if len(spec.Floors) == 0 {
		return nil, maperr.New(maperr.CodeValidation, "map needs at least one floor")
	}

	m := &indoor.Map{
		Ref:         indoor.Draft(),
		Name:        spec.Name,
		NorthAngle:  spec.NorthAngle,
		Latitude:    spec.Latitude,
		Longitude:   spec.Longitude,
		Description: spec.Description,
		Nodes:       []indoor.Node{},
		Edges:       []indoor.Edge{},
	}

	for _, fs := range spec.Floors {
		g, err := buildGrid(fs)
		if err != nil {
			return nil, fmt.Errorf("floor %d: %w", fs.Number, err)
		}
		if _, err := m.Floors.Put(fs.Number, fs.Label, g); err != nil {
			return nil, err
		}
	}

	refs := make(map[string]indoor.Ref, len(spec.Nodes))
	for _, ns := range spec.Nodes {
		if ns.Key == "" {
			return nil, maperr.New(maperr.CodeValidation, "node %q has no key", ns.Name)
		}
		if _, dup := refs[ns.Key]; dup {
			return nil, maperr.New(maperr.CodeValidation, "duplicate node key %q", ns.Key)
		}
		n, err := m.AddNode(indoor.Node{
			Name:       ns.Name,
			BeaconID:   ns.BeaconID,
			Floor:      ns.Floor,
			IsExit:     ns.Exit,
			IsEntrance: ns.Entrance,
			X:          ns.X,
			Y:          ns.Y,
			Area:       ns.Area,
		})
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", ns.Key, err)
		}
		refs[ns.Key] = n.Ref
	}

	for _, es := range spec.Edges {
		from, ok := refs[es.From]
		if !ok {
			return nil, maperr.New(maperr.CodeNodeNotFound, "edge references unknown node key %q", es.From)
		}
		to, ok := refs[es.To]
		if !ok {
			return nil, maperr.New(maperr.CodeNodeNotFound, "edge references unknown node key %q", es.To)
		}
		if _, err := m.AddEdge(from, to, es.Weight, es.Comment); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func buildGrid(fs FloorSpec) (*grid.Grid, error) {
	var (
		g   *grid.Grid
		err error
	)
	if fs.Grid != nil {
		g, err = grid.FromCells(fs.Grid)
	} else {
		g, err = grid.New(fs.Rows, fs.Cols)
	}
	if err != nil {
		return nil, err
	}

	for i, o := range fs.Outlines {
		fill := grid.Occupied
		if o.Fill != nil {
			fill = *o.Fill
		}
		points := make([]grid.Point, 0, len(o.Points))
		for _, p := range o.Points {
			if len(p) != 2 {
				return nil, maperr.New(maperr.CodeValidation, "outline %d: point %v must be [x, y]", i, p)
			}
			points = append(points, grid.Point{X: p[0], Y: p[1]})
		}
		if err := grid.Rasterize(g, points, fill); err != nil {
			return nil, fmt.Errorf("outline %d: %w", i, err)
		}
	}
	return g, nil
}

// Store is the part of a map store seeding needs.
type Store interface {
	ListMaps(ctx context.Context) ([]indoor.MapSummary, error)
	SaveMap(ctx context.Context, m *indoor.Map) (*indoor.Map, error)
}

// Apply saves every map whose name is not taken yet and returns the saved maps.
// Running it twice against the same store is a no-op the second time.
func Apply(ctx context.Context, store Store, maps []*indoor.Map) ([]*indoor.Map, error) {
	existing, err := store.ListMaps(ctx)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[s.Name] = true
	}

	saved := make([]*indoor.Map, 0, len(maps))
	for _, m := range maps {
		if taken[m.Name] {
			continue
		}
		out, err := store.SaveMap(ctx, m)
		if err != nil {
			return saved, fmt.Errorf("save map %q: %w", m.Name, err)
		}
		taken[m.Name] = true
		saved = append(saved, out)
	}
	return saved, nil
}
