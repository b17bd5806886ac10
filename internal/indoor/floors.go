package indoor

import (
	"wayfinder/core-go/internal/grid"
	"wayfinder/core-go/internal/maperr"
)

// FloorEntry is one named, numbered floor of a map.
type FloorEntry struct {
	Number int        `json:"floor_number"`
	Label  string     `json:"label"`
	Grid   *grid.Grid `json:"grid"`
}

// Floors is a map's floor collection. Floor numbers are unique; iteration order
// is insertion order.
type Floors []FloorEntry

// Find returns a pointer into the collection so callers can swap the grid in place.
func (fs Floors) Find(number int) (*FloorEntry, bool) {
	for i := range fs {
		if fs[i].Number == number {
			return &fs[i], true
		}
	}
	return nil, false
}

func (fs Floors) Get(number int) (*FloorEntry, error) {
	f, ok := fs.Find(number)
	if !ok {
		return nil, maperr.New(maperr.CodeFloorNotFound, "floor %d not found", number)
	}
	return f, nil
}

// Add appends a zero-filled rows × cols floor.
func (fs *Floors) Add(number int, label string, rows, cols int) (*FloorEntry, error) {
	g, err := grid.New(rows, cols)
	if err != nil {
		return nil, err
	}
	return fs.Put(number, label, g)
}

// Put appends a floor backed by an existing grid.
func (fs *Floors) Put(number int, label string, g *grid.Grid) (*FloorEntry, error) {
	if _, ok := fs.Find(number); ok {
		return nil, maperr.New(maperr.CodeDuplicateFloor, "floor %d already exists", number)
	}
	*fs = append(*fs, FloorEntry{Number: number, Label: label, Grid: g})
	return &(*fs)[len(*fs)-1], nil
}

func (fs Floors) Numbers() []int {
	out := make([]int, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Number)
	}
	return out
}

func (fs Floors) clone() Floors {
	if fs == nil {
		return nil
	}
	out := make(Floors, len(fs))
	for i, f := range fs {
		out[i] = f
		if f.Grid != nil {
			out[i].Grid = f.Grid.Clone()
		}
	}
	return out
}
