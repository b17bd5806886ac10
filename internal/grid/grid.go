// Package grid implements the per-floor occupancy matrix and the two
// algorithms that mutate it: polygon rasterization and offset-preserving resize.
//
// Cells are small integers. 0 is free space, 1 is a wall; any other value is a
// caller-defined marker and is carried through unchanged.
package grid

import (
	"encoding/json"

	"wayfinder/core-go/internal/maperr"
)

const (
	Free     = 0
	Occupied = 1
)

// MaxDimension caps both sides of a grid. A floor's JSON and SVG grow with
// rows × cols, so larger grids are rejected up front.
const MaxDimension = 1000

// Grid is a rectangular rows × cols matrix. The zero value is not usable; build
// one with New or FromCells.
type Grid struct {
	cells [][]int
}

// New returns an all-zero grid.
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, maperr.New(maperr.CodeInvalidDimension, "grid dimensions must be positive, got %dx%d", rows, cols)
	}
	if rows > MaxDimension || cols > MaxDimension {
		return nil, tooLarge(rows, cols)
	}
	cells := make([][]int, rows)
	for i := range cells {
		cells[i] = make([]int, cols)
	}
	return &Grid{cells: cells}, nil
}

// FromCells copies a nested slice into a new grid. Empty or ragged input is rejected.
func FromCells(cells [][]int) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, maperr.New(maperr.CodeInvalidDimension, "grid must be at least 1x1")
	}
	cols := len(cells[0])
	if len(cells) > MaxDimension || cols > MaxDimension {
		return nil, tooLarge(len(cells), cols)
	}
	out := make([][]int, len(cells))
	for i, row := range cells {
		if len(row) != cols {
			return nil, maperr.New(maperr.CodeInvalidDimension, "grid row %d has %d cells, want %d", i, len(row), cols)
		}
		out[i] = append([]int(nil), row...)
	}
	return &Grid{cells: out}, nil
}

func tooLarge(rows, cols int) error {
	return maperr.New(maperr.CodeInvalidDimension, "grid %dx%d exceeds the %dx%d limit", rows, cols, MaxDimension, MaxDimension)
}

func (g *Grid) Rows() int { return len(g.cells) }

func (g *Grid) Cols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// InBounds reports whether (row, col) addresses a cell of g.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows() && col >= 0 && col < g.Cols()
}

// At returns the cell value. It panics when (row, col) is out of bounds.
func (g *Grid) At(row, col int) int { return g.cells[row][col] }

// Set overwrites a cell. It panics when (row, col) is out of bounds.
func (g *Grid) Set(row, col, v int) { g.cells[row][col] = v }

// Cells returns a deep copy of the matrix.
func (g *Grid) Cells() [][]int {
	out := make([][]int, len(g.cells))
	for i, row := range g.cells {
		out[i] = append([]int(nil), row...)
	}
	return out
}

func (g *Grid) Clone() *Grid {
	return &Grid{cells: g.Cells()}
}

func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.cells)
}

func (g *Grid) UnmarshalJSON(b []byte) error {
	var cells [][]int
	if err := json.Unmarshal(b, &cells); err != nil {
		return err
	}
	parsed, err := FromCells(cells)
	if err != nil {
		return err
	}
	g.cells = parsed.cells
	return nil
}
