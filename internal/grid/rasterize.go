package grid

import (
	"encoding/json"
	"fmt"

	"wayfinder/core-go/internal/maperr"
)

// Point is a coordinate in display orientation: X is the column, Y grows upwards
// from the bottom row. On the wire it is a two-element array [x, y].
type Point struct {
	X int
	Y int
}

func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var raw []int
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return maperr.New(maperr.CodeValidation, "coordinate must have exactly 2 components, got %d", len(raw))
	}
	p.X, p.Y = raw[0], raw[1]
	return nil
}

// cell converts a display point into (row, col) for g.
func (g *Grid) cell(p Point) (row, col int) {
	return g.Rows() - 1 - p.Y, p.X
}

// Rasterize draws the closed polygon through points onto g, writing fill into
// every cell on each axis-aligned segment (including last -> first). Diagonal
// segments are skipped.
//
// All points are validated before any cell changes, so a failure leaves g
// untouched.
func Rasterize(g *Grid, points []Point, fill int) error {
	for _, p := range points {
		row, col := g.cell(p)
		if !g.InBounds(row, col) {
			return maperr.New(maperr.CodeCoordinateOutOfBounds, "coordinate out of bounds: %s", p)
		}
	}

	for i := range points {
		r1, c1 := g.cell(points[i])
		r2, c2 := g.cell(points[(i+1)%len(points)])

		switch {
		case c1 == c2:
			for r := min(r1, r2); r <= max(r1, r2); r++ {
				g.cells[r][c1] = fill
			}
		case r1 == r2:
			for c := min(c1, c2); c <= max(c1, c2); c++ {
				g.cells[r1][c] = fill
			}
		}
	}
	return nil
}
