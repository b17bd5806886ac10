package grid

import (
	"fmt"
	"strings"
)

// CellSize is the edge length of one cell in SVG user units.
const CellSize = 20

// SVG renders g as one square per cell, black for walls and white otherwise.
// Output is byte-for-byte deterministic: row-major, no whitespace between elements.
func (g *Grid) SVG() string {
	width := g.Cols() * CellSize
	height := g.Rows() * CellSize

	var sb strings.Builder
	sb.Grow(96 + g.Rows()*g.Cols()*90)
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`,
		width, height, width, height)
	for i, row := range g.cells {
		for j, v := range row {
			fill := "white"
			if v == Occupied {
				fill = "black"
			}
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="gray"/>`,
				j*CellSize, i*CellSize, CellSize, CellSize, fill)
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}
