package grid

// Resize returns a rows × cols copy of g. Content is anchored to the bottom-left:
// the vertical offset is rows - g.Rows(), so growing adds empty rows at the top and
// shrinking drops rows from the top. Columns are padded or truncated on the right.
// g itself is not modified.
func Resize(g *Grid, rows, cols int) (*Grid, error) {
	out, err := New(rows, cols)
	if err != nil {
		return nil, err
	}

	rowOffset := rows - g.Rows()
	for i, row := range g.cells {
		newRow := i + rowOffset
		if newRow < 0 || newRow >= rows {
			continue
		}
		for j, v := range row {
			if j >= cols {
				break
			}
			out.cells[newRow][j] = v
		}
	}
	return out, nil
}
