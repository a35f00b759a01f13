package engine

// InternalRow converts a row counted from the bottom edge into the top-indexed row
// the grid stores.
func InternalRow(height, displayed int) int {
	return height - displayed - 1
}

// DisplayRow converts a stored top-indexed row back into the row counted from the
// bottom edge. It is the inverse of InternalRow.
func DisplayRow(height, internal int) int {
	return height - internal - 1
}

// CountMarkers counts the cells carrying marker m
func CountMarkers(rows [][]Marker, m Marker) int {
	count := 0
	for _, row := range rows {
		for _, cell := range row {
			if cell == m {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
