package engine

import "fmt"

// Renderer produces a view of the grid. Implementations must only read from it.
type Renderer interface {
	Render(g *Grid) error
}

// RendererFunc adapts a plain function to the Renderer interface
type RendererFunc func(g *Grid) error

func (f RendererFunc) Render(g *Grid) error {
	return f(g)
}

type nopRenderer struct{}

func (nopRenderer) Render(*Grid) error { return nil }

// Grid is a fixed size board of height rows by width columns
type Grid struct {
	height   int
	width    int
	cells    [][]Marker
	car      Position
	hasCar   bool
	renderer Renderer
}

// NewGrid creates a grid with every cell blank. A nil renderer renders nothing.
func NewGrid(height, width int, renderer Renderer) (*Grid, error) {
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, height, width)
	}
	if height > MaxGridCells || (width > 0 && height > MaxGridCells/width) || width > MaxGridCells {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrInvalidDimensions, height, width, MaxGridCells)
	}
	if renderer == nil {
		renderer = nopRenderer{}
	}

	cells := make([][]Marker, height)
	for i := range cells {
		cells[i] = make([]Marker, width)
	}

	return &Grid{
		height:   height,
		width:    width,
		cells:    cells,
		renderer: renderer,
	}, nil
}

// Height returns the number of rows
func (g *Grid) Height() int {
	return g.height
}

// Width returns the number of columns
func (g *Grid) Width() int {
	return g.width
}

// Contains reports whether pos lies inside the grid
func (g *Grid) Contains(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.height && pos.Col >= 0 && pos.Col < g.width
}

// Cell returns the marker at pos, or Blank when pos is outside the grid
func (g *Grid) Cell(pos Position) Marker {
	if !g.Contains(pos) {
		return Blank
	}
	return g.cells[pos.Row][pos.Col]
}

// Rows returns a copy of the marker matrix, northernmost row first
func (g *Grid) Rows() [][]Marker {
	rows := make([][]Marker, g.height)
	for i, row := range g.cells {
		rows[i] = append([]Marker(nil), row...)
	}
	return rows
}

// CarPosition returns the cell currently carrying the Car marker
func (g *Grid) CarPosition() (Position, bool) {
	return g.car, g.hasCar
}

// Mark places the Car marker at pos and leaves a Trail on the previous car cell.
// Callers are responsible for pos being inside the grid.
func (g *Grid) Mark(pos Position) {
	if g.hasCar && g.car != pos {
		g.cells[g.car.Row][g.car.Col] = Trail
	}
	g.cells[pos.Row][pos.Col] = Car
	g.car = pos
	g.hasCar = true
}

// Render hands the grid to the configured renderer
func (g *Grid) Render() error {
	return g.renderer.Render(g)
}
