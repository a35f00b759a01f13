package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name   string
		height int
		width  int
	}{
		{"square", 5, 5},
		{"wide", 2, 7},
		{"tall", 9, 1},
		{"empty", 0, 0},
		{"zero width", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.height, tt.width, nil)
			require.NoError(t, err)

			rows := g.Rows()
			assert.Len(t, rows, tt.height)
			for _, row := range rows {
				assert.Len(t, row, tt.width)
			}
			assert.Equal(t, tt.height*tt.width, CountMarkers(rows, Blank))

			_, hasCar := g.CarPosition()
			assert.False(t, hasCar)
		})
	}
}

func TestNewGridRejectsNegativeSize(t *testing.T) {
	_, err := NewGrid(-1, 4, nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = NewGrid(4, -2, nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestNewGridRejectsHugeSize(t *testing.T) {
	tests := []struct {
		name   string
		height int
		width  int
	}{
		{"max int rows", math.MaxInt, 1},
		{"max int cols", 1, math.MaxInt},
		{"product overflows", math.MaxInt / 2, 3},
		{"too many cells", 1, 100000000000},
		{"tall and empty", MaxGridCells + 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.height, tt.width, nil)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
			assert.Nil(t, g)
		})
	}

	_, err := NewGrid(1, MaxGridCells, nil)
	assert.NoError(t, err)
}

func TestGridContains(t *testing.T) {
	g, err := NewGrid(3, 4, nil)
	require.NoError(t, err)

	assert.True(t, g.Contains(Position{Row: 0, Col: 0}))
	assert.True(t, g.Contains(Position{Row: 2, Col: 3}))
	assert.False(t, g.Contains(Position{Row: 3, Col: 0}))
	assert.False(t, g.Contains(Position{Row: 0, Col: 4}))
	assert.False(t, g.Contains(Position{Row: -1, Col: 0}))
	assert.False(t, g.Contains(Position{Row: 0, Col: -1}))
}

func TestGridMarkLeavesTrail(t *testing.T) {
	g, err := NewGrid(3, 3, nil)
	require.NoError(t, err)

	first := Position{Row: 2, Col: 0}
	second := Position{Row: 1, Col: 0}

	g.Mark(first)
	assert.Equal(t, Car, g.Cell(first))

	g.Mark(second)
	assert.Equal(t, Trail, g.Cell(first))
	assert.Equal(t, Car, g.Cell(second))

	rows := g.Rows()
	assert.Equal(t, 1, CountMarkers(rows, Car))
	assert.Equal(t, 1, CountMarkers(rows, Trail))

	pos, ok := g.CarPosition()
	assert.True(t, ok)
	assert.Equal(t, second, pos)
}

func TestGridMarkSameCellKeepsCar(t *testing.T) {
	g, err := NewGrid(2, 2, nil)
	require.NoError(t, err)

	p := Position{Row: 1, Col: 1}
	g.Mark(p)
	g.Mark(p)
	assert.Equal(t, Car, g.Cell(p))
	assert.Equal(t, 0, CountMarkers(g.Rows(), Trail))
}

func TestGridRowsIsCopy(t *testing.T) {
	g, err := NewGrid(2, 2, nil)
	require.NoError(t, err)

	rows := g.Rows()
	rows[0][0] = Car
	assert.Equal(t, Blank, g.Cell(Position{}))
}

func TestGridRenderDelegates(t *testing.T) {
	calls := 0
	var seen *Grid
	g, err := NewGrid(2, 3, RendererFunc(func(g *Grid) error {
		calls++
		seen = g
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, g.Render())
	assert.Equal(t, 1, calls)
	assert.Same(t, g, seen)

	boom := errors.New("boom")
	g, err = NewGrid(1, 1, RendererFunc(func(*Grid) error { return boom }))
	require.NoError(t, err)
	assert.ErrorIs(t, g.Render(), boom)
}

func TestRowTransforms(t *testing.T) {
	assert.Equal(t, 4, InternalRow(5, 0))
	assert.Equal(t, 0, InternalRow(5, 4))
	assert.Equal(t, 2, DisplayRow(5, 2))

	for h := 1; h <= 6; h++ {
		for r := 0; r < h; r++ {
			assert.Equal(t, r, DisplayRow(h, InternalRow(h, r)))
		}
	}
}

func TestManhattanDistance(t *testing.T) {
	assert.Equal(t, 0, ManhattanDistance(Position{1, 1}, Position{1, 1}))
	assert.Equal(t, 5, ManhattanDistance(Position{0, 0}, Position{2, 3}))
	assert.Equal(t, 5, ManhattanDistance(Position{2, 3}, Position{0, 0}))
}
