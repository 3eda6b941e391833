// Package spatial provides broad-phase lookup structures for the combat world.
//
// Structures store integer slot indices (not pointers) in preallocated
// slices so a rebuild every tick produces no garbage.
package spatial

import (
	"math"
)

// SpatialGrid buckets entity slots into fixed-size square cells.
// Cells are stored row-major (cells[row*cols+col]).
//
// Queries return candidates only; the caller does the exact overlap test.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32
}

// NewSpatialGrid creates a grid covering width x height.
// maxEntities is used to size each cell's initial capacity.
func NewSpatialGrid(width, height, cellSize float64, maxEntities int) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 32
	}
	cols := max(1, int(math.Ceil(width/cellSize)))
	rows := max(1, int(math.Ceil(height/cellSize)))

	perCell := max(4, maxEntities/(cols*rows))
	cells := make([][]uint32, cols*rows)
	for i := range cells {
		cells[i] = make([]uint32, 0, perCell)
	}

	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear empties every cell, keeping capacity.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert files slot under the cell containing (x, y).
// Positions outside the grid land in the nearest edge cell.
func (g *SpatialGrid) Insert(slot uint32, x, y float64) {
	col, row := g.cellOf(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], slot)
}

func (g *SpatialGrid) cellOf(x, y float64) (int, int) {
	return g.clampCol(int(math.Floor(x * g.invCellSize))), g.clampRow(int(math.Floor(y * g.invCellSize)))
}

func (g *SpatialGrid) clampCol(c int) int {
	return min(max(c, 0), g.cols-1)
}

func (g *SpatialGrid) clampRow(r int) int {
	return min(max(r, 0), g.rows-1)
}

// QueryRadius returns every slot filed in a cell touched by the square
// around (cx, cy) with half-side radius.
//
// The returned slice is reused by the next call; copy it to keep it.
func (g *SpatialGrid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, minRow := g.cellOf(cx-radius, cy-radius)
	maxCol, maxRow := g.cellOf(cx+radius, cy+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}
	return g.scratch
}

// Len returns the number of filed slots
func (g *SpatialGrid) Len() int {
	n := 0
	for _, c := range g.cells {
		n += len(c)
	}
	return n
}

// Dimensions returns the grid dimensions.
func (g *SpatialGrid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
