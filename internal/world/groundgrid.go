package world

import (
	"github.com/questforge/engine/internal/entity"
	"github.com/questforge/engine/internal/geom"
)

// Ground cells are 8x8 pixels.
const (
	groundCellSize  = 8
	groundCellShift = 3
)

// GroundGrid stores the terrain classification of every 8x8 cell of
// every layer, derived from the placed tiles. Reads sit on the physics
// hot path and skip bounds checks; callers guarantee coordinates inside
// the map and a valid layer.
type GroundGrid struct {
	cellsWide int32
	cellsHigh int32
	cells     [][]entity.Ground // per layer, row-major
}

func newGroundGrid(size geom.Size, layerCount int32) *GroundGrid {
	g := &GroundGrid{
		cellsWide: (size.Width + groundCellSize - 1) / groundCellSize,
		cellsHigh: (size.Height + groundCellSize - 1) / groundCellSize,
		cells:     make([][]entity.Ground, layerCount),
	}
	for layer := range g.cells {
		g.cells[layer] = make([]entity.Ground, g.cellsWide*g.cellsHigh)
	}
	return g
}

// Ground returns the terrain covering the pixel (x,y) on a layer.
func (g *GroundGrid) Ground(layer, x, y int32) entity.Ground {
	return g.cells[layer][(y>>groundCellShift)*g.cellsWide+(x>>groundCellShift)]
}

// SetGround overwrites one cell. Called only while deriving the grid
// from tiles.
func (g *GroundGrid) SetGround(layer, cellX, cellY int32, ground entity.Ground) {
	g.cells[layer][cellY*g.cellsWide+cellX] = ground
}

// CellsWide returns the grid width in cells.
func (g *GroundGrid) CellsWide() int32 {
	return g.cellsWide
}

// CellsHigh returns the grid height in cells.
func (g *GroundGrid) CellsHigh() int32 {
	return g.cellsHigh
}

// applyTile writes a tile's ground over every cell its box covers,
// clamped to the grid. Patterns with empty ground leave the cells of
// lower tiles untouched. Later calls win, so deriving the grid in
// placement order gives each cell the ground of the highest tile.
func (g *GroundGrid) applyTile(t *entity.Tile) {
	ground := t.Pattern().Ground
	if ground == entity.GroundEmpty {
		return
	}
	box := t.BoundingBox()
	layer := t.Layer()

	x0 := box.X >> groundCellShift
	y0 := box.Y >> groundCellShift
	x1 := (box.Right() - 1) >> groundCellShift
	y1 := (box.Bottom() - 1) >> groundCellShift
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= g.cellsWide {
		x1 = g.cellsWide - 1
	}
	if y1 >= g.cellsHigh {
		y1 = g.cellsHigh - 1
	}
	for cy := y0; cy <= y1; cy++ {
		row := cy * g.cellsWide
		for cx := x0; cx <= x1; cx++ {
			g.cells[layer][row+cx] = ground
		}
	}
}
