package entity

import (
	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

// DynamicTile looks like a tile but lives as a normal entity: it can be
// enabled and disabled at runtime and sits in the spatial index. It
// contributes nothing to the ground grid.
type DynamicTile struct {
	Base
	pattern *TilePattern
}

// NewDynamicTile places a pattern at (x,y) with the given repeat size.
func NewDynamicTile(pattern *TilePattern, name string, layer, x, y, width, height int32) *DynamicTile {
	if width <= 0 {
		width = pattern.Size.Width
	}
	if height <= 0 {
		height = pattern.Size.Height
	}
	return &DynamicTile{
		Base:    newBase(TypeDynamicTile, name, layer, geom.Rect(x, y, width, height)),
		pattern: pattern,
	}
}

// Pattern returns the tile's current pattern.
func (t *DynamicTile) Pattern() *TilePattern {
	return t.pattern
}

// SetPattern re-points the tile at the matching pattern of a new
// tileset.
func (t *DynamicTile) SetPattern(pattern *TilePattern) {
	t.pattern = pattern
}

func (t *DynamicTile) Draw(q *render.Queue) {
	q.PushTile(t.Layer(), render.TileRef{Pattern: t.pattern.ID, Dst: t.BoundingBox()})
}
