package entity

import (
	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

// TilePattern describes one pattern of the current tileset: its ground,
// its base size, and how many animation frames it cycles through.
type TilePattern struct {
	ID     int32
	Ground Ground
	Size   geom.Size
	Frames int32 // 1 for static patterns
}

// Animated reports whether the pattern cycles frames every frame.
func (p *TilePattern) Animated() bool {
	return p.Frames > 1
}

// Tile is a static piece of terrain. Tiles are placed only while the map
// loads, never enter the spatial index or the name map, and are drawn
// through the non-animated regions or the animated list of their layer.
// The bounding box may be a multiple of the pattern size; the pattern
// repeats to fill it.
type Tile struct {
	Base
	pattern *TilePattern
}

// NewTile places a pattern at (x,y) with the given repeat size. A zero
// width or height defaults to the pattern size.
func NewTile(pattern *TilePattern, layer, x, y, width, height int32) *Tile {
	if width <= 0 {
		width = pattern.Size.Width
	}
	if height <= 0 {
		height = pattern.Size.Height
	}
	return &Tile{
		Base:    newBase(TypeTile, "", layer, geom.Rect(x, y, width, height)),
		pattern: pattern,
	}
}

// Pattern returns the tile's current pattern.
func (t *Tile) Pattern() *TilePattern {
	return t.pattern
}

// SetPattern re-points the tile at the matching pattern of a new
// tileset.
func (t *Tile) SetPattern(pattern *TilePattern) {
	t.pattern = pattern
}

// Ref returns the tile as a drawable reference.
func (t *Tile) Ref() render.TileRef {
	return render.TileRef{Pattern: t.pattern.ID, Dst: t.BoundingBox()}
}

// Draw emits the tile individually. Only animated and rejected tiles are
// drawn this way; batched tiles go through their region batch.
func (t *Tile) Draw(q *render.Queue) {
	q.PushTile(t.Layer(), t.Ref())
}
