package world

import "github.com/questforge/engine/internal/geom"

// Default viewport, used when the caller passes a zero size.
const (
	defaultViewportWidth  = 320
	defaultViewportHeight = 240
)

// Camera is the visible viewport over the map. It is not an entity: it
// follows the hero, clamps to the map bounds, and feeds draw culling.
type Camera struct {
	box     geom.Rectangle
	mapSize geom.Size
}

func newCamera(viewport geom.Size, mapSize geom.Size) *Camera {
	if viewport.IsFlat() {
		viewport = geom.Size{Width: defaultViewportWidth, Height: defaultViewportHeight}
	}
	return &Camera{
		box:     geom.Rect(0, 0, viewport.Width, viewport.Height),
		mapSize: mapSize,
	}
}

// VisibleRect returns the viewport in map pixels.
func (c *Camera) VisibleRect() geom.Rectangle {
	return c.box
}

// CenterOn centers the viewport on a target box, clamped to the map.
// Maps smaller than the viewport pin to the top-left corner.
func (c *Camera) CenterOn(target geom.Rectangle) {
	center := target.Center()
	c.box.X = clamp32(center.X-c.box.Width/2, 0, c.mapSize.Width-c.box.Width)
	c.box.Y = clamp32(center.Y-c.box.Height/2, 0, c.mapSize.Height-c.box.Height)
}

func clamp32(v, lo, hi int32) int32 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
