package world

import (
	"github.com/questforge/engine/internal/entity"
	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

// Region batches cover 512x256 pixels each.
const (
	regionWidth  = 512
	regionHeight = 256
)

// nonAnimatedRegions batches the static tiles of one layer into
// precomputed draw commands, one batch per 512x256 region. Animated
// tiles, and static tiles overlapping any 8x8 square an animated tile
// covers, are kept out and drawn individually every frame. After build,
// drawing costs nothing beyond pushing the visible batches.
type nonAnimatedRegions struct {
	layer       int32
	size        geom.Size
	regionsWide int32
	regionsHigh int32
	batches     []*render.Batch // per region, row-major, nil when empty
	animated    []*entity.Tile  // drawn every frame
}

func newNonAnimatedRegions(layer int32, size geom.Size) *nonAnimatedRegions {
	return &nonAnimatedRegions{
		layer:       layer,
		size:        size,
		regionsWide: (size.Width + regionWidth - 1) / regionWidth,
		regionsHigh: (size.Height + regionHeight - 1) / regionHeight,
	}
}

// build classifies the layer's tiles and precomputes the batches.
// Runs once at map start and again after a tileset change.
func (r *nonAnimatedRegions) build(tiles []*entity.Tile) {
	r.batches = make([]*render.Batch, r.regionsWide*r.regionsHigh)
	r.animated = r.animated[:0]

	// Squares covered by at least one animated tile poison the static
	// batches: a static tile overlapping one must be redrawn whenever
	// the animation under it changes.
	squaresWide := (r.size.Width + groundCellSize - 1) / groundCellSize
	squaresHigh := (r.size.Height + groundCellSize - 1) / groundCellSize
	animatedSquares := make([]bool, squaresWide*squaresHigh)
	for _, t := range tiles {
		if !t.Pattern().Animated() {
			continue
		}
		forEachSquare(t.BoundingBox(), squaresWide, squaresHigh, func(i int32) {
			animatedSquares[i] = true
		})
	}

	for _, t := range tiles {
		if t.Pattern().Animated() {
			r.animated = append(r.animated, t)
			continue
		}
		rejected := false
		forEachSquare(t.BoundingBox(), squaresWide, squaresHigh, func(i int32) {
			if animatedSquares[i] {
				rejected = true
			}
		})
		if rejected {
			r.animated = append(r.animated, t)
			continue
		}
		r.addToBatches(t)
	}
}

// addToBatches files a static tile into every region batch its box
// overlaps. The renderer clips batch content to the region rectangle,
// so a straddling tile drawn from two batches still appears once.
func (r *nonAnimatedRegions) addToBatches(t *entity.Tile) {
	box := t.BoundingBox()
	rx0 := box.X / regionWidth
	ry0 := box.Y / regionHeight
	rx1 := (box.Right() - 1) / regionWidth
	ry1 := (box.Bottom() - 1) / regionHeight
	if rx0 < 0 {
		rx0 = 0
	}
	if ry0 < 0 {
		ry0 = 0
	}
	if rx1 >= r.regionsWide {
		rx1 = r.regionsWide - 1
	}
	if ry1 >= r.regionsHigh {
		ry1 = r.regionsHigh - 1
	}
	for ry := ry0; ry <= ry1; ry++ {
		for rx := rx0; rx <= rx1; rx++ {
			i := ry*r.regionsWide + rx
			b := r.batches[i]
			if b == nil {
				b = &render.Batch{
					Layer:  r.layer,
					Region: geom.Rect(rx*regionWidth, ry*regionHeight, regionWidth, regionHeight),
				}
				r.batches[i] = b
			}
			b.Tiles = append(b.Tiles, t.Ref())
		}
	}
}

// draw pushes the batches intersecting the camera, in region order.
func (r *nonAnimatedRegions) draw(q *render.Queue, camera geom.Rectangle) {
	rx0 := camera.X / regionWidth
	ry0 := camera.Y / regionHeight
	rx1 := (camera.Right() - 1) / regionWidth
	ry1 := (camera.Bottom() - 1) / regionHeight
	if rx0 < 0 {
		rx0 = 0
	}
	if ry0 < 0 {
		ry0 = 0
	}
	if rx1 >= r.regionsWide {
		rx1 = r.regionsWide - 1
	}
	if ry1 >= r.regionsHigh {
		ry1 = r.regionsHigh - 1
	}
	for ry := ry0; ry <= ry1; ry++ {
		for rx := rx0; rx <= rx1; rx++ {
			if b := r.batches[ry*r.regionsWide+rx]; b != nil {
				q.PushBatch(r.layer, b)
			}
		}
	}
}

// animatedTiles returns the tiles that must be drawn every frame:
// animated patterns plus the static tiles rejected from the batches.
func (r *nonAnimatedRegions) animatedTiles() []*entity.Tile {
	return r.animated
}

// batchCount returns the number of non-empty batches.
func (r *nonAnimatedRegions) batchCount() int {
	n := 0
	for _, b := range r.batches {
		if b != nil {
			n++
		}
	}
	return n
}

// forEachSquare calls fn with the index of every 8x8 square the box
// overlaps, clamped to the grid.
func forEachSquare(box geom.Rectangle, squaresWide, squaresHigh int32, fn func(i int32)) {
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
	if x1 >= squaresWide {
		x1 = squaresWide - 1
	}
	if y1 >= squaresHigh {
		y1 = squaresHigh - 1
	}
	for sy := y0; sy <= y1; sy++ {
		row := sy * squaresWide
		for sx := x0; sx <= x1; sx++ {
			fn(row + sx)
		}
	}
}
