package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/questforge/engine/internal/entity"
	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

func animatedPattern(id int32, w, h int32) *entity.TilePattern {
	return &entity.TilePattern{ID: id, Ground: entity.GroundDeepWater, Size: geom.Size{Width: w, Height: h}, Frames: 3}
}

func TestRegionsStaticTilesBatch(t *testing.T) {
	r := newNonAnimatedRegions(0, geom.Size{Width: 1024, Height: 512})

	tiles := []*entity.Tile{
		entity.NewTile(pattern(1, entity.GroundGrass, 8, 8), 0, 0, 0, 64, 64),
		entity.NewTile(pattern(2, entity.GroundWall, 8, 8), 0, 600, 300, 32, 32),
	}
	r.build(tiles)

	// Two tiles in two different regions, nothing animated.
	require.Equal(t, 2, r.batchCount())
	require.Empty(t, r.animatedTiles())
}

func TestRegionsAnimatedTilesRejected(t *testing.T) {
	r := newNonAnimatedRegions(0, geom.Size{Width: 512, Height: 256})

	water := entity.NewTile(animatedPattern(4, 8, 8), 0, 100, 100, 32, 32)
	overlapping := entity.NewTile(pattern(1, entity.GroundGrass, 8, 8), 0, 96, 96, 16, 16)
	elsewhere := entity.NewTile(pattern(2, entity.GroundWall, 8, 8), 0, 300, 40, 16, 16)
	r.build([]*entity.Tile{water, overlapping, elsewhere})

	// The animated tile and the static tile overlapping its squares are
	// drawn per frame; the far-away static tile is batched.
	require.ElementsMatch(t, []*entity.Tile{water, overlapping}, r.animatedTiles())
	require.Equal(t, 1, r.batchCount())
}

func TestRegionsStraddlingTileInBothBatches(t *testing.T) {
	r := newNonAnimatedRegions(0, geom.Size{Width: 1024, Height: 256})

	straddler := entity.NewTile(pattern(1, entity.GroundGrass, 8, 8), 0, 504, 0, 16, 16)
	r.build([]*entity.Tile{straddler})
	require.Equal(t, 2, r.batchCount())
}

func TestRegionsDrawCulledByCamera(t *testing.T) {
	r := newNonAnimatedRegions(0, geom.Size{Width: 2048, Height: 1024})

	left := entity.NewTile(pattern(1, entity.GroundGrass, 8, 8), 0, 10, 10, 16, 16)
	right := entity.NewTile(pattern(2, entity.GroundWall, 8, 8), 0, 1800, 800, 16, 16)
	r.build([]*entity.Tile{left, right})

	q := render.NewQueue()
	r.draw(q, geom.Rect(0, 0, 320, 240))
	require.Equal(t, 1, q.Len())
	cmd := q.Commands()[0]
	require.Equal(t, render.KindTileBatch, cmd.Kind)
	require.Len(t, cmd.Batch.Tiles, 1)
	require.Equal(t, int32(1), cmd.Batch.Tiles[0].Pattern)

	q.Reset()
	r.draw(q, geom.Rect(1700, 700, 320, 240))
	require.Equal(t, 1, q.Len())
	require.Equal(t, int32(2), q.Commands()[0].Batch.Tiles[0].Pattern)
}
