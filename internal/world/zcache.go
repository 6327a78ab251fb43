package world

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/questforge/engine/internal/entity"
)

// zCache tracks the stacking rank of every entity on one layer.
// Comparing two ranks reproduces insertion-then-reorder history order.
// Ranks are dense only right after a renumber; holes are normal.
type zCache struct {
	layer int32
	log   *zap.Logger
	z     map[entity.Entity]int32
	// min and max only ever widen between renumbers; removing an
	// extreme entity leaves them stale, which is harmless.
	min int32
	max int32
}

func newZCache(layer int32, log *zap.Logger) *zCache {
	return &zCache{
		layer: layer,
		log:   log,
		z:     make(map[entity.Entity]int32),
	}
}

// add assigns the next rank above everything on the layer.
func (c *zCache) add(e entity.Entity) {
	if len(c.z) == 0 {
		c.min = 0
		c.max = 0
		c.z[e] = 0
		return
	}
	if c.max == math.MaxInt32 {
		c.renumber()
	}
	c.max++
	c.z[e] = c.max
}

// remove forgets an entity's rank. Absent entities are a no-op.
func (c *zCache) remove(e entity.Entity) {
	delete(c.z, e)
}

// bringToFront re-ranks an entity above everything on the layer.
func (c *zCache) bringToFront(e entity.Entity) {
	if _, ok := c.z[e]; !ok {
		panic("bringToFront: entity has no stacking rank on this layer")
	}
	if c.max == math.MaxInt32 {
		c.renumber()
	}
	c.max++
	c.z[e] = c.max
}

// bringToBack re-ranks an entity below everything on the layer.
func (c *zCache) bringToBack(e entity.Entity) {
	if _, ok := c.z[e]; !ok {
		panic("bringToBack: entity has no stacking rank on this layer")
	}
	if c.min == math.MinInt32 {
		c.renumber()
	}
	c.min--
	c.z[e] = c.min
}

// zOf returns an entity's rank and whether it is ranked on this layer.
func (c *zCache) zOf(e entity.Entity) (int32, bool) {
	z, ok := c.z[e]
	return z, ok
}

// size returns the number of ranked entities.
func (c *zCache) size() int {
	return len(c.z)
}

// renumber reassigns ranks 0..n-1 in the current relative order. Runs
// when an end of the int32 range is exhausted, which takes billions of
// reorder operations, so the O(n log n) cost never matters in practice.
func (c *zCache) renumber() {
	type ranked struct {
		e entity.Entity
		z int32
	}
	all := make([]ranked, 0, len(c.z))
	for e, z := range c.z {
		all = append(all, ranked{e: e, z: z})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].z < all[j].z })
	for i, r := range all {
		c.z[r.e] = int32(i)
	}
	c.min = 0
	c.max = int32(len(all)) - 1
	c.log.Warn("stacking ranks renumbered",
		zap.Int32("layer", c.layer),
		zap.Int("entities", len(all)))
}
