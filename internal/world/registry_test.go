package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/questforge/engine/internal/entity"
)

func TestRegistryAddAndLookup(t *testing.T) {
	r := newRegistry(2)
	a := entity.NewNpc("sage", 0, 0, 0)
	b := entity.NewEnemy("", 1, 0, 0, 1)
	r.add(a)
	r.add(b)

	require.Same(t, a, r.entity("sage"))
	require.Nil(t, r.entity("nobody"))
	require.Equal(t, 2, r.liveCount())

	// Unnamed entities never enter the name map.
	require.Len(t, r.byName, 1)
}

func TestRegistryDuplicateNameFatal(t *testing.T) {
	r := newRegistry(1)
	r.add(entity.NewNpc("sage", 0, 0, 0))
	require.Panics(t, func() {
		r.add(entity.NewEnemy("sage", 0, 0, 0, 1))
	})
}

func TestRegistryPrefixQueries(t *testing.T) {
	r := newRegistry(1)
	a := entity.NewNpc("guard_1", 0, 0, 0)
	b := entity.NewNpc("guard_2", 0, 16, 0)
	c := entity.NewNpc("merchant", 0, 32, 0)
	r.add(a)
	r.add(b)
	r.add(c)

	require.Equal(t, []entity.Entity{a, b}, r.entitiesWithPrefix("guard"))
	require.True(t, r.hasEntityWithPrefix("mer"))
	require.False(t, r.hasEntityWithPrefix("dragon"))

	// A pending-removal entity drops out of every view immediately.
	r.scheduleRemoval(a)
	require.Equal(t, []entity.Entity{b}, r.entitiesWithPrefix("guard"))
	require.Nil(t, r.entity("guard_1"))
	require.Equal(t, 2, r.liveCount())
}

func TestRegistryTypeIndex(t *testing.T) {
	r := newRegistry(2)
	n0 := entity.NewNpc("", 0, 0, 0)
	n1 := entity.NewNpc("", 1, 0, 0)
	e0 := entity.NewEnemy("", 0, 0, 0, 1)
	r.add(n0)
	r.add(n1)
	r.add(e0)

	require.Equal(t, []entity.Entity{n0, n1}, r.entitiesByType(entity.TypeNpc))
	require.Equal(t, []entity.Entity{n0}, r.entitiesByTypeOnLayer(entity.TypeNpc, 0))
	require.Equal(t, []entity.Entity{n1}, r.entitiesByTypeOnLayer(entity.TypeNpc, 1))
	require.Empty(t, r.entitiesByTypeOnLayer(entity.TypeEnemy, 1))

	// Re-filing between layer buckets precedes the layer change itself.
	r.moveTypeBucket(n0, 0, 1)
	n0.SetLayer(1)
	require.Equal(t, []entity.Entity{n1, n0}, r.entitiesByTypeOnLayer(entity.TypeNpc, 1))
}

func TestRegistryFlush(t *testing.T) {
	r := newRegistry(1)
	a := entity.NewNpc("a", 0, 0, 0)
	b := entity.NewNpc("b", 0, 16, 0)
	r.add(a)
	r.add(b)

	r.scheduleRemoval(a)
	r.scheduleRemoval(a) // idempotent

	var dropped []entity.Entity
	n := r.flush(func(e entity.Entity) { dropped = append(dropped, e) })
	require.Equal(t, 1, n)
	require.Equal(t, []entity.Entity{a}, dropped)
	require.Nil(t, r.entity("a"))
	require.Same(t, b, r.entity("b"))
	require.Equal(t, 1, r.liveCount())

	// A later flush with nothing queued does nothing.
	require.Equal(t, 0, r.flush(func(entity.Entity) { t.Fatal("unexpected drop") }))
}
