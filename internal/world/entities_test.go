package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/questforge/engine/internal/entity"
	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

// newTestMap builds a started-ready map with the hero parked at (64,64)
// so the camera clamps to the top-left corner of the map.
func newTestMap(t *testing.T) *Entities {
	t.Helper()
	hero := entity.NewHero(64, 64)
	return New(zap.NewNop(), geom.Size{Width: 640, Height: 480}, 2, hero,
		geom.Size{Width: 320, Height: 240})
}

// probe is a door whose Update is observable and scriptable.
type probe struct {
	*entity.Door
	updates  int
	onUpdate func(p *probe)
}

func newProbe(name string, layer, x, y int32) *probe {
	return &probe{Door: entity.NewDoor(name, layer, x, y, 16, 16, false)}
}

func (p *probe) Update(now time.Time) {
	p.updates++
	if p.onUpdate != nil {
		p.onUpdate(p)
	}
}

func sprites(q *render.Queue) []render.SpriteRef {
	var out []render.SpriteRef
	for _, cmd := range q.Commands() {
		if cmd.Kind == render.KindSprite {
			out = append(out, cmd.Sprite)
		}
	}
	return out
}

func TestMapLifecycle(t *testing.T) {
	m := newTestMap(t)
	require.Equal(t, StateCreated, m.State())
	require.Panics(t, func() { m.Update(time.Now()) })
	require.Panics(t, func() { m.Draw(render.NewQueue()) })

	m.NotifyMapStarted()
	require.Equal(t, StateStarted, m.State())
	require.Panics(t, func() { m.NotifyMapStarted() })

	m.NotifyMapOpeningTransitionFinished()
	require.Equal(t, StateRunning, m.State())

	m.NotifyMapFinished()
	require.Equal(t, StateFinished, m.State())
	require.Panics(t, func() { m.Update(time.Now()) })
	require.Panics(t, func() { m.Entity("anything") })
	require.Panics(t, func() { m.Add(entity.NewNpc("", 0, 0, 0)) })
}

func TestAddRemoveQueryScenario(t *testing.T) {
	m := newTestMap(t)
	a := entity.NewDoor("a", 0, 0, 0, 16, 16, false)
	b := entity.NewDoor("b", 0, 8, 8, 16, 16, false)
	m.Add(a)
	m.Add(b)
	m.NotifyMapStarted()

	require.ElementsMatch(t, []entity.Entity{a, b}, m.Query(geom.Rect(0, 0, 20, 20)))

	m.ScheduleRemoval(a)
	// Marked entities drop out of every query surface immediately.
	require.ElementsMatch(t, []entity.Entity{b}, m.Query(geom.Rect(0, 0, 20, 20)))
	require.Nil(t, m.Entity("a"))

	m.Update(time.Now()) // flush point
	require.ElementsMatch(t, []entity.Entity{b}, m.Query(geom.Rect(0, 0, 20, 20)))
	require.Nil(t, m.Entity("a"))
	require.Same(t, b, m.Entity("b"))
	require.Nil(t, a.Map())

	// Removing again, or removing an unknown name, is a no-op.
	m.ScheduleRemoval(a)
	m.RemoveEntity("nobody")
	require.Equal(t, 2, m.EntityCount()) // b + hero
}

func TestAddAfterStartEntersIndex(t *testing.T) {
	m := newTestMap(t)
	m.NotifyMapStarted()

	late := entity.NewDoor("late", 0, 200, 200, 16, 16, false)
	m.Add(late)
	require.ElementsMatch(t, []entity.Entity{late}, m.Query(geom.Rect(190, 190, 40, 40)))
}

func TestDuplicateNameFatal(t *testing.T) {
	m := newTestMap(t)
	m.Add(entity.NewNpc("twin", 0, 0, 0))
	require.Panics(t, func() { m.Add(entity.NewNpc("twin", 0, 16, 0)) })
}

func TestYOrderDrawScenario(t *testing.T) {
	m := newTestMap(t)
	low := entity.NewEnemy("low", 0, 32, 50, 5)
	high := entity.NewEnemy("high", 0, 32, 10, 5)
	m.Add(low) // inserted first, but drawn after: y-order wins
	m.Add(high)
	m.NotifyMapStarted()

	q := render.NewQueue()
	m.Draw(q)
	got := sprites(q)
	require.Len(t, got, 3) // two enemies + hero
	require.Equal(t, int32(10), got[0].Dst.Y)
	require.Equal(t, int32(50), got[1].Dst.Y)
	require.Equal(t, "hero", got[2].Name)
}

func TestYOrderTieBreakByRank(t *testing.T) {
	m := newTestMap(t)
	first := entity.NewEnemy("first", 0, 32, 30, 5)
	second := entity.NewEnemy("second", 0, 48, 30, 5)
	m.Add(first)
	m.Add(second)
	m.NotifyMapStarted()
	m.BringToFront(first)

	q := render.NewQueue()
	m.Draw(q)
	got := sprites(q)
	// Same bottom edge: the higher stacking rank draws later.
	require.Equal(t, int32(48), got[0].Dst.X)
	require.Equal(t, int32(32), got[1].Dst.X)
}

func TestBringToFrontBack(t *testing.T) {
	m := newTestMap(t)
	a := entity.NewDoor("a", 0, 100, 100, 16, 16, false)
	b := entity.NewDoor("b", 0, 110, 100, 16, 16, false)
	c := entity.NewDoor("c", 0, 120, 100, 16, 16, false)
	m.Add(a)
	m.Add(b)
	m.Add(c)
	m.NotifyMapStarted()

	m.BringToFront(a)
	require.Greater(t, m.RelativeZ(a), m.RelativeZ(b))
	require.Greater(t, m.RelativeZ(a), m.RelativeZ(c))

	m.BringToBack(c)
	require.Less(t, m.RelativeZ(c), m.RelativeZ(b))
	require.Less(t, m.RelativeZ(c), m.RelativeZ(a))

	// The insertion-order draw list follows the reorders: c, b, a.
	q := render.NewQueue()
	m.Draw(q)
	var xs []int32
	for _, s := range sprites(q) {
		if s.Name == "door" {
			xs = append(xs, s.Dst.X)
		}
	}
	require.Equal(t, []int32{120, 110, 100}, xs)
}

func TestSetEntityLayer(t *testing.T) {
	m := newTestMap(t)
	d := entity.NewDoor("d", 0, 100, 100, 16, 16, false)
	other := entity.NewDoor("o", 1, 50, 50, 16, 16, false)
	m.Add(d)
	m.Add(other)
	m.NotifyMapStarted()

	m.SetEntityLayer(d, 1)
	require.Equal(t, int32(1), d.Layer())
	require.Empty(t, m.EntitiesByTypeOnLayer(entity.TypeDoor, 0))
	require.ElementsMatch(t, []entity.Entity{d, other}, m.EntitiesByTypeOnLayer(entity.TypeDoor, 1))

	// The mover arrives on top of its new layer.
	require.Greater(t, m.RelativeZ(d), m.RelativeZ(other))

	// Entities never added to this map cannot be re-layered.
	require.Panics(t, func() { m.SetEntityLayer(entity.NewDoor("x", 0, 0, 0, 16, 16, false), 1) })
}

func TestSetEntityDrawnInYOrder(t *testing.T) {
	m := newTestMap(t)
	d := entity.NewDoor("d", 0, 32, 10, 16, 16, false)
	e := entity.NewEnemy("e", 0, 32, 50, 5)
	m.Add(d)
	m.Add(e)
	m.NotifyMapStarted()

	// As a plain entity the door draws before the y-ordered group.
	q := render.NewQueue()
	m.Draw(q)
	require.Equal(t, "door", sprites(q)[0].Name)

	// In y-order mode it sorts among them by its bottom edge.
	m.SetEntityDrawnInYOrder(d, true)
	require.True(t, d.DrawnInYOrder())
	q.Reset()
	m.Draw(q)
	got := sprites(q)
	require.Equal(t, "door", got[0].Name)
	require.Equal(t, "enemy", got[1].Name)

	// And back again, with its stacking rank intact.
	m.SetEntityDrawnInYOrder(d, false)
	require.False(t, d.DrawnInYOrder())
	q.Reset()
	m.Draw(q)
	require.Equal(t, "door", sprites(q)[0].Name)
}

func TestSuspension(t *testing.T) {
	m := newTestMap(t)
	p := newProbe("p", 0, 100, 100)
	m.Add(p)
	m.NotifyMapStarted()
	m.NotifyMapOpeningTransitionFinished()

	m.Update(time.Now())
	require.Equal(t, 1, p.updates)

	m.SetSuspended(true)
	require.Equal(t, StateSuspended, m.State())
	require.True(t, p.Suspended())
	m.Update(time.Now())
	require.Equal(t, 1, p.updates)

	// Drawing keeps working while suspended.
	q := render.NewQueue()
	m.Draw(q)
	require.NotZero(t, q.Len())

	m.SetSuspended(false)
	require.Equal(t, StateRunning, m.State())
	m.Update(time.Now())
	require.Equal(t, 2, p.updates)
}

func TestRemovalDuringUpdateIsDeferred(t *testing.T) {
	m := newTestMap(t)
	victim := entity.NewDoor("victim", 0, 200, 200, 16, 16, false)
	p := newProbe("p", 0, 100, 100)
	p.onUpdate = func(p *probe) {
		// Removing another entity and oneself mid-update must not
		// disturb the iteration in progress.
		m.ScheduleRemoval(victim)
		m.ScheduleRemoval(p)
	}
	m.Add(p)
	m.Add(victim)
	m.NotifyMapStarted()

	m.Update(time.Now())
	require.Equal(t, 1, p.updates)
	require.Nil(t, m.Entity("victim"))
	require.Empty(t, m.Query(geom.Rect(190, 190, 40, 40)))

	// The next frame's flush drops them; neither updates again.
	m.Update(time.Now())
	require.Equal(t, 1, p.updates)
	require.Equal(t, 1, m.EntityCount()) // hero only
}

func TestCrystalMechanics(t *testing.T) {
	m := newTestMap(t)
	orange := entity.NewCrystalBlock("ob", entity.CrystalBlockOrange, 0, 100, 100, 16, 16)
	blue := entity.NewCrystalBlock("bb", entity.CrystalBlockBlue, 0, 130, 100, 16, 16)
	m.Add(orange)
	m.Add(blue)
	m.NotifyMapStarted()

	require.True(t, orange.Raised())
	require.True(t, m.OverlapsRaisedBlocks(0, geom.Rect(90, 90, 40, 40)))
	require.False(t, m.OverlapsRaisedBlocks(0, geom.Rect(125, 90, 30, 40)))

	m.ToggleCrystalState()
	m.Update(time.Now())
	require.False(t, orange.Raised())
	require.True(t, blue.Raised())
	require.False(t, m.OverlapsRaisedBlocks(0, geom.Rect(90, 90, 20, 40)))
	require.True(t, m.OverlapsRaisedBlocks(0, geom.Rect(125, 90, 30, 40)))
}

func TestDefaultDestination(t *testing.T) {
	m := newTestMap(t)
	first := entity.NewDestination("first", 0, 100, 100, false)
	m.Add(first)
	// The first destination stands in as default.
	require.Same(t, first, m.DefaultDestination())

	chosen := entity.NewDestination("chosen", 0, 200, 100, true)
	m.Add(chosen)
	require.Same(t, chosen, m.DefaultDestination())

	// Two explicitly-default destinations are malformed map data.
	require.Panics(t, func() {
		m.Add(entity.NewDestination("usurper", 0, 300, 100, true))
	})

	// Removing the default clears the slot at flush time.
	m.NotifyMapStarted()
	m.ScheduleRemoval(chosen)
	m.Update(time.Now())
	require.Nil(t, m.DefaultDestination())
}

func TestHeroIsProtected(t *testing.T) {
	m := newTestMap(t)
	require.Panics(t, func() { m.ScheduleRemoval(m.Hero()) })
	require.Same(t, m.Hero(), m.Entity(entity.HeroName))
}

func TestAddTileOnlyBeforeStart(t *testing.T) {
	m := newTestMap(t)
	p := pattern(1, entity.GroundGrass, 8, 8)
	m.AddTile(entity.NewTile(p, 0, 0, 0, 64, 64))
	m.NotifyMapStarted()
	require.Panics(t, func() {
		m.AddTile(entity.NewTile(p, 0, 64, 0, 64, 64))
	})
	require.Panics(t, func() { m.Add(entity.NewTile(p, 0, 0, 0, 16, 16)) })
}

func TestGroundDerivedAtStart(t *testing.T) {
	m := newTestMap(t)
	m.AddTile(entity.NewTile(pattern(1, entity.GroundGrass, 8, 8), 0, 0, 0, 640, 480))
	m.AddTile(entity.NewTile(pattern(2, entity.GroundWall, 8, 8), 0, 64, 64, 32, 32))
	m.NotifyMapStarted()

	require.Equal(t, entity.GroundGrass, m.Ground(0, 10, 10))
	require.Equal(t, entity.GroundWall, m.Ground(0, 70, 70))
	require.Equal(t, entity.GroundEmpty, m.Ground(1, 10, 10))
}

func TestSetEntityPositionRefilesIndex(t *testing.T) {
	m := newTestMap(t)
	d := entity.NewDoor("d", 0, 100, 100, 16, 16, false)
	m.Add(d)
	m.NotifyMapStarted()

	m.SetEntityPosition(d, 400, 400)
	require.Empty(t, m.Query(geom.Rect(90, 90, 40, 40)))
	require.ElementsMatch(t, []entity.Entity{d}, m.Query(geom.Rect(390, 390, 40, 40)))
}

func TestRemoveEntitiesWithPrefix(t *testing.T) {
	m := newTestMap(t)
	m.Add(entity.NewNpc("wave_1", 0, 100, 100))
	m.Add(entity.NewNpc("wave_2", 0, 130, 100))
	m.Add(entity.NewNpc("keeper", 0, 160, 100))
	m.NotifyMapStarted()

	require.True(t, m.HasEntityWithPrefix("wave_"))
	m.RemoveEntitiesWithPrefix("wave_")
	require.False(t, m.HasEntityWithPrefix("wave_"))

	m.Update(time.Now())
	require.Len(t, m.EntitiesByType(entity.TypeNpc), 1)
	require.NotNil(t, m.Entity("keeper"))
}

func TestEnemyDeathFlushes(t *testing.T) {
	m := newTestMap(t)
	slime := entity.NewEnemy("slime", 0, 100, 100, 2)
	m.Add(slime)
	m.NotifyMapStarted()

	slime.Hurt(2)
	m.Update(time.Now()) // enemy schedules its own removal
	require.Nil(t, m.Entity("slime"))

	m.Update(time.Now()) // flush
	require.Equal(t, 1, m.EntityCount())
	require.Empty(t, m.EntitiesByType(entity.TypeEnemy))
}

func TestQuerySortedOrder(t *testing.T) {
	m := newTestMap(t)
	upper := entity.NewDoor("upper", 1, 100, 100, 16, 16, false)
	lowerA := entity.NewDoor("lower_a", 0, 104, 104, 16, 16, false)
	lowerB := entity.NewDoor("lower_b", 0, 108, 108, 16, 16, false)
	m.Add(upper)
	m.Add(lowerA)
	m.Add(lowerB)
	m.NotifyMapStarted()
	m.BringToFront(lowerA)

	got := m.QuerySorted(geom.Rect(95, 95, 40, 40))
	require.Equal(t, []entity.Entity{lowerB, lowerA, upper}, got)
}
