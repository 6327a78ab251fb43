package entity

import (
	"time"

	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

// Map is the surface an entity sees of the map that owns it. It is set
// on the entity when it is added to a map and cleared when the entity is
// dropped. All calls complete synchronously: an entity mutating the map
// from its own Update never observes a half-updated index.
type Map interface {
	// Size returns the map dimensions in pixels.
	Size() geom.Size
	// Ground returns the terrain of the pixel (x,y) on a layer. The
	// coordinates must be inside the map and the layer valid; there is
	// no bounds check.
	Ground(layer, x, y int32) Ground
	// ScheduleRemoval marks an entity for removal at the next flush
	// point. Safe to call for oneself from Update.
	ScheduleRemoval(e Entity)
	// NotifyBoundsChanged re-files an entity whose bounding box moved.
	NotifyBoundsChanged(e Entity)
	// CrystalState returns the map-wide crystal switch state.
	CrystalState() bool
	// ToggleCrystalState flips the map-wide crystal switch state.
	ToggleCrystalState()
}

// Entity is one live object placed on the map. Concrete kinds embed
// Base and override Update and Draw as needed.
type Entity interface {
	Type() Type
	Name() string
	SetName(name string)
	Layer() int32
	SetLayer(layer int32)
	BoundingBox() geom.Rectangle
	SetBoundingBox(box geom.Rectangle)
	SetXY(x, y int32)
	DrawnInYOrder() bool
	SetDrawnInYOrder(yOrder bool)
	Enabled() bool
	SetEnabled(enabled bool)
	Suspended() bool
	SetSuspended(suspended bool)
	BeingRemoved() bool
	MarkBeingRemoved()
	Map() Map
	SetMap(m Map)

	// Update advances the entity's own logic by one frame.
	Update(now time.Time)
	// Draw emits the entity's draw commands for this frame.
	Draw(q *render.Queue)
}

// OpeningTransitionObserver is implemented by entities that react to the
// end of the map's opening transition.
type OpeningTransitionObserver interface {
	NotifyMapOpeningTransitionFinished()
}

// Base carries the placement state shared by every entity kind.
// Accessed only from the game loop goroutine, no locks.
type Base struct {
	typ          Type
	name         string
	layer        int32
	box          geom.Rectangle
	yOrder       bool
	enabled      bool
	suspended    bool
	beingRemoved bool
	m            Map
}

func newBase(typ Type, name string, layer int32, box geom.Rectangle) Base {
	return Base{typ: typ, name: name, layer: layer, box: box, enabled: true}
}

func (b *Base) Type() Type { return b.typ }

func (b *Base) Name() string { return b.name }

func (b *Base) SetName(name string) { b.name = name }

func (b *Base) Layer() int32 { return b.layer }

// SetLayer records the new layer. Callers outside the owning map go
// through the map's SetEntityLayer so every index is re-filed.
func (b *Base) SetLayer(layer int32) { b.layer = layer }

func (b *Base) BoundingBox() geom.Rectangle { return b.box }

func (b *Base) SetBoundingBox(box geom.Rectangle) { b.box = box }

// SetXY moves the bounding box to (x,y) without re-filing the spatial
// index. Movers notify the map afterwards.
func (b *Base) SetXY(x, y int32) {
	b.box.X = x
	b.box.Y = y
}

func (b *Base) DrawnInYOrder() bool { return b.yOrder }

// SetDrawnInYOrder records the draw mode. Callers outside the owning map
// go through the map's SetEntityDrawnInYOrder so the draw lists follow.
func (b *Base) SetDrawnInYOrder(yOrder bool) { b.yOrder = yOrder }

func (b *Base) Enabled() bool { return b.enabled }

func (b *Base) SetEnabled(enabled bool) { b.enabled = enabled }

func (b *Base) Suspended() bool { return b.suspended }

func (b *Base) SetSuspended(suspended bool) { b.suspended = suspended }

func (b *Base) BeingRemoved() bool { return b.beingRemoved }

// MarkBeingRemoved flags the entity as pending removal. Every query
// surface checks this flag before returning an entity.
func (b *Base) MarkBeingRemoved() { b.beingRemoved = true }

func (b *Base) Map() Map { return b.m }

func (b *Base) SetMap(m Map) { b.m = m }

// Update is a no-op; kinds with per-frame logic override it.
func (b *Base) Update(now time.Time) {}

// Draw is a no-op; visible kinds override it.
func (b *Base) Draw(q *render.Queue) {}

// drawSprite emits one sprite frame covering the bounding box.
func (b *Base) drawSprite(q *render.Queue, name string, frame int32) {
	q.PushSprite(b.layer, render.SpriteRef{Name: name, Frame: frame, Dst: b.box})
}
