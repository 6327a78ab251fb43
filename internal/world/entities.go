package world

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/questforge/engine/internal/entity"
	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

// maxLayers bounds the number of independent z-stacks a map may have.
const maxLayers = 8

// MapState is the lifecycle phase of a map's entity set.
type MapState uint8

const (
	StateCreated MapState = iota
	StateStarted
	StateRunning
	StateSuspended
	StateFinished
)

var mapStateNames = [...]string{
	StateCreated:   "created",
	StateStarted:   "started",
	StateRunning:   "running",
	StateSuspended: "suspended",
	StateFinished:  "finished",
}

func (s MapState) String() string {
	if int(s) >= len(mapStateNames) {
		return fmt.Sprintf("MapState(%d)", uint8(s))
	}
	return mapStateNames[s]
}

// PatternSource resolves tile pattern ids, usually a data.Tileset.
type PatternSource interface {
	Pattern(id int32) *entity.TilePattern
}

// Entities owns everything placed on the current map: the canonical
// registry, the spatial index, the per-layer stacking ranks, ground
// grids, tile regions, and draw lists. It drives the per-frame update
// and draw and is the only mutation path for gameplay code, so the
// indexes are never observable in a half-updated state. Accessed only
// from the game loop goroutine, no locks.
type Entities struct {
	log        *zap.Logger
	size       geom.Size
	layerCount int32
	state      MapState

	hero   *entity.Hero
	camera *Camera

	reg     *registry
	grid    *GroundGrid
	regions []*nonAnimatedRegions
	tiles   [][]*entity.Tile // per layer, placement order
	index   *Quadtree
	zs      []*zCache

	drawnFirst  [][]entity.Entity // per layer, kept in stacking order
	drawnYOrder [][]entity.Entity // per layer, sorted by y at draw time

	defaultDestination *entity.Destination
	explicitDefault    bool
	crystalState       bool
}

// New builds the entity set of a map in the Created state. The hero is
// registered immediately under its reserved name; tiles and entities
// are added afterwards, and NotifyMapStarted seals the load.
func New(log *zap.Logger, size geom.Size, layerCount int32, hero *entity.Hero, viewport geom.Size) *Entities {
	if log == nil {
		log = zap.NewNop()
	}
	if size.IsFlat() {
		panic(fmt.Sprintf("invalid map size %dx%d", size.Width, size.Height))
	}
	if layerCount < 1 || layerCount > maxLayers {
		panic(fmt.Sprintf("invalid layer count %d", layerCount))
	}
	if hero == nil {
		panic("a map needs its hero")
	}

	m := &Entities{
		log:         log,
		size:        size,
		layerCount:  layerCount,
		hero:        hero,
		camera:      newCamera(viewport, size),
		grid:        newGroundGrid(size, layerCount),
		regions:     make([]*nonAnimatedRegions, layerCount),
		tiles:       make([][]*entity.Tile, layerCount),
		zs:          make([]*zCache, layerCount),
		drawnFirst:  make([][]entity.Entity, layerCount),
		drawnYOrder: make([][]entity.Entity, layerCount),
	}
	m.reg = newRegistry(layerCount)
	m.index = newQuadtree(geom.Rect(0, 0, size.Width, size.Height).Grown(quadtreeMargin), m.rankOf)
	for layer := int32(0); layer < layerCount; layer++ {
		m.regions[layer] = newNonAnimatedRegions(layer, size)
		m.zs[layer] = newZCache(layer, log)
	}

	// The hero arrives from the previous map; it restarts on layer 0
	// until the map data places it.
	hero.SetLayer(0)
	m.Add(hero)

	log.Debug("map entities created",
		zap.Int32("width", size.Width),
		zap.Int32("height", size.Height),
		zap.Int32("layers", layerCount))
	return m
}

// --- lifecycle ---

// State returns the current lifecycle state.
func (m *Entities) State() MapState {
	return m.state
}

// NotifyMapStarted seals the load: it derives every ground grid from
// the placed tiles, builds the non-animated region batches, populates
// the spatial index from the registered entities, and snaps the camera
// to the hero.
func (m *Entities) NotifyMapStarted() {
	m.checkNotFinished()
	if m.state != StateCreated {
		panic("map already started")
	}

	tileCount := 0
	for layer := int32(0); layer < m.layerCount; layer++ {
		for _, t := range m.tiles[layer] {
			m.grid.applyTile(t)
		}
		m.regions[layer].build(m.tiles[layer])
		tileCount += len(m.tiles[layer])
	}
	for _, e := range m.reg.all {
		m.index.Insert(e)
	}
	m.camera.CenterOn(m.hero.BoundingBox())
	m.state = StateStarted

	batches := 0
	for _, r := range m.regions {
		batches += r.batchCount()
	}
	m.log.Info("map started",
		zap.Int("entities", m.reg.liveCount()),
		zap.Int("tiles", tileCount),
		zap.Int("batches", batches))
}

// NotifyMapOpeningTransitionFinished hands control to the player and
// tells the entities that observe the transition.
func (m *Entities) NotifyMapOpeningTransitionFinished() {
	m.checkNotFinished()
	if m.state != StateStarted {
		panic(fmt.Sprintf("opening transition finished in state %v", m.state))
	}
	for _, e := range m.reg.all {
		if o, ok := e.(entity.OpeningTransitionObserver); ok {
			o.NotifyMapOpeningTransitionFinished()
		}
	}
	m.state = StateRunning
	m.log.Debug("opening transition finished")
}

// SetSuspended freezes or resumes game-time advancement. Drawing keeps
// working while suspended; nothing is deregistered.
func (m *Entities) SetSuspended(suspended bool) {
	m.checkNotFinished()
	if suspended {
		switch m.state {
		case StateCreated:
			panic("suspend before map start")
		case StateSuspended:
			return
		}
		m.state = StateSuspended
	} else {
		if m.state != StateSuspended {
			return
		}
		m.state = StateRunning
	}
	for _, e := range m.reg.all {
		e.SetSuspended(suspended)
	}
	m.log.Info("suspension changed", zap.Bool("suspended", suspended))
}

// NotifyTilesetChanged re-points every tile at the matching pattern of
// the new tileset and rebuilds the static batches. The new patterns
// must keep the old grounds and sizes; the ground grid stays valid.
func (m *Entities) NotifyTilesetChanged(patterns PatternSource) {
	m.checkNotFinished()
	for layer := int32(0); layer < m.layerCount; layer++ {
		for _, t := range m.tiles[layer] {
			t.SetPattern(m.matchingPattern(patterns, t.Pattern()))
		}
	}
	for _, layerList := range m.reg.typeBucket(entity.TypeDynamicTile) {
		for _, e := range layerList {
			dt := e.(*entity.DynamicTile)
			dt.SetPattern(m.matchingPattern(patterns, dt.Pattern()))
		}
	}
	if m.state != StateCreated {
		for layer := int32(0); layer < m.layerCount; layer++ {
			m.regions[layer].build(m.tiles[layer])
		}
	}
	m.log.Info("tileset changed")
}

func (m *Entities) matchingPattern(patterns PatternSource, old *entity.TilePattern) *entity.TilePattern {
	p := patterns.Pattern(old.ID)
	if p == nil {
		panic(fmt.Sprintf("tileset change: pattern %d missing", old.ID))
	}
	if p.Ground != old.Ground {
		panic(fmt.Sprintf("tileset change: pattern %d ground changed", old.ID))
	}
	if p.Size != old.Size {
		panic(fmt.Sprintf("tileset change: pattern %d size changed", old.ID))
	}
	return p
}

// NotifyMapFinished releases every entity. The instance is dead
// afterwards: any further operation panics.
func (m *Entities) NotifyMapFinished() {
	m.checkNotFinished()
	for _, e := range m.reg.all {
		e.SetMap(nil)
	}
	entities := m.reg.liveCount()
	m.reg = nil
	m.index = nil
	m.grid = nil
	m.regions = nil
	m.tiles = nil
	m.zs = nil
	m.drawnFirst = nil
	m.drawnYOrder = nil
	m.defaultDestination = nil
	m.state = StateFinished
	m.log.Info("map finished", zap.Int("entities", entities))
}

// --- per-frame drivers ---

// Update advances the map by one frame: pending removals flush first,
// so nothing removed is updated or drawn this frame, then every live
// enabled entity updates, then the crystal blocks synchronize and the
// camera follows the hero. A suspended map does nothing.
func (m *Entities) Update(now time.Time) {
	m.checkNotFinished()
	switch m.state {
	case StateCreated:
		panic("update before map start")
	case StateSuspended:
		return
	}

	if removed := m.flushRemovals(); removed > 0 {
		m.log.Debug("entities removed", zap.Int("count", removed))
	}
	for _, e := range m.reg.all {
		if e.BeingRemoved() || !e.Enabled() {
			continue
		}
		e.Update(now)
	}
	m.syncCrystalBlocks()
	m.camera.CenterOn(m.hero.BoundingBox())
}

// Draw emits one frame of ordered draw commands: per layer low to high,
// the static batches, the animated tiles, the entities stacked in
// insertion order, then the y-ordered entities sorted by the bottom of
// their box with the stacking rank as tie-break. Works while suspended.
func (m *Entities) Draw(q *render.Queue) {
	m.checkNotFinished()
	if m.state == StateCreated {
		panic("draw before map start")
	}
	camera := m.camera.VisibleRect()
	for layer := int32(0); layer < m.layerCount; layer++ {
		m.regions[layer].draw(q, camera)
		for _, t := range m.regions[layer].animatedTiles() {
			if t.BoundingBox().Overlaps(camera) {
				t.Draw(q)
			}
		}
		for _, e := range m.drawnFirst[layer] {
			m.drawEntity(q, e, camera)
		}
		m.sortYOrder(layer)
		for _, e := range m.drawnYOrder[layer] {
			m.drawEntity(q, e, camera)
		}
	}
}

func (m *Entities) drawEntity(q *render.Queue, e entity.Entity, camera geom.Rectangle) {
	if e.BeingRemoved() || !e.Enabled() || !e.BoundingBox().Overlaps(camera) {
		return
	}
	e.Draw(q)
}

func (m *Entities) sortYOrder(layer int32) {
	list := m.drawnYOrder[layer]
	ranks := m.zs[layer]
	sort.Slice(list, func(i, j int) bool {
		bi := list[i].BoundingBox().Bottom()
		bj := list[j].BoundingBox().Bottom()
		if bi != bj {
			return bi < bj
		}
		zi, _ := ranks.zOf(list[i])
		zj, _ := ranks.zOf(list[j])
		return zi < zj
	})
}

// flushRemovals is the single flush point: every index membership of
// the queued entities is dropped here and nowhere else.
func (m *Entities) flushRemovals() int {
	return m.reg.flush(func(e entity.Entity) {
		m.index.Remove(e)
		layer := e.Layer()
		m.zs[layer].remove(e)
		if e.DrawnInYOrder() {
			m.drawnYOrder[layer] = removeOrdered(m.drawnYOrder[layer], e)
		} else {
			m.drawnFirst[layer] = removeOrdered(m.drawnFirst[layer], e)
		}
		if d, ok := e.(*entity.Destination); ok && d == m.defaultDestination {
			m.defaultDestination = nil
		}
		e.SetMap(nil)
	})
}

// syncCrystalBlocks raises and lowers every crystal block to match the
// map crystal state. Running after the entity updates means a state
// flip mid-frame reaches all blocks at once.
func (m *Entities) syncCrystalBlocks() {
	for _, layerList := range m.reg.typeBucket(entity.TypeCrystalBlock) {
		for _, e := range layerList {
			if e.BeingRemoved() {
				continue
			}
			e.(*entity.CrystalBlock).SyncWithState(m.crystalState)
		}
	}
}

// --- mutation API ---

// Add registers a non-tile entity on the map. Duplicate non-empty
// names and invalid layers are fatal. Before the map starts the
// spatial index is left alone; NotifyMapStarted populates it in bulk.
func (m *Entities) Add(e entity.Entity) {
	m.checkNotFinished()
	if e.Type() == entity.TypeTile {
		panic("tiles go through AddTile")
	}
	layer := e.Layer()
	m.validateLayer(layer)

	m.reg.add(e)
	m.zs[layer].add(e)
	if e.DrawnInYOrder() {
		m.drawnYOrder[layer] = append(m.drawnYOrder[layer], e)
	} else {
		m.drawnFirst[layer] = append(m.drawnFirst[layer], e)
	}
	if m.state != StateCreated {
		m.index.Insert(e)
	}
	e.SetMap(m)
	e.SetSuspended(m.state == StateSuspended)

	if d, ok := e.(*entity.Destination); ok {
		m.trackDestination(d)
	}
	m.log.Debug("entity added",
		zap.Stringer("type", e.Type()),
		zap.String("name", e.Name()),
		zap.Int32("layer", layer))
}

// AddTile places a tile. Tiles exist only from load time: placing one
// after the map has started is fatal.
func (m *Entities) AddTile(t *entity.Tile) {
	m.checkNotFinished()
	if m.state != StateCreated {
		panic("tiles can only be placed before the map starts")
	}
	layer := t.Layer()
	m.validateLayer(layer)
	m.tiles[layer] = append(m.tiles[layer], t)
	t.SetMap(m)
}

// ScheduleRemoval marks an entity for removal at the next flush point.
// The entity stays owned until then but disappears from every query
// surface immediately. Entities not on this map are a no-op; removing
// the hero is fatal.
func (m *Entities) ScheduleRemoval(e entity.Entity) {
	m.checkNotFinished()
	if e == m.hero {
		panic("the hero cannot be removed")
	}
	if e.BeingRemoved() {
		return
	}
	layer := e.Layer()
	if layer < 0 || layer >= m.layerCount {
		return
	}
	if _, ranked := m.zs[layer].zOf(e); !ranked {
		return
	}
	m.reg.scheduleRemoval(e)
	m.log.Debug("entity removal scheduled",
		zap.Stringer("type", e.Type()),
		zap.String("name", e.Name()))
}

// RemoveEntity schedules the named entity for removal. Unknown names
// are a no-op.
func (m *Entities) RemoveEntity(name string) {
	m.checkNotFinished()
	if e := m.reg.entity(name); e != nil {
		m.ScheduleRemoval(e)
	}
}

// RemoveEntitiesWithPrefix schedules every entity whose name starts
// with prefix.
func (m *Entities) RemoveEntitiesWithPrefix(prefix string) {
	m.checkNotFinished()
	for _, e := range m.reg.entitiesWithPrefix(prefix) {
		m.ScheduleRemoval(e)
	}
}

// SetEntityLayer moves an entity to another layer, re-filing the type
// index, the stacking rank (the entity arrives on top of the new
// layer), and the draw lists in one step.
func (m *Entities) SetEntityLayer(e entity.Entity, layer int32) {
	m.checkNotFinished()
	m.validateLayer(layer)
	old := e.Layer()
	if old == layer {
		return
	}
	if _, ranked := m.zs[old].zOf(e); !ranked {
		panic("SetEntityLayer: entity not on this map")
	}

	m.reg.moveTypeBucket(e, old, layer)
	m.zs[old].remove(e)
	if e.DrawnInYOrder() {
		m.drawnYOrder[old] = removeOrdered(m.drawnYOrder[old], e)
	} else {
		m.drawnFirst[old] = removeOrdered(m.drawnFirst[old], e)
	}
	e.SetLayer(layer)
	m.zs[layer].add(e)
	if e.DrawnInYOrder() {
		m.drawnYOrder[layer] = append(m.drawnYOrder[layer], e)
	} else {
		m.drawnFirst[layer] = append(m.drawnFirst[layer], e)
	}
}

// SetEntityDrawnInYOrder switches an entity between the stacking-order
// and y-order draw lists of its layer. The stacking rank is kept.
func (m *Entities) SetEntityDrawnInYOrder(e entity.Entity, yOrder bool) {
	m.checkNotFinished()
	if e.DrawnInYOrder() == yOrder {
		return
	}
	layer := e.Layer()
	if _, ranked := m.zs[layer].zOf(e); !ranked {
		panic("SetEntityDrawnInYOrder: entity not on this map")
	}
	if yOrder {
		m.drawnFirst[layer] = removeOrdered(m.drawnFirst[layer], e)
		e.SetDrawnInYOrder(true)
		m.drawnYOrder[layer] = append(m.drawnYOrder[layer], e)
	} else {
		m.drawnYOrder[layer] = removeOrdered(m.drawnYOrder[layer], e)
		e.SetDrawnInYOrder(false)
		m.insertDrawnFirstSorted(e)
	}
}

// BringToFront re-stacks an entity above everything on its layer.
func (m *Entities) BringToFront(e entity.Entity) {
	m.checkNotFinished()
	layer := e.Layer()
	m.zs[layer].bringToFront(e)
	if !e.DrawnInYOrder() {
		m.drawnFirst[layer] = moveToEnd(m.drawnFirst[layer], e)
	}
}

// BringToBack re-stacks an entity below everything on its layer.
func (m *Entities) BringToBack(e entity.Entity) {
	m.checkNotFinished()
	layer := e.Layer()
	m.zs[layer].bringToBack(e)
	if !e.DrawnInYOrder() {
		m.drawnFirst[layer] = moveToFront(m.drawnFirst[layer], e)
	}
}

// SetEntityPosition moves an entity and re-files the spatial index.
func (m *Entities) SetEntityPosition(e entity.Entity, x, y int32) {
	m.checkNotFinished()
	e.SetXY(x, y)
	m.NotifyBoundsChanged(e)
}

// NotifyBoundsChanged re-files an entity whose bounding box moved.
// Before the map starts the index is empty and there is nothing to do.
func (m *Entities) NotifyBoundsChanged(e entity.Entity) {
	m.checkNotFinished()
	if m.state == StateCreated {
		return
	}
	m.index.NotifyBoundsChanged(e)
}

// ToggleCrystalState flips the map-wide crystal switch state. The
// crystal blocks synchronize at the end of the running update.
func (m *Entities) ToggleCrystalState() {
	m.checkNotFinished()
	m.crystalState = !m.crystalState
	m.log.Debug("crystal state toggled", zap.Bool("state", m.crystalState))
}

// --- read API ---

// Size returns the map dimensions in pixels.
func (m *Entities) Size() geom.Size {
	return m.size
}

// Hero returns the singleton hero.
func (m *Entities) Hero() *entity.Hero {
	return m.hero
}

// Camera returns the camera bound to this map.
func (m *Entities) Camera() *Camera {
	return m.camera
}

// DefaultDestination returns the map's default arrival point, or nil.
func (m *Entities) DefaultDestination() *entity.Destination {
	m.checkNotFinished()
	return m.defaultDestination
}

// CrystalState returns the map-wide crystal switch state.
func (m *Entities) CrystalState() bool {
	return m.crystalState
}

// Ground returns the terrain of the pixel (x,y) on a layer. The
// coordinates must be inside the map and the layer valid; there is no
// bounds check.
func (m *Entities) Ground(layer, x, y int32) entity.Ground {
	return m.grid.Ground(layer, x, y)
}

// Entity returns the named entity, or nil when it is absent or pending
// removal.
func (m *Entities) Entity(name string) entity.Entity {
	m.checkNotFinished()
	return m.reg.entity(name)
}

// EntitiesWithPrefix returns the live entities whose name starts with
// prefix, in insertion order.
func (m *Entities) EntitiesWithPrefix(prefix string) []entity.Entity {
	m.checkNotFinished()
	return m.reg.entitiesWithPrefix(prefix)
}

// HasEntityWithPrefix reports whether any live entity's name starts
// with prefix.
func (m *Entities) HasEntityWithPrefix(prefix string) bool {
	m.checkNotFinished()
	return m.reg.hasEntityWithPrefix(prefix)
}

// EntitiesByType returns the live entities of a type across all layers.
func (m *Entities) EntitiesByType(t entity.Type) []entity.Entity {
	m.checkNotFinished()
	return m.reg.entitiesByType(t)
}

// EntitiesByTypeOnLayer returns the live entities of a type on one
// layer.
func (m *Entities) EntitiesByTypeOnLayer(t entity.Type, layer int32) []entity.Entity {
	m.checkNotFinished()
	m.validateLayer(layer)
	return m.reg.entitiesByTypeOnLayer(t, layer)
}

// EntityCount returns the number of live entities.
func (m *Entities) EntityCount() int {
	m.checkNotFinished()
	return m.reg.liveCount()
}

// Query returns every live entity whose bounding box intersects rect,
// unordered.
func (m *Entities) Query(rect geom.Rectangle) []entity.Entity {
	m.checkNotFinished()
	return m.index.Query(rect)
}

// QuerySorted returns the entities intersecting rect ordered by layer,
// then stacking rank.
func (m *Entities) QuerySorted(rect geom.Rectangle) []entity.Entity {
	m.checkNotFinished()
	return m.index.QuerySorted(rect)
}

// RelativeZ returns an entity's stacking rank on its layer. Comparing
// two entities' values gives their relative draw order. Entities not on
// the map rank zero.
func (m *Entities) RelativeZ(e entity.Entity) int32 {
	m.checkNotFinished()
	layer := e.Layer()
	if layer < 0 || layer >= m.layerCount {
		return 0
	}
	z, _ := m.zs[layer].zOf(e)
	return z
}

// OverlapsRaisedBlocks reports whether rect touches a raised crystal
// block on the layer, for movement checks.
func (m *Entities) OverlapsRaisedBlocks(layer int32, rect geom.Rectangle) bool {
	m.checkNotFinished()
	m.validateLayer(layer)
	for _, e := range m.reg.typeBucket(entity.TypeCrystalBlock)[layer] {
		if e.BeingRemoved() {
			continue
		}
		b := e.(*entity.CrystalBlock)
		if b.Raised() && b.BoundingBox().Overlaps(rect) {
			return true
		}
	}
	return false
}

// --- internals ---

func (m *Entities) checkNotFinished() {
	if m.state == StateFinished {
		panic("operation on a finished map")
	}
}

func (m *Entities) validateLayer(layer int32) {
	if layer < 0 || layer >= m.layerCount {
		panic(fmt.Sprintf("invalid layer %d (map has %d)", layer, m.layerCount))
	}
}

func (m *Entities) rankOf(e entity.Entity) int32 {
	z, _ := m.zs[e.Layer()].zOf(e)
	return z
}

func (m *Entities) trackDestination(d *entity.Destination) {
	if d.Default() {
		if m.explicitDefault {
			panic(fmt.Sprintf("two default destinations: %q and %q",
				m.defaultDestination.Name(), d.Name()))
		}
		m.explicitDefault = true
		m.defaultDestination = d
		return
	}
	if m.defaultDestination == nil {
		m.defaultDestination = d
	}
}

// insertDrawnFirstSorted files an entity into its layer's stacking
// list at the position its rank dictates. Used when an entity leaves
// the y-order list; plain adds always append because a fresh rank is
// the layer's highest.
func (m *Entities) insertDrawnFirstSorted(e entity.Entity) {
	layer := e.Layer()
	list := m.drawnFirst[layer]
	ranks := m.zs[layer]
	z, _ := ranks.zOf(e)
	i := sort.Search(len(list), func(i int) bool {
		zi, _ := ranks.zOf(list[i])
		return zi > z
	})
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = e
	m.drawnFirst[layer] = list
}

func moveToEnd(list []entity.Entity, e entity.Entity) []entity.Entity {
	list = removeOrdered(list, e)
	return append(list, e)
}

func moveToFront(list []entity.Entity, e entity.Entity) []entity.Entity {
	list = removeOrdered(list, e)
	list = append(list, nil)
	copy(list[1:], list)
	list[0] = e
	return list
}
