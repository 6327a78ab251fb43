package world

import (
	"fmt"
	"strings"

	"github.com/questforge/engine/internal/entity"
)

// registry is the canonical record of the entities on the map: the
// all-entities list in insertion order, the name map, the type index
// per layer, and the pending-removal queue. Accessed only from the game
// loop goroutine, no locks.
type registry struct {
	layerCount int32
	all        []entity.Entity
	byName     map[string]entity.Entity
	byType     map[entity.Type][][]entity.Entity // per layer, insertion order
	toRemove   []entity.Entity
}

func newRegistry(layerCount int32) *registry {
	return &registry{
		layerCount: layerCount,
		byName:     make(map[string]entity.Entity),
		byType:     make(map[entity.Type][][]entity.Entity),
	}
}

// add registers an entity. A non-empty name colliding with a live or
// still-pending entity is malformed map data and fatal.
func (r *registry) add(e entity.Entity) {
	if name := e.Name(); name != "" {
		if _, exists := r.byName[name]; exists {
			panic(fmt.Sprintf("duplicate entity name %q", name))
		}
		r.byName[name] = e
	}
	r.all = append(r.all, e)
	bucket := r.typeBucket(e.Type())
	bucket[e.Layer()] = append(bucket[e.Layer()], e)
}

// scheduleRemoval marks an entity and queues it for the next flush.
// Already-marked entities are a no-op.
func (r *registry) scheduleRemoval(e entity.Entity) {
	if e.BeingRemoved() {
		return
	}
	e.MarkBeingRemoved()
	r.toRemove = append(r.toRemove, e)
}

// flush drops every queued entity from the registry, calling drop for
// each so the owner can unfile it from the other indexes. Returns the
// number of entities dropped.
func (r *registry) flush(drop func(e entity.Entity)) int {
	n := len(r.toRemove)
	for _, e := range r.toRemove {
		drop(e)
		if name := e.Name(); name != "" && r.byName[name] == e {
			delete(r.byName, name)
		}
		r.all = removeOrdered(r.all, e)
		bucket := r.typeBucket(e.Type())
		bucket[e.Layer()] = removeOrdered(bucket[e.Layer()], e)
	}
	r.toRemove = r.toRemove[:0]
	return n
}

// entity returns the named entity, or nil when it is absent or pending
// removal.
func (r *registry) entity(name string) entity.Entity {
	e := r.byName[name]
	if e == nil || e.BeingRemoved() {
		return nil
	}
	return e
}

// entitiesWithPrefix returns the live entities whose name starts with
// prefix, in insertion order. An empty prefix matches every entity.
func (r *registry) entitiesWithPrefix(prefix string) []entity.Entity {
	var out []entity.Entity
	for _, e := range r.all {
		if e.BeingRemoved() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			out = append(out, e)
		}
	}
	return out
}

// hasEntityWithPrefix reports whether any live entity's name starts
// with prefix.
func (r *registry) hasEntityWithPrefix(prefix string) bool {
	for _, e := range r.all {
		if !e.BeingRemoved() && strings.HasPrefix(e.Name(), prefix) {
			return true
		}
	}
	return false
}

// entitiesByType returns the live entities of a type across all layers,
// layer by layer in insertion order.
func (r *registry) entitiesByType(t entity.Type) []entity.Entity {
	var out []entity.Entity
	for _, layer := range r.typeBucket(t) {
		for _, e := range layer {
			if !e.BeingRemoved() {
				out = append(out, e)
			}
		}
	}
	return out
}

// entitiesByTypeOnLayer returns the live entities of a type on one
// layer, in insertion order.
func (r *registry) entitiesByTypeOnLayer(t entity.Type, layer int32) []entity.Entity {
	var out []entity.Entity
	for _, e := range r.typeBucket(t)[layer] {
		if !e.BeingRemoved() {
			out = append(out, e)
		}
	}
	return out
}

// moveTypeBucket re-files an entity between layer buckets of its type.
// Called before the entity's own layer field changes.
func (r *registry) moveTypeBucket(e entity.Entity, from, to int32) {
	bucket := r.typeBucket(e.Type())
	bucket[from] = removeOrdered(bucket[from], e)
	bucket[to] = append(bucket[to], e)
}

// liveCount returns the number of registered entities not pending
// removal.
func (r *registry) liveCount() int {
	n := 0
	for _, e := range r.all {
		if !e.BeingRemoved() {
			n++
		}
	}
	return n
}

// typeBucket returns the per-layer slices for a type, creating them on
// first use.
func (r *registry) typeBucket(t entity.Type) [][]entity.Entity {
	bucket, ok := r.byType[t]
	if !ok {
		bucket = make([][]entity.Entity, r.layerCount)
		r.byType[t] = bucket
	}
	return bucket
}

// removeOrdered removes the first occurrence of e, preserving order.
// Absent entities leave the slice unchanged.
func removeOrdered(list []entity.Entity, e entity.Entity) []entity.Entity {
	for i, x := range list {
		if x == e {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
