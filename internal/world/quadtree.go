package world

import (
	"sort"

	"github.com/questforge/engine/internal/entity"
	"github.com/questforge/engine/internal/geom"
)

// quadtree tuning
const (
	quadtreeMaxItems = 8  // split a node above this many items
	quadtreeMinItems = 4  // collapse a subtree at or below this many
	quadtreeMaxDepth = 6  // levels below the root
	quadtreeMargin   = 64 // pixels of slack around the map
)

type quadItem struct {
	e   entity.Entity
	box geom.Rectangle
}

type quadNode struct {
	bounds   geom.Rectangle
	depth    int32
	parent   *quadNode
	children *[4]quadNode // nil for leaves
	items    []quadItem   // items filed at this node
	count    int32        // items in this node and below
}

// Quadtree indexes the non-tile entities of the map by bounding box.
// One tree covers all layers. An entity is filed at the deepest node
// whose bounds fully contain its box; a box outside the tree space goes
// to a side list that queries still consult. Entities marked for
// removal stay filed until the flush drops them but are excluded from
// every query result. Accessed only from the game loop goroutine, no
// locks.
type Quadtree struct {
	space   geom.Rectangle
	root    quadNode
	where   map[entity.Entity]*quadNode
	outside map[entity.Entity]geom.Rectangle
	rank    func(e entity.Entity) int32 // stacking rank within the entity's layer
}

func newQuadtree(space geom.Rectangle, rank func(e entity.Entity) int32) *Quadtree {
	return &Quadtree{
		space:   space,
		root:    quadNode{bounds: space},
		where:   make(map[entity.Entity]*quadNode),
		outside: make(map[entity.Entity]geom.Rectangle),
		rank:    rank,
	}
}

// Insert files an entity at its current bounding box. Inserting an
// already-filed entity is a no-op.
func (q *Quadtree) Insert(e entity.Entity) {
	if _, ok := q.where[e]; ok {
		return
	}
	if _, ok := q.outside[e]; ok {
		return
	}
	box := e.BoundingBox()
	if !q.space.ContainsRect(box) {
		q.outside[e] = box
		return
	}
	q.insertItem(quadItem{e: e, box: box})
}

func (q *Quadtree) insertItem(it quadItem) {
	n := &q.root
	for {
		n.count++
		if n.children == nil {
			break
		}
		child := n.childContaining(it.box)
		if child == nil {
			// straddles two or more children, stays here
			break
		}
		n = child
	}
	n.items = append(n.items, it)
	q.where[it.e] = n
	q.maybeSplit(n)
}

// Remove unfiles an entity. Removing an absent entity is a no-op.
func (q *Quadtree) Remove(e entity.Entity) {
	if _, ok := q.outside[e]; ok {
		delete(q.outside, e)
		return
	}
	n, ok := q.where[e]
	if !ok {
		return
	}
	delete(q.where, e)
	for i := range n.items {
		if n.items[i].e == e {
			last := len(n.items) - 1
			n.items[i] = n.items[last]
			n.items[last] = quadItem{}
			n.items = n.items[:last]
			break
		}
	}
	for a := n; a != nil; a = a.parent {
		a.count--
	}
	q.maybeCollapse(n)
}

// NotifyBoundsChanged re-files an entity whose bounding box moved,
// preserving identity. An unfiled entity is inserted.
func (q *Quadtree) NotifyBoundsChanged(e entity.Entity) {
	box := e.BoundingBox()
	if _, ok := q.outside[e]; ok {
		if !q.space.ContainsRect(box) {
			q.outside[e] = box
			return
		}
		delete(q.outside, e)
		q.insertItem(quadItem{e: e, box: box})
		return
	}
	n, ok := q.where[e]
	if !ok {
		q.Insert(e)
		return
	}
	// Fast path: the box still files to the same node, only the stored
	// rectangle needs refreshing. This is the common case for entities
	// that move a pixel or two per frame.
	if n.bounds.ContainsRect(box) && (n.children == nil || n.childContaining(box) == nil) {
		for i := range n.items {
			if n.items[i].e == e {
				n.items[i].box = box
				return
			}
		}
	}
	q.Remove(e)
	if !q.space.ContainsRect(box) {
		q.outside[e] = box
		return
	}
	q.insertItem(quadItem{e: e, box: box})
}

// Query returns every entity whose box intersects rect, unordered.
func (q *Quadtree) Query(rect geom.Rectangle) []entity.Entity {
	return q.QueryAppend(rect, nil)
}

// QueryAppend appends the entities intersecting rect to buf and returns
// it, letting callers reuse one allocation across frames.
func (q *Quadtree) QueryAppend(rect geom.Rectangle, buf []entity.Entity) []entity.Entity {
	buf = queryNode(&q.root, rect, buf)
	for e, box := range q.outside {
		if box.Overlaps(rect) && !e.BeingRemoved() {
			buf = append(buf, e)
		}
	}
	return buf
}

// QuerySorted returns the entities intersecting rect ordered by layer,
// then stacking rank.
func (q *Quadtree) QuerySorted(rect geom.Rectangle) []entity.Entity {
	out := q.QueryAppend(rect, nil)
	sort.Slice(out, func(i, j int) bool {
		li, lj := out[i].Layer(), out[j].Layer()
		if li != lj {
			return li < lj
		}
		return q.rank(out[i]) < q.rank(out[j])
	})
	return out
}

// Count returns the number of filed entities, including those outside
// the tree space.
func (q *Quadtree) Count() int {
	return len(q.where) + len(q.outside)
}

func queryNode(n *quadNode, rect geom.Rectangle, buf []entity.Entity) []entity.Entity {
	if n.count == 0 || !n.bounds.Overlaps(rect) {
		return buf
	}
	for i := range n.items {
		it := &n.items[i]
		if it.box.Overlaps(rect) && !it.e.BeingRemoved() {
			buf = append(buf, it.e)
		}
	}
	if n.children != nil {
		for i := range n.children {
			buf = queryNode(&n.children[i], rect, buf)
		}
	}
	return buf
}

func (n *quadNode) childContaining(box geom.Rectangle) *quadNode {
	for i := range n.children {
		if n.children[i].bounds.ContainsRect(box) {
			return &n.children[i]
		}
	}
	return nil
}

func (q *Quadtree) maybeSplit(n *quadNode) {
	if n.children != nil || n.depth >= quadtreeMaxDepth || len(n.items) <= quadtreeMaxItems {
		return
	}
	hw := n.bounds.Width / 2
	hh := n.bounds.Height / 2
	if hw < 1 || hh < 1 {
		return
	}
	n.children = &[4]quadNode{
		{bounds: geom.Rect(n.bounds.X, n.bounds.Y, hw, hh)},
		{bounds: geom.Rect(n.bounds.X+hw, n.bounds.Y, n.bounds.Width-hw, hh)},
		{bounds: geom.Rect(n.bounds.X, n.bounds.Y+hh, hw, n.bounds.Height-hh)},
		{bounds: geom.Rect(n.bounds.X+hw, n.bounds.Y+hh, n.bounds.Width-hw, n.bounds.Height-hh)},
	}
	for i := range n.children {
		n.children[i].depth = n.depth + 1
		n.children[i].parent = n
	}
	// Items fully inside a child sink down; straddlers stay here.
	kept := n.items[:0]
	for _, it := range n.items {
		if c := n.childContaining(it.box); c != nil {
			c.items = append(c.items, it)
			c.count++
			q.where[it.e] = c
		} else {
			kept = append(kept, it)
		}
	}
	n.items = kept
	for i := range n.children {
		q.maybeSplit(&n.children[i])
	}
}

// maybeCollapse merges the highest underpopulated ancestor of n back
// into a single node, so the tree shrinks as entities leave.
func (q *Quadtree) maybeCollapse(n *quadNode) {
	var target *quadNode
	for a := n; a != nil; a = a.parent {
		if a.children != nil && a.count <= quadtreeMinItems {
			target = a
		}
	}
	if target == nil {
		return
	}
	var gathered []quadItem
	gatherItems(target, &gathered)
	target.children = nil
	target.items = gathered
	for _, it := range gathered {
		q.where[it.e] = target
	}
}

func gatherItems(n *quadNode, into *[]quadItem) {
	*into = append(*into, n.items...)
	if n.children != nil {
		for i := range n.children {
			gatherItems(&n.children[i], into)
		}
	}
}
