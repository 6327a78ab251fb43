package entity

import (
	"time"

	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

const npcSize = 16

// npc wander tuning
const (
	npcStepInterval = 150 * time.Millisecond
	npcStepsPerLeg  = 24 // steps walked before turning
)

var dirDX = [4]int32{1, 0, -1, 0}
var dirDY = [4]int32{0, -1, 0, 1}

// Npc is a scripted character that wanders the map one pixel at a time,
// turning when it runs into ground it cannot walk on.
type Npc struct {
	Base
	direction int32
	steps     int32
	lastStep  time.Time
}

// NewNpc builds an NPC at (x,y).
func NewNpc(name string, layer, x, y int32) *Npc {
	n := &Npc{
		Base: newBase(TypeNpc, name, layer, geom.Rect(x, y, npcSize, npcSize)),
	}
	n.SetDrawnInYOrder(true)
	return n
}

// Direction returns the facing direction (0=right 1=up 2=left 3=down).
func (n *Npc) Direction() int32 {
	return n.direction
}

func (n *Npc) Update(now time.Time) {
	if n.Suspended() {
		return
	}
	if now.Sub(n.lastStep) < npcStepInterval {
		return
	}
	n.lastStep = now

	m := n.Map()
	if m == nil {
		return
	}
	if n.steps >= npcStepsPerLeg {
		n.direction = (n.direction + 1) & 3
		n.steps = 0
	}
	box := n.BoundingBox()
	next := box.Translated(dirDX[n.direction], dirDY[n.direction])
	if !n.canStandOn(m, next) {
		n.direction = (n.direction + 1) & 3
		n.steps = 0
		return
	}
	n.SetXY(next.X, next.Y)
	m.NotifyBoundsChanged(n)
	n.steps++
}

// canStandOn checks the ground under the box's bottom corners. The
// bounds check comes first: the ground grid has none.
func (n *Npc) canStandOn(m Map, box geom.Rectangle) bool {
	size := m.Size()
	if box.X < 0 || box.Y < 0 || box.Right() > size.Width || box.Bottom() > size.Height {
		return false
	}
	layer := n.Layer()
	bottom := box.Bottom() - 1
	return m.Ground(layer, box.X, bottom).Traversable() &&
		m.Ground(layer, box.Right()-1, bottom).Traversable()
}

func (n *Npc) Draw(q *render.Queue) {
	n.drawSprite(q, "npc", n.direction)
}
