package entity

import (
	"time"

	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

const crystalSize = 16

// crystalCooldown keeps one hit from toggling the state twice.
const crystalCooldown = 500 * time.Millisecond

// Crystal is the switch that flips the map-wide crystal state when
// activated, raising one phase of crystal blocks and lowering the
// other.
type Crystal struct {
	Base
	lastActivation time.Time
}

// NewCrystal builds a crystal at (x,y).
func NewCrystal(name string, layer, x, y int32) *Crystal {
	return &Crystal{
		Base: newBase(TypeCrystal, name, layer, geom.Rect(x, y, crystalSize, crystalSize)),
	}
}

// Activate flips the map crystal state unless the crystal was hit a
// moment ago.
func (c *Crystal) Activate(now time.Time) {
	m := c.Map()
	if m == nil {
		return
	}
	if !c.lastActivation.IsZero() && now.Sub(c.lastActivation) < crystalCooldown {
		return
	}
	c.lastActivation = now
	m.ToggleCrystalState()
}

func (c *Crystal) Draw(q *render.Queue) {
	frame := int32(0)
	if m := c.Map(); m != nil && m.CrystalState() {
		frame = 1
	}
	c.drawSprite(q, "crystal", frame)
}

// CrystalBlockPhase selects which crystal state raises a block.
type CrystalBlockPhase uint8

const (
	// CrystalBlockOrange blocks are raised while the state is false.
	CrystalBlockOrange CrystalBlockPhase = iota
	// CrystalBlockBlue blocks are raised while the state is true.
	CrystalBlockBlue
)

// LookupCrystalBlockPhase resolves a phase name, reporting whether it
// exists.
func LookupCrystalBlockPhase(name string) (CrystalBlockPhase, bool) {
	switch name {
	case "orange":
		return CrystalBlockOrange, true
	case "blue":
		return CrystalBlockBlue, true
	}
	return 0, false
}

// CrystalBlockPhaseByName resolves a phase name from map data. Unknown
// names indicate malformed data and panic.
func CrystalBlockPhaseByName(name string) CrystalBlockPhase {
	p, ok := LookupCrystalBlockPhase(name)
	if !ok {
		panic("unknown crystal block phase \"" + name + "\"")
	}
	return p
}

// CrystalBlock is a block raised or lowered by the map crystal state.
// The map synchronizes every block after each update pass, so a state
// flip mid-frame takes effect for all blocks at once.
type CrystalBlock struct {
	Base
	phase  CrystalBlockPhase
	raised bool
}

// NewCrystalBlock builds a block at (x,y) covering the given size.
func NewCrystalBlock(name string, phase CrystalBlockPhase, layer, x, y, width, height int32) *CrystalBlock {
	if width <= 0 {
		width = crystalSize
	}
	if height <= 0 {
		height = crystalSize
	}
	b := &CrystalBlock{
		Base:  newBase(TypeCrystalBlock, name, layer, geom.Rect(x, y, width, height)),
		phase: phase,
	}
	b.raised = phase == CrystalBlockOrange
	return b
}

// Phase returns the block's phase.
func (b *CrystalBlock) Phase() CrystalBlockPhase {
	return b.phase
}

// Raised reports whether the block currently blocks movement.
func (b *CrystalBlock) Raised() bool {
	return b.raised
}

// SyncWithState raises or lowers the block to match the map crystal
// state.
func (b *CrystalBlock) SyncWithState(state bool) {
	b.raised = (b.phase == CrystalBlockBlue) == state
}

func (b *CrystalBlock) Draw(q *render.Queue) {
	frame := int32(0)
	if b.raised {
		frame = 1
	}
	b.drawSprite(q, "crystal_block", frame)
}
