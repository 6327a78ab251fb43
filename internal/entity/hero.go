package entity

import (
	"time"

	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

// HeroName is the reserved registry name of the hero.
const HeroName = "hero"

const heroSize = 16

// Hero is the player-controlled entity. One per map, bound at map
// construction, registered under HeroName, and never removable. The
// hero survives map changes, which is why it is built standalone and
// handed to each map in turn.
type Hero struct {
	Base
	abilities [abilityCount]int32
	direction int32 // 0=right 1=up 2=left 3=down
	frozen    bool  // no player control until the opening transition ends
	animFrame int32
	animLast  time.Time
}

// NewHero builds the hero at (x,y) with no abilities.
func NewHero(x, y int32) *Hero {
	h := &Hero{
		Base:   newBase(TypeHero, HeroName, 0, geom.Rect(x, y, heroSize, heroSize)),
		frozen: true,
	}
	h.SetDrawnInYOrder(true)
	return h
}

// Ability returns the level of an ability, zero when absent.
func (h *Hero) Ability(a Ability) int32 {
	return h.abilities[a]
}

// SetAbility sets the level of an ability.
func (h *Hero) SetAbility(a Ability, level int32) {
	h.abilities[a] = level
}

// Direction returns the facing direction (0=right 1=up 2=left 3=down).
func (h *Hero) Direction() int32 {
	return h.direction
}

// SetDirection sets the facing direction.
func (h *Hero) SetDirection(direction int32) {
	h.direction = direction & 3
}

// Frozen reports whether player control is held back.
func (h *Hero) Frozen() bool {
	return h.frozen
}

// NotifyMapOpeningTransitionFinished releases player control.
func (h *Hero) NotifyMapOpeningTransitionFinished() {
	h.frozen = false
}

func (h *Hero) Update(now time.Time) {
	if h.Suspended() || h.frozen {
		return
	}
	// Walk the sprite animation; movement itself is driven by the game
	// layer through the map's position API.
	if now.Sub(h.animLast) >= 100*time.Millisecond {
		h.animFrame = (h.animFrame + 1) & 3
		h.animLast = now
	}
}

func (h *Hero) Draw(q *render.Queue) {
	h.drawSprite(q, "hero", h.direction*4+h.animFrame)
}
