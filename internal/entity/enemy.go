package entity

import (
	"time"

	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

const enemySize = 16

// Enemy is a hostile entity with a life counter. It schedules its own
// removal when its life reaches zero; the map drops it at the next
// flush point, never mid-frame.
type Enemy struct {
	Base
	life int32
}

// NewEnemy builds an enemy at (x,y) with the given life.
func NewEnemy(name string, layer, x, y, life int32) *Enemy {
	e := &Enemy{
		Base: newBase(TypeEnemy, name, layer, geom.Rect(x, y, enemySize, enemySize)),
		life: life,
	}
	e.SetDrawnInYOrder(true)
	return e
}

// Life returns the remaining life.
func (e *Enemy) Life() int32 {
	return e.life
}

// Hurt subtracts damage from the enemy's life.
func (e *Enemy) Hurt(damage int32) {
	e.life -= damage
}

func (e *Enemy) Update(now time.Time) {
	if e.Suspended() {
		return
	}
	if e.life <= 0 && !e.BeingRemoved() {
		if m := e.Map(); m != nil {
			m.ScheduleRemoval(e)
		}
	}
}

func (e *Enemy) Draw(q *render.Queue) {
	e.drawSprite(q, "enemy", 0)
}
