package entity

import (
	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
)

// Door blocks a passage until opened. An open door is disabled: it is
// neither drawn nor returned by collision queries that filter on the
// enabled flag.
type Door struct {
	Base
	open bool
}

// NewDoor builds a door at (x,y). Doors default to 16x16 when the map
// gives no size.
func NewDoor(name string, layer, x, y, width, height int32, open bool) *Door {
	if width <= 0 {
		width = 16
	}
	if height <= 0 {
		height = 16
	}
	d := &Door{
		Base: newBase(TypeDoor, name, layer, geom.Rect(x, y, width, height)),
		open: open,
	}
	d.SetEnabled(!open)
	return d
}

// Open reports whether the door is open.
func (d *Door) Open() bool {
	return d.open
}

// SetOpen opens or closes the door.
func (d *Door) SetOpen(open bool) {
	d.open = open
	d.SetEnabled(!open)
}

func (d *Door) Draw(q *render.Queue) {
	d.drawSprite(q, "door", 0)
}
