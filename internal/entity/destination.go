package entity

import "github.com/questforge/engine/internal/geom"

const destinationSize = 16

// Destination is an arrival point for map teleportation. It is
// invisible and inert; the map tracks which destination is the default
// one.
type Destination struct {
	Base
	dflt bool
}

// NewDestination builds a destination at (x,y). Destinations are
// usually named so teleporters can target them.
func NewDestination(name string, layer, x, y int32, dflt bool) *Destination {
	return &Destination{
		Base: newBase(TypeDestination, name, layer, geom.Rect(x, y, destinationSize, destinationSize)),
		dflt: dflt,
	}
}

// Default reports whether the destination was declared as the map's
// default arrival point.
func (d *Destination) Default() bool {
	return d.dflt
}
