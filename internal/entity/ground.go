package entity

import "fmt"

// Ground is the static terrain classification of one grid cell.
type Ground uint8

const (
	// GroundEmpty marks a tile pattern as purely decorative: it leaves
	// the ground of the tiles below it untouched.
	GroundEmpty Ground = iota
	GroundTraversable
	GroundWall
	GroundLowWall
	GroundDeepWater
	GroundShallowWater
	GroundGrass
	GroundHole
	GroundIce
	GroundLadder
	GroundPrickles
	GroundLava
	groundCount
)

var groundNames = [groundCount]string{
	GroundEmpty:        "empty",
	GroundTraversable:  "traversable",
	GroundWall:         "wall",
	GroundLowWall:      "low_wall",
	GroundDeepWater:    "deep_water",
	GroundShallowWater: "shallow_water",
	GroundGrass:        "grass",
	GroundHole:         "hole",
	GroundIce:          "ice",
	GroundLadder:       "ladder",
	GroundPrickles:     "prickles",
	GroundLava:         "lava",
}

var groundsByName = make(map[string]Ground, groundCount)

func init() {
	for g, name := range groundNames {
		groundsByName[name] = Ground(g)
	}
}

// String returns the data-file name of the ground.
func (g Ground) String() string {
	if g >= groundCount {
		return fmt.Sprintf("Ground(%d)", uint8(g))
	}
	return groundNames[g]
}

// Traversable reports whether an entity can walk on this ground.
func (g Ground) Traversable() bool {
	switch g {
	case GroundTraversable, GroundShallowWater, GroundGrass, GroundIce, GroundLadder:
		return true
	default:
		return false
	}
}

// LookupGround resolves a ground name, reporting whether it exists.
func LookupGround(name string) (Ground, bool) {
	g, ok := groundsByName[name]
	return g, ok
}

// GroundByName resolves a ground name from tileset data. Unknown names
// indicate malformed data and panic.
func GroundByName(name string) Ground {
	g, ok := groundsByName[name]
	if !ok {
		panic(fmt.Sprintf("unknown ground %q", name))
	}
	return g
}
