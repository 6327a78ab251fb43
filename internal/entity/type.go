package entity

import "fmt"

// Type identifies the concrete kind of an entity. The set is closed:
// map data naming anything else is malformed.
type Type uint8

const (
	TypeTile Type = iota
	TypeDynamicTile
	TypeDestination
	TypeHero
	TypeNpc
	TypeEnemy
	TypeDoor
	TypeCrystal
	TypeCrystalBlock
	typeCount
)

var typeNames = [typeCount]string{
	TypeTile:         "tile",
	TypeDynamicTile:  "dynamic_tile",
	TypeDestination:  "destination",
	TypeHero:         "hero",
	TypeNpc:          "npc",
	TypeEnemy:        "enemy",
	TypeDoor:         "door",
	TypeCrystal:      "crystal",
	TypeCrystalBlock: "crystal_block",
}

var typesByName = make(map[string]Type, typeCount)

func init() {
	for t, name := range typeNames {
		typesByName[name] = Type(t)
	}
}

// String returns the data-file name of the type.
func (t Type) String() string {
	if t >= typeCount {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeNames[t]
}

// LookupType resolves a type name, reporting whether it exists.
func LookupType(name string) (Type, bool) {
	t, ok := typesByName[name]
	return t, ok
}

// TypeByName resolves a type name from map data. Unknown names indicate
// malformed data and panic.
func TypeByName(name string) Type {
	t, ok := typesByName[name]
	if !ok {
		panic(fmt.Sprintf("unknown entity type %q", name))
	}
	return t
}
