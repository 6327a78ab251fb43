package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HeroEntry places the hero when the map becomes active.
type HeroEntry struct {
	X         int32            `yaml:"x"`
	Y         int32            `yaml:"y"`
	Layer     int32            `yaml:"layer"`
	Direction int32            `yaml:"direction"`
	Abilities map[string]int32 `yaml:"abilities"`
}

// TileEntry places one tile pattern. Width and height default to the
// pattern size; larger values repeat the pattern.
type TileEntry struct {
	Pattern int32 `yaml:"pattern"`
	Layer   int32 `yaml:"layer"`
	X       int32 `yaml:"x"`
	Y       int32 `yaml:"y"`
	Width   int32 `yaml:"width"`
	Height  int32 `yaml:"height"`
}

// EntityEntry places one non-tile entity. Only the fields matching the
// declared type are read; the rest stay zero.
type EntityEntry struct {
	Type   string `yaml:"type"`
	Name   string `yaml:"name"`
	Layer  int32  `yaml:"layer"`
	X      int32  `yaml:"x"`
	Y      int32  `yaml:"y"`
	Width  int32  `yaml:"width"`
	Height int32  `yaml:"height"`

	Default bool   `yaml:"default"` // destinations
	Life    int32  `yaml:"life"`    // enemies
	Open    bool   `yaml:"open"`    // doors
	Phase   string `yaml:"phase"`   // crystal blocks
	Pattern int32  `yaml:"pattern"` // dynamic tiles
}

// MapFile is one map description as loaded from YAML.
type MapFile struct {
	ID       string        `yaml:"id"`
	Width    int32         `yaml:"width"`
	Height   int32         `yaml:"height"`
	Layers   int32         `yaml:"layers"`
	Tileset  string        `yaml:"tileset"`
	Hero     HeroEntry     `yaml:"hero"`
	Tiles    []TileEntry   `yaml:"tiles"`
	Entities []EntityEntry `yaml:"entities"`
}

// LoadMapFile loads a map description from YAML. File and syntax
// problems are returned, as are structurally impossible headers; the
// semantic checks against the tileset and the entity types happen when
// the map is populated.
func LoadMapFile(path string) (*MapFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", path, err)
	}
	var mf MapFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}
	if mf.Width <= 0 || mf.Height <= 0 {
		return nil, fmt.Errorf("map %s: invalid size %dx%d", path, mf.Width, mf.Height)
	}
	if mf.Layers <= 0 {
		return nil, fmt.Errorf("map %s: invalid layer count %d", path, mf.Layers)
	}
	return &mf, nil
}
