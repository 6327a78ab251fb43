package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/questforge/engine/internal/entity"
	"github.com/questforge/engine/internal/geom"
)

// tilePatternEntry is one pattern as written in a tileset file.
type tilePatternEntry struct {
	ID     int32  `yaml:"id"`
	Ground string `yaml:"ground"`
	Width  int32  `yaml:"width"`
	Height int32  `yaml:"height"`
	Frames int32  `yaml:"frames"`
}

type tilesetFile struct {
	ID       string             `yaml:"id"`
	Patterns []tilePatternEntry `yaml:"patterns"`
}

// Tileset holds the tile patterns of one tileset, keyed by pattern id.
type Tileset struct {
	id       string
	patterns map[int32]*entity.TilePattern
}

// LoadTileset loads a tileset description from YAML. File and syntax
// problems are returned; malformed pattern data (unknown ground name,
// duplicate id, bad size) is fatal.
func LoadTileset(path string) (*Tileset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tileset %s: %w", path, err)
	}
	var file tilesetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse tileset %s: %w", path, err)
	}

	ts := &Tileset{
		id:       file.ID,
		patterns: make(map[int32]*entity.TilePattern, len(file.Patterns)),
	}
	for _, p := range file.Patterns {
		if _, exists := ts.patterns[p.ID]; exists {
			panic(fmt.Sprintf("tileset %s: duplicate pattern %d", file.ID, p.ID))
		}
		if p.Width <= 0 || p.Height <= 0 {
			panic(fmt.Sprintf("tileset %s: pattern %d has no size", file.ID, p.ID))
		}
		frames := p.Frames
		if frames <= 0 {
			frames = 1
		}
		ts.patterns[p.ID] = &entity.TilePattern{
			ID:     p.ID,
			Ground: entity.GroundByName(p.Ground),
			Size:   geom.Size{Width: p.Width, Height: p.Height},
			Frames: frames,
		}
	}
	return ts, nil
}

// ID returns the tileset id.
func (t *Tileset) ID() string {
	return t.id
}

// Count returns the number of patterns loaded.
func (t *Tileset) Count() int {
	return len(t.patterns)
}

// Pattern returns a pattern by id, or nil if not found.
func (t *Tileset) Pattern(id int32) *entity.TilePattern {
	return t.patterns[id]
}
