package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/questforge/engine/internal/data"
	"github.com/questforge/engine/internal/entity"
	"github.com/questforge/engine/internal/geom"
)

// Populate builds a map's entity set from a loaded map description and
// its tileset. The hero may carry over from the previous map; nil
// builds a fresh one from the map's hero entry. Semantic violations in
// the data (unknown pattern ids, type names, ground names, phase or
// ability names) are malformed map data and fatal. The result is in
// the Created state; the caller seals it with NotifyMapStarted.
func Populate(log *zap.Logger, hero *entity.Hero, mf *data.MapFile, ts *data.Tileset, viewport geom.Size) *Entities {
	if hero == nil {
		hero = entity.NewHero(mf.Hero.X, mf.Hero.Y)
		for name, level := range mf.Hero.Abilities {
			hero.SetAbility(entity.AbilityByName(name), level)
		}
	}

	m := New(log, geom.Size{Width: mf.Width, Height: mf.Height}, mf.Layers, hero, viewport)

	hero.SetXY(mf.Hero.X, mf.Hero.Y)
	hero.SetDirection(mf.Hero.Direction)
	if mf.Hero.Layer != 0 {
		m.SetEntityLayer(hero, mf.Hero.Layer)
	}

	for _, te := range mf.Tiles {
		p := ts.Pattern(te.Pattern)
		if p == nil {
			panic(fmt.Sprintf("map %s: tile references unknown pattern %d", mf.ID, te.Pattern))
		}
		m.AddTile(entity.NewTile(p, te.Layer, te.X, te.Y, te.Width, te.Height))
	}
	for _, ee := range mf.Entities {
		m.Add(buildEntity(mf, ts, ee))
	}
	return m
}

func buildEntity(mf *data.MapFile, ts *data.Tileset, ee data.EntityEntry) entity.Entity {
	switch t := entity.TypeByName(ee.Type); t {
	case entity.TypeDestination:
		return entity.NewDestination(ee.Name, ee.Layer, ee.X, ee.Y, ee.Default)
	case entity.TypeNpc:
		return entity.NewNpc(ee.Name, ee.Layer, ee.X, ee.Y)
	case entity.TypeEnemy:
		life := ee.Life
		if life <= 0 {
			life = 1
		}
		return entity.NewEnemy(ee.Name, ee.Layer, ee.X, ee.Y, life)
	case entity.TypeDoor:
		return entity.NewDoor(ee.Name, ee.Layer, ee.X, ee.Y, ee.Width, ee.Height, ee.Open)
	case entity.TypeCrystal:
		return entity.NewCrystal(ee.Name, ee.Layer, ee.X, ee.Y)
	case entity.TypeCrystalBlock:
		phase := entity.CrystalBlockPhaseByName(ee.Phase)
		return entity.NewCrystalBlock(ee.Name, phase, ee.Layer, ee.X, ee.Y, ee.Width, ee.Height)
	case entity.TypeDynamicTile:
		p := ts.Pattern(ee.Pattern)
		if p == nil {
			panic(fmt.Sprintf("map %s: dynamic tile %q references unknown pattern %d", mf.ID, ee.Name, ee.Pattern))
		}
		return entity.NewDynamicTile(p, ee.Name, ee.Layer, ee.X, ee.Y, ee.Width, ee.Height)
	case entity.TypeTile:
		panic(fmt.Sprintf("map %s: tiles belong in the tiles section", mf.ID))
	case entity.TypeHero:
		panic(fmt.Sprintf("map %s: the hero is declared in the hero section", mf.ID))
	default:
		panic(fmt.Sprintf("map %s: unplaceable entity type %v", mf.ID, t))
	}
}
