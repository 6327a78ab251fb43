// mapcheck validates a map file against its tileset and reports
// referential problems before the engine would hit them as panics.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/questforge/engine/internal/data"
	"github.com/questforge/engine/internal/entity"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: mapcheck <map.yaml> <tileset.yaml>")
		os.Exit(1)
	}

	mf, err := data.LoadMapFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ts, err := data.LoadTileset(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var problems []string
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if mf.Tileset != "" && mf.Tileset != ts.ID() {
		bad("map wants tileset %q, got %q", mf.Tileset, ts.ID())
	}
	for name := range mf.Hero.Abilities {
		if _, ok := entity.LookupAbility(name); !ok {
			bad("hero: unknown ability %q", name)
		}
	}
	if mf.Hero.Layer < 0 || mf.Hero.Layer >= mf.Layers {
		bad("hero: layer %d out of range", mf.Hero.Layer)
	}

	for i, t := range mf.Tiles {
		if t.Layer < 0 || t.Layer >= mf.Layers {
			bad("tile %d: layer %d out of range", i, t.Layer)
		}
		if ts.Pattern(t.Pattern) == nil {
			bad("tile %d: unknown pattern %d", i, t.Pattern)
		}
	}

	names := make(map[string]int)
	typeCounts := make(map[string]int)
	defaults := 0
	for i, e := range mf.Entities {
		typ, ok := entity.LookupType(e.Type)
		if !ok {
			bad("entity %d: unknown type %q", i, e.Type)
			continue
		}
		typeCounts[e.Type]++
		if e.Layer < 0 || e.Layer >= mf.Layers {
			bad("entity %d (%s): layer %d out of range", i, e.Type, e.Layer)
		}
		if e.Name != "" {
			names[e.Name]++
			if names[e.Name] == 2 {
				bad("duplicate entity name %q", e.Name)
			}
		}
		switch typ {
		case entity.TypeTile, entity.TypeHero:
			bad("entity %d: type %q is not placeable here", i, e.Type)
		case entity.TypeDestination:
			if e.Default {
				defaults++
			}
		case entity.TypeCrystalBlock:
			if _, ok := entity.LookupCrystalBlockPhase(e.Phase); !ok {
				bad("entity %d (%s): unknown phase %q", i, e.Name, e.Phase)
			}
		case entity.TypeDynamicTile:
			if ts.Pattern(e.Pattern) == nil {
				bad("entity %d (%s): unknown pattern %d", i, e.Name, e.Pattern)
			}
		}
	}
	if defaults > 1 {
		bad("%d destinations marked default, at most 1 allowed", defaults)
	}

	fmt.Printf("map %s: %dx%d px, %d layers, %d tiles, %d entities\n",
		mf.ID, mf.Width, mf.Height, mf.Layers, len(mf.Tiles), len(mf.Entities))
	types := make([]string, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %-16s %d\n", t, typeCounts[t])
	}

	if len(problems) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d problem(s):\n", len(problems))
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, "  "+p)
		}
		os.Exit(1)
	}
	fmt.Println("ok")
}
