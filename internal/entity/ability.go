package entity

import "fmt"

// Ability is one of the hero's built-in capabilities. Levels are plain
// integers; zero means the ability is absent.
type Ability uint8

const (
	AbilityTunic Ability = iota
	AbilitySword
	AbilitySwordKnowledge
	AbilityShield
	AbilityLift
	AbilitySwim
	AbilityRun
	AbilityDetectWeakWalls
	abilityCount
)

var abilityNames = [abilityCount]string{
	AbilityTunic:           "tunic",
	AbilitySword:           "sword",
	AbilitySwordKnowledge:  "sword_knowledge",
	AbilityShield:          "shield",
	AbilityLift:            "lift",
	AbilitySwim:            "swim",
	AbilityRun:             "run",
	AbilityDetectWeakWalls: "detect_weak_walls",
}

var abilitiesByName = make(map[string]Ability, abilityCount)

func init() {
	for a, name := range abilityNames {
		abilitiesByName[name] = Ability(a)
	}
}

// String returns the data-file name of the ability.
func (a Ability) String() string {
	if a >= abilityCount {
		return fmt.Sprintf("Ability(%d)", uint8(a))
	}
	return abilityNames[a]
}

// LookupAbility resolves an ability name, reporting whether it exists.
func LookupAbility(name string) (Ability, bool) {
	a, ok := abilitiesByName[name]
	return a, ok
}

// AbilityByName resolves an ability name from save or map data. Unknown
// names indicate malformed data and panic.
func AbilityByName(name string) Ability {
	a, ok := abilitiesByName[name]
	if !ok {
		panic(fmt.Sprintf("unknown ability %q", name))
	}
	return a
}
