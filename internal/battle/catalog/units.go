package catalog

import "sort"

// unitTable is the single source of truth for every unit template.
// Three entries (knight, mage, priest) double as the stable targets of the
// legacy Warrior/Mage/Healer name mapping ResolveUnitID implements below.
var unitTable = map[string]UnitTemplate{
	"guardian": {
		ID: "guardian", Name: "Guardian", Role: RoleTank, Cost: 4,
		Stats: Stats{HP: 140, Atk: 12, AtkCount: 1, Armor: 8, Speed: 3, Initiative: 4, Dodge: 5},
		Range: 1, AbilityIDs: []string{"taunting_roar"},
	},
	"knight": {
		ID: "knight", Name: "Knight", Role: RoleTank, Cost: 4,
		Stats: Stats{HP: 130, Atk: 14, AtkCount: 1, Armor: 10, Speed: 3, Initiative: 5, Dodge: 5},
		Range: 1, AbilityIDs: []string{"shield_wall"},
	},
	"assassin": {
		ID: "assassin", Name: "Assassin", Role: RoleMeleeDPS, Cost: 5,
		Stats: Stats{HP: 80, Atk: 20, AtkCount: 2, Armor: 2, Speed: 5, Initiative: 10, Dodge: 20},
		Range: 1, AbilityIDs: []string{"backstab"},
	},
	"rogue": {
		ID: "rogue", Name: "Rogue", Role: RoleMeleeDPS, Cost: 4,
		Stats: Stats{HP: 85, Atk: 17, AtkCount: 1, Armor: 3, Speed: 5, Initiative: 8, Dodge: 18},
		Range: 1, AbilityIDs: []string{"poison_blade"},
	},
	"berserker": {
		ID: "berserker", Name: "Berserker", Role: RoleMeleeDPS, Cost: 5,
		Stats: Stats{HP: 110, Atk: 22, AtkCount: 1, Armor: 4, Speed: 4, Initiative: 6, Dodge: 8},
		Range: 1, AbilityIDs: []string{"rampage", "second_wind"},
	},
	"elementalist": {
		ID: "elementalist", Name: "Elementalist", Role: RoleMage, Cost: 5,
		Stats: Stats{HP: 75, Atk: 19, AtkCount: 1, Armor: 1, Speed: 3, Initiative: 7, Dodge: 5},
		Range: 3, AbilityIDs: []string{"fireball"},
	},
	"mage": {
		ID: "mage", Name: "Mage", Role: RoleMage, Cost: 4,
		Stats: Stats{HP: 70, Atk: 17, AtkCount: 1, Armor: 1, Speed: 3, Initiative: 6, Dodge: 5},
		Range: 3, AbilityIDs: []string{"arcane_bolt"},
	},
	"priest": {
		ID: "priest", Name: "Priest", Role: RoleSupport, Cost: 4,
		Stats: Stats{HP: 80, Atk: 9, AtkCount: 1, Armor: 2, Speed: 3, Initiative: 5, Dodge: 5},
		Range: 2, AbilityIDs: []string{"mend"},
	},
	"bard": {
		ID: "bard", Name: "Bard", Role: RoleSupport, Cost: 3,
		Stats: Stats{HP: 85, Atk: 8, AtkCount: 1, Armor: 2, Speed: 3, Initiative: 4, Dodge: 5},
		Range: 1, AbilityIDs: []string{"inspire"},
	},
	"archer": {
		ID: "archer", Name: "Archer", Role: RoleRangedDPS, Cost: 4,
		Stats: Stats{HP: 85, Atk: 16, AtkCount: 1, Armor: 3, Speed: 4, Initiative: 7, Dodge: 10},
		Range: 4, AbilityIDs: []string{"piercing_shot"},
	},
	"enchanter": {
		ID: "enchanter", Name: "Enchanter", Role: RoleControl, Cost: 5,
		Stats: Stats{HP: 75, Atk: 10, AtkCount: 1, Armor: 2, Speed: 3, Initiative: 6, Dodge: 5},
		Range: 2, AbilityIDs: []string{"mesmerize", "dispel_magic"},
	},
	"druid": {
		ID: "druid", Name: "Druid", Role: RoleSupport, Cost: 5,
		Stats: Stats{HP: 90, Atk: 11, AtkCount: 1, Armor: 3, Speed: 3, Initiative: 5, Dodge: 5},
		Range: 2, AbilityIDs: []string{"purify", "summon_wolf"},
	},
	"wolf": {
		ID: "wolf", Name: "Wolf", Role: RoleMeleeDPS, Cost: 1,
		Stats: Stats{HP: 40, Atk: 10, AtkCount: 1, Armor: 0, Speed: 5, Initiative: 9, Dodge: 10},
		Range: 1, AbilityIDs: []string{},
	},
}

// LookupUnit returns a unit template by id.
func LookupUnit(id string) (UnitTemplate, bool) {
	t, ok := unitTable[id]
	return t, ok
}

// legacyUnitNames maps three older client-facing unit names to their
// current catalog ids. Kept stable so old saved rosters and API payloads
// referencing them keep working.
var legacyUnitNames = map[string]string{
	"Warrior": "knight",
	"Mage":    "mage",
	"Healer":  "priest",
}

// ResolveUnitID maps a legacy unit name to its current catalog id. id is
// returned unchanged if it isn't one of the legacy aliases - including when
// it's already a current id. Callers resolve at the input boundary (team
// roster edits, API payloads) before ever calling LookupUnit.
func ResolveUnitID(id string) string {
	if mapped, ok := legacyUnitNames[id]; ok {
		return mapped
	}
	return id
}

// AllUnitIDs returns every known unit id, sorted ascending for deterministic
// iteration wherever a caller needs to enumerate the full catalog.
func AllUnitIDs() []string {
	ids := make([]string, 0, len(unitTable))
	for id := range unitTable {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
