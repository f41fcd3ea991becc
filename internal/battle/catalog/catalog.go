package catalog

import "fmt"

// Validate checks the invariants spec.md §4.3 requires of the static
// tables: every template's ability ids resolve, and every ability's effect
// parameters are coherent for its kind. It is called once from an init()
// so a malformed catalog table fails at process start, never mid-battle.
func Validate() error {
	for unitID, tmpl := range unitTable {
		for _, abilityID := range tmpl.AbilityIDs {
			ability, ok := abilityTable[abilityID]
			if !ok {
				return fmt.Errorf("unit %q references unknown ability %q", unitID, abilityID)
			}
			for _, eff := range ability.Effects {
				if err := validateEffect(eff); err != nil {
					return fmt.Errorf("ability %q: %w", abilityID, err)
				}
			}
			if ability.Kind == AbilityActive && len(ability.Effects) == 0 {
				return fmt.Errorf("active ability %q has no effects", abilityID)
			}
		}
	}
	return nil
}

func init() {
	if err := Validate(); err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
}
