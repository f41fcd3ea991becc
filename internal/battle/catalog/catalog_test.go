package catalog

import "testing"

func TestEveryUnitAbilityResolves(t *testing.T) {
	for _, id := range AllUnitIDs() {
		tmpl, _ := LookupUnit(id)
		for _, abilityID := range tmpl.AbilityIDs {
			if _, ok := LookupAbility(abilityID); !ok {
				t.Errorf("unit %q references unknown ability %q", id, abilityID)
			}
		}
	}
}

func TestValidatePasses(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("catalog should validate cleanly: %v", err)
	}
}

func TestLookupUnknownUnit(t *testing.T) {
	if _, ok := LookupUnit("does-not-exist"); ok {
		t.Fatal("expected lookup miss for unknown unit id")
	}
}

func TestLookupUnknownAbility(t *testing.T) {
	if _, ok := LookupAbility("does-not-exist"); ok {
		t.Fatal("expected lookup miss for unknown ability id")
	}
}
