package status

import (
	"testing"

	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/unit"
)

func newTestUnit() *unit.BattleUnit {
	tmpl := catalog.UnitTemplate{
		ID: "test", Stats: catalog.Stats{HP: 100, Atk: 10, AtkCount: 1, Armor: 5, Speed: 5, Initiative: 5, Dodge: 0},
	}
	return unit.New("test_unit_0", grid.TeamPlayer, tmpl, grid.Position{})
}

func TestApplyStacksWithinLimit(t *testing.T) {
	u := newTestUnit()
	eff := catalog.Effect{Kind: catalog.EffectBuff, Stat: catalog.StatAtk, Value: 1, Duration: 2, Stackable: true, MaxStacks: 3}

	Apply(u, "src", "ability", eff, 1)
	Apply(u, "src", "ability", eff, 2)
	Apply(u, "src", "ability", eff, 3)
	Apply(u, "src", "ability", eff, 4)

	if len(u.StatusEffects) != 1 {
		t.Fatalf("expected a single merged instance, got %d", len(u.StatusEffects))
	}
	if u.StatusEffects[0].Stacks != 3 {
		t.Fatalf("expected stacks clamped to maxStacks=3, got %d", u.StatusEffects[0].Stacks)
	}
}

func TestApplyRefreshesDurationWithoutStacking(t *testing.T) {
	u := newTestUnit()
	eff := catalog.Effect{Kind: catalog.EffectDebuff, Stat: catalog.StatArmor, Value: -2, Duration: 3}

	Apply(u, "src", "ability", eff, 1)
	u.StatusEffects[0].RemainingDuration = 1
	Apply(u, "src", "ability", eff, 2)

	if len(u.StatusEffects) != 1 {
		t.Fatalf("non-stackable effect should still merge into one instance, got %d", len(u.StatusEffects))
	}
	if u.StatusEffects[0].RemainingDuration != 3 {
		t.Fatalf("expected duration refreshed to 3, got %d", u.StatusEffects[0].RemainingDuration)
	}
	if u.StatusEffects[0].Stacks != 1 {
		t.Fatalf("non-stackable effect should never exceed 1 stack, got %d", u.StatusEffects[0].Stacks)
	}
}

func TestTickAppliesDotThenHot(t *testing.T) {
	u := newTestUnit()
	u.CurrentHP = 50
	Apply(u, "src", "poison", catalog.Effect{Kind: catalog.EffectDoT, Value: 10, Duration: 2}, 1)
	Apply(u, "src", "regen", catalog.Effect{Kind: catalog.EffectHoT, Value: 4, Duration: 2}, 2)

	result := Tick(u)
	if result.DotDamage != 10 || result.HotHeal != 4 {
		t.Fatalf("expected dot=10 hot=4, got dot=%d hot=%d", result.DotDamage, result.HotHeal)
	}
	if u.CurrentHP != 50-10+4 {
		t.Fatalf("expected hp %d, got %d", 50-10+4, u.CurrentHP)
	}
	if len(u.StatusEffects) != 2 {
		t.Fatalf("effects with duration 2 should survive one tick, got %d remaining", len(u.StatusEffects))
	}
}

func TestTickExpiresAtZeroDuration(t *testing.T) {
	u := newTestUnit()
	Apply(u, "src", "stun", catalog.Effect{Kind: catalog.EffectStun, Duration: 1}, 1)

	if !u.IsStunned {
		t.Fatal("expected isStunned true immediately after apply")
	}
	result := Tick(u)
	if len(result.Expired) != 1 {
		t.Fatalf("expected the stun to expire after one tick, got %d expired", len(result.Expired))
	}
	if u.IsStunned {
		t.Fatal("expected isStunned false after the stun expired")
	}
}

func TestModifiedStatsClampsAtkToOne(t *testing.T) {
	u := newTestUnit()
	Apply(u, "src", "weaken", catalog.Effect{Kind: catalog.EffectDebuff, Stat: catalog.StatAtk, Value: -50, Duration: 5}, 1)

	stats := ModifiedStats(u)
	if stats.Atk < 1 {
		t.Fatalf("expected atk clamped to >= 1, got %d", stats.Atk)
	}
}

func TestModifiedStatsPercentageRounding(t *testing.T) {
	u := newTestUnit()
	// base atk 10, +50% => 15 exactly, no rounding ambiguity.
	Apply(u, "src", "rampage", catalog.Effect{Kind: catalog.EffectBuff, Stat: catalog.StatAtk, Value: 0.5, Percentage: true, Duration: 3}, 1)
	if got := ModifiedStats(u).Atk; got != 15 {
		t.Fatalf("expected atk 15, got %d", got)
	}
}

func TestModifiedStatsPercentageRoundingExactHalf(t *testing.T) {
	u := newTestUnit()
	// base atk 10, +45% => 14.5 exactly: the tie-break case. The pinned
	// rule is round-half-away-from-zero, so 14.5 rounds up to 15.
	Apply(u, "src", "rampage", catalog.Effect{Kind: catalog.EffectBuff, Stat: catalog.StatAtk, Value: 0.45, Percentage: true, Duration: 3}, 1)
	if got := ModifiedStats(u).Atk; got != 15 {
		t.Fatalf("expected atk rounded away from zero to 15, got %d", got)
	}
}

func TestCleanseRemovesOnlyDebuffLikeEffects(t *testing.T) {
	u := newTestUnit()
	Apply(u, "src", "poison", catalog.Effect{Kind: catalog.EffectDoT, Value: 1, Duration: 5}, 1)
	Apply(u, "src", "rampage", catalog.Effect{Kind: catalog.EffectBuff, Stat: catalog.StatAtk, Value: 1, Duration: 5}, 2)

	removed := Cleanse(u, 0)
	if removed != 1 {
		t.Fatalf("expected 1 debuff-like effect removed, got %d", removed)
	}
	if len(u.StatusEffects) != 1 || u.StatusEffects[0].Effect.Kind != catalog.EffectBuff {
		t.Fatal("expected the buff to survive cleanse")
	}
}
