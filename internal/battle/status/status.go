// Package status implements the status-effect lifecycle described in
// spec.md §4.5: apply/refresh/stack, periodic tick damage and healing,
// expiration, and the derived modifiedStats computation buffs and debuffs
// feed into.
package status

import (
	"fmt"

	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/unit"
)

// newEffectID derives a status-effect instance id from the target, source,
// and the caller-supplied sequence number. The sequence is threaded through
// explicitly (state.BattleState.EffectSeq) rather than kept as a package
// counter, so Apply has no mutable state of its own and repeated Simulate
// calls on disjoint inputs can never race or leak state into each other.
func newEffectID(targetID, sourceAbilityID string, seq int) string {
	return fmt.Sprintf("%s:%s:%d", targetID, sourceAbilityID, seq)
}

// Apply applies effect to u, sourced from sourceUnitID via sourceAbilityID.
// seq must be a value the caller increments once per call across the whole
// battle (state.BattleState.EffectSeq), used only to keep instance ids
// unique. Refuses silently if u is dead. If an instance with the same
// (sourceAbilityID, effect.Kind) already exists: if the effect is stackable
// and under maxStacks, stacks are incremented and duration takes the max of
// old/new; otherwise the existing instance's duration is refreshed to the
// max of old/new. Otherwise a new instance is appended. Flags are
// recomputed afterward.
func Apply(u *unit.BattleUnit, sourceUnitID, sourceAbilityID string, effect catalog.Effect, seq int) {
	if !u.Alive {
		return
	}

	for _, existing := range u.StatusEffects {
		if existing.SourceAbilityID != sourceAbilityID || existing.Effect.Kind != effect.Kind {
			continue
		}
		if effect.Stackable && existing.Stacks < effect.MaxStacks {
			existing.Stacks++
		}
		if effect.Duration > existing.RemainingDuration {
			existing.RemainingDuration = effect.Duration
		}
		u.RecomputeFlags()
		return
	}

	u.StatusEffects = append(u.StatusEffects, &unit.StatusEffectInstance{
		ID:                   newEffectID(u.InstanceID, sourceAbilityID, seq),
		SourceAbilityID:      sourceAbilityID,
		SourceUnitInstanceID: sourceUnitID,
		Effect:               effect,
		RemainingDuration:    effect.Duration,
		Stacks:               1,
	})
	u.RecomputeFlags()
}

// Remove filters out the effect instance with the given id and recomputes
// flags.
func Remove(u *unit.BattleUnit, effectID string) {
	out := u.StatusEffects[:0]
	for _, se := range u.StatusEffects {
		if se.ID != effectID {
			out = append(out, se)
		}
	}
	u.StatusEffects = out
	u.RecomputeFlags()
}

// Cleanse removes up to n debuff-like effects (debuff, stun, dot) from u, in
// application order; n == 0 means "remove all". Returns the number removed.
func Cleanse(u *unit.BattleUnit, n int) int {
	return removeMatching(u, n, func(k catalog.EffectKind) bool {
		return k == catalog.EffectDebuff || k == catalog.EffectStun || k == catalog.EffectDoT
	})
}

// Dispel removes up to n buff-like effects (buff, hot) from u, in
// application order; n == 0 means "remove all". Returns the number removed.
func Dispel(u *unit.BattleUnit, n int) int {
	return removeMatching(u, n, func(k catalog.EffectKind) bool {
		return k == catalog.EffectBuff || k == catalog.EffectHoT
	})
}

func removeMatching(u *unit.BattleUnit, n int, match func(catalog.EffectKind) bool) int {
	removed := 0
	out := u.StatusEffects[:0]
	for _, se := range u.StatusEffects {
		if match(se.Effect.Kind) && (n == 0 || removed < n) {
			removed++
			continue
		}
		out = append(out, se)
	}
	u.StatusEffects = out
	u.RecomputeFlags()
	return removed
}

// TickResult reports what a single Tick call did, for the caller to turn
// into BattleEvents.
type TickResult struct {
	DotDamage int
	HotHeal   int
	Expired   []*unit.StatusEffectInstance
}

// Tick runs once per round, before that round's turn execution: it
// accumulates dotDamage += value*stacks and hotHeal += value*stacks across
// every active effect, decrements remainingDuration by 1, and moves
// instances reaching 0 to an expired list. dotDamage is applied before
// hotHeal, both clamped to [0, maxHp]; Alive and the derived flags are
// recomputed afterward.
func Tick(u *unit.BattleUnit) TickResult {
	var result TickResult
	if !u.Alive {
		return result
	}

	kept := u.StatusEffects[:0]
	for _, se := range u.StatusEffects {
		switch se.Effect.Kind {
		case catalog.EffectDoT:
			result.DotDamage += int(se.Effect.Value) * se.Stacks
		case catalog.EffectHoT:
			result.HotHeal += int(se.Effect.Value) * se.Stacks
		}

		se.RemainingDuration--
		if se.RemainingDuration <= 0 {
			result.Expired = append(result.Expired, se)
			continue
		}
		kept = append(kept, se)
	}
	u.StatusEffects = kept

	if result.DotDamage > 0 {
		u.ApplyDamage(result.DotDamage)
	}
	if result.HotHeal > 0 {
		u.ApplyHeal(result.HotHeal)
	}

	u.RecomputeFlags()
	return result
}

// ModifiedStats returns base stats plus the sum of flat buff/debuff
// contributions (each times stacks), times (1 + sum of percentage
// contributions times stacks), clamped per spec.md §4.5: atk >= 1,
// armor >= 0, speed >= 1, initiative >= 0, dodge in [0, 100]. HP is never
// modified by buffs.
func ModifiedStats(u *unit.BattleUnit) catalog.Stats {
	base := u.Template.Stats

	var flatAtk, flatArmor, flatSpeed, flatInit, flatDodge float64
	var pctAtk, pctArmor, pctSpeed, pctInit, pctDodge float64

	for _, se := range u.StatusEffects {
		if se.Effect.Kind != catalog.EffectBuff && se.Effect.Kind != catalog.EffectDebuff {
			continue
		}
		contribution := se.Effect.Value * float64(se.Stacks)
		target := &flatAtk
		pctTarget := &pctAtk
		switch se.Effect.Stat {
		case catalog.StatAtk:
			target, pctTarget = &flatAtk, &pctAtk
		case catalog.StatArmor:
			target, pctTarget = &flatArmor, &pctArmor
		case catalog.StatSpeed:
			target, pctTarget = &flatSpeed, &pctSpeed
		case catalog.StatInitiative:
			target, pctTarget = &flatInit, &pctInit
		case catalog.StatDodge:
			target, pctTarget = &flatDodge, &pctDodge
		}
		if se.Effect.Percentage {
			*pctTarget += contribution
		} else {
			*target += contribution
		}
	}

	result := catalog.Stats{
		HP:         base.HP,
		AtkCount:   base.AtkCount,
		Atk:        applyModifier(base.Atk, flatAtk, pctAtk),
		Armor:      applyModifier(base.Armor, flatArmor, pctArmor),
		Speed:      applyModifier(base.Speed, flatSpeed, pctSpeed),
		Initiative: applyModifier(base.Initiative, flatInit, pctInit),
		Dodge:      applyModifier(base.Dodge, flatDodge, pctDodge),
	}

	if result.Atk < 1 {
		result.Atk = 1
	}
	if result.Armor < 0 {
		result.Armor = 0
	}
	if result.Speed < 1 {
		result.Speed = 1
	}
	if result.Initiative < 0 {
		result.Initiative = 0
	}
	if result.Dodge < 0 {
		result.Dodge = 0
	}
	if result.Dodge > 100 {
		result.Dodge = 100
	}
	return result
}

// applyModifier computes round((base + flat) * (1 + pct)) using
// round-half-away-from-zero, the rounding rule pinned for spec.md §9's
// "Open question - rounding on percentage buffs".
func applyModifier(base int, flat, pct float64) int {
	v := (float64(base) + flat) * (1 + pct)
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
