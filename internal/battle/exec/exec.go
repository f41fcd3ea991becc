// Package exec implements the action executor (spec.md §4.10): resolves an
// attack, move, or ability decision into BattleEvents, mutating the
// executing BattleState's units (HP, shields, position, cooldowns,
// status effects) as it goes.
package exec

import (
	"fmt"

	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/event"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/state"
	"fight-club/internal/battle/status"
	"fight-club/internal/battle/unit"
)

// Attack resolves actor's basic attack against tgt: atkCount strikes, each a
// dodge roll then physical damage math, shields depleted before HP.
func Attack(s *state.BattleState, actor, tgt *unit.BattleUnit, round int) []event.Event {
	events := []event.Event{{
		Round: round, Type: event.TypeAttack, ActorID: actor.InstanceID, TargetID: tgt.InstanceID,
	}}

	actorStats := status.ModifiedStats(actor)
	tgtStats := status.ModifiedStats(tgt)

	for i := 0; i < actorStats.AtkCount; i++ {
		if !tgt.Alive {
			break
		}
		if s.Seed.Bool(float64(tgtStats.Dodge) / 100) {
			events = append(events, event.Event{
				Round: round, Type: event.TypeDamage, ActorID: actor.InstanceID, TargetID: tgt.InstanceID,
				Damage: event.IntPtr(0), Missed: true,
			})
			continue
		}

		raw := actorStats.Atk - tgtStats.Armor
		if raw < 1 {
			raw = 1
		}
		dealt := tgt.ApplyDamage(raw)
		events = append(events, event.Event{
			Round: round, Type: event.TypeDamage, ActorID: actor.InstanceID, TargetID: tgt.InstanceID,
			Damage: event.IntPtr(dealt),
		})
		events = append(events, TriggerPassives(s, actor, catalog.TriggerOnHit, round)...)
		events = append(events, TriggerPassives(s, tgt, catalog.TriggerOnDamaged, round)...)
		if tgt.Alive {
			events = append(events, TriggerPassives(s, tgt, catalog.TriggerOnHPBelow, round)...)
		} else {
			events = append(events, event.Event{Round: round, Type: event.TypeDeath, ActorID: tgt.InstanceID})
			events = append(events, TriggerPassives(s, actor, catalog.TriggerOnKill, round)...)
			events = append(events, notifyAllyDeath(s, tgt, round)...)
		}
	}
	return events
}

// Move advances actor along path (already bounded by speed), one step at a
// time, stopping early if a step turns out occupied (a faster unit earlier
// in this round's turn order may have moved into it since the path was
// planned).
func Move(s *state.BattleState, actor *unit.BattleUnit, path []grid.Position, round int) []event.Event {
	events := make([]event.Event, 0, len(path))
	for _, step := range path {
		if s.IsOccupied(step, actor) {
			break
		}
		from := actor.Position
		actor.Position = step
		events = append(events, event.Event{
			Round: round, Type: event.TypeMove, ActorID: actor.InstanceID,
			FromPosition: event.PosPtr(from), ToPosition: event.PosPtr(step),
		})
	}
	return events
}

// Ability resolves caster's use of abilityID against targets (already
// selected by targeting), applying every effect to every target in order,
// and sets the ability's cooldown. Returns nil (no event, no cooldown) if
// targets is empty - the caller (ai.Decide) never selects an ability with
// no legal target, so this only defends against a caller bypassing it.
func Ability(s *state.BattleState, caster *unit.BattleUnit, abilityID string, targets []*unit.BattleUnit, round int) []event.Event {
	ability, ok := catalog.LookupAbility(abilityID)
	if !ok || len(targets) == 0 {
		return nil
	}

	var results []event.EffectResult
	var passiveEvents []event.Event
	dealtDamage := false
	for _, tgt := range targets {
		for _, eff := range ability.Effects {
			results = append(results, applyEffect(s, caster, abilityID, tgt, eff)...)
			if eff.Kind == catalog.EffectDamage {
				dealtDamage = true
				passiveEvents = append(passiveEvents, TriggerPassives(s, tgt, catalog.TriggerOnDamaged, round)...)
				if tgt.Alive {
					passiveEvents = append(passiveEvents, TriggerPassives(s, tgt, catalog.TriggerOnHPBelow, round)...)
				}
			}
		}
	}
	if dealtDamage {
		passiveEvents = append(passiveEvents, TriggerPassives(s, caster, catalog.TriggerOnHit, round)...)
	}

	caster.AbilityCooldowns[abilityID] = ability.Cooldown

	events := []event.Event{{
		Round: round, Type: event.TypeAbility, ActorID: caster.InstanceID,
		EffectResults: results,
	}}
	for _, tgt := range targets {
		if !tgt.Alive {
			events = append(events, event.Event{Round: round, Type: event.TypeDeath, ActorID: tgt.InstanceID})
			passiveEvents = append(passiveEvents, TriggerPassives(s, caster, catalog.TriggerOnKill, round)...)
			passiveEvents = append(passiveEvents, notifyAllyDeath(s, tgt, round)...)
		}
	}
	return append(events, passiveEvents...)
}

func applyEffect(s *state.BattleState, caster *unit.BattleUnit, abilityID string, tgt *unit.BattleUnit, eff catalog.Effect) []event.EffectResult {
	switch eff.Kind {
	case catalog.EffectDamage:
		casterStats := status.ModifiedStats(caster)
		raw := eff.Value + eff.AttackScaling*float64(casterStats.Atk)
		amount := roundHalfAwayFromZero(raw)
		if eff.DamageType == catalog.DamagePhysical {
			tgtStats := status.ModifiedStats(tgt)
			amount -= tgtStats.Armor
			if amount < 1 {
				amount = 1
			}
		}
		dealt := tgt.ApplyDamage(amount)
		return []event.EffectResult{{
			EffectType: string(eff.Kind), TargetID: tgt.InstanceID, Damage: event.IntPtr(dealt),
			NewHP: event.IntPtr(tgt.CurrentHP),
		}}

	case catalog.EffectHeal:
		casterStats := status.ModifiedStats(caster)
		raw := eff.Value + eff.AttackScaling*float64(casterStats.Atk)
		amount := roundHalfAwayFromZero(raw)
		healed := tgt.ApplyHeal(amount)
		return []event.EffectResult{{
			EffectType: string(eff.Kind), TargetID: tgt.InstanceID, Healing: event.IntPtr(healed),
			NewHP: event.IntPtr(tgt.CurrentHP),
		}}

	case catalog.EffectBuff, catalog.EffectDebuff, catalog.EffectStun, catalog.EffectTaunt, catalog.EffectDoT, catalog.EffectHoT:
		status.Apply(tgt, caster.InstanceID, abilityID, eff, s.NextEffectSeq())
		res := event.EffectResult{EffectType: string(eff.Kind), TargetID: tgt.InstanceID, Duration: event.IntPtr(eff.Duration)}
		if eff.Kind == catalog.EffectBuff || eff.Kind == catalog.EffectDebuff {
			res.StatModified = string(eff.Stat)
		}
		return []event.EffectResult{res}

	case catalog.EffectShield:
		tgt.Shields = append(tgt.Shields, unit.Shield{
			ID:     fmt.Sprintf("%s:%s:%d", tgt.InstanceID, abilityID, s.NextEffectSeq()),
			Amount: eff.ShieldAmount,
		})
		return []event.EffectResult{{EffectType: string(eff.Kind), TargetID: tgt.InstanceID, Healing: event.IntPtr(int(eff.ShieldAmount))}}

	case catalog.EffectCleanse:
		status.Cleanse(tgt, eff.RemoveCount)
		return []event.EffectResult{{EffectType: string(eff.Kind), TargetID: tgt.InstanceID}}

	case catalog.EffectDispel:
		status.Dispel(tgt, eff.RemoveCount)
		return []event.EffectResult{{EffectType: string(eff.Kind), TargetID: tgt.InstanceID}}

	case catalog.EffectSummon:
		return summon(s, caster, eff)

	default:
		return nil
	}
}

// summon spawns eff.SummonCount copies of eff.SummonTemplateID on caster's
// team, placed on free cells adjacent to caster (in grid.Neighbors order).
// Units that find no free cell are dropped silently.
func summon(s *state.BattleState, caster *unit.BattleUnit, eff catalog.Effect) []event.EffectResult {
	tmpl, ok := catalog.LookupUnit(eff.SummonTemplateID)
	if !ok {
		return nil
	}

	existing := 0
	for _, u := range s.Units {
		if u.Team == caster.Team && u.Template.ID == tmpl.ID {
			existing++
		}
	}

	var results []event.EffectResult
	for i := 0; i < eff.SummonCount; i++ {
		pos, ok := freeAdjacentCell(s, caster)
		if !ok {
			break
		}
		instanceID := unit.InstanceIDFor(caster.Team, tmpl.ID, existing+i)
		spawned := unit.New(instanceID, caster.Team, tmpl, pos)
		s.Units = append(s.Units, spawned)
		results = append(results, event.EffectResult{EffectType: string(eff.Kind), TargetID: instanceID})
	}
	return results
}

func freeAdjacentCell(s *state.BattleState, caster *unit.BattleUnit) (grid.Position, bool) {
	for _, p := range grid.Neighbors(caster.Position) {
		if !s.IsOccupied(p, caster) {
			return p, true
		}
	}
	return grid.Position{}, false
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
