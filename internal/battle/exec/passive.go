package exec

import (
	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/event"
	"fight-club/internal/battle/state"
	"fight-club/internal/battle/unit"
)

// TriggerPassives evaluates every Passive ability owner's template lists
// whose Trigger matches kind, and applies the ones whose condition holds:
// internal cooldown expired, MaxTriggers (if set) not yet reached, and - for
// TriggerOnHPBelow - current HP at or under the ability's TriggerThreshold
// fraction of max HP. A passive's effects always target owner itself
// (second_wind heals its own bearer; nothing in the catalog defines an
// other-targeting passive).
func TriggerPassives(s *state.BattleState, owner *unit.BattleUnit, kind catalog.PassiveTrigger, round int) []event.Event {
	if owner == nil || !owner.Alive {
		return nil
	}

	var events []event.Event
	for _, id := range owner.Template.AbilityIDs {
		ability, ok := catalog.LookupAbility(id)
		if !ok || ability.Kind != catalog.AbilityPassive || ability.Trigger != kind {
			continue
		}
		if owner.PassiveCooldown[id] > 0 {
			continue
		}
		if ability.MaxTriggers > 0 && owner.PassiveTriggerCount[id] >= ability.MaxTriggers {
			continue
		}
		if kind == catalog.TriggerOnHPBelow && float64(owner.CurrentHP)/float64(owner.MaxHP) > ability.TriggerThreshold {
			continue
		}

		var results []event.EffectResult
		for _, eff := range ability.Effects {
			results = append(results, applyEffect(s, owner, id, owner, eff)...)
		}
		owner.PassiveTriggerCount[id]++
		if ability.InternalCooldown > 0 {
			owner.PassiveCooldown[id] = ability.InternalCooldown
		}
		events = append(events, event.Event{
			Round: round, Type: event.TypeAbility, ActorID: owner.InstanceID, EffectResults: results,
		})
	}
	return events
}

// TickPassiveCooldowns decrements owner's internal passive-ability
// cooldowns by one round. Called once at the start of each of the unit's
// own turns, before that turn's TriggerOnTurnStart check.
func TickPassiveCooldowns(owner *unit.BattleUnit) {
	for id, remaining := range owner.PassiveCooldown {
		if remaining > 0 {
			owner.PassiveCooldown[id] = remaining - 1
		}
	}
}

// notifyAllyDeath fires TriggerOnAllyDeath against every other living unit
// on dead's team.
func notifyAllyDeath(s *state.BattleState, dead *unit.BattleUnit, round int) []event.Event {
	var events []event.Event
	for _, ally := range s.Units {
		if ally.Alive && ally != dead && ally.Team == dead.Team {
			events = append(events, TriggerPassives(s, ally, catalog.TriggerOnAllyDeath, round)...)
		}
	}
	return events
}
