// Package ai implements the per-turn decision spec.md §4.8 describes: cast
// an available ability, else attack in range, else move toward the nearest
// enemy. The decider never mutates state; it only reads it and returns the
// action the executor should carry out.
package ai

import (
	"sort"

	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/pathfind"
	"fight-club/internal/battle/rng"
	"fight-club/internal/battle/state"
	"fight-club/internal/battle/status"
	"fight-club/internal/battle/target"
	"fight-club/internal/battle/unit"
)

// Kind tags the Action variant Decide returns.
type Kind string

const (
	KindNone    Kind = "none"
	KindAbility Kind = "ability"
	KindAttack  Kind = "attack"
	KindMove    Kind = "move"
)

// Action is the decision for one unit's turn.
type Action struct {
	Kind Kind

	AbilityID string             // KindAbility
	Targets   []*unit.BattleUnit // KindAbility, KindAttack (len 1)

	Path []grid.Position // KindMove: steps to take, already bounded by speed
}

// Decide chooses caster's action for this turn. caster must be alive and not
// stunned; the simulation loop never calls Decide otherwise.
func Decide(s *state.BattleState, caster *unit.BattleUnit, rngStream *rng.Stream) Action {
	if a, ok := decideAbility(s, caster, rngStream); ok {
		return a
	}
	if a, ok := decideAttack(s, caster); ok {
		return a
	}
	return decideMove(s, caster)
}

// decideAbility picks the first ability (in template order) that is Active,
// off cooldown, and has at least one legal target right now.
func decideAbility(s *state.BattleState, caster *unit.BattleUnit, rngStream *rng.Stream) (Action, bool) {
	for _, abilityID := range caster.Template.AbilityIDs {
		ability, ok := catalog.LookupAbility(abilityID)
		if !ok || ability.Kind != catalog.AbilityActive {
			continue
		}
		if caster.AbilityCooldowns[abilityID] > 0 {
			continue
		}
		targets := target.Resolve(caster, ability, s.Units, rngStream)
		if len(targets) == 0 {
			continue
		}
		return Action{Kind: KindAbility, AbilityID: abilityID, Targets: targets}, true
	}
	return Action{}, false
}

// decideAttack picks an enemy in base attack range using the same priority
// as lowest_hp_enemy, with taunt precedence.
func decideAttack(s *state.BattleState, caster *unit.BattleUnit) (Action, bool) {
	rangeLimit := caster.Template.Range

	candidates := make([]*unit.BattleUnit, 0)
	for _, u := range s.Units {
		if !u.Alive || u.Team == caster.Team {
			continue
		}
		if grid.Distance(caster.Position, u.Position) > rangeLimit {
			continue
		}
		candidates = append(candidates, u)
	}
	if len(candidates) == 0 {
		return Action{}, false
	}

	restricted := target.RestrictByTaunt(candidates, caster.Team, s.Units, rangeLimit, caster.Position)
	chosen := target.LowestHP(restricted)
	if chosen == nil {
		return Action{}, false
	}
	return Action{Kind: KindAttack, Targets: []*unit.BattleUnit{chosen}}, true
}

// decideMove picks the nearest enemy (tie-break: taunt first, then lowest
// HP, then (y,x), then instance id) and paths toward a cell adjacent to it,
// bounded by the mover's current speed.
func decideMove(s *state.BattleState, caster *unit.BattleUnit) Action {
	enemies := make([]*unit.BattleUnit, 0)
	for _, u := range s.Units {
		if u.Alive && u.Team != caster.Team {
			enemies = append(enemies, u)
		}
	}
	if len(enemies) == 0 {
		return Action{Kind: KindNone}
	}

	sort.SliceStable(enemies, func(i, j int) bool {
		return nearestBetter(caster.Position, enemies[i], enemies[j])
	})
	chosen := enemies[0]

	occupied := func(p grid.Position) bool { return s.IsOccupied(p, caster) }
	goal := func(p grid.Position) bool { return grid.Distance(p, chosen.Position) <= 1 }

	path := pathfind.FindPath(caster.Position, chosen.Position, goal, occupied)
	if len(path) == 0 {
		return Action{Kind: KindNone}
	}

	speed := status.ModifiedStats(caster).Speed
	if len(path) > speed {
		path = path[:speed]
	}
	return Action{Kind: KindMove, Path: path}
}

func nearestBetter(from grid.Position, a, b *unit.BattleUnit) bool {
	da, db := grid.Distance(from, a.Position), grid.Distance(from, b.Position)
	if da != db {
		return da < db
	}
	if a.HasTaunt != b.HasTaunt {
		return a.HasTaunt
	}
	if a.CurrentHP != b.CurrentHP {
		return a.CurrentHP < b.CurrentHP
	}
	if a.Position.Y != b.Position.Y {
		return a.Position.Y < b.Position.Y
	}
	if a.Position.X != b.Position.X {
		return a.Position.X < b.Position.X
	}
	return a.InstanceID < b.InstanceID
}
