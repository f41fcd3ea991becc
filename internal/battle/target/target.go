// Package target implements spec.md §4.7: for a given ability and caster,
// enumerate legal targets under taunt, range, team-filter, and selection
// policy.
package target

import (
	"sort"

	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/rng"
	"fight-club/internal/battle/unit"
)

// relation classifies how ability.TargetType relates candidate units to the
// caster's team.
type relation int

const (
	relationSelf relation = iota
	relationAlly
	relationEnemy
)

func relationFor(tt catalog.TargetType) relation {
	switch tt {
	case catalog.TargetSelf:
		return relationSelf
	case catalog.TargetAlly, catalog.TargetAllAllies, catalog.TargetRandomAlly, catalog.TargetLowestHPAlly:
		return relationAlly
	default:
		return relationEnemy
	}
}

// isSingleEnemyPick reports whether tt resolves to exactly one enemy target
// chosen among candidates, the case where taunt precedence (spec.md §4.7,
// §4.8) applies. Area and all-enemies effects are not redirected by taunt:
// they already hit every eligible unit in scope.
func isSingleEnemyPick(tt catalog.TargetType) bool {
	switch tt {
	case catalog.TargetEnemy, catalog.TargetRandomEnemy, catalog.TargetLowestHPEnemy:
		return true
	default:
		return false
	}
}

// Candidates returns the legal target set for caster casting ability against
// allUnits (every unit on the board, both teams). For TargetArea, the
// returned slice is every enemy unit eligible to anchor the area (the
// caller picks one anchor cell via selection policy, then AreaUnits
// expands it); for every other TargetType it is the final filtered,
// selection-ready candidate set.
func Candidates(caster *unit.BattleUnit, ability catalog.Ability, allUnits []*unit.BattleUnit) []*unit.BattleUnit {
	if ability.TargetType == catalog.TargetSelf {
		return []*unit.BattleUnit{caster}
	}

	rel := relationFor(ability.TargetType)
	rangeLimit := ability.Range

	out := make([]*unit.BattleUnit, 0, len(allUnits))
	for _, u := range allUnits {
		if u == caster {
			continue
		}
		if !u.Alive {
			continue
		}
		switch rel {
		case relationAlly:
			if u.Team != caster.Team {
				continue
			}
		case relationEnemy:
			if u.Team == caster.Team {
				continue
			}
		}
		if grid.Distance(caster.Position, u.Position) > rangeLimit {
			continue
		}
		out = append(out, u)
	}

	if rel == relationEnemy && isSingleEnemyPick(ability.TargetType) {
		out = RestrictByTaunt(out, caster.Team, allUnits, rangeLimit, caster.Position)
	}

	return out
}

// RestrictByTaunt implements: "If any live enemy has hasTaunt, non-self
// targeting enemy choices are restricted to taunting enemies (unless no
// taunting enemy is in range)." enemyTeam is the taunting side relative to
// the chooser; allUnits is scanned (not candidates) because a taunting unit
// out of range must not block the restriction, per the "unless" clause.
func RestrictByTaunt(candidates []*unit.BattleUnit, chooserTeam grid.Team, allUnits []*unit.BattleUnit, rangeLimit int, from grid.Position) []*unit.BattleUnit {
	anyTaunting := false
	for _, u := range allUnits {
		if u.Alive && u.Team != chooserTeam && u.HasTaunt {
			anyTaunting = true
			break
		}
	}
	if !anyTaunting {
		return candidates
	}

	tauntingInRange := make([]*unit.BattleUnit, 0, len(candidates))
	for _, u := range candidates {
		if u.HasTaunt && grid.Distance(from, u.Position) <= rangeLimit {
			tauntingInRange = append(tauntingInRange, u)
		}
	}
	if len(tauntingInRange) == 0 {
		return candidates
	}
	return tauntingInRange
}

// Select applies the selection policy for ability.TargetType over
// candidates, returning the final target set: self/ally/enemy return the
// single best/only candidate (in a slice of length <=1); all_enemies/
// all_allies return every candidate; random_* draws one via rngStream;
// lowest_hp_* picks the minimum current HP with tie-break (y,x) then
// instanceId ascending. area expands the chosen anchor to every unit of the
// relevant team within areaSize of the anchor's cell.
func Select(ability catalog.Ability, candidates []*unit.BattleUnit, allUnits []*unit.BattleUnit, caster *unit.BattleUnit, rngStream *rng.Stream) []*unit.BattleUnit {
	switch ability.TargetType {
	case catalog.TargetSelf:
		return candidates

	case catalog.TargetAllEnemies, catalog.TargetAllAllies:
		return candidates

	case catalog.TargetRandomEnemy, catalog.TargetRandomAlly:
		if len(candidates) == 0 {
			return nil
		}
		idx := rngStream.IntRange(len(candidates))
		return []*unit.BattleUnit{candidates[idx]}

	case catalog.TargetLowestHPAlly, catalog.TargetLowestHPEnemy:
		return []*unit.BattleUnit{LowestHP(candidates)}

	case catalog.TargetArea:
		anchor := LowestHP(candidates)
		if anchor == nil {
			return nil
		}
		return AreaUnits(anchor.Position, ability.AreaSize, anchor.Team, allUnits)

	default: // ally, enemy: single legal target (caller enforces exactly one)
		if len(candidates) == 0 {
			return nil
		}
		return []*unit.BattleUnit{candidates[0]}
	}
}

// Resolve is the end-to-end targeting pipeline: filter candidates, then
// apply the selection policy. Returns an empty slice if the ability has no
// legal target right now.
func Resolve(caster *unit.BattleUnit, ability catalog.Ability, allUnits []*unit.BattleUnit, rngStream *rng.Stream) []*unit.BattleUnit {
	candidates := Candidates(caster, ability, allUnits)
	if len(candidates) == 0 {
		return nil
	}
	return Select(ability, candidates, allUnits, caster, rngStream)
}

// LowestHP returns the candidate with the minimum CurrentHP, tie-broken by
// lower (y, x) then ascending InstanceID. Returns nil for an empty slice.
func LowestHP(candidates []*unit.BattleUnit) *unit.BattleUnit {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best
}

func better(a, b *unit.BattleUnit) bool {
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

// AreaUnits returns every live unit of teamFilter within Chebyshev areaSize
// of center.
func AreaUnits(center grid.Position, areaSize int, teamFilter grid.Team, allUnits []*unit.BattleUnit) []*unit.BattleUnit {
	out := make([]*unit.BattleUnit, 0)
	for _, u := range allUnits {
		if !u.Alive || u.Team != teamFilter {
			continue
		}
		if grid.Distance(center, u.Position) <= areaSize {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceID < out[j].InstanceID })
	return out
}
