// Package state defines BattleState, the unit roster and round/RNG
// bookkeeping the simulation loop threads through every phase and
// component. A single BattleState is owned by one Simulate call for its
// whole lifetime; exec and mechanics mutate the units it holds directly
// rather than copying state at each step, so nothing here is safe to share
// across concurrent battles.
package state

import (
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/rng"
	"fight-club/internal/battle/unit"
)

// BattleState is the simulation-internal state: the unit roster, the
// current round, and the battle's RNG stream. Occupied positions are
// derived from Units on demand rather than cached, since the board holds at
// most a few dozen units - recomputation is cheap and it can never drift.
type BattleState struct {
	Units        []*unit.BattleUnit
	CurrentRound int
	Seed         *rng.Stream

	// EffectSeq is a monotonically increasing counter handed to
	// status.Apply to keep status-effect instance ids unique within this
	// battle. It lives on the state value itself rather than as a package
	// global so Simulate has no shared mutable state across calls.
	EffectSeq int
}

// New builds the initial state for a battle from its already-instantiated
// units.
func New(units []*unit.BattleUnit, seed *rng.Stream) *BattleState {
	return &BattleState{Units: units, CurrentRound: 0, Seed: seed}
}

// NextEffectSeq increments and returns the next status-effect sequence
// number.
func (s *BattleState) NextEffectSeq() int {
	s.EffectSeq++
	return s.EffectSeq
}

// UnitAt returns the live unit occupying pos, if any. Occupancy is derived
// by scanning Units - the board is small enough (<=80 cells, a couple dozen
// units at most) that this never needs a cached index.
func (s *BattleState) UnitAt(pos grid.Position) (*unit.BattleUnit, bool) {
	for _, u := range s.Units {
		if u.Alive && u.Position == pos {
			return u, true
		}
	}
	return nil, false
}

// IsOccupied reports whether pos is occupied by a live unit other than
// excluding.
func (s *BattleState) IsOccupied(pos grid.Position, excluding *unit.BattleUnit) bool {
	u, ok := s.UnitAt(pos)
	return ok && u != excluding
}

// ByInstanceID looks up a unit by its instance id.
func (s *BattleState) ByInstanceID(id string) (*unit.BattleUnit, bool) {
	for _, u := range s.Units {
		if u.InstanceID == id {
			return u, true
		}
	}
	return nil, false
}

// LiveUnits returns every unit with Alive == true.
func (s *BattleState) LiveUnits() []*unit.BattleUnit {
	out := make([]*unit.BattleUnit, 0, len(s.Units))
	for _, u := range s.Units {
		if u.Alive {
			out = append(out, u)
		}
	}
	return out
}

// LiveUnitsOn returns every live unit on the given team.
func (s *BattleState) LiveUnitsOn(team grid.Team) []*unit.BattleUnit {
	out := make([]*unit.BattleUnit, 0, len(s.Units))
	for _, u := range s.Units {
		if u.Alive && u.Team == team {
			out = append(out, u)
		}
	}
	return out
}
