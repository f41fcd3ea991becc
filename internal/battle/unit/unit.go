// Package unit defines the mutable per-battle unit instance the rest of the
// simulator reads and transforms. BattleUnit carries a read-only template
// reference (see catalog.UnitTemplate) plus the state that changes turn to
// turn: position, HP, cooldowns, and status effects.
package unit

import (
	"fmt"

	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/grid"
)

// Shield is a consumable damage absorber, depleted before currentHp.
type Shield struct {
	ID     string
	Amount float64
}

// StatusEffectInstance is one applied status effect on a unit.
type StatusEffectInstance struct {
	ID                   string
	SourceAbilityID      string
	SourceUnitInstanceID string
	Effect               catalog.Effect
	RemainingDuration    int
	Stacks               int
}

// BattleUnit is a live, mutable combat participant.
type BattleUnit struct {
	InstanceID string
	Team       grid.Team
	Template   catalog.UnitTemplate

	Position  grid.Position
	Alive     bool
	CurrentHP int
	MaxHP     int

	AbilityCooldowns map[string]int
	StatusEffects    []*StatusEffectInstance
	Shields          []Shield

	// Derived flags, recomputed whenever StatusEffects changes.
	IsStunned    bool
	HasTaunt     bool
	TauntedUntil int // rounds remaining the taunt derived flag will hold

	// Per-passive trigger counts and internal cooldowns, keyed by ability
	// id. exec.TriggerPassives consults these to enforce a passive's
	// MaxTriggers/InternalCooldown; exec.TickPassiveCooldowns decrements
	// PassiveCooldown once per unit turn.
	PassiveTriggerCount map[string]int
	PassiveCooldown     map[string]int

	// Tags is scratch space the mechanic handlers use to pass values between
	// phases and turns (facing_dx/facing_dy, charge_distance, shots_fired).
	// The core pipeline never reads or clears it; only the resolve mechanic
	// empties it, at the end of the unit's turn.
	Tags map[string]float64
}

// New creates a fresh BattleUnit instance from a template.
func New(instanceID string, team grid.Team, tmpl catalog.UnitTemplate, pos grid.Position) *BattleUnit {
	return &BattleUnit{
		InstanceID:          instanceID,
		Team:                team,
		Template:            tmpl,
		Position:            pos,
		Alive:               true,
		CurrentHP:           tmpl.Stats.HP,
		MaxHP:               tmpl.Stats.HP,
		AbilityCooldowns:    make(map[string]int),
		StatusEffects:       nil,
		Shields:             nil,
		PassiveTriggerCount: make(map[string]int),
		PassiveCooldown:     make(map[string]int),
		Tags:                make(map[string]float64),
	}
}

// InstanceIDFor formats the canonical "{team}_{templateId}_{index}" id.
func InstanceIDFor(team grid.Team, templateID string, index int) string {
	return fmt.Sprintf("%s_%s_%d", team, templateID, index)
}

// RecomputeFlags recomputes IsStunned/HasTaunt from the current
// StatusEffects list: "some active effect of that kind with duration > 0".
func (u *BattleUnit) RecomputeFlags() {
	u.IsStunned = false
	u.HasTaunt = false
	for _, se := range u.StatusEffects {
		if se.RemainingDuration <= 0 {
			continue
		}
		switch se.Effect.Kind {
		case catalog.EffectStun:
			u.IsStunned = true
		case catalog.EffectTaunt:
			u.HasTaunt = true
		}
	}
}

// ApplyDamage subtracts shields (FIFO) then currentHp, clamped to
// [0, maxHp], and updates Alive. Returns the amount actually removed from HP
// (post-shield) for event reporting.
func (u *BattleUnit) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	remaining := amount
	for len(u.Shields) > 0 && remaining > 0 {
		s := &u.Shields[0]
		if float64(remaining) >= s.Amount {
			remaining -= int(s.Amount)
			u.Shields = u.Shields[1:]
		} else {
			s.Amount -= float64(remaining)
			remaining = 0
		}
	}
	if remaining > 0 {
		u.CurrentHP -= remaining
		if u.CurrentHP < 0 {
			u.CurrentHP = 0
		}
	}
	u.Alive = u.CurrentHP > 0
	return remaining
}

// ApplyHeal adds to currentHp, clamped to maxHp. Dead units cannot be healed.
func (u *BattleUnit) ApplyHeal(amount int) int {
	if !u.Alive || amount <= 0 {
		return 0
	}
	before := u.CurrentHP
	u.CurrentHP += amount
	if u.CurrentHP > u.MaxHP {
		u.CurrentHP = u.MaxHP
	}
	return u.CurrentHP - before
}

