// Package mechanics implements the pluggable phase-hook protocol: six named
// phases, a registry of 14 optional mechanic handlers, and three named
// presets (MVP/TACTICAL/ROGUELIKE) selecting which handlers are active. A
// handler's (state, context) -> state signature lets Process fold a phase's
// handlers in sequence, but, like the rest of the turn pipeline (see
// exec.Attack/Move/Ability), a handler mutates the units reachable from s
// directly and returns the same state - units are shared pointers for the
// lifetime of one simulation, not deep-copied per step. With the MVP preset
// no handler is ever registered, so Process is the identity on state.
package mechanics

import (
	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/rng"
	"fight-club/internal/battle/state"
	"fight-club/internal/battle/status"
	"fight-club/internal/battle/unit"
)

// Phase names one of the six points in a unit's turn pipeline a mechanic may
// hook into.
type Phase string

const (
	PhaseTurnStart Phase = "turn_start"
	PhaseMovement  Phase = "movement"
	PhasePreAttack Phase = "pre_attack"
	PhaseAttack    Phase = "attack"
	PhasePostAttack Phase = "post_attack"
	PhaseTurnEnd   Phase = "turn_end"
)

// ActionKind mirrors the decision ai.Decide produced for this turn, passed
// through so handlers can tell what's about to happen (or just happened)
// without importing the ai package.
type ActionKind string

const (
	ActionNone    ActionKind = "none"
	ActionMove    ActionKind = "move"
	ActionAttack  ActionKind = "attack"
	ActionAbility ActionKind = "ability"
)

// Context carries the per-turn information a handler needs beyond the
// state itself.
type Context struct {
	ActiveUnit *unit.BattleUnit
	Target     *unit.BattleUnit // nil if the action has no single target
	Action     ActionKind
	Seed       *rng.Stream
}

// Handler is a single mechanic's contribution to a phase: it reads s and ctx,
// mutates whichever units in s.Units it needs to (directly, through the
// shared pointers ctx carries), and returns s so Process can keep folding.
type Handler func(s *state.BattleState, ctx Context) *state.BattleState

// Config selects which of the 14 named mechanics are active. A false (zero)
// value disables that mechanic entirely - no handler is registered for it in
// any phase.
type Config struct {
	Facing      bool
	Resolve     bool
	Engagement  bool
	Flanking    bool
	Riposte     bool
	Intercept   bool
	Aura        bool
	Charge      bool
	Overwatch   bool
	Phalanx     bool
	LineOfSight bool
	Ammunition  bool
	Contagion   bool
	ArmorShred  bool
}

// MVP is the no-op preset: every mechanic disabled.
var MVP = Config{}

// Tactical enables the six lower-tier mechanics.
var Tactical = Config{
	Facing: true, Resolve: true, Engagement: true,
	Flanking: true, Riposte: true, Intercept: true,
}

// Roguelike enables all 14 mechanics.
var Roguelike = Config{
	Facing: true, Resolve: true, Engagement: true, Flanking: true, Riposte: true,
	Intercept: true, Aura: true, Charge: true, Overwatch: true, Phalanx: true,
	LineOfSight: true, Ammunition: true, Contagion: true, ArmorShred: true,
}

// Processor dispatches each phase to its dependency-ordered handler list.
type Processor struct {
	handlers map[Phase][]Handler
}

// New builds a Processor from cfg. Registration order within a phase is the
// mechanic registry's fixed order from spec.md §4.11, which doubles as the
// dependency order between mechanics that touch the same phase.
func New(cfg Config) *Processor {
	p := &Processor{handlers: make(map[Phase][]Handler)}

	register := func(enabled bool, h Handler, phases ...Phase) {
		if !enabled {
			return
		}
		for _, ph := range phases {
			p.handlers[ph] = append(p.handlers[ph], h)
		}
	}

	register(cfg.Facing, facingHandler, PhaseMovement, PhaseAttack)
	register(cfg.Resolve, resolveHandler, PhaseTurnEnd, PhasePostAttack)
	register(cfg.Engagement, engagementHandler, PhasePreAttack, PhaseMovement)
	register(cfg.Flanking, flankingHandler, PhasePreAttack)
	register(cfg.Riposte, riposteHandler, PhasePostAttack)
	register(cfg.Intercept, interceptHandler, PhaseMovement)
	register(cfg.Aura, auraHandler, PhaseTurnStart, PhaseTurnEnd)
	register(cfg.Charge, chargeHandler, PhaseMovement, PhaseAttack)
	register(cfg.Overwatch, overwatchHandler, PhaseTurnEnd)
	register(cfg.Phalanx, phalanxHandler, PhaseTurnStart)
	register(cfg.LineOfSight, lineOfSightHandler, PhasePreAttack)
	register(cfg.Ammunition, ammunitionHandler, PhaseAttack, PhaseTurnEnd)
	register(cfg.Contagion, contagionHandler, PhaseTurnEnd, PhasePostAttack)
	register(cfg.ArmorShred, armorShredHandler, PhasePostAttack)

	return p
}

// Process folds every handler registered for phase over s, in registration
// order. With no handlers registered for phase (always true under MVP), it
// returns s unchanged.
func (p *Processor) Process(phase Phase, s *state.BattleState, ctx Context) *state.BattleState {
	for _, h := range p.handlers[phase] {
		s = h(s, ctx)
	}
	return s
}

// applyTimedModifier is the shared path every buff/debuff-granting mechanic
// below uses: a flat stat modifier lasting duration rounds, applied through the regular
// status-effect engine, tagged with a "mechanic:<name>" source ability id so
// it never collides with a real ability's stacking group.
func applyTimedModifier(s *state.BattleState, target *unit.BattleUnit, mechanicName string, stat catalog.StatKind, flatValue float64, duration int) *state.BattleState {
	status.Apply(target, "mechanics", "mechanic:"+mechanicName, catalog.Effect{
		Kind: catalog.EffectBuff, Stat: stat, Value: flatValue, Duration: duration,
	}, s.NextEffectSeq())
	return s
}

// facingHandler makes sure the active unit has a Tags map on a move action
// and, on an attack or ability action with a target, stores the active
// unit's offset from that target (attacker minus target) in
// Tags["facing_dx"]/Tags["facing_dy"]. No move direction is recorded.
// flankingHandler reads these tags from the unit it debuffs.
func facingHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u := ctx.ActiveUnit
	switch ctx.Action {
	case ActionMove:
		if u.Tags == nil {
			u.Tags = make(map[string]float64)
		}
	case ActionAttack, ActionAbility:
		if ctx.Target == nil {
			return s
		}
		dx := float64(u.Position.X - ctx.Target.Position.X)
		dy := float64(u.Position.Y - ctx.Target.Position.Y)
		u.Tags["facing_dx"], u.Tags["facing_dy"] = dx, dy
	}
	return s
}

// resolveHandler clears one-round scratch tags at turn end so a mechanic's
// per-turn state never leaks into the next unit's turn.
func resolveHandler(s *state.BattleState, ctx Context) *state.BattleState {
	if ctx.ActiveUnit.Tags != nil {
		for k := range ctx.ActiveUnit.Tags {
			delete(ctx.ActiveUnit.Tags, k)
		}
	}
	return s
}

// engagementHandler grants a +2 armor buff to a unit standing adjacent to an
// enemy at the start of its movement decision, modeling reluctance to
// disengage from melee.
func engagementHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u := ctx.ActiveUnit
	for _, other := range s.Units {
		if other.Alive && other.Team != u.Team && grid.Distance(u.Position, other.Position) == 1 {
			return applyTimedModifier(s, u, "engagement", catalog.StatArmor, 2, 1)
		}
	}
	return s
}

// flankingHandler applies a -3 armor debuff to the target when the target's
// own facing tags (written by facingHandler on its last attack) are set and
// span at least 2 cells (dx*dx+dy*dy >= 4). The attacker's position is not
// compared against that facing.
func flankingHandler(s *state.BattleState, ctx Context) *state.BattleState {
	t := ctx.Target
	if t == nil || t.Tags == nil {
		return s
	}
	fdx, okx := t.Tags["facing_dx"]
	fdy, oky := t.Tags["facing_dy"]
	if !okx || !oky {
		return s
	}
	if fdx*fdx+fdy*fdy < 4 {
		return s
	}
	return applyTimedModifier(s, t, "flanking", catalog.StatArmor, -3, 1)
}

// riposteHandler gives a unit that survived an attack this round a one-round
// initiative boost next round, modeling a counter-stance.
func riposteHandler(s *state.BattleState, ctx Context) *state.BattleState {
	t := ctx.Target
	if t == nil || !t.Alive {
		return s
	}
	// Duration 2: the buff survives the next round's status tick, so it is
	// in place when that round's turn queue is built.
	return applyTimedModifier(s, t, "riposte", catalog.StatInitiative, 2, 2)
}

// interceptHandler runs when the active unit is about to move: the first
// living enemy adjacent to it (in s.Units order) gets a flat +1 speed buff
// for one round. The active unit's own movement is not restricted.
func interceptHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u := ctx.ActiveUnit
	for _, other := range s.Units {
		if other.Alive && other.Team != u.Team && grid.Distance(u.Position, other.Position) == 1 {
			return applyTimedModifier(s, other, "intercept", catalog.StatSpeed, 1, 1)
		}
	}
	return s
}

// auraHandler grants every living unit of the active unit's team within 2
// cells of it (the active unit included) a flat +1 initiative buff of
// duration 1. It runs at turn start and again at turn end; the second call
// refreshes the same buff instead of stacking it, and the buff lasts until
// the next round's status tick.
func auraHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u := ctx.ActiveUnit
	for _, ally := range s.Units {
		if ally.Alive && ally.Team == u.Team && grid.Distance(u.Position, ally.Position) <= 2 {
			s = applyTimedModifier(s, ally, "aura", catalog.StatInitiative, 1, 1)
		}
	}
	return s
}

// chargeHandler counts the active unit's move actions in
// Tags["charge_distance"] (one per movement-phase call, whatever the path
// length) and, on an attack action, grants a +20% attack buff once that
// count is 2 or more. Cells moved are not counted.
func chargeHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u := ctx.ActiveUnit
	switch ctx.Action {
	case ActionMove:
		if u.Tags == nil {
			u.Tags = make(map[string]float64)
		}
		u.Tags["charge_distance"]++
	case ActionAttack:
		if u.Tags["charge_distance"] >= 2 {
			status.Apply(u, "mechanics", "mechanic:charge", catalog.Effect{
				Kind: catalog.EffectBuff, Stat: catalog.StatAtk, Value: 0.2, Percentage: true, Duration: 1,
			}, s.NextEffectSeq())
		}
	}
	return s
}

// overwatchHandler grants a unit that took no action this turn (stunned, or
// no valid action found) a one-round dodge buff, modeling a held position.
func overwatchHandler(s *state.BattleState, ctx Context) *state.BattleState {
	if ctx.Action != ActionNone {
		return s
	}
	return applyTimedModifier(s, ctx.ActiveUnit, "overwatch", catalog.StatDodge, 10, 1)
}

// phalanxHandler grants +1 armor to a unit with 2+ living allies adjacent to
// it at turn start, modeling a shield line.
func phalanxHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u := ctx.ActiveUnit
	count := 0
	for _, ally := range s.Units {
		if ally.Alive && ally != u && ally.Team == u.Team && grid.Distance(u.Position, ally.Position) == 1 {
			count++
		}
	}
	if count >= 2 {
		return applyTimedModifier(s, u, "phalanx", catalog.StatArmor, 1, 1)
	}
	return s
}

// lineOfSightHandler grants the target a +100 dodge buff for one round when
// the target is more than 1 cell away and any other living unit, of either
// team, sits strictly between attacker and target on the straight line
// joining them.
func lineOfSightHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u, t := ctx.ActiveUnit, ctx.Target
	if t == nil || grid.Distance(u.Position, t.Position) <= 1 {
		return s
	}
	for _, blocker := range s.Units {
		if !blocker.Alive || blocker == u || blocker == t {
			continue
		}
		if onSegment(u.Position, t.Position, blocker.Position) {
			return applyTimedModifier(s, t, "line_of_sight", catalog.StatDodge, 100, 1)
		}
	}
	return s
}

func onSegment(a, b, p grid.Position) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	px, py := p.X-a.X, p.Y-a.Y
	if dx*py-dy*px != 0 {
		return false
	}
	if dx == 0 && dy == 0 {
		return false
	}
	t := 0.0
	if dx != 0 {
		t = float64(px) / float64(dx)
	} else {
		t = float64(py) / float64(dy)
	}
	return t > 0 && t < 1
}

// ammunitionHandler tracks a ranged unit's shots fired this battle
// (Tags["shots_fired"]); past 10 shots it loses its attack-count bonus by
// way of a flat attack debuff, modeling ammunition depletion.
func ammunitionHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u := ctx.ActiveUnit
	if u.Template.Role != catalog.RoleRangedDPS {
		return s
	}
	switch ctx.Action {
	case ActionAttack:
		if u.Tags == nil {
			u.Tags = make(map[string]float64)
		}
		u.Tags["shots_fired"]++
	case ActionNone:
		if u.Tags["shots_fired"] > 10 {
			return applyTimedModifier(s, u, "ammunition", catalog.StatAtk, -2, 1)
		}
	}
	return s
}

// contagionHandler spreads any DoT effect on the active unit to one living
// adjacent enemy at turn end, modeling a plague-like mechanic.
func contagionHandler(s *state.BattleState, ctx Context) *state.BattleState {
	u := ctx.ActiveUnit
	for _, se := range u.StatusEffects {
		if se.Effect.Kind != catalog.EffectDoT {
			continue
		}
		for _, victim := range s.Units {
			if victim.Alive && victim.Team != u.Team && grid.Distance(u.Position, victim.Position) == 1 {
				status.Apply(victim, u.InstanceID, "mechanic:contagion", se.Effect, s.NextEffectSeq())
				return s
			}
		}
	}
	return s
}

// armorShredHandler applies a -1 armor debuff lasting 100 rounds to the
// living target of an attack or ability, whatever its damage type (tracked
// via a long-duration debuff rather than mutating the template). A repeat
// hit refreshes the same debuff instead of stacking it.
func armorShredHandler(s *state.BattleState, ctx Context) *state.BattleState {
	t := ctx.Target
	if t == nil || !t.Alive {
		return s
	}
	return applyTimedModifier(s, t, "armor_shred", catalog.StatArmor, -1, 100)
}
