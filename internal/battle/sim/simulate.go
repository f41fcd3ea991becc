package sim

import (
	"sort"
	"time"

	"fight-club/internal/battle/ai"
	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/event"
	"fight-club/internal/battle/exec"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/mechanics"
	"fight-club/internal/battle/rng"
	"fight-club/internal/battle/state"
	"fight-club/internal/battle/status"
	"fight-club/internal/battle/turnqueue"
	"fight-club/internal/battle/unit"
)

// maxRounds is the hard cap spec.md §4.12 pins; reaching it ends the battle
// in a draw.
const maxRounds = 100

// Simulate runs one battle to completion and returns its full event log and
// final outcome. It is a pure function of its inputs: identical arguments
// always produce a byte-identical result, and concurrent calls on disjoint
// inputs never interact.
func Simulate(playerTeam, enemyTeam TeamSetup, seed uint32, cfg MechanicsConfig) (*BattleResult, error) {
	start := time.Now()

	if reason := validateSide(grid.TeamPlayer, playerTeam); reason != "" {
		return nil, &InvalidTeamSetup{Side: grid.TeamPlayer, Reason: reason}
	}
	if reason := validateSide(grid.TeamBot, enemyTeam); reason != "" {
		return nil, &InvalidTeamSetup{Side: grid.TeamBot, Reason: reason}
	}

	units := instantiate(grid.TeamPlayer, playerTeam)
	units = append(units, instantiate(grid.TeamBot, enemyTeam)...)

	s := state.New(units, rng.New(uint64(seed)))
	processor := mechanics.New(cfg)

	var events []event.Event
	events = append(events, event.Event{
		Round: 0, Type: event.TypeRoundStart,
		Metadata: map[string]any{"note": "battle begins"},
	})

	for round := 1; round <= maxRounds; round++ {
		s.CurrentRound = round
		events = append(events, tickStatuses(s, round)...)
		events = append(events, event.Event{Round: round, Type: event.TypeRoundStart})

		queue := turnqueue.Build(s.Units)
		for _, u := range queue {
			if !u.Alive {
				continue
			}
			events = append(events, runTurn(s, processor, u, round)...)

			if winner, done := checkVictory(s); done {
				events = append(events, battleEndEvent(round, winner, "victory condition reached"))
				return buildResult(s, events, winner, round, seed, time.Since(start)), nil
			}
		}

		tickCooldowns(s)
	}

	events = append(events, battleEndEvent(maxRounds, WinnerDraw, "max rounds"))
	return buildResult(s, events, WinnerDraw, maxRounds, seed, time.Since(start)), nil
}

func instantiate(team grid.Team, setup TeamSetup) []*unit.BattleUnit {
	perTemplate := make(map[string]int)
	units := make([]*unit.BattleUnit, 0, len(setup.UnitIDs))
	for i, id := range setup.UnitIDs {
		tmpl, _ := catalog.LookupUnit(id)
		if i < len(setup.StatOverrides) {
			tmpl = applyStatOverride(tmpl, setup.StatOverrides[i])
		}
		index := perTemplate[id]
		perTemplate[id]++
		instanceID := unit.InstanceIDFor(team, id, index)
		units = append(units, unit.New(instanceID, team, tmpl, setup.Positions[i]))
	}
	return units
}

// applyStatOverride returns tmpl with any non-zero StatOverride fields
// substituted in. A nil ov is a no-op.
func applyStatOverride(tmpl catalog.UnitTemplate, ov *StatOverride) catalog.UnitTemplate {
	if ov == nil {
		return tmpl
	}
	if ov.HP != 0 {
		tmpl.Stats.HP = ov.HP
	}
	if ov.Armor != 0 {
		tmpl.Stats.Armor = ov.Armor
	}
	return tmpl
}

// tickStatuses runs status.Tick over every living unit, in a fixed
// InstanceID order so the resulting death events are reproducible
// regardless of append order from mid-battle summons.
func tickStatuses(s *state.BattleState, round int) []event.Event {
	ordered := make([]*unit.BattleUnit, 0, len(s.Units))
	for _, u := range s.Units {
		if u.Alive {
			ordered = append(ordered, u)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].InstanceID < ordered[j].InstanceID })

	var events []event.Event
	for _, u := range ordered {
		status.Tick(u)
		if !u.Alive {
			events = append(events, event.Event{Round: round, Type: event.TypeDeath, ActorID: u.InstanceID})
		}
	}
	return events
}

func tickCooldowns(s *state.BattleState) {
	for _, u := range s.Units {
		for id, remaining := range u.AbilityCooldowns {
			remaining--
			if remaining <= 0 {
				delete(u.AbilityCooldowns, id)
			} else {
				u.AbilityCooldowns[id] = remaining
			}
		}
	}
}

// runTurn executes one unit's full turn pipeline: turn_start, decision,
// phase hooks around the decided action, the action itself, then turn_end.
func runTurn(s *state.BattleState, p *mechanics.Processor, u *unit.BattleUnit, round int) []event.Event {
	turnSeed := s.Seed.Split(round, rng.HashUnit(u.InstanceID, u.Position.X, u.Position.Y))

	exec.TickPassiveCooldowns(u)
	s = p.Process(mechanics.PhaseTurnStart, s, mechanics.Context{ActiveUnit: u, Action: mechanics.ActionNone, Seed: turnSeed})
	events := exec.TriggerPassives(s, u, catalog.TriggerOnTurnStart, round)

	if u.IsStunned {
		s = p.Process(mechanics.PhaseTurnEnd, s, mechanics.Context{ActiveUnit: u, Action: mechanics.ActionNone, Seed: turnSeed})
		return events
	}

	decision := ai.Decide(s, u, turnSeed)
	actionKind := toMechanicsAction(decision.Kind)
	var primaryTarget *unit.BattleUnit
	if len(decision.Targets) > 0 {
		primaryTarget = decision.Targets[0]
	}
	ctx := mechanics.Context{ActiveUnit: u, Target: primaryTarget, Action: actionKind, Seed: turnSeed}

	switch decision.Kind {
	case ai.KindMove:
		s = p.Process(mechanics.PhaseMovement, s, ctx)
	case ai.KindAttack, ai.KindAbility:
		s = p.Process(mechanics.PhasePreAttack, s, ctx)
	}

	switch decision.Kind {
	case ai.KindMove:
		events = append(events, exec.Move(s, u, decision.Path, round)...)
	case ai.KindAttack:
		events = append(events, exec.Attack(s, u, primaryTarget, round)...)
	case ai.KindAbility:
		events = append(events, exec.Ability(s, u, decision.AbilityID, decision.Targets, round)...)
	}

	if decision.Kind == ai.KindAttack {
		s = p.Process(mechanics.PhaseAttack, s, ctx)
	}
	if decision.Kind == ai.KindAttack || decision.Kind == ai.KindAbility {
		s = p.Process(mechanics.PhasePostAttack, s, ctx)
	}
	s = p.Process(mechanics.PhaseTurnEnd, s, ctx)

	return events
}

func toMechanicsAction(k ai.Kind) mechanics.ActionKind {
	switch k {
	case ai.KindMove:
		return mechanics.ActionMove
	case ai.KindAttack:
		return mechanics.ActionAttack
	case ai.KindAbility:
		return mechanics.ActionAbility
	default:
		return mechanics.ActionNone
	}
}

// checkVictory reports whether one (or both) teams has zero living units.
func checkVictory(s *state.BattleState) (Winner, bool) {
	playerAlive := len(s.LiveUnitsOn(grid.TeamPlayer))
	botAlive := len(s.LiveUnitsOn(grid.TeamBot))
	switch {
	case playerAlive == 0 && botAlive == 0:
		return WinnerDraw, true
	case botAlive == 0:
		return WinnerPlayer, true
	case playerAlive == 0:
		return WinnerBot, true
	default:
		return "", false
	}
}

func battleEndEvent(round int, winner Winner, reason string) event.Event {
	return event.Event{
		Round: round, Type: event.TypeBattleEnd,
		Metadata: map[string]any{"winner": string(winner), "reason": reason},
	}
}

func buildResult(s *state.BattleState, events []event.Event, winner Winner, totalRounds int, seed uint32, elapsed time.Duration) *BattleResult {
	return &BattleResult{
		Events: events,
		Winner: winner,
		FinalState: FinalState{
			PlayerUnits: snapshot(s, grid.TeamPlayer),
			BotUnits:    snapshot(s, grid.TeamBot),
		},
		Metadata: ResultMetadata{TotalRounds: totalRounds, Seed: seed, DurationMs: elapsed.Milliseconds()},
	}
}

func snapshot(s *state.BattleState, team grid.Team) []UnitSnapshot {
	var out []UnitSnapshot
	for _, u := range s.Units {
		if u.Team != team {
			continue
		}
		out = append(out, UnitSnapshot{
			InstanceID: u.InstanceID, TemplateID: u.Template.ID, Position: u.Position,
			Alive: u.Alive, CurrentHP: u.CurrentHP, MaxHP: u.MaxHP,
		})
	}
	return out
}
