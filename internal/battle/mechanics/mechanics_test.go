package mechanics

import (
	"testing"

	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/rng"
	"fight-club/internal/battle/state"
	"fight-club/internal/battle/status"
	"fight-club/internal/battle/unit"
)

func newUnit(id string, team grid.Team, role catalog.Role, pos grid.Position) *unit.BattleUnit {
	tmpl := catalog.UnitTemplate{
		ID: "test", Role: role,
		Stats: catalog.Stats{HP: 100, Atk: 10, AtkCount: 1, Armor: 5, Speed: 5, Initiative: 5, Dodge: 0},
	}
	return unit.New(id, team, tmpl, pos)
}

func newStateWith(units ...*unit.BattleUnit) *state.BattleState {
	return state.New(units, rng.New(1))
}

func TestFacingHandlerRecordsThenReadsDirection(t *testing.T) {
	s := newStateWith()
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 5, Y: 5})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 0, Y: 5})

	facingHandler(s, Context{ActiveUnit: u, Action: ActionMove})
	if u.Tags == nil {
		t.Fatal("expected Tags initialized after a move action")
	}

	facingHandler(s, Context{ActiveUnit: u, Target: tgt, Action: ActionAttack})
	if u.Tags["facing_dx"] != 5 || u.Tags["facing_dy"] != 0 {
		t.Fatalf("expected facing_dx=5 facing_dy=0, got %v %v", u.Tags["facing_dx"], u.Tags["facing_dy"])
	}
}

func TestResolveHandlerClearsTags(t *testing.T) {
	s := newStateWith()
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	u.Tags["scratch"] = 1

	resolveHandler(s, Context{ActiveUnit: u})
	if len(u.Tags) != 0 {
		t.Fatalf("expected Tags cleared, got %v", u.Tags)
	}
}

func TestEngagementHandlerBuffsArmorWhenAdjacentToEnemy(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 1})
	enemy := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 2})
	s := newStateWith(u, enemy)

	engagementHandler(s, Context{ActiveUnit: u})
	if got := status.ModifiedStats(u).Armor; got != 7 {
		t.Fatalf("expected armor buffed from 5 to 7, got %d", got)
	}
}

func TestEngagementHandlerNoOpWithoutAdjacentEnemy(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 1})
	enemy := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 9, Y: 9})
	s := newStateWith(u, enemy)

	engagementHandler(s, Context{ActiveUnit: u})
	if got := status.ModifiedStats(u).Armor; got != 5 {
		t.Fatalf("expected armor unchanged at 5, got %d", got)
	}
}

func TestFlankingHandlerDebuffsArmorFromOutsideFacing(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 5, Y: 5})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 0, Y: 5})
	s := newStateWith(u, tgt)

	tgt.Tags["facing_dx"], tgt.Tags["facing_dy"] = 10, 0 // tgt was last facing far in +x
	flankingHandler(s, Context{ActiveUnit: u, Target: tgt})

	if got := status.ModifiedStats(tgt).Armor; got != 2 {
		t.Fatalf("expected target armor debuffed from 5 to 2, got %d", got)
	}
}

func TestFlankingHandlerNoOpWithoutFacingTags(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{})
	s := newStateWith(u, tgt)

	flankingHandler(s, Context{ActiveUnit: u, Target: tgt})
	if got := status.ModifiedStats(tgt).Armor; got != 5 {
		t.Fatalf("expected armor unchanged without facing tags, got %d", got)
	}
}

func TestRiposteHandlerBuffsSurvivingTarget(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{})
	s := newStateWith(u, tgt)

	riposteHandler(s, Context{ActiveUnit: u, Target: tgt})
	if got := status.ModifiedStats(tgt).Initiative; got != 7 {
		t.Fatalf("expected target initiative buffed from 5 to 7, got %d", got)
	}
}

func TestRiposteHandlerSkipsDeadTarget(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{})
	tgt.Alive = false
	s := newStateWith(u, tgt)

	riposteHandler(s, Context{ActiveUnit: u, Target: tgt})
	if len(tgt.StatusEffects) != 0 {
		t.Fatal("expected no riposte buff applied to a dead target")
	}
}

func TestInterceptHandlerGrantsAdjacentEnemySpeed(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 1})
	enemy := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 2})
	s := newStateWith(u, enemy)

	interceptHandler(s, Context{ActiveUnit: u})
	if got := status.ModifiedStats(enemy).Speed; got != 6 {
		t.Fatalf("expected enemy speed buffed from 5 to 6, got %d", got)
	}
}

func TestAuraHandlerBuffsEveryNearbyAlly(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleSupport, grid.Position{X: 5, Y: 5})
	near := newUnit("b", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 5, Y: 6})
	far := newUnit("c", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 5, Y: 9})
	s := newStateWith(u, near, far)

	auraHandler(s, Context{ActiveUnit: u})
	if got := status.ModifiedStats(near).Initiative; got != 6 {
		t.Fatalf("expected nearby ally initiative buffed from 5 to 6, got %d", got)
	}
	if got := status.ModifiedStats(far).Initiative; got != 5 {
		t.Fatalf("expected far-away ally left unbuffed at 5, got %d", got)
	}
}

func TestChargeHandlerBuffsAttackAfterLongMove(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	s := newStateWith(u)

	chargeHandler(s, Context{ActiveUnit: u, Action: ActionMove})
	chargeHandler(s, Context{ActiveUnit: u, Action: ActionMove})
	chargeHandler(s, Context{ActiveUnit: u, Action: ActionAttack})

	if got := status.ModifiedStats(u).Atk; got != 12 {
		t.Fatalf("expected atk buffed 20%% from 10 to 12 after two move actions, got %d", got)
	}
}

func TestChargeHandlerNoBuffBelowThreshold(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	s := newStateWith(u)

	chargeHandler(s, Context{ActiveUnit: u, Action: ActionMove})
	chargeHandler(s, Context{ActiveUnit: u, Action: ActionAttack})

	if got := status.ModifiedStats(u).Atk; got != 10 {
		t.Fatalf("expected atk unchanged at 10 after only one move action, got %d", got)
	}
}

func TestOverwatchHandlerBuffsDodgeOnNoAction(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	s := newStateWith(u)

	overwatchHandler(s, Context{ActiveUnit: u, Action: ActionNone})
	if got := status.ModifiedStats(u).Dodge; got != 10 {
		t.Fatalf("expected dodge buffed from 0 to 10, got %d", got)
	}
}

func TestOverwatchHandlerNoOpWhenActed(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	s := newStateWith(u)

	overwatchHandler(s, Context{ActiveUnit: u, Action: ActionAttack})
	if got := status.ModifiedStats(u).Dodge; got != 0 {
		t.Fatalf("expected dodge unchanged at 0, got %d", got)
	}
}

func TestPhalanxHandlerBuffsArmorWithTwoAdjacentAllies(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleTank, grid.Position{X: 5, Y: 5})
	ally1 := newUnit("b", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 4, Y: 5})
	ally2 := newUnit("c", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 6, Y: 5})
	s := newStateWith(u, ally1, ally2)

	phalanxHandler(s, Context{ActiveUnit: u})
	if got := status.ModifiedStats(u).Armor; got != 6 {
		t.Fatalf("expected armor buffed from 5 to 6 with 2 adjacent allies, got %d", got)
	}
}

func TestPhalanxHandlerNoOpWithOneAdjacentAlly(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleTank, grid.Position{X: 5, Y: 5})
	ally1 := newUnit("b", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 4, Y: 5})
	s := newStateWith(u, ally1)

	phalanxHandler(s, Context{ActiveUnit: u})
	if got := status.ModifiedStats(u).Armor; got != 5 {
		t.Fatalf("expected armor unchanged with only 1 adjacent ally, got %d", got)
	}
}

func TestLineOfSightHandlerGrantsDodgeWhenBlocked(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleRangedDPS, grid.Position{X: 0, Y: 0})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 4, Y: 0})
	blocker := newUnit("c", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 2, Y: 0})
	s := newStateWith(u, tgt, blocker)

	lineOfSightHandler(s, Context{ActiveUnit: u, Target: tgt})
	if got := status.ModifiedStats(tgt).Dodge; got != 100 {
		t.Fatalf("expected target dodge buffed to 100 when blocked, got %d", got)
	}
}

func TestLineOfSightHandlerNoOpWhenClear(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleRangedDPS, grid.Position{X: 0, Y: 0})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 4, Y: 0})
	s := newStateWith(u, tgt)

	lineOfSightHandler(s, Context{ActiveUnit: u, Target: tgt})
	if got := status.ModifiedStats(tgt).Dodge; got != 0 {
		t.Fatalf("expected dodge unchanged with no blocker, got %d", got)
	}
}

func TestAmmunitionHandlerDepletesAfterTenShots(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleRangedDPS, grid.Position{})
	s := newStateWith(u)

	for i := 0; i < 11; i++ {
		ammunitionHandler(s, Context{ActiveUnit: u, Action: ActionAttack})
	}
	ammunitionHandler(s, Context{ActiveUnit: u, Action: ActionNone})

	if got := status.ModifiedStats(u).Atk; got != 8 {
		t.Fatalf("expected atk debuffed from 10 to 8 past 10 shots, got %d", got)
	}
}

func TestAmmunitionHandlerIgnoresNonRangedUnits(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	s := newStateWith(u)

	for i := 0; i < 11; i++ {
		ammunitionHandler(s, Context{ActiveUnit: u, Action: ActionAttack})
	}
	ammunitionHandler(s, Context{ActiveUnit: u, Action: ActionNone})

	if got := status.ModifiedStats(u).Atk; got != 10 {
		t.Fatalf("expected melee unit's atk unaffected by ammunition tracking, got %d", got)
	}
}

func TestContagionHandlerSpreadsDotToAdjacentEnemy(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 1})
	enemy := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 2})
	s := newStateWith(u, enemy)
	status.Apply(u, "src", "poison", catalog.Effect{Kind: catalog.EffectDoT, Value: 3, Duration: 2}, 1)

	contagionHandler(s, Context{ActiveUnit: u})
	if len(enemy.StatusEffects) != 1 || enemy.StatusEffects[0].Effect.Kind != catalog.EffectDoT {
		t.Fatalf("expected the DoT to spread to the adjacent enemy, got %+v", enemy.StatusEffects)
	}
}

func TestContagionHandlerNoOpWithoutDot(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 1})
	enemy := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 1, Y: 2})
	s := newStateWith(u, enemy)

	contagionHandler(s, Context{ActiveUnit: u})
	if len(enemy.StatusEffects) != 0 {
		t.Fatal("expected no effect spread without an active DoT on the active unit")
	}
}

func TestArmorShredHandlerDebuffsStruckTarget(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{})
	s := newStateWith(u, tgt)

	armorShredHandler(s, Context{ActiveUnit: u, Target: tgt})
	if got := status.ModifiedStats(tgt).Armor; got != 4 {
		t.Fatalf("expected target armor shredded from 5 to 4, got %d", got)
	}
}

func TestArmorShredHandlerSkipsDeadTarget(t *testing.T) {
	u := newUnit("a", grid.TeamPlayer, catalog.RoleMeleeDPS, grid.Position{})
	tgt := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{})
	tgt.Alive = false
	s := newStateWith(u, tgt)

	armorShredHandler(s, Context{ActiveUnit: u, Target: tgt})
	if len(tgt.StatusEffects) != 0 {
		t.Fatal("expected no armor shred applied to a dead target")
	}
}

func TestProcessorRunsOnlyHandlersRegisteredForPhase(t *testing.T) {
	p := New(Config{Engagement: true, Phalanx: true})
	u := newUnit("a", grid.TeamPlayer, catalog.RoleTank, grid.Position{X: 5, Y: 5})
	enemy := newUnit("b", grid.TeamBot, catalog.RoleMeleeDPS, grid.Position{X: 5, Y: 6})
	s := newStateWith(u, enemy)

	out := p.Process(PhaseTurnStart, s, Context{ActiveUnit: u})
	if out != s {
		t.Fatal("expected Process to return the same state pointer it was given")
	}
	// Phalanx is registered for turn_start; engagement is not, so only the
	// phalanx-style "no adjacent allies" no-op should apply here - confirm
	// no armor buff leaked in from a phase this config didn't register.
	if got := status.ModifiedStats(u).Armor; got != 5 {
		t.Fatalf("expected armor unchanged (no phalanx allies, engagement not in this phase), got %d", got)
	}
}

func TestProcessorNoHandlersIsIdentity(t *testing.T) {
	p := New(MVP)
	u := newUnit("a", grid.TeamPlayer, catalog.RoleTank, grid.Position{})
	s := newStateWith(u)

	out := p.Process(PhaseAttack, s, Context{ActiveUnit: u})
	if out != s {
		t.Fatal("expected MVP preset's Process to return the same state unchanged")
	}
}
