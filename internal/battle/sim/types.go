// Package sim is the battle simulator's public surface: Simulate is the
// sole entry point (spec.md §6), taking two team setups, a seed, and a
// mechanics configuration, and returning a fully materialized BattleResult.
// It performs no I/O and holds no state beyond the call.
package sim

import (
	"fmt"

	"fight-club/internal/battle/event"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/mechanics"
)

// MechanicsConfig selects which of the 14 named mechanics are active for a
// battle. Re-exported from the mechanics package so callers never need to
// import it directly.
type MechanicsConfig = mechanics.Config

// Named presets, re-exported for callers.
var (
	MVP       = mechanics.MVP
	Tactical  = mechanics.Tactical
	Roguelike = mechanics.Roguelike
)

// TeamSetup is one side's input: an ordered list of unit template ids and
// the matching ordered list of starting positions.
type TeamSetup struct {
	UnitIDs   []string
	Positions []grid.Position

	// StatOverrides optionally replaces a subset of each unit's base stats
	// at instantiation, index-aligned with UnitIDs/Positions. nil means no
	// overrides at all; a non-nil slice must be the same length as
	// UnitIDs, but individual entries may be nil ("use the template
	// unchanged"). Scripted scenarios (and tests) use this to field, e.g.,
	// a near-dead unit without inventing a one-off catalog template for it.
	StatOverrides []*StatOverride
}

// StatOverride replaces a subset of a unit's base stats at instantiation
// time. A zero field leaves that stat at the catalog template's value -
// there is no way to override a stat down to exactly zero.
type StatOverride struct {
	HP    int
	Armor int
}

// Reason tags why a TeamSetup was rejected.
type Reason string

const (
	ReasonLengthMismatch                 Reason = "LengthMismatch"
	ReasonDuplicatePositions              Reason = "DuplicatePositions"
	ReasonPositionOutOfBounds             Reason = "PositionOutOfBounds"
	ReasonPositionOutsideDeploymentZone   Reason = "PositionOutsideDeploymentZone"
	ReasonUnknownUnitId                   Reason = "UnknownUnitId"
)

// InvalidTeamSetup is the only error Simulate ever returns. It is always a
// pre-simulation validation failure; no partial simulation runs.
type InvalidTeamSetup struct {
	Side   grid.Team
	Reason Reason
}

func (e *InvalidTeamSetup) Error() string {
	return fmt.Sprintf("invalid team setup for %s: %s", e.Side, e.Reason)
}

// UnitSnapshot is one unit's state at the end of the battle.
type UnitSnapshot struct {
	InstanceID string
	TemplateID string
	Position   grid.Position
	Alive      bool
	CurrentHP  int
	MaxHP      int
}

// FinalState is the per-team snapshot of every unit (including summons) at
// the moment the battle ended.
type FinalState struct {
	PlayerUnits []UnitSnapshot
	BotUnits    []UnitSnapshot
}

// Winner tags the battle's outcome.
type Winner string

const (
	WinnerPlayer Winner = "player"
	WinnerBot    Winner = "bot"
	WinnerDraw   Winner = "draw"
)

// ResultMetadata carries bookkeeping about the run. DurationMs is wall-clock
// and is explicitly excluded from determinism checks (spec.md §4.12).
type ResultMetadata struct {
	TotalRounds int
	Seed        uint32
	DurationMs  int64
}

// BattleResult is Simulate's sole return value on success.
type BattleResult struct {
	Events     []event.Event
	Winner     Winner
	FinalState FinalState
	Metadata   ResultMetadata
}
