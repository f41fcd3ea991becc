package sim

import (
	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/grid"
)

// validateSide checks setup against the precondition order spec.md §6 and
// §4.1 require: length, then per-position unit-id/bounds/zone/duplicate
// checks in that order. Returns the first violated Reason, or "" if setup
// is valid.
func validateSide(team grid.Team, setup TeamSetup) Reason {
	if len(setup.UnitIDs) != len(setup.Positions) {
		return ReasonLengthMismatch
	}
	if setup.StatOverrides != nil && len(setup.StatOverrides) != len(setup.UnitIDs) {
		return ReasonLengthMismatch
	}

	seen := make(map[grid.Position]bool, len(setup.Positions))
	for i, id := range setup.UnitIDs {
		if _, ok := catalog.LookupUnit(id); !ok {
			return ReasonUnknownUnitId
		}
		pos := setup.Positions[i]
		if !grid.InBounds(pos) {
			return ReasonPositionOutOfBounds
		}
		if !grid.InDeploymentZone(team, pos) {
			return ReasonPositionOutsideDeploymentZone
		}
		if seen[pos] {
			return ReasonDuplicatePositions
		}
		seen[pos] = true
	}
	return ""
}
