// Package grid implements the fixed 8x10 battle board: coordinate validity,
// deployment zones, Chebyshev distance, and neighbor enumeration.
//
// The board is small enough (80 cells) that occupancy is found by scanning
// the unit roster (see state.BattleState) rather than kept in a spatial
// hash - no cell bucketing is needed at this scale.
package grid

import "fmt"

const (
	// Width is the number of columns, x in [0, Width).
	Width = 8
	// Height is the number of rows, y in [0, Height).
	Height = 10
)

// Team identifies one of the two sides in a battle.
type Team string

const (
	TeamPlayer Team = "player"
	TeamBot    Team = "bot"
)

// Position is a board coordinate. The zero value (0,0) is a valid cell.
type Position struct {
	X int
	Y int
}

// String renders a position as "(x,y)" for logs and event payloads.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// InBounds reports whether p falls on the board.
func InBounds(p Position) bool {
	return p.X >= 0 && p.X < Width && p.Y >= 0 && p.Y < Height
}

// Distance returns the Chebyshev distance between a and b: max(|dx|, |dy|).
// Diagonal movement counts as a single step throughout the simulation.
func Distance(a, b Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Within reports whether b is within Chebyshev range r of a.
func Within(a, b Position, r int) bool {
	return Distance(a, b) <= r
}

// neighborOffsets enumerates the 8 adjacent cells in a fixed (y, x) order so
// any caller iterating them gets a deterministic sequence without sorting.
var neighborOffsets = [8]Position{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Neighbors returns the in-bounds cells adjacent to p, ordered by
// ascending (y, x) to keep every consumer (pathfinder, AI) deterministic.
func Neighbors(p Position) []Position {
	out := make([]Position, 0, 8)
	for _, off := range neighborOffsets {
		n := Position{X: p.X + off.X, Y: p.Y + off.Y}
		if InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// DeploymentZone returns the set of valid starting rows for a team.
func DeploymentZone(team Team) (minY, maxY int) {
	if team == TeamPlayer {
		return 0, 1
	}
	return Height - 2, Height - 1
}

// InDeploymentZone reports whether p is within team's deployment rows.
func InDeploymentZone(team Team, p Position) bool {
	minY, maxY := DeploymentZone(team)
	return InBounds(p) && p.Y >= minY && p.Y <= maxY
}

// ValidateDeployment checks that positions are distinct, in bounds, inside
// the team's deployment zone, and match unitCount - the full precondition
// for §4.1's deployment zone validator. It returns the first violated
// reason as a plain error. sim.Simulate does not call it; sim runs its own
// per-side validation, which returns the tagged InvalidTeamSetup reason.
func ValidateDeployment(team Team, positions []Position, unitCount int) error {
	if len(positions) != unitCount {
		return fmt.Errorf("length mismatch: %d positions for %d units", len(positions), unitCount)
	}

	seen := make(map[Position]bool, len(positions))
	for _, p := range positions {
		if !InBounds(p) {
			return fmt.Errorf("position out of bounds: %s", p)
		}
		if !InDeploymentZone(team, p) {
			return fmt.Errorf("position outside deployment zone: %s", p)
		}
		if seen[p] {
			return fmt.Errorf("duplicate position: %s", p)
		}
		seen[p] = true
	}
	return nil
}
