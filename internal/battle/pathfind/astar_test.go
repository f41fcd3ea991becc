package pathfind

import (
	"testing"

	"fight-club/internal/battle/grid"
)

func TestFindPathStraightLine(t *testing.T) {
	start := grid.Position{X: 0, Y: 0}
	target := grid.Position{X: 5, Y: 0}
	goal := func(p grid.Position) bool { return grid.Distance(p, target) <= 1 }
	blocked := func(p grid.Position) bool { return false }

	path := FindPath(start, target, goal, blocked)
	if len(path) == 0 {
		t.Fatal("expected a non-empty path")
	}
	if grid.Distance(path[len(path)-1], target) > 1 {
		t.Fatalf("final step %v not within goal distance of %v", path[len(path)-1], target)
	}
	for i := 1; i < len(path); i++ {
		if grid.Distance(path[i-1], path[i]) != 1 {
			t.Fatalf("non-adjacent consecutive steps: %v -> %v", path[i-1], path[i])
		}
	}
}

func TestFindPathReturnsNilWhenGoalAlreadySatisfied(t *testing.T) {
	start := grid.Position{X: 2, Y: 2}
	goal := func(p grid.Position) bool { return true }
	blocked := func(p grid.Position) bool { return false }
	if path := FindPath(start, start, goal, blocked); path != nil {
		t.Fatalf("expected nil path when start already satisfies goal, got %v", path)
	}
}

func TestFindPathGoesAroundObstacle(t *testing.T) {
	start := grid.Position{X: 0, Y: 4}
	target := grid.Position{X: 2, Y: 4}
	blocked := func(p grid.Position) bool { return p == grid.Position{X: 1, Y: 4} }
	goal := func(p grid.Position) bool { return p == target }

	path := FindPath(start, target, goal, blocked)
	if len(path) == 0 {
		t.Fatal("expected a path around the obstacle")
	}
	for _, p := range path {
		if blocked(p) {
			t.Fatalf("path steps through blocked cell %v", p)
		}
	}
}

func TestFindPathUnreachableReturnsNil(t *testing.T) {
	start := grid.Position{X: 0, Y: 0}
	target := grid.Position{X: 7, Y: 9}
	// Surround the start cell completely.
	blocked := func(p grid.Position) bool {
		return grid.Distance(p, start) == 1
	}
	goal := func(p grid.Position) bool { return p == target }

	if path := FindPath(start, target, goal, blocked); path != nil {
		t.Fatalf("expected nil path when start is fully enclosed, got %v", path)
	}
}

func TestFindPathTieBreaksByLowerYX(t *testing.T) {
	start := grid.Position{X: 4, Y: 4}
	target := grid.Position{X: 4, Y: 0}
	goal := func(p grid.Position) bool { return p == target }
	blocked := func(p grid.Position) bool { return false }

	// Several 4-step paths reach the target; every f-tie in the open set
	// goes to the lower (y, x) cell, which pins down this one.
	want := []grid.Position{{X: 3, Y: 3}, {X: 2, Y: 2}, {X: 3, Y: 1}, {X: 4, Y: 0}}
	path := FindPath(start, target, goal, blocked)
	if len(path) != len(want) {
		t.Fatalf("expected a shortest %d-step path, got %d steps: %v", len(want), len(path), path)
	}
	for i, p := range path {
		if p != want[i] {
			t.Fatalf("step %d = %v, want %v", i, p, want[i])
		}
	}
}
