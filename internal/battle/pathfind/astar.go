// Package pathfind implements the A* search spec.md §4.6 specifies: live
// units (other than the mover) block cells, the heuristic is Chebyshev
// distance to the reference target cell, each step costs 1, and ties are
// broken by lower (y, x) so the result is identical across platforms and
// container iteration orders.
package pathfind

import (
	"container/heap"

	"fight-club/internal/battle/grid"
)

// Goal reports whether a candidate cell satisfies the path's destination -
// "get-into-range" (Chebyshev <= ability/attack range of target, cell
// unoccupied or the mover's own cell) or "adjacent to target" for a
// movement-only order.
type Goal func(p grid.Position) bool

// Occupied reports whether a cell is blocked by a live unit other than the
// mover.
type Occupied func(p grid.Position) bool

// FindPath runs A* from start toward the nearest cell satisfying goal, using
// Chebyshev distance to target as the heuristic (target is the unit or cell
// the goal is ultimately defined relative to - e.g. the unit being chased).
// Returns nil if start already satisfies goal, or if no path exists.
func FindPath(start, target grid.Position, goal Goal, blocked Occupied) []grid.Position {
	if goal(start) {
		return nil
	}

	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &node{pos: start, g: 0, f: grid.Distance(start, target)})

	cameFrom := make(map[grid.Position]grid.Position)
	gScore := map[grid.Position]int{start: 0}
	closed := make(map[grid.Position]bool)

	var goalPos grid.Position
	found := false

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if closed[current.pos] {
			continue
		}
		closed[current.pos] = true

		if goal(current.pos) {
			goalPos = current.pos
			found = true
			break
		}

		for _, next := range grid.Neighbors(current.pos) {
			if closed[next] {
				continue
			}
			if next != start && blocked(next) && !goal(next) {
				continue
			}
			tentativeG := gScore[current.pos] + 1
			if existing, ok := gScore[next]; ok && tentativeG >= existing {
				continue
			}
			cameFrom[next] = current.pos
			gScore[next] = tentativeG
			heap.Push(open, &node{pos: next, g: tentativeG, f: tentativeG + grid.Distance(next, target)})
		}
	}

	if !found {
		return nil
	}

	path := []grid.Position{goalPos}
	for cur := goalPos; cur != start; {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append([]grid.Position{prev}, path...)
		cur = prev
	}
	if len(path) > 0 && path[0] == start {
		path = path[1:]
	}
	return path
}

// node is an A* open-set entry.
type node struct {
	pos   grid.Position
	g, f  int
	index int
}

// openSet is a container/heap priority queue ordered by f, with ties broken
// by lower (y, x) regardless of insertion or push order.
type openSet []*node

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].pos.Y != o[j].pos.Y {
		return o[i].pos.Y < o[j].pos.Y
	}
	return o[i].pos.X < o[j].pos.X
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x interface{}) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openSet) Pop() interface{} {
	old := *o
	n := len(old)
	item := old[n-1]
	*o = old[:n-1]
	return item
}
