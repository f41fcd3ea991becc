// Package turnqueue builds the per-round turn order spec.md §4.9 defines:
// initiative descending, then speed descending, then instanceId ascending.
// Rebuilt fresh every round from the set of live units. A unit that dies
// after the queue is built stays in it; the simulation loop skips it.
package turnqueue

import (
	"sort"

	"fight-club/internal/battle/status"
	"fight-club/internal/battle/unit"
)

// Build returns the live units from units in turn order. Initiative and
// speed are read from each unit's current modified stats, not the base
// template, so buffs/debuffs still active after the round's status tick
// are reflected.
func Build(units []*unit.BattleUnit) []*unit.BattleUnit {
	live := make([]*unit.BattleUnit, 0, len(units))
	for _, u := range units {
		if u.Alive {
			live = append(live, u)
		}
	}

	sort.SliceStable(live, func(i, j int) bool {
		si := status.ModifiedStats(live[i])
		sj := status.ModifiedStats(live[j])
		if si.Initiative != sj.Initiative {
			return si.Initiative > sj.Initiative
		}
		if si.Speed != sj.Speed {
			return si.Speed > sj.Speed
		}
		return live[i].InstanceID < live[j].InstanceID
	})
	return live
}
