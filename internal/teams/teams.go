// Package teams manages battle-team rosters: named groups of catalog units
// with a deployment layout, owned by a guest player, that the matchmaking
// and battle APIs turn into a sim.TeamSetup.
package teams

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"fight-club/internal/battle/catalog"
	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/sim"
)

// MaxRosterSize caps how many units a single team can field.
const MaxRosterSize = 6

// MaxTeamsPerOwner caps how many rosters one guest can hold at once.
const MaxTeamsPerOwner = 20

// Team is a named roster of catalog units with deployment positions.
type Team struct {
	ID        string
	OwnerID   string
	Name      string
	UnitIDs   []string
	Positions []grid.Position
	Wins      int
	Losses    int
	Rating    int
	CreatedAt time.Time
}

// ToTeamSetup converts a roster into the shape the battle simulator takes.
func (t *Team) ToTeamSetup() sim.TeamSetup {
	return sim.TeamSetup{UnitIDs: t.UnitIDs, Positions: t.Positions}
}

// Manager owns every guest's teams in memory. A Store, once wired, mirrors
// writes through for durability; each write calls Store.SaveTeam
// synchronously, so the caller waits for it.
type Manager struct {
	mu    sync.RWMutex
	teams map[string]*Team

	store Store
}

// Store persists team state. internal/store's sqlite-backed implementation
// satisfies this; tests can use an in-memory fake.
type Store interface {
	SaveTeam(t *Team) error
	DeleteTeam(id string) error
}

// NewManager creates an empty team manager. A nil store means teams live
// only in memory for the process lifetime.
func NewManager(store Store) *Manager {
	return &Manager{teams: make(map[string]*Team), store: store}
}

// CreateTeam creates an empty roster for ownerID.
func (m *Manager) CreateTeam(ownerID, name string, idGen func() string) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := 0
	for _, t := range m.teams {
		if t.OwnerID == ownerID {
			owned++
		}
	}
	if owned >= MaxTeamsPerOwner {
		return nil, fmt.Errorf("teams: owner %q already has %d teams", ownerID, MaxTeamsPerOwner)
	}

	team := &Team{
		ID:        idGen(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.teams[team.ID] = team
	return team, m.persist(team)
}

// GetTeam returns a team by ID.
func (m *Manager) GetTeam(teamID string) (*Team, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.teams[teamID]
	return t, ok
}

// GetTeamsByOwner returns every roster a guest owns.
func (m *Manager) GetTeamsByOwner(ownerID string) []*Team {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var owned []*Team
	for _, t := range m.teams {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.Before(owned[j].CreatedAt) })
	return owned
}

// SetRoster replaces a team's units and deployment positions. Validation
// of position legality (bounds, deployment zone, duplicates) is deferred
// to sim.Simulate at battle time, so a roster can be saved before its
// owning side of the board is known; this only checks the roster itself.
func (m *Manager) SetRoster(teamID, requesterID string, unitIDs []string, positions []grid.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	team, ok := m.teams[teamID]
	if !ok {
		return fmt.Errorf("teams: team %q not found", teamID)
	}
	if team.OwnerID != requesterID {
		return fmt.Errorf("teams: %q does not own team %q", requesterID, teamID)
	}
	if len(unitIDs) == 0 || len(unitIDs) > MaxRosterSize {
		return fmt.Errorf("teams: roster size must be 1..%d, got %d", MaxRosterSize, len(unitIDs))
	}
	if len(unitIDs) != len(positions) {
		return fmt.Errorf("teams: %d unit ids but %d positions", len(unitIDs), len(positions))
	}
	resolved := make([]string, len(unitIDs))
	for i, id := range unitIDs {
		rid := catalog.ResolveUnitID(id)
		if _, ok := catalog.LookupUnit(rid); !ok {
			return fmt.Errorf("teams: unknown unit id %q", id)
		}
		resolved[i] = rid
	}

	team.UnitIDs = resolved
	team.Positions = append([]grid.Position(nil), positions...)
	return m.persist(team)
}

// RenameTeam renames a roster (owner only).
func (m *Manager) RenameTeam(teamID, requesterID, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	team, ok := m.teams[teamID]
	if !ok {
		return fmt.Errorf("teams: team %q not found", teamID)
	}
	if team.OwnerID != requesterID {
		return fmt.Errorf("teams: %q does not own team %q", requesterID, teamID)
	}
	team.Name = newName
	return m.persist(team)
}

// RecordResult updates a team's win/loss counters and ELO rating after a
// battle. Delta may be negative.
func (m *Manager) RecordResult(teamID string, won bool, ratingDelta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	team, ok := m.teams[teamID]
	if !ok {
		return fmt.Errorf("teams: team %q not found", teamID)
	}
	if won {
		team.Wins++
	} else {
		team.Losses++
	}
	team.Rating += ratingDelta
	return m.persist(team)
}

// DeleteTeam removes a roster (owner only).
func (m *Manager) DeleteTeam(teamID, requesterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	team, ok := m.teams[teamID]
	if !ok {
		return fmt.Errorf("teams: team %q not found", teamID)
	}
	if team.OwnerID != requesterID {
		return fmt.Errorf("teams: %q does not own team %q", requesterID, teamID)
	}
	delete(m.teams, teamID)
	if m.store != nil {
		return m.store.DeleteTeam(teamID)
	}
	return nil
}

// GetTopTeams returns up to limit teams sorted by rating descending.
func (m *Manager) GetTopTeams(limit int) []*Team {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*Team, 0, len(m.teams))
	for _, t := range m.teams {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Rating > all[j].Rating })
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

func (m *Manager) persist(t *Team) error {
	if m.store == nil {
		return nil
	}
	return m.store.SaveTeam(t)
}
