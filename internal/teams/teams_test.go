package teams

import (
	"testing"

	"fight-club/internal/battle/grid"
)

type fakeStore struct {
	saved   map[string]*Team
	deleted map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]*Team), deleted: make(map[string]bool)}
}

func (f *fakeStore) SaveTeam(t *Team) error {
	f.saved[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTeam(id string) error {
	f.deleted[id] = true
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "team" + string(rune('0'+n))
	}
}

func TestCreateTeamPersists(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	idGen := sequentialIDs()

	team, err := m.CreateTeam("owner1", "Alpha", idGen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team.OwnerID != "owner1" || team.Name != "Alpha" {
		t.Errorf("unexpected team: %+v", team)
	}
	if _, ok := store.saved[team.ID]; !ok {
		t.Error("expected team to be persisted to the store")
	}
}

func TestCreateTeamRejectsOverLimit(t *testing.T) {
	m := NewManager(nil)
	idGen := sequentialIDs()
	for i := 0; i < MaxTeamsPerOwner; i++ {
		if _, err := m.CreateTeam("owner1", "Team", idGen); err != nil {
			t.Fatalf("unexpected error at team %d: %v", i, err)
		}
	}
	if _, err := m.CreateTeam("owner1", "OneTooMany", idGen); err == nil {
		t.Error("expected error creating team past MaxTeamsPerOwner")
	}
}

func TestSetRosterValidatesOwnership(t *testing.T) {
	m := NewManager(nil)
	team, _ := m.CreateTeam("owner1", "Alpha", sequentialIDs())

	err := m.SetRoster(team.ID, "owner2", []string{"guardian"}, []grid.Position{{X: 0, Y: 0}})
	if err == nil {
		t.Error("expected error for non-owner roster edit")
	}
}

func TestSetRosterValidatesUnitIDs(t *testing.T) {
	m := NewManager(nil)
	team, _ := m.CreateTeam("owner1", "Alpha", sequentialIDs())

	err := m.SetRoster(team.ID, "owner1", []string{"not-a-real-unit"}, []grid.Position{{X: 0, Y: 0}})
	if err == nil {
		t.Error("expected error for unknown unit id")
	}
}

func TestSetRosterValidatesSize(t *testing.T) {
	m := NewManager(nil)
	team, _ := m.CreateTeam("owner1", "Alpha", sequentialIDs())

	err := m.SetRoster(team.ID, "owner1", nil, nil)
	if err == nil {
		t.Error("expected error for empty roster")
	}

	tooMany := make([]string, MaxRosterSize+1)
	positions := make([]grid.Position, MaxRosterSize+1)
	for i := range tooMany {
		tooMany[i] = "guardian"
	}
	err = m.SetRoster(team.ID, "owner1", tooMany, positions)
	if err == nil {
		t.Error("expected error for oversized roster")
	}
}

func TestSetRosterSuccess(t *testing.T) {
	m := NewManager(nil)
	team, _ := m.CreateTeam("owner1", "Alpha", sequentialIDs())

	err := m.SetRoster(team.ID, "owner1", []string{"guardian", "mage"},
		[]grid.Position{{X: 0, Y: 0}, {X: 0, Y: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := m.GetTeam(team.ID)
	if len(got.UnitIDs) != 2 {
		t.Errorf("expected 2 units, got %d", len(got.UnitIDs))
	}
}

func TestRecordResultUpdatesCounters(t *testing.T) {
	m := NewManager(nil)
	team, _ := m.CreateTeam("owner1", "Alpha", sequentialIDs())

	if err := m.RecordResult(team.ID, true, 24); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := m.GetTeam(team.ID)
	if got.Wins != 1 || got.Losses != 0 || got.Rating != 24 {
		t.Errorf("unexpected team state after win: %+v", got)
	}

	if err := m.RecordResult(team.ID, false, -16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = m.GetTeam(team.ID)
	if got.Wins != 1 || got.Losses != 1 || got.Rating != 8 {
		t.Errorf("unexpected team state after loss: %+v", got)
	}
}

func TestDeleteTeamRequiresOwnership(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	team, _ := m.CreateTeam("owner1", "Alpha", sequentialIDs())

	if err := m.DeleteTeam(team.ID, "owner2"); err == nil {
		t.Error("expected error deleting another owner's team")
	}
	if err := m.DeleteTeam(team.ID, "owner1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.GetTeam(team.ID); ok {
		t.Error("expected team to be gone after delete")
	}
	if !store.deleted[team.ID] {
		t.Error("expected store.DeleteTeam to be called")
	}
}

func TestGetTopTeamsOrdersByRating(t *testing.T) {
	m := NewManager(nil)
	idGen := sequentialIDs()
	a, _ := m.CreateTeam("owner1", "A", idGen)
	b, _ := m.CreateTeam("owner1", "B", idGen)
	m.RecordResult(a.ID, true, 100)
	m.RecordResult(b.ID, true, 300)

	top := m.GetTopTeams(10)
	if len(top) != 2 || top[0].ID != b.ID {
		t.Errorf("expected B ranked first, got %+v", top)
	}
}

func TestToTeamSetup(t *testing.T) {
	team := &Team{UnitIDs: []string{"guardian"}, Positions: []grid.Position{{X: 1, Y: 1}}}
	setup := team.ToTeamSetup()
	if len(setup.UnitIDs) != 1 || setup.UnitIDs[0] != "guardian" {
		t.Errorf("unexpected setup: %+v", setup)
	}
}
