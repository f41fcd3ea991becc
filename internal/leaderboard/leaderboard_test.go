package leaderboard

import "testing"

func TestSetRatingAndGetRating(t *testing.T) {
	lb := New(1)
	lb.SetRating("alice", 1500)

	rating, ok := lb.GetRating("alice")
	if !ok || rating != 1500 {
		t.Errorf("expected rating 1500, got %d ok=%v", rating, ok)
	}

	if _, ok := lb.GetRating("nobody"); ok {
		t.Error("expected unranked player to return ok=false")
	}
}

func TestGetTopOrdering(t *testing.T) {
	lb := New(1)
	lb.SetRating("alice", 1500)
	lb.SetRating("bob", 1700)
	lb.SetRating("carol", 1600)

	top := lb.GetTop(3)
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	want := []string{"bob", "carol", "alice"}
	for i, id := range want {
		if top[i].PlayerID != id {
			t.Errorf("rank %d: expected %q, got %q", i+1, id, top[i].PlayerID)
		}
		if top[i].Rank != i+1 {
			t.Errorf("rank %d: expected Rank field %d, got %d", i+1, i+1, top[i].Rank)
		}
	}
}

func TestApplyResultMovesRank(t *testing.T) {
	lb := New(1)
	lb.SetRating("alice", 1500)
	lb.SetRating("bob", 1700)

	newRating := lb.ApplyResult("alice", 300)
	if newRating != 1800 {
		t.Errorf("expected 1800 after +300, got %d", newRating)
	}
	if lb.GetRank("alice") != 1 {
		t.Errorf("alice should now rank 1st, got %d", lb.GetRank("alice"))
	}
}

func TestRemove(t *testing.T) {
	lb := New(1)
	lb.SetRating("alice", 1500)

	if !lb.Remove("alice") {
		t.Error("expected Remove to report success")
	}
	if _, ok := lb.GetRating("alice"); ok {
		t.Error("expected alice to be gone after Remove")
	}
	if lb.Remove("alice") {
		t.Error("expected second Remove to report failure")
	}
}

func TestGetAroundPlayer(t *testing.T) {
	lb := New(1)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		lb.SetRating(id, 1000+i*10)
	}
	// ranks descending by rating: e(1), d(2), c(3), b(4), a(5)
	entries := lb.GetAroundPlayer("c", 1)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries around c, got %d", len(entries))
	}
	if entries[1].PlayerID != "c" {
		t.Errorf("expected c centered, got %q", entries[1].PlayerID)
	}
}

func TestNewFromSnapshot(t *testing.T) {
	snapshot := map[string]int{"alice": 1400, "bob": 1600}
	lb := NewFromSnapshot(1, snapshot)

	if lb.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", lb.Len())
	}
	if lb.GetRank("bob") != 1 {
		t.Errorf("expected bob ranked 1st, got %d", lb.GetRank("bob"))
	}
}

func TestForEachStopsEarly(t *testing.T) {
	lb := New(1)
	lb.SetRating("a", 100)
	lb.SetRating("b", 200)
	lb.SetRating("c", 300)

	var visited []string
	lb.ForEach(func(e Entry) bool {
		visited = append(visited, e.PlayerID)
		return len(visited) < 2
	})
	if len(visited) != 2 {
		t.Errorf("expected ForEach to stop after 2 visits, visited %v", visited)
	}
}
