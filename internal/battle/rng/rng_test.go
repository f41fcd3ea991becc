package rng

import "testing"

func TestStreamIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if a.next() != b.next() {
			t.Fatalf("streams seeded identically diverged at step %d", i)
		}
	}
}

func TestIntRangeWithinBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.IntRange(5)
		if v < 0 || v >= 5 {
			t.Fatalf("IntRange(5) produced %d", v)
		}
	}
}

func TestSplitIsDeterministicAndVariesByInput(t *testing.T) {
	base := New(123)
	a1 := base.Split(1, 99)
	a2 := base.Split(1, 99)
	if a1.next() != a2.next() {
		t.Fatal("Split with identical inputs should produce identical child streams")
	}

	b := base.Split(2, 99)
	if a1.state == b.state {
		t.Fatal("Split with a different round should produce a different child stream")
	}
}

func TestSplitDoesNotMutateParent(t *testing.T) {
	base := New(123)
	before := base.state
	base.Split(5, 5)
	if base.state != before {
		t.Fatal("Split must not mutate the parent stream's state")
	}
}

func TestHashUnitDeterministic(t *testing.T) {
	if HashUnit("player_guardian_0", 3, 4) != HashUnit("player_guardian_0", 3, 4) {
		t.Fatal("HashUnit must be a pure function of its inputs")
	}
	if HashUnit("player_guardian_0", 3, 4) == HashUnit("player_guardian_1", 3, 4) {
		t.Fatal("different instance ids should (almost always) hash differently")
	}
}

func TestWeightedChoiceRespectsZeroWeights(t *testing.T) {
	s := New(1)
	for i := 0; i < 50; i++ {
		idx := s.WeightedChoice([]float64{0, 1, 0})
		if idx != 1 {
			t.Fatalf("expected index 1 with weights [0,1,0], got %d", idx)
		}
	}
}
