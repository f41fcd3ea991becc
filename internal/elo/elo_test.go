package elo

import "testing"

func TestExpectedEqualRatings(t *testing.T) {
	got := Expected(1200, 1200)
	if got < 0.49 || got > 0.51 {
		t.Errorf("expected ~0.5 for equal ratings, got %v", got)
	}
}

func TestExpectedHigherRatingFavored(t *testing.T) {
	got := Expected(1400, 1200)
	if got <= 0.5 {
		t.Errorf("expected higher-rated player favored (>0.5), got %v", got)
	}
}

func TestUpdateWin(t *testing.T) {
	tests := []struct {
		name           string
		rating, oppRating int
		outcome        Outcome
		k              int
	}{
		{"equal ratings win", 1200, 1200, Win, DefaultK},
		{"underdog win", 1000, 1400, Win, DefaultK},
		{"favored loss", 1400, 1000, Loss, DefaultK},
		{"draw between equals", 1200, 1200, Draw, DefaultK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := Update(tt.rating, tt.oppRating, tt.outcome, tt.k)
			switch tt.outcome {
			case Win:
				if after <= tt.rating {
					t.Errorf("winner rating should increase: before=%d after=%d", tt.rating, after)
				}
			case Loss:
				if after >= tt.rating {
					t.Errorf("loser rating should decrease: before=%d after=%d", tt.rating, after)
				}
			case Draw:
				if tt.rating == tt.oppRating && after != tt.rating {
					t.Errorf("equal-rated draw should not move rating: before=%d after=%d", tt.rating, after)
				}
			}
		})
	}
}

func TestUpdatePairZeroSum(t *testing.T) {
	a, b := 1200, 1250
	newA, newB := UpdatePair(a, b, Win, DefaultK)
	deltaA := newA - a
	deltaB := newB - b
	if deltaA != -deltaB {
		t.Errorf("expected zero-sum rating change, got deltaA=%d deltaB=%d", deltaA, deltaB)
	}
}

func TestUpdateKFactorScalesChange(t *testing.T) {
	small := Update(1200, 1200, Win, 10)
	large := Update(1200, 1200, Win, 40)
	if (large - 1200) <= (small - 1200) {
		t.Errorf("larger K should produce a larger rating swing: small=%d large=%d", small, large)
	}
}
