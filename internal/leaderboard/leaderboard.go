// Package leaderboard ranks players by ELO rating with O(log n) rank and
// range queries, backed by a skip list rather than a sorted slice so a
// rating update after every battle doesn't cost an O(n) re-sort.
package leaderboard

// Entry is one player's position on the leaderboard.
type Entry struct {
	PlayerID string
	Rating   int
	Rank     int // 1-indexed, 1 = highest rating
}

// Leaderboard tracks every rated player's current rating and rank.
type Leaderboard struct {
	ratings *ratingSkipList
}

// New creates an empty leaderboard. seed only affects the skip list's
// internal level randomization, not rank order, so any fixed seed produces
// identical query results for identical insert history.
func New(seed int64) *Leaderboard {
	return &Leaderboard{ratings: newRatingSkipList(seed)}
}

// NewFromSnapshot rebuilds a leaderboard from persisted (playerID, rating)
// pairs, as read back from the store at startup.
func NewFromSnapshot(seed int64, snapshot map[string]int) *Leaderboard {
	lb := New(seed)
	for playerID, rating := range snapshot {
		lb.SetRating(playerID, rating)
	}
	return lb
}

// SetRating inserts a player or repositions them under a new rating.
func (lb *Leaderboard) SetRating(playerID string, rating int) {
	lb.ratings.upsert(playerID, rating)
}

// ApplyResult updates a player's rating after a battle by delta, which may
// be negative. Returns the new rating.
func (lb *Leaderboard) ApplyResult(playerID string, delta int) int {
	current, _ := lb.ratings.ratingOf(playerID)
	updated := current + delta
	lb.ratings.upsert(playerID, updated)
	return updated
}

// Remove drops a player from the leaderboard entirely.
func (lb *Leaderboard) Remove(playerID string) bool {
	return lb.ratings.remove(playerID)
}

// GetRating returns a player's current rating.
func (lb *Leaderboard) GetRating(playerID string) (int, bool) {
	return lb.ratings.ratingOf(playerID)
}

// GetRank returns a player's 1-indexed rank, or 0 if they're unranked.
func (lb *Leaderboard) GetRank(playerID string) int {
	return lb.ratings.rankOf(playerID)
}

// GetTop returns the n highest-rated players.
func (lb *Leaderboard) GetTop(n int) []Entry {
	return lb.entriesInRange(1, n)
}

// GetAroundPlayer returns up to 2*radius+1 entries centered on the given
// player's rank, for a "nearby rivals" view.
func (lb *Leaderboard) GetAroundPlayer(playerID string, radius int) []Entry {
	rank := lb.ratings.rankOf(playerID)
	if rank == 0 {
		return nil
	}
	start := rank - radius
	if start < 1 {
		start = 1
	}
	return lb.entriesInRange(start, rank+radius)
}

// GetRange returns ranks [start, end], inclusive and 1-indexed.
func (lb *Leaderboard) GetRange(start, end int) []Entry {
	return lb.entriesInRange(start, end)
}

func (lb *Leaderboard) entriesInRange(start, end int) []Entry {
	raw := lb.ratings.rangeOf(start, end)
	entries := make([]Entry, len(raw))
	for i, e := range raw {
		entries[i] = Entry{PlayerID: e.playerID, Rating: e.rating, Rank: start + i}
	}
	return entries
}

// Len returns the number of rated players.
func (lb *Leaderboard) Len() int {
	return lb.ratings.size()
}

// ForEach visits every entry in descending rating order. Returning false
// from fn stops the iteration early.
func (lb *Leaderboard) ForEach(fn func(entry Entry) bool) {
	lb.ratings.forEach(func(rank int, e ratingEntry) bool {
		return fn(Entry{PlayerID: e.playerID, Rating: e.rating, Rank: rank})
	})
}
