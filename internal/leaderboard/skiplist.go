package leaderboard

import (
	"math/rand"
	"sync"
)

// A ranked skip list keyed by rating, highest first, with span-augmented
// levels so rank and range queries are O(log n) instead of O(n). This is
// the same structure Redis uses for ZSET; ratings change on every battle
// so a plain sorted slice would mean an O(n) insert per match.
const (
	ratingSkipListMaxLevel = 32
	ratingSkipListP        = 0.25
)

type ratingEntry struct {
	playerID string
	rating   int
}

// before reports whether (rating, playerID) sorts ahead of other in
// leaderboard order: higher rating wins, playerID ascending breaks ties so
// rank stays stable when two players share a rating.
func before(rating int, playerID string, other ratingEntry) bool {
	if rating != other.rating {
		return rating > other.rating
	}
	return playerID < other.playerID
}

type ratingNode struct {
	entry ratingEntry
	next  []*ratingNode
	span  []int
}

type ratingSkipList struct {
	head   *ratingNode
	level  int
	length int
	mu     sync.RWMutex
	rng    *rand.Rand

	// keyOf lets a caller holding only a playerID (remove, rankOf,
	// ratingOf) find the node's descent key in O(1). The list itself is
	// ordered by rating, not playerID, so there's no way to binary-search
	// it from a bare playerID alone.
	keyOf map[string]int
}

func newRatingSkipList(seed int64) *ratingSkipList {
	head := &ratingNode{
		next: make([]*ratingNode, ratingSkipListMaxLevel),
		span: make([]int, ratingSkipListMaxLevel),
	}
	return &ratingSkipList{
		head:  head,
		level: 1,
		rng:   rand.New(rand.NewSource(seed)),
		keyOf: make(map[string]int),
	}
}

func (sl *ratingSkipList) randomLevel() int {
	level := 1
	for level < ratingSkipListMaxLevel && sl.rng.Float64() < ratingSkipListP {
		level++
	}
	return level
}

// descend walks every level from the top, landing update[i] on the last
// node at level i that still sorts ahead of (rating, playerID), and rank[i]
// on the number of nodes skipped to get there. insert, remove, and rankOf
// all need exactly this walk; only what they do with the result differs.
func (sl *ratingSkipList) descend(rating int, playerID string) (update []*ratingNode, rank []int) {
	update = make([]*ratingNode, ratingSkipListMaxLevel)
	rank = make([]int, ratingSkipListMaxLevel)

	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		if i < sl.level-1 {
			rank[i] = rank[i+1]
		}
		for x.next[i] != nil && before(x.next[i].entry.rating, x.next[i].entry.playerID, ratingEntry{playerID: playerID, rating: rating}) {
			rank[i] += x.span[i]
			x = x.next[i]
		}
		update[i] = x
	}
	return update, rank
}

// upsert inserts a new player or repositions an existing one under its
// updated rating.
func (sl *ratingSkipList) upsert(playerID string, rating int) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.removeLocked(playerID)
	sl.insertLocked(playerID, rating)
}

func (sl *ratingSkipList) insertLocked(playerID string, rating int) {
	update, rank := sl.descend(rating, playerID)

	newLevel := sl.randomLevel()
	if newLevel > sl.level {
		for i := sl.level; i < newLevel; i++ {
			rank[i] = 0
			update[i] = sl.head
			update[i].span[i] = sl.length
		}
		sl.level = newLevel
	}

	node := &ratingNode{
		entry: ratingEntry{playerID: playerID, rating: rating},
		next:  make([]*ratingNode, newLevel),
		span:  make([]int, newLevel),
	}
	for i := 0; i < newLevel; i++ {
		node.next[i] = update[i].next[i]
		update[i].next[i] = node
		node.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = (rank[0] - rank[i]) + 1
	}
	for i := newLevel; i < sl.level; i++ {
		update[i].span[i]++
	}
	sl.length++
	sl.keyOf[playerID] = rating
}

func (sl *ratingSkipList) remove(playerID string) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.removeLocked(playerID)
}

func (sl *ratingSkipList) removeLocked(playerID string) bool {
	rating, tracked := sl.keyOf[playerID]
	if !tracked {
		return false
	}
	update, _ := sl.descend(rating, playerID)

	x := update[0].next[0]
	if x == nil || x.entry.playerID != playerID {
		return false
	}
	for i := 0; i < sl.level; i++ {
		if update[i].next[i] == x {
			update[i].span[i] += x.span[i] - 1
			update[i].next[i] = x.next[i]
		} else {
			update[i].span[i]--
		}
	}
	for sl.level > 1 && sl.head.next[sl.level-1] == nil {
		sl.level--
	}
	sl.length--
	delete(sl.keyOf, playerID)
	return true
}

// rankOf returns playerID's 1-based position (1 is the highest rating), or
// 0 if playerID isn't tracked.
func (sl *ratingSkipList) rankOf(playerID string) int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	rating, tracked := sl.keyOf[playerID]
	if !tracked {
		return 0
	}
	_, rank := sl.descend(rating, playerID)
	return rank[0] + 1
}

// atRank returns the entry holding the given 1-based rank.
func (sl *ratingSkipList) atRank(rank int) (ratingEntry, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if rank <= 0 || rank > sl.length {
		return ratingEntry{}, false
	}
	return sl.nodeAtRank(rank).entry, true
}

// nodeAtRank walks down from the top level, consuming span as long as
// doing so doesn't overshoot rank. Callers must hold sl.mu and guarantee
// 1 <= rank <= sl.length.
func (sl *ratingSkipList) nodeAtRank(rank int) *ratingNode {
	traversed := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && traversed+x.span[i] <= rank {
			traversed += x.span[i]
			x = x.next[i]
		}
		if traversed == rank {
			return x
		}
	}
	return x
}

// rangeOf returns the entries holding ranks [start, end], 1-based and
// inclusive, clamped to the list's actual bounds.
func (sl *ratingSkipList) rangeOf(start, end int) []ratingEntry {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if start < 1 {
		start = 1
	}
	if end > sl.length {
		end = sl.length
	}
	if start > end {
		return nil
	}

	result := make([]ratingEntry, 0, end-start+1)
	x := sl.nodeAtRank(start)
	for rank := start; rank <= end && x != nil; rank++ {
		result = append(result, x.entry)
		x = x.next[0]
	}
	return result
}

// ratingOf returns playerID's current rating.
func (sl *ratingSkipList) ratingOf(playerID string) (int, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	rating, tracked := sl.keyOf[playerID]
	return rating, tracked
}

func (sl *ratingSkipList) size() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.length
}

// forEach visits every entry from rank 1 upward until fn returns false.
func (sl *ratingSkipList) forEach(fn func(rank int, entry ratingEntry) bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	rank := 0
	for x := sl.head.next[0]; x != nil; x = x.next[0] {
		rank++
		if !fn(rank, x.entry) {
			return
		}
	}
}
