// Package matchmaking pairs queued teams of similar ELO rating into a
// battle request. Entries wait in a rating-ordered priority queue; a pop
// finds the closest-rated opponent within a widening rating gap the
// longer anyone has waited.
package matchmaking

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"fight-club/internal/config"
	"fight-club/internal/teams"
)

// Ticket is a team waiting for an opponent.
type Ticket struct {
	Team     *teams.Team
	Rating   int
	QueuedAt time.Time

	index int // heap bookkeeping
}

// Match is a pairing ready to be simulated.
type Match struct {
	Player *teams.Team
	Bot    *teams.Team
}

// ticketHeap keeps waiting tickets in a min-heap keyed by rating. The
// closest-rated neighbor of an incoming team is found by a linear scan over
// every ticket (closestLocked), not by searching the heap.
type ticketHeap []*Ticket

func (h ticketHeap) Len() int            { return len(h) }
func (h ticketHeap) Less(i, j int) bool  { return h[i].Rating < h[j].Rating }
func (h ticketHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *ticketHeap) Push(x any) {
	t := x.(*Ticket)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *ticketHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Pool holds every team currently waiting for a match.
type Pool struct {
	mu      sync.Mutex
	tickets ticketHeap
	maxGap  int
	timeout time.Duration
}

// NewPool builds an empty matchmaking pool from config.
func NewPool(cfg config.MatchmakingConfig) *Pool {
	return &Pool{maxGap: cfg.MaxRatingGap, timeout: cfg.QueueTimeout}
}

// Enqueue adds a team to the pool and immediately tries to pair it with
// the closest-rated waiting opponent. Returns the match if one was found;
// the losing side of the comparison (the newly enqueued team, if no match
// was found) stays queued.
func (p *Pool) Enqueue(team *teams.Team) (*Match, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidate := &Ticket{Team: team, Rating: team.Rating, QueuedAt: time.Now()}

	if best, ok := p.closestLocked(candidate.Rating); ok {
		p.removeLocked(best)
		return &Match{Player: candidate.Team, Bot: best.Team}, true
	}

	heap.Push(&p.tickets, candidate)
	return nil, false
}

// closestLocked finds the waiting ticket with the smallest rating
// distance to rating, widening the acceptable gap for tickets that have
// waited past the configured timeout.
func (p *Pool) closestLocked(rating int) (*Ticket, bool) {
	var best *Ticket
	bestDist := -1
	now := time.Now()

	for _, t := range p.tickets {
		gap := p.maxGap
		if p.timeout > 0 && now.Sub(t.QueuedAt) > p.timeout {
			gap = gap * 4 // starved tickets widen their acceptance window
		}
		dist := rating - t.Rating
		if dist < 0 {
			dist = -dist
		}
		if dist > gap {
			continue
		}
		if best == nil || dist < bestDist {
			best, bestDist = t, dist
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

func (p *Pool) removeLocked(t *Ticket) {
	if t.index < 0 || t.index >= len(p.tickets) {
		return
	}
	heap.Remove(&p.tickets, t.index)
}

// Cancel removes a team from the queue before it's matched.
func (p *Pool) Cancel(teamID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.tickets {
		if t.Team.ID == teamID {
			p.removeLocked(t)
			return true
		}
	}
	return false
}

// Len returns the number of teams currently waiting.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tickets.Len()
}

// ErrNoOpponent is returned by callers that require an immediate match
// (e.g. a "play vs bot now" fallback) when the pool has nothing to offer.
var ErrNoOpponent = fmt.Errorf("matchmaking: no opponent currently queued")
