// Package rng implements the battle simulator's deterministic random source.
//
// The stream is a SplitMix64 generator: given the same seed it produces the
// same sequence on any platform, with no dependence on clock time, allocator
// addresses, or map iteration order. Per-turn sub-streams are derived by
// hashing the battle seed together with the round number and the acting
// unit's identity, so splitting never mutates a shared generator two
// components might otherwise race over (the core is single-threaded, but
// the split still keeps each call site's stream independent and replayable
// in isolation).
package rng

// Stream is a seeded, splittable pseudo-random source.
type Stream struct {
	state uint64
}

// New creates a stream seeded directly from seed.
func New(seed uint64) *Stream {
	return &Stream{state: seed}
}

// next advances the SplitMix64 state and returns the next raw 64-bit value.
func (s *Stream) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// IntRange returns a uniform integer in [0, n). Panics if n <= 0.
func (s *Stream) IntRange(n int) int {
	if n <= 0 {
		panic("rng: IntRange requires n > 0")
	}
	return int(s.next() % uint64(n))
}

// Bool returns true with the given probability in [0, 1].
func (s *Stream) Bool(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	// 53 bits of mantissa precision, matches math/rand's Float64 technique.
	u := float64(s.next()>>11) * (1.0 / (1 << 53))
	return u < probability
}

// Float64 returns a uniform float64 in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.next()>>11) * (1.0 / (1 << 53))
}

// WeightedChoice picks an index in [0, len(weights)) with probability
// proportional to weights[i]. Weights must be non-negative and sum > 0.
func (s *Stream) WeightedChoice(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	r := s.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

// Split derives an independent child stream from (round, a hash of the
// acting unit and its position). The child's sequence depends only on
// these inputs, never on call order, so replays are byte-identical
// regardless of how many other Split calls happened first.
func (s *Stream) Split(round int, unitHash uint64) *Stream {
	mixed := s.state
	mixed ^= uint64(round) * 0xD6E8FEB86659FD93
	mixed ^= unitHash * 0xA24BAED4963EE407
	mixed = (mixed ^ (mixed >> 32)) * 0x9E3779B97F4A7C15
	mixed ^= mixed >> 29
	return &Stream{state: mixed}
}

// HashUnit derives a stable hash from an acting unit's instance id and
// position, used as input to Split so per-turn sub-seeds never depend on
// map iteration order.
func HashUnit(instanceID string, x, y int) uint64 {
	// FNV-1a, stdlib-free and branch-light; deterministic across platforms.
	var h uint64 = 0xCBF29CE484222325
	mix := func(b byte) {
		h ^= uint64(b)
		h *= 0x100000001B3
	}
	for i := 0; i < len(instanceID); i++ {
		mix(instanceID[i])
	}
	mix(byte(x))
	mix(byte(x >> 8))
	mix(byte(y))
	mix(byte(y >> 8))
	return h
}
