package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"fight-club/internal/auth"
)

// RateLimitConfig configures the request limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
}

// DefaultRateLimitConfig is production-safe: 10 req/s per key, burst 20.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 10,
	Burst:             20,
	CleanupInterval:   5 * time.Minute,
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	allowed  uint64
	rejected uint64
}

// RequestLimiter rate-limits HTTP requests keyed by guest identity rather
// than raw client IP whenever one is available: a request carrying a valid
// session cookie is limited by the guest's PlayerID, so a player's budget
// follows them across devices and several guests behind one IP (a LAN
// party, a campus NAT) never starve each other. Requests with no session
// yet (the guest-login call itself, health checks) fall back to IP.
type RequestLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	config  RateLimitConfig
	auth    *auth.Manager

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRequestLimiter creates a limiter and starts its cleanup loop. authMgr
// may be nil, in which case every request is keyed by client IP.
func NewRequestLimiter(cfg RateLimitConfig, authMgr *auth.Manager) *RequestLimiter {
	rl := &RequestLimiter{
		entries:  make(map[string]*limiterEntry),
		config:   cfg,
		auth:     authMgr,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup loop.
func (rl *RequestLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// KeyFor returns r's rate-limit bucket key: the requester's guest PlayerID
// if r carries a valid, unexpired session, otherwise its client IP.
func (rl *RequestLimiter) KeyFor(r *http.Request) string {
	if rl.auth != nil {
		if s := rl.auth.ValidateRequest(r); s != nil {
			return "player:" + s.PlayerID
		}
	}
	return "ip:" + GetClientIP(r)
}

func (rl *RequestLimiter) entryFor(key string) *limiterEntry {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	e, ok := rl.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)}
		rl.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e
}

func (rl *RequestLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup evicts any key untouched for two cleanup intervals. Bucketing by
// guest PlayerID keeps the map's steady-state size bounded by concurrent
// players rather than by every distinct IP that's ever connected, but
// abandoned pre-session IP entries (a guest who never logged in) still need
// this sweep.
func (rl *RequestLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.config.CleanupInterval * 2)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
		}
	}
}

// Allow reports whether a request bucketed under key should proceed.
func (rl *RequestLimiter) Allow(key string) bool {
	e := rl.entryFor(key)
	allowed := e.limiter.Allow()

	rl.mu.Lock()
	if allowed {
		e.allowed++
	} else {
		e.rejected++
	}
	rl.mu.Unlock()
	return allowed
}

// Middleware rejects requests over their key's limit with 429.
func (rl *RequestLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.KeyFor(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStats sums allowed/rejected counts across every tracked key.
func (rl *RequestLimiter) GetStats() map[string]uint64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	var allowed, rejected uint64
	for _, e := range rl.entries {
		allowed += e.allowed
		rejected += e.rejected
	}
	return map[string]uint64{"allowed": allowed, "rejected": rejected}
}

// GetClientIP extracts the client IP, honoring X-Forwarded-For / X-Real-IP
// from a trusted reverse proxy before falling back to RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// WebSocketRateLimiter caps concurrent replay-stream connections per IP.
// Replay streaming is read-only spectation that doesn't require a guest
// session, so - unlike RequestLimiter - it always keys on IP.
type WebSocketRateLimiter struct {
	connections sync.Map // map[string]*int32
	maxPerIP    int

	rejectedCount uint64 // atomic
}

// NewWebSocketRateLimiter creates a per-IP WebSocket connection limiter.
func NewWebSocketRateLimiter(maxPerIP int) *WebSocketRateLimiter {
	return &WebSocketRateLimiter{maxPerIP: maxPerIP}
}

// Allow reserves a connection slot for ip, if one is free.
func (wrl *WebSocketRateLimiter) Allow(ip string) bool {
	actual, _ := wrl.connections.LoadOrStore(ip, new(int32))
	counter := actual.(*int32)
	for {
		current := atomic.LoadInt32(counter)
		if int(current) >= wrl.maxPerIP {
			atomic.AddUint64(&wrl.rejectedCount, 1)
			return false
		}
		if atomic.CompareAndSwapInt32(counter, current, current+1) {
			return true
		}
	}
}

// Release frees a connection slot for ip.
func (wrl *WebSocketRateLimiter) Release(ip string) {
	if val, ok := wrl.connections.Load(ip); ok {
		atomic.AddInt32(val.(*int32), -1)
	}
}

// GetConnectionCount returns the current slot count in use for ip.
func (wrl *WebSocketRateLimiter) GetConnectionCount(ip string) int {
	if val, ok := wrl.connections.Load(ip); ok {
		return int(atomic.LoadInt32(val.(*int32)))
	}
	return 0
}
