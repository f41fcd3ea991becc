package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fight-club/internal/auth"
	"fight-club/internal/config"
)

func testLimiterConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 2, Burst: 2, CleanupInterval: time.Minute}
}

func TestRequestLimiterAllowsUpToBurstThenRejects(t *testing.T) {
	rl := NewRequestLimiter(testLimiterConfig(), nil)
	defer rl.Stop()

	if !rl.Allow("ip:1.2.3.4") || !rl.Allow("ip:1.2.3.4") {
		t.Fatal("expected the first two requests within burst to be allowed")
	}
	if rl.Allow("ip:1.2.3.4") {
		t.Fatal("expected the third request to be rejected once burst is exhausted")
	}
}

func TestRequestLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRequestLimiter(testLimiterConfig(), nil)
	defer rl.Stop()

	rl.Allow("ip:1.1.1.1")
	rl.Allow("ip:1.1.1.1")
	if !rl.Allow("ip:2.2.2.2") {
		t.Fatal("a distinct key must have its own budget")
	}
}

func TestKeyForPrefersGuestSessionOverIP(t *testing.T) {
	mgr, err := auth.NewManager(config.AuthConfig{SessionSecret: "test-secret", SessionDuration: time.Hour}, false, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	rl := NewRequestLimiter(testLimiterConfig(), mgr)
	defer rl.Stop()

	sessionID := mgr.CreateSession("player-1", "Brawler")
	req := httptest.NewRequest(http.MethodGet, "/api/teams/mine", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	w := httptest.NewRecorder()
	mgr.SetSessionCookie(w, sessionID)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}

	if got := rl.KeyFor(req); got != "player:player-1" {
		t.Fatalf("expected key to be the guest's PlayerID, got %q", got)
	}
}

func TestKeyForFallsBackToIPWithoutSession(t *testing.T) {
	mgr, err := auth.NewManager(config.AuthConfig{SessionSecret: "test-secret", SessionDuration: time.Hour}, false, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	rl := NewRequestLimiter(testLimiterConfig(), mgr)
	defer rl.Stop()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/guest", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	if got := rl.KeyFor(req); got != "ip:9.9.9.9" {
		t.Fatalf("expected ip-based key for a sessionless request, got %q", got)
	}
}

func TestMiddlewareReturns429WhenExhausted(t *testing.T) {
	rl := NewRequestLimiter(testLimiterConfig(), nil)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "5.5.5.5:1"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exhausting burst, got %d", last.Code)
	}
}

func TestGetClientIPHonorsForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := GetClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected first X-Forwarded-For hop, got %q", got)
	}
}

func TestWebSocketRateLimiterCapsConcurrentConnections(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)

	if !wrl.Allow("1.1.1.1") || !wrl.Allow("1.1.1.1") {
		t.Fatal("expected the first two connections to be allowed")
	}
	if wrl.Allow("1.1.1.1") {
		t.Fatal("expected the third connection to be rejected")
	}
	wrl.Release("1.1.1.1")
	if !wrl.Allow("1.1.1.1") {
		t.Fatal("expected a slot to free up after Release")
	}
	if got := wrl.GetConnectionCount("1.1.1.1"); got != 2 {
		t.Fatalf("expected connection count 2, got %d", got)
	}
}
