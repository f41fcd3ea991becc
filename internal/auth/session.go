// Package auth issues and validates guest player sessions. Any caller can
// obtain one; there is no privileged broadcaster account to gate access
// behind, since every player in an autobattler is just a guest with a
// chosen nickname.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fight-club/internal/config"
)

// CookieName is the guest session cookie.
const CookieName = "fight_club_session"

const (
	cookieHTTPOnly = true
	cookieSameSite = http.SameSiteLaxMode
)

// Session is an authenticated guest player.
type Session struct {
	PlayerID  string    `json:"player_id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager issues and validates signed session cookies for guest players.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	secretKey []byte
	duration  time.Duration
	cookieSecure bool

	log *logrus.Logger
}

// NewManager builds a session manager from config. If cfg.SessionSecret is
// empty, a random key is generated for this process's lifetime; existing
// cookies from a previous process will simply fail to validate, which just
// means those guests get a fresh session.
func NewManager(cfg config.AuthConfig, secure bool, log *logrus.Logger) (*Manager, error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("auth: generating session secret: %w", err)
		}
	}

	duration := cfg.SessionDuration
	if duration <= 0 {
		duration = 24 * time.Hour
	}

	m := &Manager{
		sessions:     make(map[string]*Session),
		secretKey:    secret,
		duration:     duration,
		cookieSecure: secure,
		log:          log,
	}
	go m.cleanupExpired()
	return m, nil
}

// CreateSession mints a new guest session for nickname and returns the
// raw (unsigned) session ID to embed in a cookie.
func (m *Manager) CreateSession(playerID, nickname string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessionID := generateSessionID()
	m.sessions[sessionID] = &Session{
		PlayerID:  playerID,
		Nickname:  nickname,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(m.duration),
	}
	if m.log != nil {
		m.log.WithFields(logrus.Fields{"player_id": playerID, "nickname": nickname}).Debug("guest session created")
	}
	return sessionID
}

// GetSession looks up a live, unexpired session by its raw ID.
func (m *Manager) GetSession(sessionID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok || time.Now().After(s.ExpiresAt) {
		return nil
	}
	return s
}

// DeleteSession ends a session immediately.
func (m *Manager) DeleteSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ValidateRequest extracts and verifies the session cookie on r, if any.
func (m *Manager) ValidateRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	sessionID, err := m.decodeCookie(cookie.Value)
	if err != nil {
		return nil
	}
	return m.GetSession(sessionID)
}

// SetSessionCookie writes a signed cookie for sessionID onto the response.
func (m *Manager) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.encodeCookie(sessionID),
		Path:     "/",
		MaxAge:   int(m.duration.Seconds()),
		HttpOnly: cookieHTTPOnly,
		Secure:   m.cookieSecure,
		SameSite: cookieSameSite,
	})
}

// ClearSessionCookie removes the guest's session cookie.
func (m *Manager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: cookieHTTPOnly,
		Secure:   m.cookieSecure,
		SameSite: cookieSameSite,
	})
}

func (m *Manager) encodeCookie(sessionID string) string {
	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(sessionID))
	signature := hex.EncodeToString(mac.Sum(nil))
	return base64.URLEncoding.EncodeToString([]byte(sessionID + "." + signature))
}

func (m *Manager) decodeCookie(cookieValue string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(cookieValue)
	if err != nil {
		return "", fmt.Errorf("auth: invalid cookie encoding")
	}
	parts := strings.SplitN(string(decoded), ".", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("auth: invalid cookie format")
	}
	sessionID, providedSig := parts[0], parts[1]

	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(sessionID))
	expectedSig := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(providedSig), []byte(expectedSig)) {
		return "", fmt.Errorf("auth: invalid cookie signature")
	}
	return sessionID, nil
}

func (m *Manager) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		m.mu.Lock()
		now := time.Now()
		for id, s := range m.sessions {
			if now.After(s.ExpiresAt) {
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()
	}
}

func generateSessionID() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RequireSession is HTTP middleware that rejects requests without a valid
// guest session.
func (m *Manager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := m.ValidateRequest(r)
		if session == nil {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
