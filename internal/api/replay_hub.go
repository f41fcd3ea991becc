package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"fight-club/internal/battle/event"
)

const (
	// MaxReplayConnectionsTotal caps concurrent replay-stream connections
	// across all battles.
	MaxReplayConnectionsTotal = 500

	// MaxReplayConnectionsPerIP caps concurrent replay connections from a
	// single IP.
	MaxReplayConnectionsPerIP = 10

	// replayTickInterval is the pacing between events pushed to a replay
	// client; a battle's own event timestamps carry no wall-clock meaning; this
	// is purely a playback cadence for the viewer.
	replayTickInterval = 150 * time.Millisecond
)

var replayUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if isAllowedReplayOrigin(origin) {
			return true
		}
		log.Printf("replay connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// ReplayHub streams a stored battle's events to connecting WebSocket
// clients, one event per tick, independently per client: each viewer gets
// their own pace through the same fixed event log, rather than a single
// shared broadcast the way live game state would be.
type ReplayHub struct {
	limiter      *WebSocketRateLimiter
	totalClients int64 // atomic
}

// NewReplayHub creates a hub with per-IP connection limiting.
func NewReplayHub() *ReplayHub {
	return &ReplayHub{limiter: NewWebSocketRateLimiter(MaxReplayConnectionsPerIP)}
}

// replayFrame is one message sent to a connected client.
type replayFrame struct {
	Event   *event.Event `json:"event,omitempty"`
	Done    bool         `json:"done"`
	Seq     int          `json:"seq"`
	Total   int          `json:"total"`
}

// Serve streams events to w/r as a WebSocket connection, pacing one event
// per replayTickInterval until the log is exhausted or the client
// disconnects.
func (h *ReplayHub) Serve(w http.ResponseWriter, r *http.Request, events []event.Event) {
	ip := GetClientIP(r)

	if atomic.LoadInt64(&h.totalClients) >= MaxReplayConnectionsTotal {
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.limiter.Allow(ip) {
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}
	defer h.limiter.Release(ip)

	conn, err := replayUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("replay websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	atomic.AddInt64(&h.totalClients, 1)
	UpdateReplayConnections(int(atomic.LoadInt64(&h.totalClients)))
	defer func() {
		atomic.AddInt64(&h.totalClients, -1)
		UpdateReplayConnections(int(atomic.LoadInt64(&h.totalClients)))
	}()

	// Drain client->server messages in the background; replay is one-way,
	// but we still need to notice a closed connection promptly.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(replayTickInterval)
	defer ticker.Stop()

	total := len(events)
	for i := 0; i < total; i++ {
		select {
		case <-closed:
			return
		case <-ticker.C:
			frame := replayFrame{Event: &events[i], Seq: i, Total: total}
			payload, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			IncrementReplayMessages()
		}
	}

	final, _ := json.Marshal(replayFrame{Done: true, Seq: total, Total: total})
	conn.WriteMessage(websocket.TextMessage, final)
}

func isAllowedReplayOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	return strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1")
}
