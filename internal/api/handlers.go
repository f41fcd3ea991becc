package api

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/sim"
	"fight-club/internal/elo"
	"fight-club/internal/leaderboard"
	"fight-club/internal/teams"
)

type routerHandlers struct {
	deps *Dependencies
}

// --- battles ---

type createBattleRequest struct {
	PlayerTeamID string `json:"playerTeamId"`
	BotTeamID    string `json:"botTeamId"` // optional; pulled from matchmaking if empty
	Mechanics    string `json:"mechanics"` // "mvp" | "tactical" | "roguelike"
	Seed         *uint32 `json:"seed"`     // optional; random if omitted
}

type battleResponse struct {
	ID       string          `json:"id"`
	Winner   sim.Winner      `json:"winner"`
	Rounds   int             `json:"rounds"`
	PlayerElo struct {
		Before int `json:"before"`
		After  int `json:"after"`
	} `json:"playerElo"`
}

func (h *routerHandlers) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var req createBattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	playerTeam, ok := h.deps.Teams.GetTeam(req.PlayerTeamID)
	if !ok {
		writeError(w, "player team not found", http.StatusNotFound)
		return
	}

	var botTeam *teams.Team
	if req.BotTeamID != "" {
		botTeam, ok = h.deps.Teams.GetTeam(req.BotTeamID)
		if !ok {
			writeError(w, "bot team not found", http.StatusNotFound)
			return
		}
	} else if match, found := h.deps.Matchmaking.Enqueue(playerTeam); found {
		botTeam = match.Bot
	} else {
		writeError(w, "no opponent available; queued for matchmaking", http.StatusAccepted)
		return
	}

	seed := req.Seed
	var seedVal uint32
	if seed != nil {
		seedVal = *seed
	} else {
		seedVal = randomSeed()
	}

	start := time.Now()
	result, err := sim.Simulate(playerTeam.ToTeamSetup(), botTeam.ToTeamSetup(), seedVal, resolvePreset(req.Mechanics))
	RecordBattleSimulation(time.Since(start), result.Metadata.TotalRounds)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	battleID := generateBattleID()
	h.deps.Store.SaveBattle(battleID, result)

	playerWon := result.Winner == sim.WinnerPlayer
	before, _ := h.deps.Leaderboard.GetRating(playerTeam.ID)
	if before == 0 {
		before = h.deps.EloDefaultRating()
	}
	botRating, _ := h.deps.Leaderboard.GetRating(botTeam.ID)
	if botRating == 0 {
		botRating = h.deps.EloDefaultRating()
	}

	outcome := elo.Draw
	if result.Winner == sim.WinnerPlayer {
		outcome = elo.Win
	} else if result.Winner == sim.WinnerBot {
		outcome = elo.Loss
	}
	after := elo.Update(before, botRating, outcome, h.deps.EloKFactor)
	h.deps.Leaderboard.SetRating(playerTeam.ID, after)
	h.deps.Teams.RecordResult(playerTeam.ID, playerWon, after-before)

	resp := battleResponse{ID: battleID, Winner: result.Winner, Rounds: result.Metadata.TotalRounds}
	resp.PlayerElo.Before = before
	resp.PlayerElo.After = after
	writeJSON(w, resp)
}

func (h *routerHandlers) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stored, err := h.deps.Store.GetBattle(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stored == nil {
		writeError(w, "battle not found", http.StatusNotFound)
		return
	}
	writeJSON(w, stored.Result)
}

func (h *routerHandlers) handleReplayBattle(w http.ResponseWriter, r *http.Request, hub *ReplayHub) {
	id := chi.URLParam(r, "id")
	stored, err := h.deps.Store.GetBattle(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stored == nil {
		writeError(w, "battle not found", http.StatusNotFound)
		return
	}
	hub.Serve(w, r, stored.Result.Events)
}

// --- teams ---

func (h *routerHandlers) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	session := h.deps.Auth.ValidateRequest(r)
	if session == nil {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	team, err := h.deps.Teams.CreateTeam(session.PlayerID, req.Name, generateBattleID)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, team)
}

func (h *routerHandlers) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, ok := h.deps.Teams.GetTeam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, "team not found", http.StatusNotFound)
		return
	}
	writeJSON(w, team)
}

func (h *routerHandlers) handleListMyTeams(w http.ResponseWriter, r *http.Request) {
	session := h.deps.Auth.ValidateRequest(r)
	if session == nil {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, h.deps.Teams.GetTeamsByOwner(session.PlayerID))
}

func (h *routerHandlers) handleSetRoster(w http.ResponseWriter, r *http.Request) {
	session := h.deps.Auth.ValidateRequest(r)
	if session == nil {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		UnitIDs   []string        `json:"unitIds"`
		Positions []positionInput `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	positions := toGridPositions(req.Positions)
	if err := h.deps.Teams.SetRoster(chi.URLParam(r, "id"), session.PlayerID, req.UnitIDs, positions); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleTopTeams(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, h.deps.Teams.GetTopTeams(limit))
}

// --- leaderboard ---

func (h *routerHandlers) handleLeaderboardTop(w http.ResponseWriter, r *http.Request) {
	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, h.deps.Leaderboard.GetTop(limit))
}

func (h *routerHandlers) handleLeaderboardAround(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "id")
	radius := 5
	if v := r.URL.Query().Get("radius"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			radius = n
		}
	}
	entries := h.deps.Leaderboard.GetAroundPlayer(teamID, radius)
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	writeJSON(w, entries)
}

// --- matchmaking ---

func (h *routerHandlers) handleQueueTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "id")
	team, ok := h.deps.Teams.GetTeam(teamID)
	if !ok {
		writeError(w, "team not found", http.StatusNotFound)
		return
	}
	match, found := h.deps.Matchmaking.Enqueue(team)
	UpdateMatchmakingQueueDepth(h.deps.Matchmaking.Len())
	if !found {
		writeJSON(w, map[string]interface{}{"matched": false})
		return
	}
	writeJSON(w, map[string]interface{}{"matched": true, "opponentTeamId": match.Bot.ID})
}

// --- auth ---

func (h *routerHandlers) handleGuestLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nickname == "" {
		writeError(w, "nickname is required", http.StatusBadRequest)
		return
	}

	playerID := generateBattleID()
	sessionID := h.deps.Auth.CreateSession(playerID, req.Nickname)
	h.deps.Auth.SetSessionCookie(w, sessionID)
	writeJSON(w, map[string]string{"playerId": playerID, "nickname": req.Nickname})
}

func (h *routerHandlers) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	session := h.deps.Auth.ValidateRequest(r)
	if session == nil {
		writeJSON(w, map[string]bool{"authenticated": false})
		return
	}
	writeJSON(w, map[string]interface{}{
		"authenticated": true,
		"playerId":      session.PlayerID,
		"nickname":      session.Nickname,
	})
}

func (h *routerHandlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.deps.Auth.ClearSessionCookie(w)
	writeJSON(w, map[string]bool{"success": true})
}

// --- helpers ---

type positionInput struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func toGridPositions(in []positionInput) []grid.Position {
	out := make([]grid.Position, len(in))
	for i, p := range in {
		out[i] = grid.Position{X: p.X, Y: p.Y}
	}
	return out
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func generateBattleID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}

func randomSeed() uint32 {
	var b [4]byte
	rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}
