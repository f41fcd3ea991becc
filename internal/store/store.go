// Package store persists battle replays, team rosters, and ELO ratings to
// sqlite. It's the durable backing for internal/teams and
// internal/leaderboard, and the source of truth for the replay API.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"fight-club/internal/battle/grid"
	"fight-club/internal/battle/sim"
	"fight-club/internal/config"
	"fight-club/internal/teams"
)

const schema = `
CREATE TABLE IF NOT EXISTS battles (
	id           TEXT PRIMARY KEY,
	seed         INTEGER NOT NULL,
	winner       TEXT NOT NULL,
	total_rounds INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	events_json  TEXT NOT NULL,
	final_json   TEXT NOT NULL,
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
	id            TEXT PRIMARY KEY,
	owner_id      TEXT NOT NULL,
	name          TEXT NOT NULL,
	unit_ids_json TEXT NOT NULL,
	positions_json TEXT NOT NULL,
	wins          INTEGER NOT NULL,
	losses        INTEGER NOT NULL,
	rating        INTEGER NOT NULL,
	created_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_teams_owner ON teams(owner_id);

CREATE TABLE IF NOT EXISTS ratings (
	player_id TEXT PRIMARY KEY,
	rating    INTEGER NOT NULL
);
`

// Store is the sqlite-backed persistence layer.
type Store struct {
	db  *sql.DB
	log *battleLogWriter
}

// Open opens (creating if necessary) the sqlite database at cfg.DSN,
// applies the schema, and starts the async battle-log writer.
func Open(cfg config.PersistenceConfig) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: opening %q: %w", cfg.DSN, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: applying schema: %w", err)
	}

	bufferSize := cfg.BattleLogBuffer
	if bufferSize <= 0 {
		bufferSize = 256
	}

	s := &Store{db: db}
	s.log = newBattleLogWriter(db, bufferSize)
	s.log.start()
	return s, nil
}

// Close stops the async writer and closes the database.
func (s *Store) Close() error {
	s.log.stop()
	return s.db.Close()
}

// SaveBattle queues a completed battle for asynchronous, rate-limited
// persistence. Returns false if the write was dropped under backpressure.
func (s *Store) SaveBattle(id string, result *sim.BattleResult) bool {
	return s.log.enqueue(storedBattle{id: id, result: result, createdAt: time.Now()})
}

// StoredBattle is a battle record as read back for the replay API.
type StoredBattle struct {
	ID          string
	Seed        uint32
	Winner      sim.Winner
	TotalRounds int
	DurationMs  int64
	Result      *sim.BattleResult
	CreatedAt   time.Time
}

// GetBattle loads a persisted battle by ID.
func (s *Store) GetBattle(id string) (*StoredBattle, error) {
	row := s.db.QueryRow(`SELECT id, seed, winner, total_rounds, duration_ms, events_json, final_json, created_at FROM battles WHERE id = ?`, id)

	var (
		sb                         StoredBattle
		eventsJSON, finalJSON      string
	)
	if err := row.Scan(&sb.ID, &sb.Seed, &sb.Winner, &sb.TotalRounds, &sb.DurationMs, &eventsJSON, &finalJSON, &sb.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: loading battle %q: %w", id, err)
	}

	result := &sim.BattleResult{
		Winner: sb.Winner,
		Metadata: sim.ResultMetadata{
			TotalRounds: sb.TotalRounds,
			Seed:        sb.Seed,
			DurationMs:  sb.DurationMs,
		},
	}
	if err := json.Unmarshal([]byte(eventsJSON), &result.Events); err != nil {
		return nil, fmt.Errorf("store: decoding events for battle %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(finalJSON), &result.FinalState); err != nil {
		return nil, fmt.Errorf("store: decoding final state for battle %q: %w", id, err)
	}
	sb.Result = result
	return &sb, nil
}

// ListBattles returns the most recent persisted battles, newest first,
// without decoding their event logs or final state. Used by the replay CLI
// to list candidates before a full GetBattle.
func (s *Store) ListBattles(limit int) ([]*StoredBattle, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, seed, winner, total_rounds, duration_ms, created_at FROM battles ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: listing battles: %w", err)
	}
	defer rows.Close()

	var out []*StoredBattle
	for rows.Next() {
		sb := &StoredBattle{}
		if err := rows.Scan(&sb.ID, &sb.Seed, &sb.Winner, &sb.TotalRounds, &sb.DurationMs, &sb.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning battle row: %w", err)
		}
		out = append(out, sb)
	}
	return out, rows.Err()
}

// SaveTeam upserts a team roster. Satisfies teams.Store.
func (s *Store) SaveTeam(t *teams.Team) error {
	unitIDs, err := json.Marshal(t.UnitIDs)
	if err != nil {
		return fmt.Errorf("store: encoding unit ids: %w", err)
	}
	positions, err := json.Marshal(t.Positions)
	if err != nil {
		return fmt.Errorf("store: encoding positions: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO teams (id, owner_id, name, unit_ids_json, positions_json, wins, losses, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			unit_ids_json = excluded.unit_ids_json,
			positions_json = excluded.positions_json,
			wins = excluded.wins,
			losses = excluded.losses,
			rating = excluded.rating`,
		t.ID, t.OwnerID, t.Name, string(unitIDs), string(positions), t.Wins, t.Losses, t.Rating, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: saving team %q: %w", t.ID, err)
	}
	return nil
}

// DeleteTeam removes a team roster. Satisfies teams.Store.
func (s *Store) DeleteTeam(id string) error {
	_, err := s.db.Exec(`DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: deleting team %q: %w", id, err)
	}
	return nil
}

// LoadTeams returns every persisted team, for warming internal/teams at
// startup.
func (s *Store) LoadTeams() ([]*teams.Team, error) {
	rows, err := s.db.Query(`SELECT id, owner_id, name, unit_ids_json, positions_json, wins, losses, rating, created_at FROM teams`)
	if err != nil {
		return nil, fmt.Errorf("store: loading teams: %w", err)
	}
	defer rows.Close()

	var loaded []*teams.Team
	for rows.Next() {
		t := &teams.Team{}
		var unitIDsJSON, positionsJSON string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &unitIDsJSON, &positionsJSON, &t.Wins, &t.Losses, &t.Rating, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning team row: %w", err)
		}
		if err := json.Unmarshal([]byte(unitIDsJSON), &t.UnitIDs); err != nil {
			return nil, fmt.Errorf("store: decoding unit ids for team %q: %w", t.ID, err)
		}
		var positions []grid.Position
		if err := json.Unmarshal([]byte(positionsJSON), &positions); err != nil {
			return nil, fmt.Errorf("store: decoding positions for team %q: %w", t.ID, err)
		}
		t.Positions = positions
		loaded = append(loaded, t)
	}
	return loaded, rows.Err()
}

// SaveRating upserts a single player's ELO rating.
func (s *Store) SaveRating(playerID string, rating int) error {
	_, err := s.db.Exec(`
		INSERT INTO ratings (player_id, rating) VALUES (?, ?)
		ON CONFLICT(player_id) DO UPDATE SET rating = excluded.rating`,
		playerID, rating)
	if err != nil {
		return fmt.Errorf("store: saving rating for %q: %w", playerID, err)
	}
	return nil
}

// LoadRatings returns every persisted rating, for warming
// internal/leaderboard at startup.
func (s *Store) LoadRatings() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT player_id, rating FROM ratings`)
	if err != nil {
		return nil, fmt.Errorf("store: loading ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var playerID string
		var rating int
		if err := rows.Scan(&playerID, &rating); err != nil {
			return nil, fmt.Errorf("store: scanning rating row: %w", err)
		}
		out[playerID] = rating
	}
	return out, rows.Err()
}
