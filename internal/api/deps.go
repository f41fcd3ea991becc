package api

import (
	"github.com/sirupsen/logrus"

	"fight-club/internal/auth"
	"fight-club/internal/battle/sim"
	"fight-club/internal/elo"
	"fight-club/internal/leaderboard"
	"fight-club/internal/matchmaking"
	"fight-club/internal/store"
	"fight-club/internal/teams"
)

// Dependencies are the collaborators the HTTP layer calls into. None of
// them are optional in production; tests construct a Dependencies with
// lightweight in-memory stand-ins (e.g. teams.NewManager(nil)).
type Dependencies struct {
	Teams        *teams.Manager
	Leaderboard  *leaderboard.Leaderboard
	Auth         *auth.Manager
	Matchmaking  *matchmaking.Pool
	Store        *store.Store
	Log          *logrus.Logger
	EloKFactor   int
	DefaultRating int
}

// MechanicsPresets maps a battle request's requested preset name to its
// mechanics.Config, defaulting to the MVP (no-op) ruleset for anything
// unrecognized.
var MechanicsPresets = map[string]sim.MechanicsConfig{
	"mvp":       sim.MVP,
	"tactical":  sim.Tactical,
	"roguelike": sim.Roguelike,
}

func resolvePreset(name string) sim.MechanicsConfig {
	if cfg, ok := MechanicsPresets[name]; ok {
		return cfg
	}
	return sim.MVP
}

// EloDefaultRating returns the starting rating for a team with no
// leaderboard entry yet.
func (d *Dependencies) EloDefaultRating() int {
	if d.DefaultRating == 0 {
		return 1200
	}
	return d.DefaultRating
}
