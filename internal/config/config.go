// Package config provides centralized configuration management. This is the
// single source of truth for every tunable the service reads: server,
// persistence, matchmaking, and logging settings. Values are sourced from
// (in increasing precedence) built-in defaults, an optional config file, and
// environment variables, via viper - the same layered-config approach the
// rest of the retrieved pack reaches for instead of hand-rolled os.Getenv
// parsing.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// PersistenceConfig holds the sqlite-backed store's settings.
type PersistenceConfig struct {
	DSN             string
	BattleLogBuffer int // capacity of the async battle-log write queue
}

// MatchmakingConfig holds matchmaking pool tuning.
type MatchmakingConfig struct {
	MaxRatingGap   int
	QueueTimeout   time.Duration
	DefaultRating  int
}

// LoggingConfig holds logrus setup.
type LoggingConfig struct {
	Level  string
	JSON   bool
}

// AuthConfig holds guest-session settings.
type AuthConfig struct {
	SessionSecret   string
	SessionDuration time.Duration
}

// AppConfig is the complete application configuration.
type AppConfig struct {
	Server       ServerConfig
	Persistence  PersistenceConfig
	Matchmaking  MatchmakingConfig
	Logging      LoggingConfig
	Auth         AuthConfig
}

// Load builds the complete configuration: defaults, then an optional
// "config.yaml" in the working directory or /etc/fight-club, then
// environment variables prefixed FIGHTCLUB_ (e.g. FIGHTCLUB_SERVER_PORT).
func Load() (AppConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("fightclub")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/fight-club")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return AppConfig{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := AppConfig{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Persistence: PersistenceConfig{
			DSN:             v.GetString("persistence.dsn"),
			BattleLogBuffer: v.GetInt("persistence.battle_log_buffer"),
		},
		Matchmaking: MatchmakingConfig{
			MaxRatingGap:  v.GetInt("matchmaking.max_rating_gap"),
			QueueTimeout:  v.GetDuration("matchmaking.queue_timeout"),
			DefaultRating: v.GetInt("matchmaking.default_rating"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("logging.level"),
			JSON:  v.GetBool("logging.json"),
		},
		Auth: AuthConfig{
			SessionSecret:   v.GetString("auth.session_secret"),
			SessionDuration: v.GetDuration("auth.session_duration"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("persistence.dsn", "fight-club.db")
	v.SetDefault("persistence.battle_log_buffer", 256)

	v.SetDefault("matchmaking.max_rating_gap", 200)
	v.SetDefault("matchmaking.queue_timeout", 30*time.Second)
	v.SetDefault("matchmaking.default_rating", 1200)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", true)

	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.session_duration", 24*time.Hour)
}
