// Package logging configures the service's single logrus logger from
// config.LoggingConfig. Every package that needs to log takes a
// *logrus.Logger (or Entry) rather than calling the package-level
// logrus.* funcs, so tests can inject a discard logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"fight-club/internal/config"
)

// New builds a configured logrus logger.
func New(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
