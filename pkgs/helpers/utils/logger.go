package utils

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// InitLogger configures the process-wide logrus logger. Called once from
// main before any other component starts logging.
func InitLogger() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.JSONFormatter{})

	level := log.InfoLevel
	if os.Getenv("DEBUG") == "true" {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}
