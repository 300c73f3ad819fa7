// Package util provides helpers for logging setup and virtual serial
// management during development.
package util

import (
	"log"
	"os"
)

// SetupLogger configures the process-wide standard logger.
func SetupLogger() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(os.Stdout)
}
