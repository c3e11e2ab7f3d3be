package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Setup configures the package level charm logger used across weldsplit.
// Debug mode turns on debug output with timestamps, otherwise only warnings and up are shown.
func Setup(debug bool) {
	log.SetDefault(NewWithConfig("", log.WarnLevel, false, false, log.TextFormatter))
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	}
	log.Debug("Logger ready", "pid", os.Getpid())
}
