// package shared defines configuration, logging, and error helpers used across the CLI.
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w with timestamps enabled.
//
// The writer defaults to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true})
}

// Verbose lowers the logger level to debug.
func Verbose(l *log.Logger) {
	l.SetLevel(log.DebugLevel)
}

// GenerateID generates a new v4 [uuid.UUID] as a string.
func GenerateID() string {
	return uuid.New().String()
}
