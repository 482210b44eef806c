package logger

import (
	"log"
	"log/slog"
)

// New returns a stdlib logger that forwards to l at error level, tagged with component.
func New(component string, l *slog.Logger) *log.Logger {
	if l == nil {
		l = slog.Default()
	}
	return slog.NewLogLogger(l.With("component", component).Handler(), slog.LevelError)
}
