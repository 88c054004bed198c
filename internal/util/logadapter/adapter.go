package logadapter

import (
	"context"
	"log"
	"log/slog"
	"strings"
)

// New returns a *log.Logger whose lines are emitted through base.
// A leading "ERROR: " or "WARN: " selects the slog level and is removed from
// the message; a "component: " prefix is lifted into a "component" attribute.
func New(base *slog.Logger) *log.Logger {
	return log.New(&writer{logger: base}, "", 0)
}

type writer struct {
	logger *slog.Logger
}

func (w *writer) Write(p []byte) (int, error) {
	msg := strings.TrimSuffix(string(p), "\n")
	level, msg := splitLevel(msg)
	var attrs []slog.Attr
	if comp, rest, ok := splitComponent(msg); ok {
		attrs = append(attrs, slog.String("component", comp))
		msg = rest
	}
	w.logger.LogAttrs(context.Background(), level, msg, attrs...)
	return len(p), nil
}

func splitLevel(msg string) (slog.Level, string) {
	switch {
	case strings.HasPrefix(msg, "ERROR: "):
		return slog.LevelError, msg[len("ERROR: "):]
	case strings.HasPrefix(msg, "WARN: "):
		return slog.LevelWarn, msg[len("WARN: "):]
	}
	return slog.LevelInfo, msg
}

// splitComponent recognizes "name: rest" where name is a short word without spaces.
func splitComponent(msg string) (string, string, bool) {
	i := strings.Index(msg, ": ")
	if i <= 0 || i > 24 || strings.ContainsAny(msg[:i], " \t") {
		return "", msg, false
	}
	return msg[:i], msg[i+2:], true
}
