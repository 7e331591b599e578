package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Levels beyond the four slog ships with. Audit sits between info and warn so
// that a plain level threshold never hides it behind debug noise.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelAudit = slog.Level(2)
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelAudit: "AUDIT",
}

// New builds the process logger. Production gets JSON on stdout, everything
// else gets the text handler. The returned Switch controls which of the
// optional levels are emitted and can be flipped at runtime.
func New(env string, settings Settings) (*slog.Logger, *Switch) {
	format := "text"
	if env == "production" {
		format = "json"
	}
	return NewWithWriter(os.Stdout, format, settings)
}

func NewWithWriter(w io.Writer, format string, settings Settings) (*slog.Logger, *Switch) {
	opts := &slog.HandlerOptions{
		// the Switch does the real filtering
		Level:       LevelTrace,
		ReplaceAttr: replaceLevelName,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	sw := NewSwitch(settings)
	return slog.New(&filterHandler{next: handler, sw: sw}), sw
}

func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok {
		if name, found := levelNames[level]; found {
			a.Value = slog.StringValue(name)
		}
	}
	return a
}

func Audit(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelAudit, msg, args...)
}

func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}
