package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Settings toggles the optional log levels. Info and error are always on.
type Settings struct {
	Audit bool
	Warn  bool
	Debug bool
	Trace bool
}

func DefaultSettings() Settings {
	return Settings{Audit: true, Warn: true}
}

type Switch struct {
	current atomic.Pointer[Settings]
}

func NewSwitch(settings Settings) *Switch {
	sw := &Switch{}
	sw.Set(settings)
	return sw
}

func (s *Switch) Set(settings Settings) {
	s.current.Store(&settings)
}

func (s *Switch) Get() Settings {
	return *s.current.Load()
}

func (s *Switch) Enabled(level slog.Level) bool {
	settings := s.Get()
	switch {
	case level >= LevelError:
		return true
	case level >= LevelWarn:
		return settings.Warn
	case level >= LevelAudit:
		return settings.Audit
	case level >= LevelInfo:
		return true
	case level > LevelTrace:
		return settings.Debug
	default:
		return settings.Trace
	}
}

type filterHandler struct {
	next slog.Handler
	sw   *Switch
}

func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.sw.Enabled(level) && h.next.Enabled(ctx, level)
}

func (h *filterHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filterHandler{next: h.next.WithAttrs(attrs), sw: h.sw}
}

func (h *filterHandler) WithGroup(name string) slog.Handler {
	return &filterHandler{next: h.next.WithGroup(name), sw: h.sw}
}
