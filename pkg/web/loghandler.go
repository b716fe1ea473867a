package web

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LogHandler returns a slog handler that mirrors records at or above level
// into the dashboard log feed. The "session_id" attribute becomes the
// entry type so viewers can tell sessions apart.
func (s *Server) LogHandler(level slog.Leveler) slog.Handler {
	return &logHandler{s: s, level: level}
}

type logHandler struct {
	s     *Server
	level slog.Leveler
	attrs []slog.Attr
	group string
}

func (h *logHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *logHandler) Handle(_ context.Context, r slog.Record) error {
	typ := "server"
	var b strings.Builder
	b.WriteString(r.Message)

	add := func(a slog.Attr) bool {
		if a.Key == "session_id" {
			typ = "session " + a.Value.String()
			return true
		}
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	h.s.AddLog(r.Level, typ, b.String())
	return nil
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	next := *h
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}
