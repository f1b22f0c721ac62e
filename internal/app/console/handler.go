package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Line is one formatted log record.
type Line struct {
	Level slog.Level
	Text  string
}

// Handler sends formatted records to a channel. Sends block while the
// channel is full and are dropped once done is closed.
type Handler struct {
	lines  chan<- Line
	done   <-chan struct{}
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

func NewHandler(lines chan<- Line, done <-chan struct{}, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{lines: lines, done: done, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})

	select {
	case h.lines <- Line{Level: r.Level, Text: b.String()}:
	case <-h.done:
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			writeAttr(b, prefix, ga)
		}
		return
	}
	value := a.Value.String()
	if strings.ContainsAny(value, " \t\"=") {
		value = fmt.Sprintf("%q", value)
	}
	fmt.Fprintf(b, " %s%s=%s", prefix, a.Key, value)
}
