package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiGray   = "\033[90m"
	ansiCyan   = "\033[36m"
)

// PrettyHandler writes one colored line per record:
//
//	15:04:05 INFO  message key=value
type PrettyHandler struct {
	level  slog.Leveler
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	attrs  []slog.Attr
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{w: w, mu: &sync.Mutex{}, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(ansiGray)
	sb.WriteString(r.Time.Format(time.TimeOnly))
	sb.WriteString(ansiReset)
	sb.WriteByte(' ')
	sb.WriteString(levelColor(r.Level))
	sb.WriteString(fmt.Sprintf("%-5s", r.Level.String()))
	sb.WriteString(ansiReset)
	sb.WriteByte(' ')
	sb.WriteString(r.Message)

	first := true
	write := func(a slog.Attr, prefix string) {
		if first {
			sb.WriteByte(' ')
			sb.WriteString(ansiCyan)
			first = false
		} else {
			sb.WriteByte(' ')
		}
		writeAttr(&sb, a, prefix)
	}
	for _, a := range h.attrs {
		write(a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		write(a, h.prefix)
		return true
	})
	if !first {
		sb.WriteString(ansiReset)
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiBlue
	default:
		return ansiGray
	}
}

func writeAttr(sb *strings.Builder, a slog.Attr, prefix string) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, ga, prefix+a.Key+".")
		}
		return
	}
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if needsQuoting(s) {
			s = strconv.Quote(s)
		}
		sb.WriteString(s)
	case slog.KindTime:
		sb.WriteString(a.Value.Time().Format(time.RFC3339))
	default:
		sb.WriteString(a.Value.String())
	}
}

func needsQuoting(s string) bool {
	return strings.ContainsAny(s, " \t\n\"=")
}
