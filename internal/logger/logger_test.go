package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"offset":37`},
		{"text", "offset=37"},
		{"pretty", "offset=37"},
		{"", "offset=37"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := Setup(&buf, slog.LevelInfo, tc.format)
		if err != nil {
			t.Fatalf("Setup(%q) returned error: %v", tc.format, err)
		}
		log.Info("record located", "offset", 37)
		if !strings.Contains(buf.String(), "record located") || !strings.Contains(buf.String(), tc.want) {
			t.Errorf("Setup(%q): unexpected output %q", tc.format, buf.String())
		}
	}
}

func TestSetupUnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := Setup(&bytes.Buffer{}, slog.LevelInfo, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, _ := Setup(&buf, slog.LevelWarn, "json")
	log.Debug("hidden")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %s", buf.String())
	}
	log.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn output, got %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, _ := Setup(&buf, slog.LevelInfo, "text")
	ctx := WithContext(context.Background(), log.With("mcu", "stm32g0b1xx"))
	FromContext(ctx).Info("via context")

	out := buf.String()
	if !strings.Contains(out, "via context") || !strings.Contains(out, "mcu=stm32g0b1xx") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestFromContextDefault(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext returned nil")
	}
	Discard().Error("dropped")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPrettyGroupsAndQuoting(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	l := slog.New(h.WithAttrs([]slog.Attr{slog.String("cmd", "verify")}).WithGroup("scan"))
	l.Info("done", "path", "my firmware.bin", "offset", 12)

	out := buf.String()
	for _, want := range []string{"cmd=verify", `scan.path="my firmware.bin"`, "scan.offset=12"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestPrettyEnabled(t *testing.T) {
	t.Parallel()

	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
	if h.WithGroup("") != h {
		t.Error("empty group should return the same handler")
	}
}
