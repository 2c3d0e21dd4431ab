package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTextAndJSON(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: LevelInfo, Format: FormatText, Output: &buf}).Info("hello", "k", "v")
	if out := buf.String(); !strings.Contains(out, "hello") || !strings.Contains(out, "k=v") {
		t.Errorf("text output = %q", out)
	}

	buf.Reset()
	New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf}).Info("hello")
	if out := buf.String(); !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("json output = %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})
	l.Info("dropped")
	l.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("level filter output = %q", out)
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	if l.Enabled(nil, slog.LevelError) {
		t.Error("nop logger claims to be enabled")
	}
	l.Error("nothing should happen")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":    LevelDebug,
		"DEBUG":    LevelDebug,
		"info":     LevelInfo,
		"warn":     LevelWarn,
		"error":    LevelError,
		"":         LevelInfo,
		"whatever": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Error("json not recognized")
	}
	if ParseFormat("") != FormatText || ParseFormat("yaml") != FormatText {
		t.Error("default format should be text")
	}
}
