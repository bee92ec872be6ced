package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", DEBUG, true},
		{"INFO", INFO, true},
		{"Warn", WARN, true},
		{"warning", WARN, true},
		{" error ", ERROR, true},
		{"silent", SILENT, true},
		{"none", SILENT, true},
		{"verbose", INFO, false},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("ParseLevel(%q) err = %v", tc.in, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if got := WARN.String(); got != "WARN" {
		t.Errorf("WARN.String() = %q", got)
	}
	if got := Level(42).String(); got != "LEVEL(42)" {
		t.Errorf("Level(42).String() = %q", got)
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(WARN, &buf, false)

	l.Debug("stage", "hidden")
	l.Info("stage", "hidden too")
	l.Warn("stage", "kept")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below level leaked: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestLoggerComponentTag(t *testing.T) {
	var buf bytes.Buffer
	l := New(INFO, &buf, false)
	l.Info("dedup", "merged %d boxes", 3)

	out := buf.String()
	if !strings.Contains(out, "[INFO] [dedup] merged 3 boxes") {
		t.Errorf("unexpected format: %q", out)
	}
}

func TestLoggerSilent(t *testing.T) {
	var buf bytes.Buffer
	l := New(SILENT, &buf, false)
	l.Error("stage", "still hidden")
	if buf.Len() != 0 {
		t.Errorf("silent logger wrote output: %q", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(ERROR, &buf, false)
	l.Info("stage", "first")
	l.SetLevel(INFO)
	l.Info("stage", "second")

	out := buf.String()
	if strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("SetLevel not applied: %q", out)
	}
}
