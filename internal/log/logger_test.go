// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	stdlog "log"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOutput, prevLevel := output, GetLevel()
	output = stdlog.New(&buf, "", 0)
	t.Cleanup(func() {
		output = prevOutput
		SetLevel(prevLevel)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  LogLevel
		valid bool
	}{
		{"debug", LevelDebug, true},
		{" INFO ", LevelInfo, true},
		{"Warning", LevelWarn, true},
		{"warn", LevelWarn, true},
		{"error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"loud", LevelInfo, false},
		{"", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.valid {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelWarn)

	l := New("pipeline")
	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("shown %d", 3)
	l.Errorf("shown %d", 4)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("messages below WARN were written:\n%s", got)
	}
	for _, want := range []string{"[WARN]  pipeline: shown 3", "[ERROR] pipeline: shown 4"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestUntaggedLogger(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Debugf("plain %s", "message")
	var zero Logger
	zero.Infof("zero value")

	got := buf.String()
	if !strings.Contains(got, "[DEBUG] plain message") {
		t.Errorf("unexpected output:\n%s", got)
	}
	if !strings.Contains(got, "[INFO]  zero value") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestEnabled(t *testing.T) {
	capture(t)
	SetLevel(LevelInfo)
	if Enabled(LevelDebug) {
		t.Error("debug should be disabled at INFO")
	}
	if !Enabled(LevelError) {
		t.Error("error should be enabled at INFO")
	}
	if New("x").Component() != "x" {
		t.Error("Component() mismatch")
	}
	var nilLogger *Logger
	if nilLogger.Component() != "" {
		t.Error("nil logger should have no component")
	}
}

func TestLevelString(t *testing.T) {
	if LevelFatal.String() != "FATAL" || LogLevel(42).String() != "UNKNOWN" {
		t.Error("unexpected level names")
	}
}
