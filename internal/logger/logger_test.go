package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestSplitLevel(t *testing.T) {
	tests := []struct {
		line      string
		wantLevel string
		wantMsg   string
	}{
		{"INFO Control socket listening path=/tmp/x.sock", "INFO", "Control socket listening path=/tmp/x.sock"},
		{"ERRO something broke", "ERROR", "something broke"},
		{"WARN drift", "WARN", "drift"},
		{"DEBU verbose", "DEBUG", "verbose"},
		{"no level tag here", "", "no level tag here"},
		{"single", "", "single"},
	}

	for _, tt := range tests {
		level, msg := splitLevel(tt.line)
		if level != tt.wantLevel || msg != tt.wantMsg {
			t.Errorf("splitLevel(%q) = (%q, %q), want (%q, %q)",
				tt.line, level, msg, tt.wantLevel, tt.wantMsg)
		}
	}
}

func TestUINotifierTee(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	var nmu sync.Mutex
	var levels, messages []string
	SetUINotifier(func(level, message string) {
		nmu.Lock()
		defer nmu.Unlock()
		levels = append(levels, level)
		messages = append(messages, message)
	})
	defer SetUINotifier(nil)

	Info("socket listening")
	Error("injector gone")

	nmu.Lock()
	defer nmu.Unlock()
	if len(levels) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(levels))
	}
	if levels[0] != "INFO" || levels[1] != "ERROR" {
		t.Errorf("unexpected levels %v", levels)
	}
	if !strings.Contains(messages[0], "socket listening") {
		t.Errorf("first message %q should contain the log text", messages[0])
	}

	// The original output still receives everything.
	out := buf.String()
	if !strings.Contains(out, "socket listening") || !strings.Contains(out, "injector gone") {
		t.Errorf("buffer missing log lines:\n%s", out)
	}
}
