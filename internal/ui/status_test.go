package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/waybridge/internal/ipc"
)

func TestStatusModel(t *testing.T) {
	fetch := func() (*ipc.StatusResponse, error) {
		return &ipc.StatusResponse{Mode: "direct", ScaleX: 1.5, ScaleY: 1.5}, nil
	}

	t.Run("creates new status model", func(t *testing.T) {
		model := NewStatusModel(fetch)

		if model.status != nil {
			t.Error("Should have no status before the first fetch")
		}
		if model.maxLogLines != 50 {
			t.Errorf("Expected 50 max log lines, got %d", model.maxLogLines)
		}
	})

	t.Run("renders starting view", func(t *testing.T) {
		model := NewStatusModel(fetch)
		view := model.View()

		if !strings.Contains(view, "WAYBRIDGE") {
			t.Error("Should contain 'WAYBRIDGE'")
		}
		if !strings.Contains(view, "Starting") {
			t.Error("Should show starting status before the first fetch")
		}
		if !strings.Contains(view, "No logs yet") {
			t.Error("Should show the empty log placeholder")
		}
	})

	t.Run("renders bridging view after status arrives", func(t *testing.T) {
		model := NewStatusModel(fetch)

		updatedModel, _ := model.Update(StatusMsg{Status: &ipc.StatusResponse{
			Mode:     "direct",
			ScaleX:   1.5,
			ScaleY:   2.0,
			Surfaces: 2,
			Windows:  1,
			Outputs:  1,
		}})
		view := updatedModel.View()

		if !strings.Contains(view, "Bridging") {
			t.Error("Should show bridging status")
		}
		if !strings.Contains(view, "direct 1.50×2.00") {
			t.Error("Should show the direct factors")
		}
		if !strings.Contains(view, "2 surfaces") {
			t.Error("Should show the surface count")
		}
		if !strings.Contains(view, "1 window") {
			t.Error("Should show the window count")
		}
	})

	t.Run("renders legacy mode", func(t *testing.T) {
		model := NewStatusModel(fetch)

		updatedModel, _ := model.Update(StatusMsg{Status: &ipc.StatusResponse{
			Mode:   "legacy",
			ScaleX: 2.0,
			ScaleY: 2.0,
		}})
		view := updatedModel.View()

		if !strings.Contains(view, "legacy 2.00") {
			t.Error("Should show the legacy factor")
		}
		if strings.Contains(view, "×") {
			t.Error("Legacy mode should not show per-axis factors")
		}
	})

	t.Run("renders fetch failure", func(t *testing.T) {
		model := NewStatusModel(fetch)

		updatedModel, _ := model.Update(StatusMsg{Err: fmt.Errorf("gone")})
		view := updatedModel.View()

		if !strings.Contains(view, "Unavailable") {
			t.Error("Should show unavailable status on fetch failure")
		}
	})

	t.Run("buffers log entries up to the limit", func(t *testing.T) {
		model := NewStatusModel(fetch)

		for i := 0; i < 60; i++ {
			model.AddLogEntry(LogEntry{
				Timestamp: time.Now(),
				Level:     "INFO",
				Message:   fmt.Sprintf("entry %d", i),
			})
		}

		if len(model.logBuffer) != 50 {
			t.Errorf("Expected 50 buffered entries, got %d", len(model.logBuffer))
		}
		if model.logBuffer[0].Message != "entry 10" {
			t.Errorf("Expected oldest entry to be 'entry 10', got %q", model.logBuffer[0].Message)
		}
	})

	t.Run("shows log entries in the view", func(t *testing.T) {
		model := NewStatusModel(fetch)

		updatedModel, _ := model.Update(LogMsg{Entry: LogEntry{
			Timestamp: time.Now(),
			Level:     "warn",
			Message:   "negotiation drift on surface 7",
		}})
		view := updatedModel.View()

		if !strings.Contains(view, "WARN") {
			t.Error("Should render the level tag upper-cased")
		}
		if !strings.Contains(view, "negotiation drift on surface 7") {
			t.Error("Should render the log message")
		}
	})

	t.Run("quits on q", func(t *testing.T) {
		model := NewStatusModel(fetch)

		_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		if cmd == nil {
			t.Fatal("Expected a command from q")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("q should quit the program")
		}
	})
}

func TestStatusText(t *testing.T) {
	t.Run("direct summary", func(t *testing.T) {
		text := StatusText(&ipc.StatusResponse{
			Mode:        "direct",
			ScaleX:      1.25,
			ScaleY:      2.5,
			OutputScale: 1.0,
			Surfaces:    3,
			Windows:     2,
			Outputs:     1,
		})

		for _, want := range []string{"direct (1.25 × 2.50)", "Surfaces: 3", "Windows:  2", "Outputs:  1"} {
			if !strings.Contains(text, want) {
				t.Errorf("Summary should contain %q, got:\n%s", want, text)
			}
		}
	})

	t.Run("legacy summary", func(t *testing.T) {
		text := StatusText(&ipc.StatusResponse{Mode: "legacy", ScaleX: 2.0, ScaleY: 2.0})

		if !strings.Contains(text, "legacy (2.00)") {
			t.Errorf("Summary should contain the legacy factor, got:\n%s", text)
		}
	})
}

func TestPluralize(t *testing.T) {
	if pluralize(1) != "" {
		t.Error("1 should not pluralize")
	}
	if pluralize(0) != "s" || pluralize(2) != "s" {
		t.Error("0 and 2 should pluralize")
	}
}
