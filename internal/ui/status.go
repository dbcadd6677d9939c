package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/waybridge/internal/ipc"
)

// StatusFunc fetches the current session summary for the view
type StatusFunc func() (*ipc.StatusResponse, error)

// LogEntry represents a single log entry with timestamp and content
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// Message types for reactive updates
type (
	LogMsg    struct{ Entry LogEntry }
	StatusMsg struct {
		Status *ipc.StatusResponse
		Err    error
	}
	refreshMsg time.Time
)

// StatusModel is the inline status view of a running bridge: one status
// bar line plus the recent log tail
type StatusModel struct {
	fetch    StatusFunc
	status   *ipc.StatusResponse
	fetchErr error
	spinner  spinner.Model

	// Log display
	logBuffer    []LogEntry
	maxLogLines  int
	windowHeight int
	windowWidth  int
}

// NewStatusModel creates the inline bridge status model
func NewStatusModel(fetch StatusFunc) *StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &StatusModel{
		fetch:        fetch,
		spinner:      s,
		logBuffer:    make([]LogEntry, 0),
		maxLogLines:  50, // Keep last 50 log entries
		windowHeight: 24, // Default terminal height
		windowWidth:  80, // Default terminal width
	}
}

// AddLogEntry adds a new log entry to the buffer
func (m *StatusModel) AddLogEntry(entry LogEntry) {
	m.logBuffer = append(m.logBuffer, entry)

	// Keep only the last maxLogLines entries
	if len(m.logBuffer) > m.maxLogLines {
		m.logBuffer = m.logBuffer[len(m.logBuffer)-m.maxLogLines:]
	}
}

// Init initializes the status model
func (m *StatusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchStatus(), scheduleRefresh())
}

// Update handles messages for the status model
func (m *StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			cmds = append(cmds, m.fetchStatus())
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case refreshMsg:
		cmds = append(cmds, m.fetchStatus(), scheduleRefresh())

	case StatusMsg:
		m.status = msg.Status
		m.fetchErr = msg.Err

	case tea.WindowSizeMsg:
		m.windowHeight = msg.Height
		m.windowWidth = msg.Width

	case LogMsg:
		m.AddLogEntry(msg.Entry)
	}

	return m, tea.Batch(cmds...)
}

// View renders the status bar plus the recent logs
func (m *StatusModel) View() string {
	var output strings.Builder

	availableHeight := m.windowHeight - 2 // status bar plus padding
	if availableHeight < 1 {
		availableHeight = 10
	}

	output.WriteString(m.renderStatusBar())
	output.WriteString("\n")
	output.WriteString(m.renderLogs(availableHeight))

	return output.String()
}

func (m *StatusModel) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.fetch()
		return StatusMsg{Status: status, Err: err}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// renderStatusBar renders the status bar line
func (m *StatusModel) renderStatusBar() string {
	var parts []string

	// App name
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	parts = append(parts, nameStyle.Render("WAYBRIDGE"))

	// Bridge state
	if m.fetchErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		parts = append(parts, errStyle.Render("✗ Unavailable"))
	} else if m.status == nil {
		startStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		parts = append(parts, startStyle.Render(m.spinner.View()+" Starting"))
	} else {
		runStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		parts = append(parts, runStyle.Render(m.spinner.View()+" Bridging"))
		parts = append(parts, m.renderScale())
		parts = append(parts, m.renderCounts()...)
	}

	// Controls hint
	controlsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	controls := "[r] refresh • [q] quit"
	parts = append(parts, controlsStyle.Render(controls))

	// Join with separators
	separator := lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render(" │ ")
	return strings.Join(parts, separator)
}

// renderScale renders the policy and factor summary
func (m *StatusModel) renderScale() string {
	scaleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("247"))
	if m.status.Mode == "direct" {
		return scaleStyle.Render(fmt.Sprintf("direct %.2f×%.2f", m.status.ScaleX, m.status.ScaleY))
	}
	return scaleStyle.Render(fmt.Sprintf("legacy %.2f", m.status.ScaleX))
}

// renderCounts renders the surface, window and output counters
func (m *StatusModel) renderCounts() []string {
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("247"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	surfaces := fmt.Sprintf("%d surface%s", m.status.Surfaces, pluralize(m.status.Surfaces))
	windows := fmt.Sprintf("%d window%s", m.status.Windows, pluralize(m.status.Windows))
	outputs := fmt.Sprintf("%d output%s", m.status.Outputs, pluralize(m.status.Outputs))

	style := countStyle
	if m.status.Surfaces == 0 && m.status.Windows == 0 {
		style = dimStyle
	}
	return []string{style.Render(surfaces), style.Render(windows), countStyle.Render(outputs)}
}

// renderLogs renders the recent log entries
func (m *StatusModel) renderLogs(maxLines int) string {
	if len(m.logBuffer) == 0 {
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		return dimStyle.Render("No logs yet...")
	}

	var logLines []string

	// Show the most recent logs that fit in the available space
	startIdx := 0
	if len(m.logBuffer) > maxLines {
		startIdx = len(m.logBuffer) - maxLines
	}

	for i := startIdx; i < len(m.logBuffer); i++ {
		logLines = append(logLines, m.formatLogEntry(m.logBuffer[i]))
	}

	return strings.Join(logLines, "\n")
}

// formatLogEntry formats a single log entry with colors
func (m *StatusModel) formatLogEntry(entry LogEntry) string {
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	var levelStyle lipgloss.Style
	switch strings.ToUpper(entry.Level) {
	case "ERROR":
		levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	case "WARN", "WARNING":
		levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	case "INFO":
		levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	case "DEBUG":
		levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	default:
		levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("247"))
	}

	msgStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	return fmt.Sprintf("%s %s %s",
		timeStyle.Render(entry.Timestamp.Format("15:04:05")),
		levelStyle.Render(fmt.Sprintf("%-5s", strings.ToUpper(entry.Level))),
		msgStyle.Render(entry.Message))
}

// StatusText renders a one-shot plain status summary, shared by the
// status command and the SSH console
func StatusText(status *ipc.StatusResponse) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("waybridge"))
	b.WriteString("\n")

	if status.Mode == "direct" {
		b.WriteString(fmt.Sprintf("  Mode:    direct (%.2f × %.2f)\n", status.ScaleX, status.ScaleY))
	} else {
		b.WriteString(fmt.Sprintf("  Mode:    legacy (%.2f)\n", status.ScaleX))
	}
	b.WriteString(fmt.Sprintf("  Output:  %.2f\n", status.OutputScale))
	b.WriteString(fmt.Sprintf("  Surfaces: %d\n", status.Surfaces))
	b.WriteString(fmt.Sprintf("  Windows:  %d\n", status.Windows))
	b.WriteString(fmt.Sprintf("  Outputs:  %d\n", status.Outputs))
	if !status.StartedAt.IsZero() {
		b.WriteString(fmt.Sprintf("  Uptime:   %s\n", time.Since(status.StartedAt).Round(time.Second)))
	}

	return b.String()
}

// Helper functions
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
