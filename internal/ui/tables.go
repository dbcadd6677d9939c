package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/waybridge/internal/display"
	"github.com/bnema/waybridge/internal/surface"
	"github.com/bnema/waybridge/internal/xwm"
)

// FormatSurfaceTable renders surface scale snapshots as an aligned table,
// shared by the surfaces command and the SSH console
func FormatSurfaceTable(surfaces []surface.Snapshot) string {
	if len(surfaces) == 0 {
		return MutedStyle.Render("No surfaces")
	}

	sorted := make([]surface.Snapshot, len(surfaces))
	copy(sorted, surfaces)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-8s %-10s %-10s %-9s %-6s %s",
		"ID", "SCALE X", "SCALE Y", "OVERRIDE", "ROUND", "LOGICAL")))
	b.WriteString("\n")

	for _, s := range sorted {
		override := "no"
		if s.Override {
			override = "yes"
		}
		logical := "-"
		if s.LogicalWidth > 0 || s.LogicalHeight > 0 {
			logical = fmt.Sprintf("%dx%d", s.LogicalWidth, s.LogicalHeight)
		}
		b.WriteString(TableRowStyle.Render(fmt.Sprintf("%-8d %-10.4f %-10.4f %-9s %-6s %s",
			s.ID, s.ScaleX, s.ScaleY, override, roundFlags(s.RoundX, s.RoundY), logical)))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatWindowTable renders guest window snapshots as an aligned table
func FormatWindowTable(windows []xwm.Snapshot) string {
	if len(windows) == 0 {
		return MutedStyle.Render("No windows")
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-10s %-20s %-24s %-14s %s",
		"ID", "TITLE", "APP ID", "GEOMETRY", "STATE")))
	b.WriteString("\n")

	for _, w := range windows {
		geometry := fmt.Sprintf("%dx%d+%d+%d", w.Width, w.Height, w.X, w.Y)
		b.WriteString(TableRowStyle.Render(fmt.Sprintf("0x%-8x %-20s %-24s %-14s %s",
			w.ID, trimColumn(w.Title, 20), trimColumn(w.AppID, 24), geometry, windowState(w))))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatOutputTable renders host outputs with their advertised geometry
func FormatOutputTable(outputs []display.Advertised) string {
	if len(outputs) == 0 {
		return MutedStyle.Render("No outputs")
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-14s %-12s %-12s %-12s %-7s %s",
		"NAME", "HOST", "ADVERTISED", "POSITION", "SCALE", "PRIMARY")))
	b.WriteString("\n")

	for _, o := range outputs {
		primary := ""
		if o.Primary {
			primary = "yes"
		}
		b.WriteString(TableRowStyle.Render(fmt.Sprintf("%-14s %-12s %-12s %-12s %-7.2f %s",
			trimColumn(o.Name, 14),
			fmt.Sprintf("%dx%d", o.HostWidth, o.HostHeight),
			fmt.Sprintf("%dx%d", o.Width, o.Height),
			fmt.Sprintf("+%d+%d", o.X, o.Y),
			o.HostScale,
			primary)))
		b.WriteString("\n")
	}

	return b.String()
}

func roundFlags(x, y bool) string {
	switch {
	case x && y:
		return "xy"
	case x:
		return "x"
	case y:
		return "y"
	}
	return "-"
}

func windowState(w xwm.Snapshot) string {
	var states []string
	if w.Mapped {
		states = append(states, "mapped")
	}
	if w.Fullscreen {
		states = append(states, "fullscreen")
	}
	if w.Maximized {
		states = append(states, "maximized")
	}
	if w.Iconified {
		states = append(states, "iconified")
	}
	if len(states) == 0 {
		return "withdrawn"
	}
	return strings.Join(states, ",")
}

func trimColumn(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
