package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PanelString frames lines with the current theme's border.
func PanelString(lines []string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Panel writes a framed box to w.
func Panel(w io.Writer, lines []string) { fmt.Fprintln(w, PanelString(lines)) }

// Truncate shortens s to width cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// Table lays out rows under headers with fixed column widths.
func Table(headers []string, widths []int, rows [][]string) []string {
	t := Current()
	cell := func(s string, w int) string {
		s = Truncate(s, w)
		return s + strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
	}
	line := func(cols []string, style lipgloss.Style) string {
		parts := make([]string, len(cols))
		for i, c := range cols {
			w := 12
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = cell(c, w)
		}
		return style.Render(strings.Join(parts, "  "))
	}

	out := []string{line(headers, t.Header)}
	for _, r := range rows {
		out = append(out, line(r, lipgloss.NewStyle()))
	}
	return out
}
