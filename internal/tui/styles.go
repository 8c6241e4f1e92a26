package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xwlm/internal/geometry"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	fileStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	addStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ctxStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	overlayBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62"))

	itemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
)

// renderStatusBar renders the top bar: dialect, config path and whether
// there are unsaved edits.
func renderStatusBar(dialect, path string, dirty bool, width int) string {
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	parts := []string{dot + " " + dialect, path}
	if dirty {
		parts = append(parts, warnStyle.Render("modified"))
	}
	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(strings.Join(parts, "  "))
}

// renderMonitorList renders the left panel listing every monitor.
func renderMonitorList(monitors []geometry.Monitor, selected, width, height int) string {
	lines := []string{titleStyle.Render("Monitors"), ""}
	for i, m := range monitors {
		indicator := addStyle.Render("●")
		if !m.Enabled {
			indicator = dimStyle.Render("○")
		}
		name := truncate(m.Name, max(width-6, 4))
		if i == selected {
			lines = append(lines, indicator+" "+selectedItemStyle.Render(name))
		} else {
			lines = append(lines, indicator+" "+itemStyle.Render(name))
		}
	}
	return lipgloss.NewStyle().Width(width).Height(height).Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// renderDetails renders the properties of the selected monitor on one or
// two lines.
func renderDetails(m geometry.Monitor, width int) string {
	row := func(label, value string) string {
		return labelStyle.Render(label+" ") + valueStyle.Render(value)
	}
	state := okStyle.Render("enabled")
	if !m.Enabled {
		state = errStyle.Render("disabled")
	}
	mode := fmt.Sprintf("%dx%d", m.Width, m.Height)
	if m.Refresh > 0 {
		mode += fmt.Sprintf("@%g", m.Refresh)
	}
	ws := "-"
	if len(m.Workspaces) > 0 {
		ws = strings.Join(m.Workspaces, ",")
	}
	first := strings.Join([]string{
		valueStyle.Render(m.Name),
		dimStyle.Render(m.Description),
		state,
	}, "  ")
	second := strings.Join([]string{
		row("mode", mode),
		row("pos", fmt.Sprintf("%d,%d", m.X, m.Y)),
		row("scale", fmt.Sprintf("%g", m.Scale)),
		row("transform", m.Transform.String()),
		row("workspaces", ws),
	}, "  ")
	return lipgloss.NewStyle().Width(width).Padding(0, 1).Render(first + "\n" + second)
}
