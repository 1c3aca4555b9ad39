package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Header   lipgloss.Style
	Title    lipgloss.Style
	Bar      lipgloss.Style
	BarEmpty lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Status   lipgloss.Style
	Footer   lipgloss.Style
}

func newStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color("#5A56E0")).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A56E0")).
			Bold(true).
			MarginTop(1),
		Bar:      lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		BarEmpty: lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C")),
		Active:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		Inactive: lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C")).
			MarginTop(1),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1),
	}
}
