package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	UserLabel      lipgloss.Style
	BotLabel       lipgloss.Style
	Strong         lipgloss.Style
	Muted          lipgloss.Style
	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		UserLabel:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		BotLabel:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Strong:         lipgloss.NewStyle().Bold(true),
		Muted:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Button:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")),
		ButtonDisabled: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
