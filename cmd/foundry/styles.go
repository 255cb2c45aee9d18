package main

import "github.com/charmbracelet/lipgloss"

var (
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleFaint   = lipgloss.NewStyle().Faint(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	// styleNumber highlights counts: output tokens, models found, and
	// cached scans removed.
	styleNumber = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
)
