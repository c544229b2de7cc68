package main

import "github.com/charmbracelet/lipgloss"

// Color palette shared by CLI output.
const (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorError   = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")
)

var (
	// TagStyle renders tag names.
	TagStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// PathStyle renders resolved paths.
	PathStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle renders failures.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle renders unresolved tags in lenient mode.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// MutedStyle renders secondary text.
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)
