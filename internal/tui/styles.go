package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#2563EB")
	colorSecondary = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
	colorFg        = lipgloss.Color("#F9FAFB")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	// Step indicator
	ActiveStepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg).
			Background(colorPrimary).
			Padding(0, 1)

	DoneStepStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Padding(0, 1)

	StepStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// Fields
	LabelStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			PaddingLeft(2)

	// Status line
	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)
)
