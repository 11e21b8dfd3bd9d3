package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for TUI components.
var (
	ColorAccent  = lipgloss.Color("#D7FE40") // Lime
	ColorPrimary = lipgloss.Color("#9b59b6") // Purple
	ColorMuted   = lipgloss.Color("#95a5a6") // Gray
	ColorWarning = lipgloss.Color("#f39c12") // Amber
	ColorError   = lipgloss.Color("#e74c3c") // Red
	ColorInfo    = lipgloss.Color("#3498db") // Blue
	ColorSuccess = lipgloss.Color("#2ecc71") // Bright green
)

// Text styles for consistent formatting.
var (
	// TitleStyle for main headings.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// SelectedStyle for selected items in lists.
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	// UnselectedStyle for unselected items in lists.
	UnselectedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	// ModelStyle for displaying model ids.
	ModelStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	CostStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	// StageStyle for operation names in progress lines.
	StageStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)
)

// Prompt and chat styles.
var (
	// FieldKeyStyle for prompt field names.
	FieldKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	// ValueStyle for the current value of a field.
	ValueStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	// AlternativeStyle for numbered alternatives.
	AlternativeStyle = lipgloss.NewStyle().
				PaddingLeft(4).
				Foreground(ColorMuted)

	UserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	AssistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorInfo)
)
