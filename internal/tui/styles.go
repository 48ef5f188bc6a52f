package tui

import "github.com/charmbracelet/lipgloss"

// Calm palette; the accent is used sparingly so the question stands out.
var (
	accent = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	calm   = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"}
	amber  = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"}
	alarm  = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"}
	muted  = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
)

var (
	// BoxStyle frames every screen.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(1, 3)

	TitleStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Foreground(accent)
	DimStyle      = lipgloss.NewStyle().Foreground(muted)
	SuccessStyle  = lipgloss.NewStyle().Foreground(calm)
	ErrorStyle    = lipgloss.NewStyle().Foreground(alarm)
	WarningStyle  = lipgloss.NewStyle().Foreground(amber)

	// QuestionStyle wraps the reflection prompt to a readable column.
	QuestionStyle = lipgloss.NewStyle().
			Italic(true).
			Width(56).
			Align(lipgloss.Center)

	CountdownStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(1, 0)

	// StatusBarStyle renders the one-line notice under the box.
	StatusBarStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
)

// Row markers for the dashboard and choice lists.
var (
	AppEnabled  = SuccessStyle.Render("●")
	AppDisabled = DimStyle.Render("○")
	Cursor      = SelectedStyle.Render("▸")
)
