package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/scic/internal/model"
)

// Color palette
var (
	// Status colors
	Accepted = lipgloss.Color("#95E1A3") // Green
	Pending  = lipgloss.Color("#FFE66D") // Yellow
	Rejected = lipgloss.Color("#FF6B6B") // Red

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Danger    = lipgloss.Color("#FF6B6B")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Tabs
	TabStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 2)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Surface).
			Bold(true).
			Padding(0, 2)

	// Content pane
	ContentStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// List items
	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	// Overview cards
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2).
			MarginRight(1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Confirmation modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Danger).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger)
)

// StatusStyle returns the color style for a moderation status
func StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusAccepted:
		return lipgloss.NewStyle().Foreground(Accepted).Bold(true)
	case model.StatusRejected:
		return lipgloss.NewStyle().Foreground(Rejected).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(Pending)
	}
}

// FormatStatus returns a colored status label
func FormatStatus(s model.Status) string {
	return StatusStyle(s).Render(s.Label())
}
