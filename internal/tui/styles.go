package tui

import (
	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/charmbracelet/lipgloss"
)

// Colors used in the dashboard.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorDanger    = lipgloss.Color("196") // Red
	colorWarning   = lipgloss.Color("214") // Orange
	colorInfo      = lipgloss.Color("39")  // Blue
)

// ActiveTab style for the selected tab.
var ActiveTab = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// InactiveTab style for the other tabs.
var InactiveTab = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// Title style for page and panel titles.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1)

// HeaderRow style for table headers.
var HeaderRow = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorSecondary)

// SelectedRow style for the row under the cursor.
var SelectedRow = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236"))

// Muted style for secondary text.
var Muted = lipgloss.NewStyle().
	Foreground(colorMuted)

// CurrentPage style for the current page button.
var CurrentPage = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorDanger).
	Bold(true).
	Padding(0, 1)

// Panel style for the fallback boxes.
var Panel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// FilterBarPrompt style for the filter prompt.
var FilterBarPrompt = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

var toneColors = map[batch.Tone]lipgloss.Color{
	batch.ToneSuccess: colorSuccess,
	batch.ToneDanger:  colorDanger,
	batch.ToneWarning: colorWarning,
	batch.ToneInfo:    colorInfo,
	batch.ToneNeutral: colorSecondary,
}

// StatusStyle returns the badge style of a status tone.
func StatusStyle(t batch.Tone) lipgloss.Style {
	c, ok := toneColors[t]
	if !ok {
		c = colorSecondary
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
