// Package cli renders smartcat output for the terminal and reads
// transaction input.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	saffron = lipgloss.Color("#FF9933")
	green   = lipgloss.Color("#138808")
	amber   = lipgloss.Color("#FFC857")
	red     = lipgloss.Color("#E4572E")
	sky     = lipgloss.Color("#76B6C4")
	gray    = lipgloss.Color("#6C6C6C")
)

var (
	// TitleStyle is used for section and taxonomy headings.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(saffron).MarginBottom(1)

	// SubtleStyle dims secondary text and table borders.
	SubtleStyle = lipgloss.NewStyle().Foreground(gray)

	// TableHeaderStyle and TableCellStyle pad table columns.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(saffron).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(green)
	warningStyle = lipgloss.NewStyle().Foreground(amber)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	infoStyle    = lipgloss.NewStyle().Foreground(sky)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(saffron).Padding(0, 1)
)

// Icons used in messages and transaction flags.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
	SplitIcon   = "✂️"
	ReviewIcon  = "🔍"
	RepeatIcon  = "🔁"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return successStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return errorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return warningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return infoStyle.Render(InfoIcon + " " + message)
}

// RenderBox renders content under a title inside a rounded border.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
