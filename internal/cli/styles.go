// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Gold is the accent; income and expense colours follow the sign of a value.
var (
	GoldColor    = lipgloss.Color("#F4B942")
	IncomeColor  = lipgloss.Color("#4ECDC4")
	ExpenseColor = lipgloss.Color("#FF6B6B")
	PausedColor  = lipgloss.Color("#FFE66D")
	InfoColor    = lipgloss.Color("#95E1D3")
	MutedColor   = lipgloss.Color("#666666")
	borderColor  = lipgloss.Color("#333")
)

var (
	// TitleStyle is used for section and box titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(GoldColor).
			MarginBottom(1)

	// SuccessStyle renders confirmations, income and concluded goals.
	SuccessStyle = lipgloss.NewStyle().Foreground(IncomeColor)

	// ErrorStyle renders failures and expenses.
	ErrorStyle = lipgloss.NewStyle().Foreground(ExpenseColor)

	// PausedStyle renders paused goals.
	PausedStyle = lipgloss.NewStyle().Foreground(PausedColor)

	InfoStyle  = lipgloss.NewStyle().Foreground(InfoColor)
	MutedStyle = lipgloss.NewStyle().Foreground(MutedColor)

	// GoalBoxStyle frames the goal detail view.
	GoalBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				PaddingRight(2).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(borderColor)

	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	InfoIcon    = "ℹ️"
	EggIcon     = "🥚"
	TrophyIcon  = "🏆"
	InboxIcon   = "📥"
)

// FormatSuccess prefixes a confirmation with a check mark.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError prefixes a failure with a cross.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle renders a section title behind the nest egg icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(EggIcon + " " + title)
}

// RenderBox renders a titled goal box.
func RenderBox(title, content string) string {
	return GoalBoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}
