package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/nest-egg/internal/model"
)

const progressWidth = 20

// FormatMoney renders a value with two decimals and thousands separators.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	text := fmt.Sprintf("%.2f", v)
	whole, frac := text[:len(text)-3], text[len(text)-2:]

	var b strings.Builder
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String() + "." + frac
}

// FormatStatus colors a goal status.
func FormatStatus(status model.GoalStatus) string {
	switch status {
	case model.GoalActive:
		return InfoStyle.Render(string(status))
	case model.GoalPaused:
		return PausedStyle.Render(string(status))
	case model.GoalConcluded:
		return SuccessStyle.Render(string(status))
	default:
		return MutedStyle.Render(string(status))
	}
}

// ProgressBar draws a fixed-width bar for a percentage. Values past 100 fill the bar.
func ProgressBar(percent float64) string {
	filled := int(percent / 100 * progressWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > progressWidth {
		filled = progressWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressWidth-filled)
	return fmt.Sprintf("%s %6.2f%%", bar, percent)
}

// RenderTable lays out rows under a header with each column padded to its widest cell.
func RenderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			if w := lipgloss.Width(r[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = TableHeaderStyle.Width(widths[i] + 2).Render(h)
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, cells...)}

	for _, r := range rows {
		cells := make([]string, len(header))
		for i := range header {
			value := ""
			if i < len(r) {
				value = r[i]
			}
			cells[i] = TableCellStyle.Width(widths[i] + 2).Render(value)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// GoalRows turns goals into table rows for RenderTable.
func GoalRows(goals []model.Goal) [][]string {
	rows := make([][]string, 0, len(goals))
	for i := range goals {
		g := &goals[i]
		rows = append(rows, []string{
			g.ID,
			g.Name,
			FormatStatus(g.Status),
			FormatMoney(g.CurrentValue) + " / " + FormatMoney(g.TargetValue),
			ProgressBar(g.Progress()),
			g.Deadline.Format("2006-01-02"),
		})
	}
	return rows
}

// GoalHeader matches the columns of GoalRows.
var GoalHeader = []string{"ID", "NAME", "STATUS", "SAVED", "PROGRESS", "DEADLINE"}

// TransactionRows turns transactions into table rows for RenderTable.
func TransactionRows(txns []model.Transaction) [][]string {
	rows := make([][]string, 0, len(txns))
	for i := range txns {
		t := &txns[i]
		value := FormatMoney(t.SignedValue())
		if t.Kind == model.KindExpense {
			value = ErrorStyle.Render(value)
		} else {
			value = SuccessStyle.Render(value)
		}
		rows = append(rows, []string{
			t.ID,
			t.Date.Format("2006-01-02"),
			t.Description,
			value,
			string(t.Status),
		})
	}
	return rows
}

// TransactionHeader matches the columns of TransactionRows.
var TransactionHeader = []string{"ID", "DATE", "DESCRIPTION", "VALUE", "STATUS"}
