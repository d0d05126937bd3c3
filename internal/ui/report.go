package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/resource"
)

// renderReport renders the activity summary held in Reports.Current.
func (m Model) renderReport() string {
	styles := m.theme.Styles()
	st := m.store.Reports.State(resource.OpFetchOne)
	title := styles.AccentText.Bold(true).Render("Reports")

	summary, ok := m.store.Reports.Current()
	switch {
	case st.Loading() && !ok:
		return title + "\n" + styles.MutedText.Render("Loading...")
	case st.Failed() && !ok:
		return title + "\n" + styles.DangerText.Render(st.Message)
	case !ok:
		return title + "\n" + styles.MutedText.Render("No report loaded. r to load")
	}

	header := title + "  " + styles.MutedText.Render(summary.From+" .. "+summary.To)
	if st.Loading() {
		header += "  " + styles.WarningText.Render("Loading...")
	}
	if len(summary.Rows) == 0 {
		return header + "\n" + styles.MutedText.Render("No activity in this period")
	}
	return header + "\n" + reportTable(m.theme, summary).Render()
}

func reportTable(theme Theme, r prms.ReportSummary) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent)).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Text)).Padding(0, 1)
	totalStyle := cellStyle.Bold(true).Foreground(lipgloss.Color(theme.Warning))

	rows := make([][]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		rows = append(rows, reportCells(row))
	}
	totals := r.Totals
	totals.Period = "Total"
	rows = append(rows, reportCells(totals))
	last := len(rows) - 1

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Border))).
		Headers("Period", "Patients", "Appointments", "Completed", "Revenue").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == last:
				return totalStyle
			default:
				return cellStyle
			}
		})
}

func reportCells(r prms.ReportRow) []string {
	return []string{
		strings.TrimSpace(r.Period),
		fmt.Sprintf("%d", r.Patients),
		fmt.Sprintf("%d", r.Appointments),
		fmt.Sprintf("%d", r.Completed),
		formatMoney(r.Revenue),
	}
}
