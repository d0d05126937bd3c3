package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prms/console/internal/state"
)

// confirmDialog asks before a record is deleted.
type confirmDialog struct {
	kind   state.Kind
	id     string
	prompt string
}

func (c confirmDialog) view(theme Theme, width int) string {
	styles := theme.Styles()
	body := strings.Join([]string{
		styles.WarningText.Bold(true).Render(c.prompt),
		"",
		styles.MutedText.Render("This cannot be undone."),
		"",
		styles.Text.Render("y") + styles.MutedText.Render(" delete   ") +
			styles.Text.Render("n/esc") + styles.MutedText.Render(" keep"),
	}, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Danger)).
		Padding(1, 2).
		Width(min(60, max(width-4, 20))).
		Render(body)
}
