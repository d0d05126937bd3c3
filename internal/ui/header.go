package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/state"
	"github.com/prms/console/internal/view"
)

// renderHeader renders the status bar: who is signed in, today's workload
// and connectivity.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBand(m.theme.Surface)
	compact := m.width < 100

	sess := m.store.Session()
	parts := []string{bg.text("prms", styles.Logo)}

	health := m.store.Health()
	switch {
	case health.IsOffline():
		parts = append(parts, bg.text("● OFFLINE", styles.DangerText))
	case m.store.Busy():
		parts = append(parts, bg.text("● SYNC", styles.WarningText))
	default:
		parts = append(parts, bg.text("● ONLINE", styles.SuccessText))
	}

	who := sess.User.Name
	if who == "" {
		who = sess.User.Email
	}
	parts = append(parts,
		bg.pair(who, styles.Text, view.RoleLabels[sess.Role()], styles.StatusStyle(string(sess.Role()))))

	now := m.now()
	if appts := m.store.Appointments.Items(); len(appts) > 0 {
		today := view.Count(appts, view.Criteria{Date: view.DateFilter{Mode: view.Today}}, view.Appointments(), now)
		parts = append(parts, bg.pair(fmt.Sprint(today), styles.AccentText, "today", styles.MutedText))
	}
	if invoices := m.store.Invoices.Items(); len(invoices) > 0 {
		unpaid := view.Count(invoices, view.Criteria{Status: string(prms.InvoiceUnpaid)}, view.Invoices(), now)
		style := styles.MutedText
		if unpaid > 0 {
			style = styles.WarningText
		}
		parts = append(parts, bg.pair(fmt.Sprint(unpaid), style, "unpaid", styles.MutedText))
	}

	if !compact {
		last := "never"
		if !health.LastUpdated.IsZero() {
			last = health.LastUpdated.Local().Format("15:04:05")
		}
		parts = append(parts, bg.pair("synced", styles.FaintText, last, styles.MutedText))
		if health.LastError != nil && health.ConsecutiveFailures > 0 {
			parts = append(parts, bg.text(truncate(prms.UserMessage(health.LastError), 40), styles.DangerText))
		}
	}

	return styles.Header.Width(m.width).Render(bg.join(parts, "  "))
}

// renderTabs renders the role's collections with the active one highlighted.
func (m Model) renderTabs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := newBand(m.theme.Background)

	var parts []string
	for i, k := range m.tabs {
		label := " " + k.Title() + " "
		if i == m.active {
			parts = append(parts, styles.Selected.Bold(true).Render(label))
			continue
		}
		parts = append(parts, bg.text(label, styles.MutedText))
	}
	if m.screen == screenActivity {
		parts = append(parts, styles.Selected.Bold(true).Render(" Activity "))
	}
	return bg.fill(bg.join(parts, " "), m.width)
}

// renderFooter shows the toast when one is live, key hints otherwise.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	if t := m.activeToast(); t != "" {
		return styles.Footer.Width(m.width).Render(t)
	}

	var hints []string
	add := func(k, desc string) {
		hints = append(hints, styles.Text.Render(k)+styles.MutedText.Render(" "+desc))
	}
	switch {
	case m.overlay == overlaySearch:
		add("enter", "apply")
		add("esc", "clear")
	case m.overlay == overlayForm:
		add("enter", "next/save")
		add("esc", "cancel")
	case m.overlay == overlayConfirm:
		add("y", "confirm")
		add("n", "cancel")
	case m.screen == screenDetail:
		add("esc", "back")
		add("x", "delete")
		m.actionHints(add)
	default:
		add("/", "search")
		if statusChoices(m.kind()) != nil {
			add("f", "status")
		}
		if hasDates(m.kind()) {
			add("t", "today")
		}
		add("r", "refresh")
		add("enter", "open")
		m.actionHints(add)
		add("a", "activity")
		add("?", "help")
	}
	return styles.Footer.Width(m.width).Render(strings.Join(hints, styles.MutedText.Render("  ")))
}

func (m Model) actionHints(add func(k, desc string)) {
	switch m.kind() {
	case state.KindPatients:
		add("n", "new")
	case state.KindAppointments:
		add("s", "advance")
	case state.KindInvoices:
		add("p", "paid")
	}
}

// activeToast renders the current toast, or "" once it has expired.
func (m Model) activeToast() string {
	if m.toast.text == "" || m.now().Sub(m.toast.at) > toastTTL {
		return ""
	}
	styles := m.theme.Styles()
	if m.toast.danger {
		return styles.DangerText.Render("✗ " + m.toast.text)
	}
	return styles.SuccessText.Render("✓ " + m.toast.text)
}

// panel draws a bordered box of the given size.
func (m Model) panel(content string, width, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Render(content)
}
