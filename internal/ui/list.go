package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prms/console/internal/resource"
	"github.com/prms/console/internal/state"
)

// renderList renders the active collection through its derived view.
func (m Model) renderList() string {
	styles := m.theme.Styles()
	kind := m.kind()
	if kind == "" {
		return styles.MutedText.Render("Nothing to show for this account")
	}
	lv := m.list(kind)
	rows, total := m.rows(kind)
	st := m.listState(kind)

	var lines []string
	lv.cursor = clamp(lv.cursor, 0, max(len(rows)-1, 0))
	pg := pageOf(lv.cursor, len(rows), m.pageSize())
	lines = append(lines, m.renderListTitle(kind, len(rows), total, st, pg))
	if m.overlay == overlaySearch {
		lines = append(lines, m.search.View())
	}

	if len(rows) == 0 {
		switch {
		case st.Loading() && total == 0:
			lines = append(lines, styles.MutedText.Render("Loading..."))
		case st.Failed() && total == 0:
			lines = append(lines, styles.DangerText.Render(st.Message))
		default:
			lines = append(lines, styles.MutedText.Render(emptyText(kind)))
		}
		return strings.Join(lines, "\n")
	}

	height := max(m.bodyHeight()-len(lines), 1)
	start := pg.start
	if lv.cursor-pg.start >= height {
		start = lv.cursor - height + 1
	}
	end := min(start+height, pg.end)

	titleW := max(m.width*2/5, 16)
	metaW := max(m.width-titleW-16, 10)
	for i := start; i < end; i++ {
		r := rows[i]
		line := padRight(r.title, titleW) + " " + padRight(r.meta, metaW)
		badge := ""
		if r.label != "" {
			badge = " " + styles.StatusStyle(r.status).Render(r.label)
		}
		if i == lv.cursor {
			lines = append(lines, styles.Selected.Render(line)+badge)
			continue
		}
		lines = append(lines, styles.Text.Render(line)+badge)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderListTitle(kind state.Kind, visible, total int, st resource.RequestState, pg listPage) string {
	styles := m.theme.Styles()
	c := m.criteria(kind)

	parts := []string{
		styles.AccentText.Bold(true).Render(kind.Title()),
		styles.MutedText.Render(fmt.Sprintf("%d/%d", visible, total)),
	}
	if text := strings.TrimSpace(c.Text); text != "" {
		parts = append(parts, styles.InfoText.Render(fmt.Sprintf("%q", text)))
	}
	if c.Status != "" {
		parts = append(parts, styles.InfoText.Render("status:"+c.Status))
	}
	if hasDates(kind) {
		parts = append(parts, styles.InfoText.Render(c.Date.Label()))
	}
	if pg.count > 1 {
		parts = append(parts, styles.MutedText.Render(fmt.Sprintf("page %d/%d", pg.index+1, pg.count)))
	}
	switch {
	case st.Loading():
		parts = append(parts, styles.WarningText.Render("Loading..."))
	case st.Failed():
		parts = append(parts, styles.DangerText.Render(st.Message))
	}
	return strings.Join(parts, "  ")
}

// detailRow resolves the open record, preferring the freshly fetched
// current entity over the list copy.
func (m Model) detailRow() (row, bool) {
	id := m.detailID
	switch m.kind() {
	case state.KindPatients:
		return lookup(m.store.Patients, id, patientRow)
	case state.KindAppointments:
		return lookup(m.store.Appointments, id, appointmentRow)
	case state.KindUsers:
		return lookup(m.store.Users, id, userRow)
	case state.KindInvoices:
		return lookup(m.store.Invoices, id, invoiceRow)
	case state.KindHistory:
		return lookup(m.store.History, id, historyRow)
	case state.KindAudit:
		return lookup(m.store.AuditLogs, id, auditRow)
	}
	return row{}, false
}

func lookup[T interface{ Key() string }](s *resource.Slice[T], id string, toRow func(T) row) (row, bool) {
	if cur, ok := s.Current(); ok && cur.Key() == id {
		return toRow(cur), true
	}
	if it, ok := s.Get(id); ok {
		return toRow(it), true
	}
	return row{}, false
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	r, ok := m.detailRow()
	if !ok {
		return styles.MutedText.Render("This record is no longer available. esc to go back")
	}

	lines := []string{styles.AccentText.Bold(true).Render(r.title)}
	if r.label != "" {
		lines[0] += " " + styles.StatusStyle(r.status).Render(r.label)
	}
	st := m.slice(m.kind()).State(resource.OpFetchOne)
	switch {
	case st.Loading():
		lines = append(lines, styles.WarningText.Render("Refreshing..."))
	case st.Failed():
		lines = append(lines, styles.DangerText.Render(st.Message))
	}
	lines = append(lines, "")

	labelW := 0
	for _, f := range r.detail {
		labelW = max(labelW, lipgloss.Width(f.label))
	}
	for _, f := range r.detail {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		lines = append(lines, styles.MutedText.Render(padRight(f.label, labelW))+"  "+styles.Text.Render(f.value))
	}
	return m.panel(strings.Join(lines, "\n"), m.width, m.bodyHeight(), true)
}
