package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/prms/console/internal/prefs"
	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/resource"
	"github.com/prms/console/internal/state"
	"github.com/prms/console/internal/view"
)

// row is one line of a list pane.
type row struct {
	id     string
	title  string
	meta   string
	status string // code, used for color
	label  string // text shown for status
	detail []field
}

type field struct {
	label string
	value string
}

// tracked is what the panes read from any resource slice.
type tracked interface {
	State(op resource.Op) resource.RequestState
	Busy() bool
	Len() int
}

func (m Model) slice(kind state.Kind) tracked {
	switch kind {
	case state.KindPatients:
		return m.store.Patients
	case state.KindAppointments:
		return m.store.Appointments
	case state.KindUsers:
		return m.store.Users
	case state.KindInvoices:
		return m.store.Invoices
	case state.KindHistory:
		return m.store.History
	case state.KindAudit:
		return m.store.AuditLogs
	default:
		return m.store.Reports
	}
}

// listState returns the most recent list load of kind, full fetch or
// filtered query.
func (m Model) listState(kind state.Kind) resource.RequestState {
	s := m.slice(kind)
	all, search := s.State(resource.OpFetchAll), s.State(resource.OpSearch)
	if search.Seq > all.Seq {
		return search
	}
	return all
}

// rows evaluates the derived view of kind under the current criteria.
func (m Model) rows(kind state.Kind) (rows []row, total int) {
	c := m.criteria(kind)
	now := m.now()
	switch kind {
	case state.KindPatients:
		return project(m.store.Patients.Items(), c, view.Patients(), now, patientRow)
	case state.KindAppointments:
		return project(m.store.Appointments.Items(), c, view.Appointments(), now, appointmentRow)
	case state.KindUsers:
		return project(m.store.Users.Items(), c, view.Users(), now, userRow)
	case state.KindInvoices:
		return project(m.store.Invoices.Items(), c, view.Invoices(), now, invoiceRow)
	case state.KindHistory:
		return project(m.store.History.Items(), c, view.History(), now, historyRow)
	case state.KindAudit:
		return project(m.store.AuditLogs.Items(), c, view.AuditLogs(), now, auditRow)
	default:
		return nil, 0
	}
}

// pageSize is how many rows a list page holds.
func (m Model) pageSize() int {
	if m.prefs.PageSize > 0 {
		return m.prefs.PageSize
	}
	return prefs.Defaults().PageSize
}

// listPage locates the page holding cursor among n rows. end is exclusive.
type listPage struct {
	index, count int
	start, end   int
}

func pageOf(cursor, n, size int) listPage {
	size = max(size, 1)
	count := max((n+size-1)/size, 1)
	index := clamp(cursor, 0, max(n-1, 0)) / size
	start := index * size
	return listPage{index: index, count: count, start: start, end: min(start+size, n)}
}

func project[T any](items []T, c view.Criteria, spec view.Spec[T], now time.Time, toRow func(T) row) ([]row, int) {
	selected := view.Select(items, c, spec, now)
	out := make([]row, 0, len(selected))
	for _, it := range selected {
		out = append(out, toRow(it))
	}
	return out, len(items)
}

// statusChoices lists the status filter cycle of kind; nil when the
// collection has no categorical field.
func statusChoices(kind state.Kind) []string {
	switch kind {
	case state.KindAppointments:
		return view.StatusChoices(prms.AppointmentStatuses, prms.AppointmentStatusLabels)
	case state.KindInvoices:
		return view.StatusChoices(prms.InvoiceStatuses, prms.InvoiceStatusLabels)
	case state.KindUsers:
		return view.StatusChoices(prms.Roles, view.RoleLabels)
	default:
		return nil
	}
}

// hasDates reports whether the date filter applies to kind.
func hasDates(kind state.Kind) bool {
	switch kind {
	case state.KindAppointments, state.KindInvoices, state.KindHistory, state.KindAudit:
		return true
	default:
		return false
	}
}

func emptyText(kind state.Kind) string {
	switch kind {
	case state.KindHistory:
		return "No medical records found"
	case state.KindAudit:
		return "No audit entries found"
	default:
		return fmt.Sprintf("No %s found", strings.ToLower(kind.Title()))
	}
}

func patientRow(p prms.Patient) row {
	return row{
		id:    p.ID,
		title: p.FullName(),
		meta:  firstNonEmpty(p.Phone, p.Email),
		detail: []field{
			{"Name", p.FullName()},
			{"Email", p.Email},
			{"Phone", p.Phone},
			{"Born", p.DateOfBirth},
			{"Gender", titleCase(p.Gender)},
			{"Blood group", p.BloodGroup},
			{"Address", p.Address},
			{"Registered", formatTime(p.CreatedAt)},
			{"ID", p.ID},
		},
	}
}

func appointmentRow(a prms.Appointment) row {
	return row{
		id:     a.ID,
		title:  a.Patient.String(),
		meta:   strings.TrimSpace(a.Day() + " " + a.Time),
		status: string(a.Status),
		label:  a.Status.Label(),
		detail: []field{
			{"Patient", a.Patient.String()},
			{"Doctor", a.Doctor.String()},
			{"Date", a.Day()},
			{"Time", a.Time},
			{"Status", a.Status.Label()},
			{"Reason", a.Reason},
			{"Notes", a.Notes},
			{"ID", a.ID},
		},
	}
}

func userRow(u prms.User) row {
	active := "yes"
	if !u.Active {
		active = "no"
	}
	return row{
		id:     u.ID,
		title:  u.Name,
		meta:   u.Email,
		status: string(u.Role),
		label:  view.RoleLabels[u.Role],
		detail: []field{
			{"Name", u.Name},
			{"Email", u.Email},
			{"Role", view.RoleLabels[u.Role]},
			{"Phone", u.Phone},
			{"Active", active},
			{"ID", u.ID},
		},
	}
}

func invoiceRow(i prms.Invoice) row {
	return row{
		id:     i.ID,
		title:  i.Patient.String(),
		meta:   formatMoney(i.Amount),
		status: string(i.Status),
		label:  i.Status.Label(),
		detail: []field{
			{"Patient", i.Patient.String()},
			{"Amount", formatMoney(i.Amount)},
			{"Status", i.Status.Label()},
			{"Due", i.DueDate},
			{"Paid", i.PaidAt},
			{"Description", i.Description},
			{"ID", i.ID},
		},
	}
}

func historyRow(h prms.MedicalHistory) row {
	return row{
		id:    h.ID,
		title: h.Diagnosis,
		meta:  strings.TrimSpace(h.Date + " " + h.Patient.String()),
		detail: []field{
			{"Patient", h.Patient.String()},
			{"Doctor", h.Doctor.String()},
			{"Date", h.Date},
			{"Diagnosis", h.Diagnosis},
			{"Treatment", h.Treatment},
			{"Notes", h.Notes},
			{"ID", h.ID},
		},
	}
}

func auditRow(l prms.AuditLog) row {
	target := l.Resource
	if l.ResourceID != "" {
		target += " " + l.ResourceID
	}
	return row{
		id:    l.ID,
		title: l.Action + " " + target,
		meta:  l.User.String() + " · " + formatTime(l.Timestamp),
		detail: []field{
			{"User", l.User.String()},
			{"Action", l.Action},
			{"Resource", target},
			{"When", formatTime(l.Timestamp)},
			{"Details", l.Details},
			{"ID", l.ID},
		},
	}
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
