package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/state"
	"github.com/prms/console/internal/view"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// printList writes the derived view of kind as a table and returns how many
// rows matched.
func printList(out io.Writer, store *state.Store, kind state.Kind, c view.Criteria, now time.Time) (int, error) {
	w := newTable(out)
	var n int
	switch kind {
	case state.KindPatients:
		items := view.Select(store.Patients.Items(), c, view.Patients(), now)
		row(w, "ID", "NAME", "EMAIL", "PHONE", "BORN", "GENDER")
		for _, p := range items {
			row(w, p.ID, p.FullName(), p.Email, p.Phone, p.DateOfBirth, p.Gender)
		}
		n = len(items)
	case state.KindAppointments:
		items := view.Select(store.Appointments.Items(), c, view.Appointments(), now)
		row(w, "ID", "DATE", "TIME", "PATIENT", "DOCTOR", "STATUS", "REASON")
		for _, a := range items {
			row(w, a.ID, a.Day(), a.Time, a.Patient.String(), a.Doctor.String(), a.Status.Label(), a.Reason)
		}
		n = len(items)
	case state.KindUsers:
		items := view.Select(store.Users.Items(), c, view.Users(), now)
		row(w, "ID", "NAME", "EMAIL", "ROLE", "ACTIVE")
		for _, u := range items {
			row(w, u.ID, u.Name, u.Email, view.RoleLabels[u.Role], fmt.Sprint(u.Active))
		}
		n = len(items)
	case state.KindInvoices:
		items := view.Select(store.Invoices.Items(), c, view.Invoices(), now)
		row(w, "ID", "PATIENT", "AMOUNT", "STATUS", "DUE", "PAID")
		for _, i := range items {
			row(w, i.ID, i.Patient.String(), money(i.Amount), i.Status.Label(), i.DueDate, i.PaidAt)
		}
		n = len(items)
	case state.KindHistory:
		items := view.Select(store.History.Items(), c, view.History(), now)
		row(w, "ID", "DATE", "PATIENT", "DOCTOR", "DIAGNOSIS", "TREATMENT")
		for _, h := range items {
			row(w, h.ID, h.Date, h.Patient.String(), h.Doctor.String(), h.Diagnosis, h.Treatment)
		}
		n = len(items)
	case state.KindAudit:
		items := view.Select(store.AuditLogs.Items(), c, view.AuditLogs(), now)
		row(w, "WHEN", "USER", "ACTION", "RESOURCE", "ID", "DETAILS")
		for _, l := range items {
			row(w, stamp(l.Timestamp), l.User.String(), l.Action, l.Resource, l.ResourceID, l.Details)
		}
		n = len(items)
	default:
		return 0, fmt.Errorf("%s cannot be listed", kind.Title())
	}
	if n == 0 {
		_, err := fmt.Fprintf(out, "No %s found\n", strings.ToLower(kind.Title()))
		return 0, err
	}
	return n, w.Flush()
}

func printReport(out io.Writer, r prms.ReportSummary) error {
	fmt.Fprintf(out, "Report %s .. %s\n\n", r.From, r.To)
	w := newTable(out)
	row(w, "PERIOD", "PATIENTS", "APPOINTMENTS", "COMPLETED", "REVENUE")
	for _, p := range r.Rows {
		reportRow(w, p.Period, p)
	}
	reportRow(w, "TOTAL", r.Totals)
	return w.Flush()
}

func reportRow(w io.Writer, period string, p prms.ReportRow) {
	row(w, period, fmt.Sprint(p.Patients), fmt.Sprint(p.Appointments), fmt.Sprint(p.Completed), money(p.Revenue))
}
