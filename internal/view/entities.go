package view

import (
	"cmp"
	"strings"

	"github.com/prms/console/internal/prms"
)

var (
	// AppointmentStatuses reconciles appointment codes and labels, so
	// "Scheduled" selects "pending".
	AppointmentStatuses = NewSynonymMap(prms.AppointmentStatusLabels)
	// InvoiceStatuses reconciles invoice codes and labels.
	InvoiceStatuses = NewSynonymMap(prms.InvoiceStatusLabels)
	// UserRoles treats roles as the categorical field of users.
	UserRoles = NewSynonymMap(RoleLabels)
)

// RoleLabels are the display names of roles.
var RoleLabels = map[prms.Role]string{
	prms.RoleAdmin:   "Admin",
	prms.RoleStaff:   "Staff",
	prms.RoleDoctor:  "Doctor",
	prms.RolePatient: "Patient",
}

// Appointments filters by patient, doctor and reason; date; status.
// Sorted by date then time.
func Appointments() Spec[prms.Appointment] {
	return Spec[prms.Appointment]{
		Text: func(a prms.Appointment) []string {
			return []string{a.Patient.String(), a.Doctor.String(), a.Reason}
		},
		Day:      func(a prms.Appointment) string { return a.Date },
		Status:   func(a prms.Appointment) string { return string(a.Status) },
		Synonyms: AppointmentStatuses,
		Compare: func(a, b prms.Appointment) int {
			return cmp.Or(cmp.Compare(a.Day(), b.Day()), cmp.Compare(a.Time, b.Time))
		},
	}
}

// Patients filters by name, email and phone. Patients have no date or
// status. Sorted by last then first name.
func Patients() Spec[prms.Patient] {
	return Spec[prms.Patient]{
		Text: func(p prms.Patient) []string {
			return []string{p.FullName(), p.Email, p.Phone}
		},
		Compare: func(a, b prms.Patient) int {
			return cmp.Or(
				cmp.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName)),
				cmp.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)),
			)
		},
	}
}

// Invoices filters by patient and description; due date; status. Sorted by
// due date.
func Invoices() Spec[prms.Invoice] {
	return Spec[prms.Invoice]{
		Text: func(i prms.Invoice) []string {
			return []string{i.Patient.String(), i.Description, i.ID}
		},
		Day:      func(i prms.Invoice) string { return i.DueDate },
		Status:   func(i prms.Invoice) string { return string(i.Status) },
		Synonyms: InvoiceStatuses,
		Compare:  func(a, b prms.Invoice) int { return cmp.Compare(a.DueDate, b.DueDate) },
	}
}

// Users filters by name and email; the status criterion selects a role.
func Users() Spec[prms.User] {
	return Spec[prms.User]{
		Text:     func(u prms.User) []string { return []string{u.Name, u.Email} },
		Status:   func(u prms.User) string { return string(u.Role) },
		Synonyms: UserRoles,
		Compare:  func(a, b prms.User) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	}
}

// History filters by patient, doctor, diagnosis and treatment; date. Newest
// first.
func History() Spec[prms.MedicalHistory] {
	return Spec[prms.MedicalHistory]{
		Text: func(h prms.MedicalHistory) []string {
			return []string{h.Patient.String(), h.Doctor.String(), h.Diagnosis, h.Treatment}
		},
		Day:     func(h prms.MedicalHistory) string { return h.Date },
		Compare: func(a, b prms.MedicalHistory) int { return cmp.Compare(b.Date, a.Date) },
	}
}

// AuditLogs filters by user, action and resource; day of the timestamp.
// Newest first.
func AuditLogs() Spec[prms.AuditLog] {
	return Spec[prms.AuditLog]{
		Text: func(l prms.AuditLog) []string {
			return []string{l.User.String(), l.Action, l.Resource, l.ResourceID, l.Details}
		},
		Day:     func(l prms.AuditLog) string { return l.Timestamp.Format(dateLayout) },
		Compare: func(a, b prms.AuditLog) int { return b.Timestamp.Compare(a.Timestamp) },
	}
}

// StatusChoices lists the status filter values in cycle order, starting
// with "" (all statuses).
func StatusChoices[S ~string](order []S, labels map[S]string) []string {
	out := []string{""}
	for _, s := range order {
		out = append(out, labels[s])
	}
	return out
}

// NextChoice returns the choice after current, wrapping around.
func NextChoice(choices []string, current string) string {
	if len(choices) == 0 {
		return ""
	}
	for i, c := range choices {
		if strings.EqualFold(c, current) {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}
