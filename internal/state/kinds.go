package state

import "github.com/prms/console/internal/prms"

// Kind names a collection the console can show.
type Kind string

const (
	KindPatients     Kind = "patients"
	KindAppointments Kind = "appointments"
	KindUsers        Kind = "users"
	KindInvoices     Kind = "invoices"
	KindHistory      Kind = "history"
	KindAudit        Kind = "audit"
	KindReports      Kind = "reports"
)

// Kinds lists every collection in display order.
var Kinds = []Kind{KindAppointments, KindPatients, KindUsers, KindInvoices, KindHistory, KindAudit, KindReports}

// Title is the heading used for the collection.
func (k Kind) Title() string {
	switch k {
	case KindPatients:
		return "Patients"
	case KindAppointments:
		return "Appointments"
	case KindUsers:
		return "Users"
	case KindInvoices:
		return "Invoices"
	case KindHistory:
		return "Medical History"
	case KindAudit:
		return "Audit Log"
	case KindReports:
		return "Reports"
	default:
		return string(k)
	}
}

// ParseKind accepts a collection name or a common alias.
func ParseKind(v string) (Kind, bool) {
	switch v {
	case "patients", "patient":
		return KindPatients, true
	case "appointments", "appointment", "appts":
		return KindAppointments, true
	case "users", "user":
		return KindUsers, true
	case "invoices", "invoice", "billing":
		return KindInvoices, true
	case "history", "medical-history", "records":
		return KindHistory, true
	case "audit", "audit-logs", "logs":
		return KindAudit, true
	case "reports", "report":
		return KindReports, true
	}
	return "", false
}

// Dashboard returns the collections a role sees, first one being the
// landing view.
func Dashboard(role prms.Role) []Kind {
	switch role {
	case prms.RoleAdmin:
		return []Kind{KindUsers, KindPatients, KindAppointments, KindInvoices, KindAudit, KindReports}
	case prms.RoleStaff:
		return []Kind{KindPatients, KindAppointments, KindInvoices}
	case prms.RoleDoctor:
		return []Kind{KindAppointments, KindPatients, KindHistory}
	case prms.RolePatient:
		return []Kind{KindAppointments, KindInvoices, KindHistory}
	default:
		return nil
	}
}
