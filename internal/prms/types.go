package prms

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Role selects which dashboard a user sees.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleStaff, RoleDoctor, RolePatient}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// AppointmentStatus is the stored status code of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses is the display order of appointment statuses.
var AppointmentStatuses = []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// AppointmentStatusLabels maps status codes to the labels shown to users.
// "pending" is displayed as "Scheduled".
var AppointmentStatusLabels = map[AppointmentStatus]string{
	StatusPending:   "Scheduled",
	StatusConfirmed: "Confirmed",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// Label returns the display label, or the raw code when unknown.
func (s AppointmentStatus) Label() string {
	if l, ok := AppointmentStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Next returns the status that follows s in the review cycle. Completed and
// cancelled appointments do not advance.
func (s AppointmentStatus) Next() AppointmentStatus {
	switch s {
	case StatusPending:
		return StatusConfirmed
	case StatusConfirmed:
		return StatusCompleted
	default:
		return s
	}
}

// InvoiceStatus is the stored status code of an invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// InvoiceStatuses is the display order of invoice statuses.
var InvoiceStatuses = []InvoiceStatus{InvoiceUnpaid, InvoicePaid, InvoiceOverdue}

// InvoiceStatusLabels maps invoice status codes to display labels.
var InvoiceStatusLabels = map[InvoiceStatus]string{
	InvoiceUnpaid:  "Unpaid",
	InvoicePaid:    "Paid",
	InvoiceOverdue: "Overdue",
}

// Label returns the display label, or the raw code when unknown.
func (s InvoiceStatus) Label() string {
	if l, ok := InvoiceStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Ref points at another entity. The API sends either the bare id or the
// populated object; both decode to a Ref.
type Ref struct {
	ID   string
	Name string
}

// String returns the display name, falling back to the id.
func (r Ref) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool { return r.ID == "" && r.Name == "" }

// UnmarshalJSON accepts "id", {"id":...}, {"_id":...} and optional name
// fields.
func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var obj struct {
		ID        string `json:"id"`
		MongoID   string `json:"_id"`
		Name      string `json:"name"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	id := obj.ID
	if id == "" {
		id = obj.MongoID
	}
	name := obj.Name
	if name == "" {
		name = strings.TrimSpace(obj.FirstName + " " + obj.LastName)
	}
	*r = Ref{ID: id, Name: name}
	return nil
}

// MarshalJSON writes the populated object form.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
	}{r.ID, r.Name})
}

// Patient is a person receiving care.
type Patient struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DateOfBirth string    `json:"dateOfBirth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Address     string    `json:"address,omitempty"`
	BloodGroup  string    `json:"bloodGroup,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Patient) Key() string { return p.ID }

// FullName joins first and last name.
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Appointment is a scheduled visit between a patient and a doctor.
type Appointment struct {
	ID      string            `json:"id"`
	Patient Ref               `json:"patient"`
	Doctor  Ref               `json:"doctor"`
	Date    string            `json:"date"`
	Time    string            `json:"time"`
	Reason  string            `json:"reason,omitempty"`
	Status  AppointmentStatus `json:"status"`
	Notes   string            `json:"notes,omitempty"`
}

func (a Appointment) Key() string { return a.ID }

// Day returns the calendar date (YYYY-MM-DD) of the appointment. Full
// timestamps are truncated.
func (a Appointment) Day() string {
	if len(a.Date) >= len(DateLayout) {
		return a.Date[:len(DateLayout)]
	}
	return a.Date
}

// User is an account that can log in to the console.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Phone  string `json:"phone,omitempty"`
	Active bool   `json:"active"`
}

func (u User) Key() string { return u.ID }

// Invoice is a bill issued to a patient.
type Invoice struct {
	ID          string        `json:"id"`
	Patient     Ref           `json:"patient"`
	Amount      float64       `json:"amount"`
	Status      InvoiceStatus `json:"status"`
	DueDate     string        `json:"dueDate,omitempty"`
	PaidAt      string        `json:"paidAt,omitempty"`
	Description string        `json:"description,omitempty"`
}

func (i Invoice) Key() string { return i.ID }

// MedicalHistory is one clinical record for a patient.
type MedicalHistory struct {
	ID        string `json:"id"`
	Patient   Ref    `json:"patient"`
	Doctor    Ref    `json:"doctor"`
	Date      string `json:"date"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (h MedicalHistory) Key() string { return h.ID }

// AuditLog records one action taken through the API.
type AuditLog struct {
	ID         string    `json:"id"`
	User       Ref       `json:"user"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Details    string    `json:"details,omitempty"`
}

func (l AuditLog) Key() string { return l.ID }

// ReportRow aggregates one period of activity.
type ReportRow struct {
	Period       string  `json:"period"`
	Patients     int     `json:"patients"`
	Appointments int     `json:"appointments"`
	Completed    int     `json:"completed"`
	Revenue      float64 `json:"revenue"`
}

// ReportSummary is the reports endpoint payload.
type ReportSummary struct {
	ID     string      `json:"id"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Rows   []ReportRow `json:"rows"`
	Totals ReportRow   `json:"totals"`
}

// Key identifies a summary by its range so it can live in a collection.
func (r ReportSummary) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.From + ".." + r.To
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"
