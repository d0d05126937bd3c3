package prms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// endpoint is the collection path of an entity plus the envelope keys its
// payloads are nested under.
type endpoint struct {
	path     string
	singular string
	plural   string
}

var (
	patientsEP     = endpoint{path: "patients", singular: "patient", plural: "patients"}
	appointmentsEP = endpoint{path: "appointments", singular: "appointment", plural: "appointments"}
	usersEP        = endpoint{path: "users", singular: "user", plural: "users"}
	invoicesEP     = endpoint{path: "invoices", singular: "invoice", plural: "invoices"}
	historyEP      = endpoint{path: "medical-history", singular: "record", plural: "records"}
	auditEP        = endpoint{path: "audit-logs", singular: "log", plural: "logs"}
	reportsEP      = endpoint{path: "reports", singular: "report", plural: "reports"}
)

func (e endpoint) listCall(query url.Values, extra ...string) call {
	return call{
		method: http.MethodGet,
		path:   append([]string{e.path}, extra...),
		query:  query,
		keys:   []string{e.plural, e.singular},
	}
}

func (e endpoint) itemCall(method, id string, body any, extra ...string) call {
	return call{
		method: method,
		path:   append([]string{e.path, id}, extra...),
		body:   body,
		keys:   []string{e.singular, e.plural},
	}
}

func (e endpoint) createCall(body any) call {
	return call{
		method: http.MethodPost,
		path:   []string{e.path},
		body:   body,
		keys:   []string{e.singular, e.plural},
	}
}

func fetchList[T any](ctx context.Context, c *Client, rq call) ([]T, error) {
	var out []T
	if err := c.do(ctx, rq, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func fetchOne[T any](ctx context.Context, c *Client, rq call) (T, error) {
	var out T
	if err := c.do(ctx, rq, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Problems: []FieldError{{Field: "id", Message: kind + " id is required"}}}
	}
	return nil
}

// Patients

// ListPatients returns every patient visible to the caller.
func (c *Client) ListPatients(ctx context.Context) ([]Patient, error) {
	return fetchList[Patient](ctx, c, patientsEP.listCall(nil))
}

// SearchPatients matches patients by name, email or phone on the server.
func (c *Client) SearchPatients(ctx context.Context, text string) ([]Patient, error) {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(text))
	return fetchList[Patient](ctx, c, patientsEP.listCall(q, "search"))
}

// GetPatient fetches one patient.
func (c *Client) GetPatient(ctx context.Context, id string) (Patient, error) {
	if err := requireID("patient", id); err != nil {
		return Patient{}, err
	}
	return fetchOne[Patient](ctx, c, patientsEP.itemCall(http.MethodGet, id, nil))
}

// CreatePatient validates in and creates the patient.
func (c *Client) CreatePatient(ctx context.Context, in PatientInput) (Patient, error) {
	if err := in.Validate(false); err != nil {
		return Patient{}, err
	}
	return fetchOne[Patient](ctx, c, patientsEP.createCall(in))
}

// UpdatePatient sends the non-empty fields of in.
func (c *Client) UpdatePatient(ctx context.Context, id string, in PatientInput) (Patient, error) {
	if err := requireID("patient", id); err != nil {
		return Patient{}, err
	}
	if err := in.Validate(true); err != nil {
		return Patient{}, err
	}
	return fetchOne[Patient](ctx, c, patientsEP.itemCall(http.MethodPatch, id, in))
}

// DeletePatient removes a patient.
func (c *Client) DeletePatient(ctx context.Context, id string) error {
	if err := requireID("patient", id); err != nil {
		return err
	}
	return c.do(ctx, patientsEP.itemCall(http.MethodDelete, id, nil), nil)
}

// Appointments

// ListAppointments returns every appointment visible to the caller.
func (c *Client) ListAppointments(ctx context.Context) ([]Appointment, error) {
	return fetchList[Appointment](ctx, c, appointmentsEP.listCall(nil))
}

// AppointmentsOn returns the appointments on date (YYYY-MM-DD).
func (c *Client) AppointmentsOn(ctx context.Context, date string) ([]Appointment, error) {
	var v checks
	v.required("date", date, "Date is required")
	v.date("date", date)
	if err := v.err(); err != nil {
		return nil, err
	}
	return fetchList[Appointment](ctx, c, appointmentsEP.listCall(nil, "date", date))
}

// AppointmentsBetween returns the appointments from..to inclusive.
func (c *Client) AppointmentsBetween(ctx context.Context, from, to string) ([]Appointment, error) {
	var v checks
	v.required("from", from, "Start date is required")
	v.required("to", to, "End date is required")
	v.date("from", from)
	v.date("to", to)
	if err := v.err(); err != nil {
		return nil, err
	}
	if to < from {
		return nil, &ValidationError{Problems: []FieldError{{Field: "to", Message: "End date must not be before start date"}}}
	}
	q := url.Values{}
	q.Set("startDate", from)
	q.Set("endDate", to)
	return fetchList[Appointment](ctx, c, appointmentsEP.listCall(q, "range"))
}

// AppointmentsToday returns today's appointments as decided by the server.
func (c *Client) AppointmentsToday(ctx context.Context) ([]Appointment, error) {
	return fetchList[Appointment](ctx, c, appointmentsEP.listCall(nil, "today"))
}

// GetAppointment fetches one appointment.
func (c *Client) GetAppointment(ctx context.Context, id string) (Appointment, error) {
	if err := requireID("appointment", id); err != nil {
		return Appointment{}, err
	}
	return fetchOne[Appointment](ctx, c, appointmentsEP.itemCall(http.MethodGet, id, nil))
}

// CreateAppointment validates in and books the appointment.
func (c *Client) CreateAppointment(ctx context.Context, in AppointmentInput) (Appointment, error) {
	if err := in.Validate(false); err != nil {
		return Appointment{}, err
	}
	return fetchOne[Appointment](ctx, c, appointmentsEP.createCall(in))
}

// UpdateAppointment sends the non-empty fields of in.
func (c *Client) UpdateAppointment(ctx context.Context, id string, in AppointmentInput) (Appointment, error) {
	if err := requireID("appointment", id); err != nil {
		return Appointment{}, err
	}
	if err := in.Validate(true); err != nil {
		return Appointment{}, err
	}
	return fetchOne[Appointment](ctx, c, appointmentsEP.itemCall(http.MethodPatch, id, in))
}

// SetAppointmentStatus changes only the status of an appointment.
func (c *Client) SetAppointmentStatus(ctx context.Context, id string, status AppointmentStatus) (Appointment, error) {
	if err := requireID("appointment", id); err != nil {
		return Appointment{}, err
	}
	if status == "" {
		return Appointment{}, &ValidationError{Problems: []FieldError{{Field: "status", Message: "Status is required"}}}
	}
	if err := (AppointmentInput{Status: status}).Validate(true); err != nil {
		return Appointment{}, err
	}
	body := map[string]AppointmentStatus{"status": status}
	return fetchOne[Appointment](ctx, c, appointmentsEP.itemCall(http.MethodPatch, id, body, "status"))
}

// DeleteAppointment cancels and removes an appointment.
func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	if err := requireID("appointment", id); err != nil {
		return err
	}
	return c.do(ctx, appointmentsEP.itemCall(http.MethodDelete, id, nil), nil)
}

// Users

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return fetchList[User](ctx, c, usersEP.listCall(nil))
}

// ListDoctors returns the accounts with the doctor role.
func (c *Client) ListDoctors(ctx context.Context) ([]User, error) {
	q := url.Values{}
	q.Set("role", string(RoleDoctor))
	return fetchList[User](ctx, c, usersEP.listCall(q))
}

// GetUser fetches one account.
func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	if err := requireID("user", id); err != nil {
		return User{}, err
	}
	return fetchOne[User](ctx, c, usersEP.itemCall(http.MethodGet, id, nil))
}

// CreateUser validates in and creates the account.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (User, error) {
	if err := in.Validate(false); err != nil {
		return User{}, err
	}
	return fetchOne[User](ctx, c, usersEP.createCall(in))
}

// UpdateUser sends the non-empty fields of in.
func (c *Client) UpdateUser(ctx context.Context, id string, in UserInput) (User, error) {
	if err := requireID("user", id); err != nil {
		return User{}, err
	}
	if err := in.Validate(true); err != nil {
		return User{}, err
	}
	return fetchOne[User](ctx, c, usersEP.itemCall(http.MethodPatch, id, in))
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := requireID("user", id); err != nil {
		return err
	}
	return c.do(ctx, usersEP.itemCall(http.MethodDelete, id, nil), nil)
}

// Invoices

// ListInvoices returns every invoice visible to the caller.
func (c *Client) ListInvoices(ctx context.Context) ([]Invoice, error) {
	return fetchList[Invoice](ctx, c, invoicesEP.listCall(nil))
}

// GetInvoice fetches one invoice.
func (c *Client) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return Invoice{}, err
	}
	return fetchOne[Invoice](ctx, c, invoicesEP.itemCall(http.MethodGet, id, nil))
}

// CreateInvoice validates in and issues the invoice.
func (c *Client) CreateInvoice(ctx context.Context, in InvoiceInput) (Invoice, error) {
	if err := in.Validate(false); err != nil {
		return Invoice{}, err
	}
	return fetchOne[Invoice](ctx, c, invoicesEP.createCall(in))
}

// UpdateInvoice sends the non-empty fields of in.
func (c *Client) UpdateInvoice(ctx context.Context, id string, in InvoiceInput) (Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return Invoice{}, err
	}
	if err := in.Validate(true); err != nil {
		return Invoice{}, err
	}
	return fetchOne[Invoice](ctx, c, invoicesEP.itemCall(http.MethodPatch, id, in))
}

// MarkInvoicePaid records payment of an invoice.
func (c *Client) MarkInvoicePaid(ctx context.Context, id string) (Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return Invoice{}, err
	}
	return fetchOne[Invoice](ctx, c, invoicesEP.itemCall(http.MethodPatch, id, nil, "pay"))
}

// DeleteInvoice removes an invoice.
func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	if err := requireID("invoice", id); err != nil {
		return err
	}
	return c.do(ctx, invoicesEP.itemCall(http.MethodDelete, id, nil), nil)
}

// Medical history

// ListHistory returns every medical history record visible to the caller.
func (c *Client) ListHistory(ctx context.Context) ([]MedicalHistory, error) {
	return fetchList[MedicalHistory](ctx, c, historyEP.listCall(nil))
}

// HistoryForPatient returns the records of one patient.
func (c *Client) HistoryForPatient(ctx context.Context, patientID string) ([]MedicalHistory, error) {
	if err := requireID("patient", patientID); err != nil {
		return nil, err
	}
	return fetchList[MedicalHistory](ctx, c, historyEP.listCall(nil, "patient", patientID))
}

// GetHistory fetches one record.
func (c *Client) GetHistory(ctx context.Context, id string) (MedicalHistory, error) {
	if err := requireID("record", id); err != nil {
		return MedicalHistory{}, err
	}
	return fetchOne[MedicalHistory](ctx, c, historyEP.itemCall(http.MethodGet, id, nil))
}

// CreateHistory validates in and adds the record.
func (c *Client) CreateHistory(ctx context.Context, in HistoryInput) (MedicalHistory, error) {
	if err := in.Validate(false); err != nil {
		return MedicalHistory{}, err
	}
	return fetchOne[MedicalHistory](ctx, c, historyEP.createCall(in))
}

// UpdateHistory sends the non-empty fields of in.
func (c *Client) UpdateHistory(ctx context.Context, id string, in HistoryInput) (MedicalHistory, error) {
	if err := requireID("record", id); err != nil {
		return MedicalHistory{}, err
	}
	if err := in.Validate(true); err != nil {
		return MedicalHistory{}, err
	}
	return fetchOne[MedicalHistory](ctx, c, historyEP.itemCall(http.MethodPatch, id, in))
}

// DeleteHistory removes a record.
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	if err := requireID("record", id); err != nil {
		return err
	}
	return c.do(ctx, historyEP.itemCall(http.MethodDelete, id, nil), nil)
}

// Audit logs and reports

// ListAuditLogs returns the most recent audit entries; limit <= 0 lets the
// server decide.
func (c *Client) ListAuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{}
		q.Set("limit", strconv.Itoa(limit))
	}
	return fetchList[AuditLog](ctx, c, auditEP.listCall(q))
}

// ReportSummary returns activity aggregated over from..to. Empty bounds let
// the server pick the range.
func (c *Client) ReportSummary(ctx context.Context, from, to string) (ReportSummary, error) {
	var v checks
	v.date("from", from)
	v.date("to", to)
	if err := v.err(); err != nil {
		return ReportSummary{}, err
	}
	if from != "" && to != "" && to < from {
		return ReportSummary{}, fmt.Errorf("report range: %w",
			&ValidationError{Problems: []FieldError{{Field: "to", Message: "End date must not be before start date"}}})
	}
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	rq := reportsEP.listCall(q, "summary")
	rq.keys = []string{"summary", reportsEP.singular}
	return fetchOne[ReportSummary](ctx, c, rq)
}
