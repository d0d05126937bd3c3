package state

import (
	"context"

	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/resource"
)

// Patients

// LoadPatients replaces the patient list.
func (s *Store) LoadPatients(ctx context.Context) error {
	return s.observe(s.Patients.FetchAll(ctx, s.client.ListPatients))
}

// SearchPatients replaces the patient list with the server's matches.
func (s *Store) SearchPatients(ctx context.Context, text string) error {
	return s.observe(s.Patients.Load(ctx, resource.OpSearch, func(ctx context.Context) ([]prms.Patient, error) {
		return s.client.SearchPatients(ctx, text)
	}))
}

// OpenPatient loads one patient into the detail slot.
func (s *Store) OpenPatient(ctx context.Context, id string) error {
	return s.observe(s.Patients.FetchOne(ctx, func(ctx context.Context) (prms.Patient, error) {
		return s.client.GetPatient(ctx, id)
	}))
}

// CreatePatient adds a patient once the server confirms it.
func (s *Store) CreatePatient(ctx context.Context, in prms.PatientInput) error {
	return s.observe(s.Patients.Save(ctx, resource.OpCreate, func(ctx context.Context) (prms.Patient, error) {
		return s.client.CreatePatient(ctx, in)
	}))
}

// UpdatePatient applies a partial update.
func (s *Store) UpdatePatient(ctx context.Context, id string, in prms.PatientInput) error {
	return s.observe(s.Patients.Save(ctx, resource.OpUpdate, func(ctx context.Context) (prms.Patient, error) {
		return s.client.UpdatePatient(ctx, id, in)
	}))
}

// DeletePatient removes a patient once the server confirms it.
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	return s.observe(s.Patients.Delete(ctx, id, func(ctx context.Context) error {
		return s.client.DeletePatient(ctx, id)
	}))
}

// Appointments

// LoadAppointments replaces the appointment list.
func (s *Store) LoadAppointments(ctx context.Context) error {
	return s.observe(s.Appointments.FetchAll(ctx, s.client.ListAppointments))
}

// AppointmentsToday replaces the list with today's appointments.
func (s *Store) AppointmentsToday(ctx context.Context) error {
	return s.observe(s.Appointments.Load(ctx, resource.OpSearch, s.client.AppointmentsToday))
}

// AppointmentsOn replaces the list with one day's appointments.
func (s *Store) AppointmentsOn(ctx context.Context, date string) error {
	return s.observe(s.Appointments.Load(ctx, resource.OpSearch, func(ctx context.Context) ([]prms.Appointment, error) {
		return s.client.AppointmentsOn(ctx, date)
	}))
}

// AppointmentsBetween replaces the list with appointments in from..to.
func (s *Store) AppointmentsBetween(ctx context.Context, from, to string) error {
	return s.observe(s.Appointments.Load(ctx, resource.OpSearch, func(ctx context.Context) ([]prms.Appointment, error) {
		return s.client.AppointmentsBetween(ctx, from, to)
	}))
}

// OpenAppointment loads one appointment into the detail slot.
func (s *Store) OpenAppointment(ctx context.Context, id string) error {
	return s.observe(s.Appointments.FetchOne(ctx, func(ctx context.Context) (prms.Appointment, error) {
		return s.client.GetAppointment(ctx, id)
	}))
}

// CreateAppointment books an appointment.
func (s *Store) CreateAppointment(ctx context.Context, in prms.AppointmentInput) error {
	return s.observe(s.Appointments.Save(ctx, resource.OpCreate, func(ctx context.Context) (prms.Appointment, error) {
		return s.client.CreateAppointment(ctx, in)
	}))
}

// UpdateAppointment applies a partial update.
func (s *Store) UpdateAppointment(ctx context.Context, id string, in prms.AppointmentInput) error {
	return s.observe(s.Appointments.Save(ctx, resource.OpUpdate, func(ctx context.Context) (prms.Appointment, error) {
		return s.client.UpdateAppointment(ctx, id, in)
	}))
}

// SetAppointmentStatus moves an appointment to status.
func (s *Store) SetAppointmentStatus(ctx context.Context, id string, status prms.AppointmentStatus) error {
	return s.observe(s.Appointments.Save(ctx, resource.OpUpdate, func(ctx context.Context) (prms.Appointment, error) {
		return s.client.SetAppointmentStatus(ctx, id, status)
	}))
}

// DeleteAppointment removes an appointment.
func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	return s.observe(s.Appointments.Delete(ctx, id, func(ctx context.Context) error {
		return s.client.DeleteAppointment(ctx, id)
	}))
}

// Users

// LoadUsers replaces the user list.
func (s *Store) LoadUsers(ctx context.Context) error {
	return s.observe(s.Users.FetchAll(ctx, s.client.ListUsers))
}

// LoadDoctors replaces the doctor list used by booking forms.
func (s *Store) LoadDoctors(ctx context.Context) error {
	return s.observe(s.Doctors.FetchAll(ctx, s.client.ListDoctors))
}

// CreateUser adds a user account.
func (s *Store) CreateUser(ctx context.Context, in prms.UserInput) error {
	return s.observe(s.Users.Save(ctx, resource.OpCreate, func(ctx context.Context) (prms.User, error) {
		return s.client.CreateUser(ctx, in)
	}))
}

// UpdateUser applies a partial update.
func (s *Store) UpdateUser(ctx context.Context, id string, in prms.UserInput) error {
	return s.observe(s.Users.Save(ctx, resource.OpUpdate, func(ctx context.Context) (prms.User, error) {
		return s.client.UpdateUser(ctx, id, in)
	}))
}

// DeleteUser removes a user account.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.observe(s.Users.Delete(ctx, id, func(ctx context.Context) error {
		return s.client.DeleteUser(ctx, id)
	}))
}

// Invoices

// LoadInvoices replaces the invoice list.
func (s *Store) LoadInvoices(ctx context.Context) error {
	return s.observe(s.Invoices.FetchAll(ctx, s.client.ListInvoices))
}

// CreateInvoice issues an invoice.
func (s *Store) CreateInvoice(ctx context.Context, in prms.InvoiceInput) error {
	return s.observe(s.Invoices.Save(ctx, resource.OpCreate, func(ctx context.Context) (prms.Invoice, error) {
		return s.client.CreateInvoice(ctx, in)
	}))
}

// MarkInvoicePaid settles an invoice.
func (s *Store) MarkInvoicePaid(ctx context.Context, id string) error {
	return s.observe(s.Invoices.Save(ctx, resource.OpUpdate, func(ctx context.Context) (prms.Invoice, error) {
		return s.client.MarkInvoicePaid(ctx, id)
	}))
}

// DeleteInvoice removes an invoice.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	return s.observe(s.Invoices.Delete(ctx, id, func(ctx context.Context) error {
		return s.client.DeleteInvoice(ctx, id)
	}))
}

// Medical history

// LoadHistory replaces the history list.
func (s *Store) LoadHistory(ctx context.Context) error {
	return s.observe(s.History.FetchAll(ctx, s.client.ListHistory))
}

// HistoryForPatient replaces the history list with one patient's records.
func (s *Store) HistoryForPatient(ctx context.Context, patientID string) error {
	return s.observe(s.History.Load(ctx, resource.OpSearch, func(ctx context.Context) ([]prms.MedicalHistory, error) {
		return s.client.HistoryForPatient(ctx, patientID)
	}))
}

// CreateHistory adds a medical record.
func (s *Store) CreateHistory(ctx context.Context, in prms.HistoryInput) error {
	return s.observe(s.History.Save(ctx, resource.OpCreate, func(ctx context.Context) (prms.MedicalHistory, error) {
		return s.client.CreateHistory(ctx, in)
	}))
}

// DeleteHistory removes a medical record.
func (s *Store) DeleteHistory(ctx context.Context, id string) error {
	return s.observe(s.History.Delete(ctx, id, func(ctx context.Context) error {
		return s.client.DeleteHistory(ctx, id)
	}))
}

// Audit and reports

// LoadAuditLogs replaces the audit list with the newest limit entries.
func (s *Store) LoadAuditLogs(ctx context.Context, limit int) error {
	return s.observe(s.AuditLogs.FetchAll(ctx, func(ctx context.Context) ([]prms.AuditLog, error) {
		return s.client.ListAuditLogs(ctx, limit)
	}))
}

// LoadReport loads the summary for from..to into Reports.Current.
func (s *Store) LoadReport(ctx context.Context, from, to string) error {
	return s.observe(s.Reports.FetchOne(ctx, func(ctx context.Context) (prms.ReportSummary, error) {
		return s.client.ReportSummary(ctx, from, to)
	}))
}

// Delete removes id from the collection behind kind.
func (s *Store) Delete(ctx context.Context, kind Kind, id string) error {
	switch kind {
	case KindPatients:
		return s.DeletePatient(ctx, id)
	case KindAppointments:
		return s.DeleteAppointment(ctx, id)
	case KindUsers:
		return s.DeleteUser(ctx, id)
	case KindInvoices:
		return s.DeleteInvoice(ctx, id)
	case KindHistory:
		return s.DeleteHistory(ctx, id)
	default:
		return &prms.ValidationError{Problems: []prms.FieldError{{Field: "collection", Message: kind.Title() + " cannot be deleted"}}}
	}
}
