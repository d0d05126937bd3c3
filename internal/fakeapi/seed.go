package fakeapi

import (
	"net/http"
	"time"

	"github.com/prms/console/internal/prms"
)

// Demo accounts. Passwords are for the development server only.
const (
	AdminEmail   = "admin@prms.local"
	StaffEmail   = "staff@prms.local"
	DoctorEmail  = "doctor@prms.local"
	PatientEmail = "jane.doe@example.com"
	DemoPassword = "password123"
)

func (s *Server) seed() {
	now := s.now()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(prms.DateLayout) }

	s.accounts = []account{
		{user: prms.User{ID: "usr-admin", Name: "Ada Admin", Email: AdminEmail, Role: prms.RoleAdmin, Active: true}, password: DemoPassword},
		{user: prms.User{ID: "usr-staff", Name: "Sam Staff", Email: StaffEmail, Role: prms.RoleStaff, Active: true}, password: DemoPassword},
		{user: prms.User{ID: "usr-doc1", Name: "Dr. Gregory House", Email: DoctorEmail, Role: prms.RoleDoctor, Active: true}, password: DemoPassword},
		{user: prms.User{ID: "usr-doc2", Name: "Dr. Lisa Cuddy", Email: "cuddy@prms.local", Role: prms.RoleDoctor, Active: true}, password: DemoPassword},
		{user: prms.User{ID: "usr-pat1", Name: "Jane Doe", Email: PatientEmail, Role: prms.RolePatient, Active: true}, password: DemoPassword, patientID: "pat-1"},
	}
	if s.empty {
		return
	}

	created := now.AddDate(0, -2, 0).UTC()
	s.patients = []prms.Patient{
		{ID: "pat-1", FirstName: "Jane", LastName: "Doe", Email: PatientEmail, Phone: "+1 555 0101", DateOfBirth: "1988-04-12", Gender: "female", BloodGroup: "O+", Address: "12 Elm St", CreatedAt: created},
		{ID: "pat-2", FirstName: "John", LastName: "Smith", Email: "john.smith@example.com", Phone: "+1 555 0102", DateOfBirth: "1975-09-30", Gender: "male", BloodGroup: "A-", CreatedAt: created.AddDate(0, 0, 3)},
		{ID: "pat-3", FirstName: "Maria", LastName: "Garcia", Phone: "+1 555 0103", DateOfBirth: "1992-01-05", Gender: "female", CreatedAt: now.AddDate(0, 0, -5).UTC()},
	}
	jane := prms.Ref{ID: "pat-1", Name: "Jane Doe"}
	john := prms.Ref{ID: "pat-2", Name: "John Smith"}
	maria := prms.Ref{ID: "pat-3", Name: "Maria Garcia"}
	house := prms.Ref{ID: "usr-doc1", Name: "Dr. Gregory House"}
	cuddy := prms.Ref{ID: "usr-doc2", Name: "Dr. Lisa Cuddy"}

	s.appointments = []prms.Appointment{
		{ID: "apt-1", Patient: jane, Doctor: house, Date: day(0), Time: "09:00", Reason: "Annual checkup", Status: prms.StatusPending},
		{ID: "apt-2", Patient: john, Doctor: house, Date: day(0), Time: "10:30", Reason: "Blood pressure follow-up", Status: prms.StatusConfirmed},
		{ID: "apt-3", Patient: maria, Doctor: cuddy, Date: day(0), Time: "14:00", Reason: "Consultation", Status: prms.StatusPending},
		{ID: "apt-4", Patient: jane, Doctor: cuddy, Date: day(-7), Time: "11:00", Reason: "Lab results", Status: prms.StatusCompleted},
		{ID: "apt-5", Patient: john, Doctor: house, Date: day(-3), Time: "15:30", Reason: "Flu symptoms", Status: prms.StatusCancelled},
		{ID: "apt-6", Patient: maria, Doctor: house, Date: day(2), Time: "08:45", Reason: "Vaccination", Status: prms.StatusPending},
	}
	s.invoices = []prms.Invoice{
		{ID: "inv-1", Patient: jane, Amount: 120, Status: prms.InvoicePaid, DueDate: day(-10), PaidAt: day(-8), Description: "Lab work"},
		{ID: "inv-2", Patient: john, Amount: 80.5, Status: prms.InvoiceUnpaid, DueDate: day(14), Description: "Consultation"},
		{ID: "inv-3", Patient: maria, Amount: 45, Status: prms.InvoiceOverdue, DueDate: day(-2), Description: "Vaccination"},
	}
	s.history = []prms.MedicalHistory{
		{ID: "rec-1", Patient: jane, Doctor: cuddy, Date: day(-7), Diagnosis: "Iron deficiency", Treatment: "Ferrous sulfate 325mg daily"},
		{ID: "rec-2", Patient: john, Doctor: house, Date: day(-30), Diagnosis: "Hypertension", Treatment: "Lisinopril 10mg", Notes: "Recheck in 4 weeks"},
	}
	s.audit = []prms.AuditLog{
		{ID: "log-1", User: prms.Ref{ID: "usr-staff", Name: "Sam Staff"}, Action: "create", Resource: "patient", ResourceID: "pat-3", Timestamp: now.AddDate(0, 0, -5).UTC()},
		{ID: "log-2", User: prms.Ref{ID: "usr-doc1", Name: "Dr. Gregory House"}, Action: "update-status", Resource: "appointment", ResourceID: "apt-2", Timestamp: now.Add(-time.Hour).UTC(), Details: "confirmed"},
	}
}

// handleReportSummary aggregates by calendar month over from..to. The
// default range is the last six months.
func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if to == "" {
		to = now.Format(prms.DateLayout)
	}
	if from == "" {
		from = time.Date(now.Year(), now.Month()-5, 1, 0, 0, 0, 0, now.Location()).Format(prms.DateLayout)
	}
	start, err1 := time.Parse(prms.DateLayout, from)
	end, err2 := time.Parse(prms.DateLayout, to)
	if err1 != nil || err2 != nil || end.Before(start) {
		writeFail(w, http.StatusBadRequest, "Invalid report range")
		return
	}

	var rows []prms.ReportRow
	index := map[string]int{}
	for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(end); m = m.AddDate(0, 1, 0) {
		index[m.Format("2006-01")] = len(rows)
		rows = append(rows, prms.ReportRow{Period: m.Format("2006-01")})
	}
	inRange := func(day string) (int, bool) {
		if len(day) < len(prms.DateLayout) {
			return 0, false
		}
		day = day[:len(prms.DateLayout)]
		if day < from || day > to {
			return 0, false
		}
		i, ok := index[day[:7]]
		return i, ok
	}

	for _, p := range s.patients {
		if i, ok := inRange(p.CreatedAt.Format(prms.DateLayout)); ok {
			rows[i].Patients++
		}
	}
	for _, a := range s.appointments {
		if i, ok := inRange(a.Day()); ok {
			rows[i].Appointments++
			if a.Status == prms.StatusCompleted {
				rows[i].Completed++
			}
		}
	}
	for _, inv := range s.invoices {
		if inv.Status != prms.InvoicePaid {
			continue
		}
		if i, ok := inRange(inv.PaidAt); ok {
			rows[i].Revenue += inv.Amount
		}
	}

	totals := prms.ReportRow{Period: "total"}
	for _, row := range rows {
		totals.Patients += row.Patients
		totals.Appointments += row.Appointments
		totals.Completed += row.Completed
		totals.Revenue += row.Revenue
	}
	writeNested(w, http.StatusOK, "summary", prms.ReportSummary{From: from, To: to, Rows: rows, Totals: totals})
}
