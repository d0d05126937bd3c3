package fakeapi

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/prms/console/internal/prms"
)

// The handlers deliberately answer in different envelope shapes:
//
//	patients, invoices      {status, results, data: {<plural>: [...]}} / {data: {<singular>: {...}}}
//	appointments            {status, results, data: [...]} / {status, data: {...}}
//	users                   bare arrays and objects
//	medical history         {data: {records}} with Mongo-style "_id" fields

func indexOf[T interface{ Key() string }](items []T, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return it.Key() == id })
}

// Patients

func (s *Server) patientRoutes(r chi.Router) {
	staff := requireRole(prms.RoleAdmin, prms.RoleStaff)
	r.Route("/patients", func(r chi.Router) {
		r.With(requireRole(prms.RoleAdmin, prms.RoleStaff, prms.RoleDoctor)).Get("/", s.handleListPatients)
		r.With(requireRole(prms.RoleAdmin, prms.RoleStaff, prms.RoleDoctor)).Get("/search", s.handleSearchPatients)
		r.With(staff).Post("/", s.handleCreatePatient)
		r.Get("/{id}", s.handleGetPatient)
		r.With(staff).Patch("/{id}", s.handleUpdatePatient)
		r.With(staff).Delete("/{id}", s.handleDeletePatient)
	})
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeNestedList(w, "patients", slices.Clone(s.patients))
}

func (s *Server) handleSearchPatients(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []prms.Patient
	for _, p := range s.patients {
		hay := strings.ToLower(strings.Join([]string{p.FullName(), p.Email, p.Phone}, " "))
		if q == "" || strings.Contains(hay, q) {
			out = append(out, p)
		}
	}
	writeNestedList(w, "patients", out)
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFrom(r)
	if claims.Role == prms.RolePatient && claims.PatientID != id {
		writeFail(w, http.StatusForbidden, forbidden)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.patients, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	writeNested(w, http.StatusOK, "patient", s.patients[i])
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var in prms.PatientInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(false)) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := prms.Patient{ID: newID("pat"), CreatedAt: s.now().UTC()}
	applyPatient(&p, in)
	s.patients = append(s.patients, p)
	s.record(s.actor(r), "create", "patient", p.ID, p.FullName())
	writeNested(w, http.StatusCreated, "patient", p)
}

func (s *Server) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	var in prms.PatientInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(true)) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.patients, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	applyPatient(&s.patients[i], in)
	s.refreshPatientRefs(s.patients[i])
	s.record(s.actor(r), "update", "patient", id, "")
	writeNested(w, http.StatusOK, "patient", s.patients[i])
}

func (s *Server) handleDeletePatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.patients, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	s.patients = slices.Delete(s.patients, i, i+1)
	s.record(s.actor(r), "delete", "patient", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func applyPatient(p *prms.Patient, in prms.PatientInput) {
	set(&p.FirstName, in.FirstName)
	set(&p.LastName, in.LastName)
	set(&p.Email, in.Email)
	set(&p.Phone, in.Phone)
	set(&p.DateOfBirth, in.DateOfBirth)
	set(&p.Gender, strings.ToLower(in.Gender))
	set(&p.Address, in.Address)
	set(&p.BloodGroup, in.BloodGroup)
}

func set[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// refreshPatientRefs keeps denormalized names in sync after a rename.
func (s *Server) refreshPatientRefs(p prms.Patient) {
	ref := prms.Ref{ID: p.ID, Name: p.FullName()}
	for i := range s.appointments {
		if s.appointments[i].Patient.ID == p.ID {
			s.appointments[i].Patient = ref
		}
	}
	for i := range s.invoices {
		if s.invoices[i].Patient.ID == p.ID {
			s.invoices[i].Patient = ref
		}
	}
	for i := range s.history {
		if s.history[i].Patient.ID == p.ID {
			s.history[i].Patient = ref
		}
	}
}

func (s *Server) patientRef(id string) (prms.Ref, bool) {
	i := indexOf(s.patients, id)
	if i < 0 {
		return prms.Ref{}, false
	}
	return prms.Ref{ID: id, Name: s.patients[i].FullName()}, true
}

func (s *Server) userRef(id string, role prms.Role) (prms.Ref, bool) {
	for _, a := range s.accounts {
		if a.user.ID == id && (role == "" || a.user.Role == role) {
			return prms.Ref{ID: id, Name: a.user.Name}, true
		}
	}
	return prms.Ref{}, false
}

// Appointments

type refWire struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

type appointmentWire struct {
	prms.Appointment
	Patient refWire `json:"patient"`
	Doctor  refWire `json:"doctor"`
}

func appointmentOut(a prms.Appointment) appointmentWire {
	return appointmentWire{
		Appointment: a,
		Patient:     refWire{ID: a.Patient.ID, Name: a.Patient.Name},
		Doctor:      refWire{ID: a.Doctor.ID, Name: a.Doctor.Name},
	}
}

func (s *Server) appointmentRoutes(r chi.Router) {
	clinical := requireRole(prms.RoleAdmin, prms.RoleStaff, prms.RoleDoctor)
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", s.handleListAppointments)
		r.Get("/today", s.handleAppointmentsToday)
		r.Get("/range", s.handleAppointmentsRange)
		r.Get("/date/{date}", s.handleAppointmentsOn)
		r.With(clinical).Post("/", s.handleCreateAppointment)
		r.Get("/{id}", s.handleGetAppointment)
		r.With(clinical).Patch("/{id}", s.handleUpdateAppointment)
		r.With(clinical).Patch("/{id}/status", s.handleAppointmentStatus)
		r.With(requireRole(prms.RoleAdmin, prms.RoleStaff)).Delete("/{id}", s.handleDeleteAppointment)
	})
}

// visibleAppointments applies role scoping. Callers hold s.mu.
func (s *Server) visibleAppointments(r *http.Request, keep func(prms.Appointment) bool) []appointmentWire {
	claims := claimsFrom(r)
	out := []appointmentWire{}
	for _, a := range s.appointments {
		switch claims.Role {
		case prms.RolePatient:
			if a.Patient.ID != claims.PatientID {
				continue
			}
		case prms.RoleDoctor:
			if a.Doctor.ID != claims.UserID {
				continue
			}
		}
		if keep == nil || keep(a) {
			out = append(out, appointmentOut(a))
		}
	}
	return out
}

func writeAppointmentList(w http.ResponseWriter, items []appointmentWire) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "results": len(items), "data": items})
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeAppointmentList(w, s.visibleAppointments(r, nil))
}

func (s *Server) handleAppointmentsToday(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := s.now().Format(prms.DateLayout)
	writeAppointmentList(w, s.visibleAppointments(r, func(a prms.Appointment) bool { return a.Day() == today }))
}

func (s *Server) handleAppointmentsOn(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	s.mu.Lock()
	defer s.mu.Unlock()
	writeAppointmentList(w, s.visibleAppointments(r, func(a prms.Appointment) bool { return a.Day() == date }))
}

func (s *Server) handleAppointmentsRange(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("startDate")
	to := r.URL.Query().Get("endDate")
	if from == "" || to == "" {
		writeFail(w, http.StatusBadRequest, "Please provide startDate and endDate")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeAppointmentList(w, s.visibleAppointments(r, func(a prms.Appointment) bool {
		return a.Day() >= from && a.Day() <= to
	}))
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := s.visibleAppointments(r, func(a prms.Appointment) bool { return a.ID == id })
	if len(visible) == 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	writeFlat(w, http.StatusOK, visible[0])
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var in prms.AppointmentInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(false)) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	patient, ok := s.patientRef(in.Patient)
	if !ok {
		writeFail(w, http.StatusBadRequest, "Patient does not exist")
		return
	}
	doctor, ok := s.userRef(in.Doctor, prms.RoleDoctor)
	if !ok {
		writeFail(w, http.StatusBadRequest, "Doctor does not exist")
		return
	}
	a := prms.Appointment{
		ID:      newID("apt"),
		Patient: patient,
		Doctor:  doctor,
		Date:    in.Date,
		Time:    in.Time,
		Reason:  in.Reason,
		Status:  prms.StatusPending,
		Notes:   in.Notes,
	}
	set(&a.Status, in.Status)
	s.appointments = append(s.appointments, a)
	s.record(s.actor(r), "create", "appointment", a.ID, a.Date+" "+a.Time)
	writeNested(w, http.StatusCreated, "appointment", appointmentOut(a))
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var in prms.AppointmentInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(true)) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.appointments, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	a := &s.appointments[i]
	if in.Patient != "" {
		ref, ok := s.patientRef(in.Patient)
		if !ok {
			writeFail(w, http.StatusBadRequest, "Patient does not exist")
			return
		}
		a.Patient = ref
	}
	if in.Doctor != "" {
		ref, ok := s.userRef(in.Doctor, prms.RoleDoctor)
		if !ok {
			writeFail(w, http.StatusBadRequest, "Doctor does not exist")
			return
		}
		a.Doctor = ref
	}
	set(&a.Date, in.Date)
	set(&a.Time, in.Time)
	set(&a.Reason, in.Reason)
	set(&a.Status, in.Status)
	set(&a.Notes, in.Notes)
	s.record(s.actor(r), "update", "appointment", id, "")
	writeFlat(w, http.StatusOK, appointmentOut(*a))
}

func (s *Server) handleAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status prms.AppointmentStatus `json:"status"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if _, ok := prms.AppointmentStatusLabels[in.Status]; !ok {
		writeFail(w, http.StatusBadRequest, "Invalid status")
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.appointments, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	s.appointments[i].Status = in.Status
	s.record(s.actor(r), "update-status", "appointment", id, string(in.Status))
	writeNested(w, http.StatusOK, "appointment", appointmentOut(s.appointments[i]))
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.appointments, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	s.appointments = slices.Delete(s.appointments, i, i+1)
	s.record(s.actor(r), "delete", "appointment", id, "")
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": nil})
}

// Users

func (s *Server) userRoutes(r chi.Router) {
	admin := requireRole(prms.RoleAdmin)
	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.With(admin).Post("/", s.handleCreateUser)
		r.With(admin).Get("/{id}", s.handleGetUser)
		r.With(admin).Patch("/{id}", s.handleUpdateUser)
		r.With(admin).Delete("/{id}", s.handleDeleteUser)
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	role := prms.Role(r.URL.Query().Get("role"))
	if claimsFrom(r).Role != prms.RoleAdmin && role != prms.RoleDoctor {
		writeFail(w, http.StatusForbidden, forbidden)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []prms.User{}
	for _, a := range s.accounts {
		if role == "" || a.user.Role == role {
			out = append(out, a.user)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID == id {
			writeJSON(w, http.StatusOK, a.user)
			return
		}
	}
	writeFail(w, http.StatusNotFound, notFound)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in prms.UserInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(false)) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.accountByEmail(in.Email); taken {
		writeFail(w, http.StatusConflict, "Email already in use")
		return
	}
	u := prms.User{ID: newID("usr"), Name: in.Name, Email: in.Email, Role: in.Role, Phone: in.Phone, Active: true}
	if in.Active != nil {
		u.Active = *in.Active
	}
	s.accounts = append(s.accounts, account{user: u, password: in.Password})
	s.record(s.actor(r), "create", "user", u.ID, u.Email)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in prms.UserInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(true)) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		a := &s.accounts[i]
		if a.user.ID != id {
			continue
		}
		if in.Email != "" && !strings.EqualFold(in.Email, a.user.Email) {
			if _, taken := s.accountByEmail(in.Email); taken {
				writeFail(w, http.StatusConflict, "Email already in use")
				return
			}
		}
		set(&a.user.Name, in.Name)
		set(&a.user.Email, in.Email)
		set(&a.user.Role, in.Role)
		set(&a.user.Phone, in.Phone)
		set(&a.password, in.Password)
		if in.Active != nil {
			a.user.Active = *in.Active
		}
		s.record(s.actor(r), "update", "user", id, "")
		writeJSON(w, http.StatusOK, a.user)
		return
	}
	writeFail(w, http.StatusNotFound, notFound)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == claimsFrom(r).UserID {
		writeFail(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.accounts, func(a account) bool { return a.user.ID == id })
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	s.accounts = slices.Delete(s.accounts, i, i+1)
	s.record(s.actor(r), "delete", "user", id, "")
	w.WriteHeader(http.StatusNoContent)
}

// Invoices

func (s *Server) invoiceRoutes(r chi.Router) {
	billing := requireRole(prms.RoleAdmin, prms.RoleStaff)
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", s.handleListInvoices)
		r.With(billing).Post("/", s.handleCreateInvoice)
		r.Get("/{id}", s.handleGetInvoice)
		r.With(billing).Patch("/{id}", s.handleUpdateInvoice)
		r.With(billing).Patch("/{id}/pay", s.handlePayInvoice)
		r.With(billing).Delete("/{id}", s.handleDeleteInvoice)
	})
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if claims.Role == prms.RoleDoctor {
		writeFail(w, http.StatusForbidden, forbidden)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []prms.Invoice
	for _, inv := range s.invoices {
		if claims.Role == prms.RolePatient && inv.Patient.ID != claims.PatientID {
			continue
		}
		out = append(out, inv)
	}
	writeNestedList(w, "invoices", out)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFrom(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.invoices, id)
	if i < 0 || (claims.Role == prms.RolePatient && s.invoices[i].Patient.ID != claims.PatientID) {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	writeNested(w, http.StatusOK, "invoice", s.invoices[i])
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var in prms.InvoiceInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(false)) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	patient, ok := s.patientRef(in.Patient)
	if !ok {
		writeFail(w, http.StatusBadRequest, "Patient does not exist")
		return
	}
	inv := prms.Invoice{
		ID:          newID("inv"),
		Patient:     patient,
		Amount:      in.Amount,
		Status:      prms.InvoiceUnpaid,
		DueDate:     in.DueDate,
		Description: in.Description,
	}
	set(&inv.Status, in.Status)
	s.invoices = append(s.invoices, inv)
	s.record(s.actor(r), "create", "invoice", inv.ID, strconv.FormatFloat(inv.Amount, 'f', 2, 64))
	writeNested(w, http.StatusCreated, "invoice", inv)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var in prms.InvoiceInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(true)) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.invoices, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	inv := &s.invoices[i]
	set(&inv.Amount, in.Amount)
	set(&inv.Status, in.Status)
	set(&inv.DueDate, in.DueDate)
	set(&inv.Description, in.Description)
	s.record(s.actor(r), "update", "invoice", id, "")
	writeNested(w, http.StatusOK, "invoice", *inv)
}

func (s *Server) handlePayInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.invoices, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	if s.invoices[i].Status == prms.InvoicePaid {
		writeFail(w, http.StatusBadRequest, "Invoice is already paid")
		return
	}
	s.invoices[i].Status = prms.InvoicePaid
	s.invoices[i].PaidAt = s.now().Format(prms.DateLayout)
	s.record(s.actor(r), "pay", "invoice", id, "")
	writeNested(w, http.StatusOK, "invoice", s.invoices[i])
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.invoices, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	s.invoices = slices.Delete(s.invoices, i, i+1)
	s.record(s.actor(r), "delete", "invoice", id, "")
	w.WriteHeader(http.StatusNoContent)
}

// Medical history

type historyWire struct {
	ID        string  `json:"_id"`
	Patient   refWire `json:"patient"`
	Doctor    refWire `json:"doctor"`
	Date      string  `json:"date"`
	Diagnosis string  `json:"diagnosis"`
	Treatment string  `json:"treatment,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

func historyOut(h prms.MedicalHistory) historyWire {
	return historyWire{
		ID:        h.ID,
		Patient:   refWire{ID: h.Patient.ID, Name: h.Patient.Name},
		Doctor:    refWire{ID: h.Doctor.ID, Name: h.Doctor.Name},
		Date:      h.Date,
		Diagnosis: h.Diagnosis,
		Treatment: h.Treatment,
		Notes:     h.Notes,
	}
}

func (s *Server) historyRoutes(r chi.Router) {
	clinicians := requireRole(prms.RoleAdmin, prms.RoleDoctor)
	r.Route("/medical-history", func(r chi.Router) {
		r.With(requireRole(prms.RoleAdmin, prms.RoleDoctor, prms.RoleStaff)).Get("/", s.handleListHistory)
		r.Get("/patient/{patientID}", s.handlePatientHistory)
		r.With(clinicians).Post("/", s.handleCreateHistory)
		r.Get("/{id}", s.handleGetHistory)
		r.With(clinicians).Patch("/{id}", s.handleUpdateHistory)
		r.With(requireRole(prms.RoleAdmin)).Delete("/{id}", s.handleDeleteHistory)
	})
}

func (s *Server) writeHistory(w http.ResponseWriter, keep func(prms.MedicalHistory) bool) {
	out := []historyWire{}
	for _, h := range s.history {
		if keep == nil || keep(h) {
			out = append(out, historyOut(h))
		}
	}
	writeNestedList(w, "records", out)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeHistory(w, nil)
}

func (s *Server) handlePatientHistory(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	claims := claimsFrom(r)
	if claims.Role == prms.RolePatient && claims.PatientID != patientID {
		writeFail(w, http.StatusForbidden, forbidden)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeHistory(w, func(h prms.MedicalHistory) bool { return h.Patient.ID == patientID })
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFrom(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.history, id)
	if i < 0 || (claims.Role == prms.RolePatient && s.history[i].Patient.ID != claims.PatientID) {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	writeNested(w, http.StatusOK, "record", historyOut(s.history[i]))
}

func (s *Server) handleCreateHistory(w http.ResponseWriter, r *http.Request) {
	var in prms.HistoryInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(false)) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	patient, ok := s.patientRef(in.Patient)
	if !ok {
		writeFail(w, http.StatusBadRequest, "Patient does not exist")
		return
	}
	doctorID := in.Doctor
	if doctorID == "" {
		doctorID = claimsFrom(r).UserID
	}
	doctor, _ := s.userRef(doctorID, "")
	h := prms.MedicalHistory{
		ID:        newID("rec"),
		Patient:   patient,
		Doctor:    doctor,
		Date:      in.Date,
		Diagnosis: in.Diagnosis,
		Treatment: in.Treatment,
		Notes:     in.Notes,
	}
	s.history = append(s.history, h)
	s.record(s.actor(r), "create", "medical-history", h.ID, h.Diagnosis)
	writeNested(w, http.StatusCreated, "record", historyOut(h))
}

func (s *Server) handleUpdateHistory(w http.ResponseWriter, r *http.Request) {
	var in prms.HistoryInput
	if !decodeBody(w, r, &in) || rejectInvalid(w, in.Validate(true)) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.history, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	h := &s.history[i]
	set(&h.Date, in.Date)
	set(&h.Diagnosis, in.Diagnosis)
	set(&h.Treatment, in.Treatment)
	set(&h.Notes, in.Notes)
	s.record(s.actor(r), "update", "medical-history", id, "")
	writeNested(w, http.StatusOK, "record", historyOut(*h))
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.history, id)
	if i < 0 {
		writeFail(w, http.StatusNotFound, notFound)
		return
	}
	s.history = slices.Delete(s.history, i, i+1)
	s.record(s.actor(r), "delete", "medical-history", id, "")
	w.WriteHeader(http.StatusNoContent)
}

// Audit logs

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := slices.Clone(s.audit)
	slices.Reverse(logs)
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	writeNestedList(w, "logs", logs)
}
