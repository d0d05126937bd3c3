package prms

import (
	"net/mail"
	"strings"
	"time"
	"unicode"
)

// PatientInput is the create/update payload for a patient. On update only
// the non-empty fields are sent.
type PatientInput struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Address     string `json:"address,omitempty"`
	BloodGroup  string `json:"bloodGroup,omitempty"`
}

// AppointmentInput is the create/update payload for an appointment.
type AppointmentInput struct {
	Patient string            `json:"patient,omitempty"`
	Doctor  string            `json:"doctor,omitempty"`
	Date    string            `json:"date,omitempty"`
	Time    string            `json:"time,omitempty"`
	Reason  string            `json:"reason,omitempty"`
	Status  AppointmentStatus `json:"status,omitempty"`
	Notes   string            `json:"notes,omitempty"`
}

// UserInput is the create/update payload for a user account.
type UserInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

// InvoiceInput is the create/update payload for an invoice.
type InvoiceInput struct {
	Patient     string        `json:"patient,omitempty"`
	Amount      float64       `json:"amount,omitempty"`
	Status      InvoiceStatus `json:"status,omitempty"`
	DueDate     string        `json:"dueDate,omitempty"`
	Description string        `json:"description,omitempty"`
}

// HistoryInput is the create/update payload for a medical history record.
type HistoryInput struct {
	Patient   string `json:"patient,omitempty"`
	Doctor    string `json:"doctor,omitempty"`
	Date      string `json:"date,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`
	Treatment string `json:"treatment,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

var genders = map[string]bool{"male": true, "female": true, "other": true}

const minPasswordLen = 6

// Validate checks a patient payload. With partial set, required-field
// checks are skipped and only supplied fields are checked.
func (in PatientInput) Validate(partial bool) error {
	var c checks
	if !partial {
		c.required("firstName", in.FirstName, "First name is required")
		c.required("lastName", in.LastName, "Last name is required")
		if strings.TrimSpace(in.Email) == "" && strings.TrimSpace(in.Phone) == "" {
			c.add("email", "Email or phone is required")
		}
	}
	c.email("email", in.Email)
	c.phone("phone", in.Phone)
	if in.DateOfBirth != "" {
		dob, err := time.Parse(DateLayout, in.DateOfBirth)
		switch {
		case err != nil:
			c.add("dateOfBirth", "Date of birth must be YYYY-MM-DD")
		case dob.After(time.Now()):
			c.add("dateOfBirth", "Date of birth cannot be in the future")
		}
	}
	if g := strings.ToLower(strings.TrimSpace(in.Gender)); g != "" && !genders[g] {
		c.add("gender", "Gender must be male, female or other")
	}
	return c.err()
}

// Validate checks an appointment payload.
func (in AppointmentInput) Validate(partial bool) error {
	var c checks
	if !partial {
		c.required("patient", in.Patient, "Patient is required")
		c.required("doctor", in.Doctor, "Doctor is required")
		c.required("date", in.Date, "Date is required")
		c.required("time", in.Time, "Time is required")
	}
	c.date("date", in.Date)
	if in.Time != "" {
		if _, err := time.Parse("15:04", in.Time); err != nil {
			c.add("time", "Time must be HH:MM")
		}
	}
	if in.Status != "" {
		if _, ok := AppointmentStatusLabels[in.Status]; !ok {
			c.add("status", "Unknown appointment status")
		}
	}
	return c.err()
}

// Validate checks a user payload. Passwords are required on create only.
func (in UserInput) Validate(partial bool) error {
	var c checks
	if !partial {
		c.required("name", in.Name, "Name is required")
		c.required("email", in.Email, "Email is required")
		c.required("password", in.Password, "Password is required")
		c.required("role", string(in.Role), "Role is required")
	}
	c.email("email", in.Email)
	c.phone("phone", in.Phone)
	if in.Password != "" && len(in.Password) < minPasswordLen {
		c.add("password", "Password must be at least 6 characters")
	}
	if in.Role != "" && !in.Role.Valid() {
		c.add("role", "Role must be admin, staff, doctor or patient")
	}
	return c.err()
}

// Validate checks an invoice payload.
func (in InvoiceInput) Validate(partial bool) error {
	var c checks
	if !partial {
		c.required("patient", in.Patient, "Patient is required")
		if in.Amount <= 0 {
			c.add("amount", "Amount must be greater than zero")
		}
	} else if in.Amount < 0 {
		c.add("amount", "Amount must be greater than zero")
	}
	c.date("dueDate", in.DueDate)
	if in.Status != "" {
		if _, ok := InvoiceStatusLabels[in.Status]; !ok {
			c.add("status", "Unknown invoice status")
		}
	}
	return c.err()
}

// Validate checks a medical history payload.
func (in HistoryInput) Validate(partial bool) error {
	var c checks
	if !partial {
		c.required("patient", in.Patient, "Patient is required")
		c.required("date", in.Date, "Date is required")
		c.required("diagnosis", in.Diagnosis, "Diagnosis is required")
	}
	c.date("date", in.Date)
	return c.err()
}

type checks struct {
	problems []FieldError
}

func (c *checks) add(field, msg string) {
	if _, dup := (&ValidationError{Problems: c.problems}).For(field); dup {
		return
	}
	c.problems = append(c.problems, FieldError{Field: field, Message: msg})
}

func (c *checks) required(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		c.add(field, msg)
	}
}

func (c *checks) email(field, value string) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@"):], ".") {
		c.add(field, "Email address is invalid")
	}
}

func (c *checks) phone(field, value string) {
	if value == "" {
		return
	}
	digits := 0
	for _, r := range value {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune(" +-().", r):
		default:
			c.add(field, "Phone number is invalid")
			return
		}
	}
	if digits < 7 {
		c.add(field, "Phone number is invalid")
	}
}

func (c *checks) date(field, value string) {
	if value == "" {
		return
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		c.add(field, "Date must be YYYY-MM-DD")
	}
}

func (c *checks) err() error {
	if len(c.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: c.problems}
}
