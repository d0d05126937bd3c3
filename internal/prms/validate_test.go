package prms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func problems(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	ve, ok := err.(*ValidationError)
	require.True(t, ok, "error %T is not a *ValidationError", err)
	out := map[string]string{}
	for _, p := range ve.Problems {
		out[p.Field] = p.Message
	}
	return out
}

func TestPatientInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      PatientInput
		partial bool
		want    map[string]string
	}{
		{"valid with email", PatientInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}, false, nil},
		{"valid with phone", PatientInput{FirstName: "Jane", LastName: "Doe", Phone: "+1 (555) 010-1234"}, false, nil},
		{"missing names", PatientInput{Email: "jane@example.com"}, false, map[string]string{
			"firstName": "First name is required", "lastName": "Last name is required",
		}},
		{"email or phone", PatientInput{FirstName: "Jane", LastName: "Doe"}, false, map[string]string{
			"email": "Email or phone is required",
		}},
		{"bad email", PatientInput{FirstName: "Jane", LastName: "Doe", Email: "jane@localhost"}, false, map[string]string{
			"email": "Email address is invalid",
		}},
		{"bad phone", PatientInput{FirstName: "Jane", LastName: "Doe", Phone: "call me"}, false, map[string]string{
			"phone": "Phone number is invalid",
		}},
		{"future birth", PatientInput{FirstName: "Jane", LastName: "Doe", Phone: "5550101234", DateOfBirth: "2999-01-01"}, false, map[string]string{
			"dateOfBirth": "Date of birth cannot be in the future",
		}},
		{"bad gender", PatientInput{FirstName: "Jane", LastName: "Doe", Phone: "5550101234", Gender: "x"}, false, map[string]string{
			"gender": "Gender must be male, female or other",
		}},
		{"partial skips required", PatientInput{Address: "1 Main St"}, true, nil},
		{"partial still checks format", PatientInput{DateOfBirth: "12/04/1988"}, true, map[string]string{
			"dateOfBirth": "Date of birth must be YYYY-MM-DD",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, problems(t, tt.in.Validate(tt.partial)))
		})
	}
}

func TestAppointmentInput_Validate(t *testing.T) {
	ok := AppointmentInput{Patient: "p1", Doctor: "d1", Date: "2026-05-01", Time: "09:30"}
	assert.NoError(t, ok.Validate(false))

	got := problems(t, AppointmentInput{Date: "May 1", Time: "9am", Status: "archived"}.Validate(false))
	assert.Equal(t, "Patient is required", got["patient"])
	assert.Equal(t, "Doctor is required", got["doctor"])
	assert.Equal(t, "Date must be YYYY-MM-DD", got["date"])
	assert.Equal(t, "Time must be HH:MM", got["time"])
	assert.Equal(t, "Unknown appointment status", got["status"])
}

func TestUserInput_Validate(t *testing.T) {
	assert.NoError(t, UserInput{Name: "Sam", Email: "sam@prms.local", Password: "secret1", Role: RoleStaff}.Validate(false))

	got := problems(t, UserInput{Name: "Sam", Email: "sam@prms.local", Password: "123", Role: "nurse"}.Validate(false))
	assert.Equal(t, "Password must be at least 6 characters", got["password"])
	assert.Equal(t, "Role must be admin, staff, doctor or patient", got["role"])

	assert.NoError(t, UserInput{Phone: "555 0101 234"}.Validate(true))
}

func TestInvoiceInput_Validate(t *testing.T) {
	assert.NoError(t, InvoiceInput{Patient: "p1", Amount: 10, DueDate: "2026-06-01"}.Validate(false))

	got := problems(t, InvoiceInput{Patient: "p1"}.Validate(false))
	assert.Equal(t, "Amount must be greater than zero", got["amount"])

	assert.NoError(t, InvoiceInput{Description: "x"}.Validate(true))
	assert.Error(t, InvoiceInput{Amount: -5}.Validate(true))
	assert.Error(t, InvoiceInput{Status: "refunded"}.Validate(true))
}

func TestHistoryInput_Validate(t *testing.T) {
	got := problems(t, HistoryInput{}.Validate(false))
	assert.Len(t, got, 3)
	assert.NoError(t, HistoryInput{Notes: "follow-up"}.Validate(true))
}

func TestValidationError_For(t *testing.T) {
	err := &ValidationError{Problems: []FieldError{{Field: "email", Message: "Email or phone is required"}}}
	msg, ok := err.For("email")
	assert.True(t, ok)
	assert.Equal(t, "Email or phone is required", msg)
	_, ok = err.For("phone")
	assert.False(t, ok)
	assert.Equal(t, "invalid input: email: Email or phone is required", err.Error())
}
