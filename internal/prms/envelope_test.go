package prms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_AcceptedShapes(t *testing.T) {
	keys := []string{"patients", "patient"}
	tests := []struct {
		name string
		body string
	}{
		{"nested under key", `{"status":"success","results":2,"data":{"patients":[{"id":"1","firstName":"Jane"},{"id":"2","firstName":"John"}]}}`},
		{"data is payload", `{"status":"success","data":[{"id":"1","firstName":"Jane"},{"id":"2","firstName":"John"}]}`},
		{"bare payload", `[{"id":"1","firstName":"Jane"},{"id":"2","firstName":"John"}]`},
		{"mongo ids", `{"data":{"patients":[{"_id":"1","firstName":"Jane"},{"_id":"2","firstName":"John"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Patient
			require.NoError(t, decodePayload("patients", []byte(tt.body), keys, &got))
			require.Len(t, got, 2)
			assert.Equal(t, "1", got[0].ID)
			assert.Equal(t, "Jane", got[0].FirstName)
			assert.Equal(t, "2", got[1].ID)
		})
	}
}

func TestDecodePayload_SingleEntity(t *testing.T) {
	keys := []string{"appointment", "appointments"}
	bodies := []string{
		`{"status":"success","data":{"appointment":{"id":"a1","status":"pending","patient":{"_id":"p1","name":"Jane Doe"},"doctor":"d1"}}}`,
		`{"status":"success","data":{"id":"a1","status":"pending","patient":{"_id":"p1","name":"Jane Doe"},"doctor":"d1"}}`,
		`{"id":"a1","status":"pending","patient":{"id":"p1","firstName":"Jane","lastName":"Doe"},"doctor":{"id":"d1"}}`,
	}
	for _, body := range bodies {
		var got Appointment
		require.NoError(t, decodePayload("appointments/a1", []byte(body), keys, &got), body)
		assert.Equal(t, "a1", got.ID)
		assert.Equal(t, StatusPending, got.Status)
		assert.Equal(t, Ref{ID: "p1", Name: "Jane Doe"}, got.Patient)
		assert.Equal(t, "d1", got.Doctor.ID)
	}
}

func TestDecodePayload_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		dest any
	}{
		{"empty body", ``, &[]Patient{}},
		{"scalar", `42`, &[]Patient{}},
		{"null data", `{"status":"success","data":null}`, &Patient{}},
		{"object where list expected", `{"status":"success","data":{"items":{"id":"1"}}}`, &[]Patient{}},
		{"entity without id", `{"status":"success","data":{"patient":{"firstName":"Jane"}}}`, &Patient{}},
		{"broken json", `{"data":`, &Patient{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodePayload("patients", []byte(tt.body), []string{"patient", "patients"}, tt.dest)
			var se *ShapeError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "patients", se.Path)
		})
	}
}

func TestNewAPIError(t *testing.T) {
	e := newAPIError("patients/1", 404, []byte(`{"status":"fail","message":"Not found"}`))
	assert.Equal(t, "fail", e.Status)
	assert.Equal(t, "Not found", e.Error())
	assert.True(t, e.NotFound())

	e = newAPIError("patients/1", 500, []byte(`oops`))
	assert.Empty(t, e.Message)
	assert.Equal(t, "api patients/1 returned status 500", e.Error())
}
