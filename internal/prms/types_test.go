package prms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{`"p1"`, Ref{ID: "p1"}},
		{`null`, Ref{}},
		{`{"id":"p1","name":"Jane Doe"}`, Ref{ID: "p1", Name: "Jane Doe"}},
		{`{"_id":"p1","firstName":"Jane","lastName":"Doe"}`, Ref{ID: "p1", Name: "Jane Doe"}},
	}
	for _, tt := range tests {
		var got Ref
		require.NoError(t, json.Unmarshal([]byte(tt.in), &got), tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	var bad Ref
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestRef_String(t *testing.T) {
	assert.Equal(t, "Jane", Ref{ID: "p1", Name: "Jane"}.String())
	assert.Equal(t, "p1", Ref{ID: "p1"}.String())
	assert.True(t, Ref{}.IsZero())
}

func TestAppointmentStatus_LabelsAndCycle(t *testing.T) {
	assert.Equal(t, "Scheduled", StatusPending.Label())
	assert.Equal(t, "Cancelled", StatusCancelled.Label())
	assert.Equal(t, "archived", AppointmentStatus("archived").Label())
	for _, s := range AppointmentStatuses {
		_, ok := AppointmentStatusLabels[s]
		assert.True(t, ok, "missing label for %s", s)
	}

	assert.Equal(t, StatusConfirmed, StatusPending.Next())
	assert.Equal(t, StatusCompleted, StatusConfirmed.Next())
	assert.Equal(t, StatusCompleted, StatusCompleted.Next())
	assert.Equal(t, StatusCancelled, StatusCancelled.Next())
}

func TestAppointment_Day(t *testing.T) {
	assert.Equal(t, "2026-03-04", Appointment{Date: "2026-03-04T09:00:00.000Z"}.Day())
	assert.Equal(t, "2026-03-04", Appointment{Date: "2026-03-04"}.Day())
	assert.Equal(t, "", Appointment{}.Day())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleDoctor.Valid())
	assert.False(t, Role("nurse").Valid())
}
