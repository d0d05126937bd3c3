package prms_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prms/console/internal/fakeapi"
	"github.com/prms/console/internal/prms"
)

func loggedIn(t *testing.T, email string, opts ...fakeapi.Option) (*prms.Client, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New(opts...)
	url, stop := srv.Start()
	t.Cleanup(stop)

	c, err := prms.NewClient(url)
	require.NoError(t, err)
	res, err := c.Login(context.Background(), prms.Credentials{Email: email, Password: fakeapi.DemoPassword})
	require.NoError(t, err)
	c.SetToken(res.Token)
	return c, srv
}

func TestLogin(t *testing.T) {
	srv := fakeapi.New()
	url, stop := srv.Start()
	t.Cleanup(stop)
	c, err := prms.NewClient(url)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Login(ctx, prms.Credentials{Email: fakeapi.AdminEmail, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", prms.UserMessage(err))

	res, err := c.Login(ctx, prms.Credentials{Email: fakeapi.DoctorEmail, Password: fakeapi.DemoPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, prms.RoleDoctor, res.User.Role)

	claims, err := prms.ParseClaims(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, prms.RoleDoctor, claims.Role)
	assert.False(t, claims.Expired(time.Now()))

	_, err = c.Me(ctx)
	assert.True(t, prms.IsUnauthorized(err), "token not installed yet")

	c.SetToken(res.Token)
	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.User, me)
}

func TestPatients_CRUD(t *testing.T) {
	c, _ := loggedIn(t, fakeapi.StaffEmail)
	ctx := context.Background()

	list, err := c.ListPatients(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	found, err := c.SearchPatients(ctx, "jane")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Jane Doe", found[0].FullName())

	created, err := c.CreatePatient(ctx, prms.PatientInput{FirstName: "Ana", LastName: "Lopez", Phone: "+1 555 0199"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := c.UpdatePatient(ctx, created.ID, prms.PatientInput{Address: "9 Oak Ave"})
	require.NoError(t, err)
	assert.Equal(t, "9 Oak Ave", updated.Address)
	assert.Equal(t, "Ana", updated.FirstName)

	got, err := c.GetPatient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, c.DeletePatient(ctx, created.ID))
	err = c.DeletePatient(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "Not found", err.Error())
}

func TestPatients_EmptyList(t *testing.T) {
	c, _ := loggedIn(t, fakeapi.StaffEmail, fakeapi.Empty())
	list, err := c.ListPatients(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestAppointments_Queries(t *testing.T) {
	c, _ := loggedIn(t, fakeapi.AdminEmail)
	ctx := context.Background()
	today := time.Now().Format(prms.DateLayout)

	all, err := c.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	for _, a := range all {
		assert.NotEmpty(t, a.ID)
		assert.NotEmpty(t, a.Patient.Name, "populated patient ref")
	}

	todays, err := c.AppointmentsToday(ctx)
	require.NoError(t, err)
	assert.Len(t, todays, 3)

	on, err := c.AppointmentsOn(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, todays, on)

	week, err := c.AppointmentsBetween(ctx, time.Now().AddDate(0, 0, -7).Format(prms.DateLayout), today)
	require.NoError(t, err)
	assert.Len(t, week, 5)

	updated, err := c.SetAppointmentStatus(ctx, todays[0].ID, prms.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, prms.StatusConfirmed, updated.Status)
	assert.Equal(t, todays[0].ID, updated.ID)

	booked, err := c.CreateAppointment(ctx, prms.AppointmentInput{
		Patient: "pat-2", Doctor: "usr-doc2", Date: today, Time: "16:00", Reason: "Review",
	})
	require.NoError(t, err)
	assert.Equal(t, prms.StatusPending, booked.Status)
	assert.Equal(t, "John Smith", booked.Patient.Name)

	require.NoError(t, c.DeleteAppointment(ctx, booked.ID))
}

func TestAppointments_DoctorSeesOwn(t *testing.T) {
	c, _ := loggedIn(t, fakeapi.DoctorEmail)
	all, err := c.ListAppointments(context.Background())
	require.NoError(t, err)
	for _, a := range all {
		assert.Equal(t, "usr-doc1", a.Doctor.ID)
	}
}

func TestInvoices_MarkPaid(t *testing.T) {
	c, _ := loggedIn(t, fakeapi.StaffEmail)
	ctx := context.Background()

	inv, err := c.MarkInvoicePaid(ctx, "inv-2")
	require.NoError(t, err)
	assert.Equal(t, prms.InvoicePaid, inv.Status)
	assert.NotEmpty(t, inv.PaidAt)

	_, err = c.MarkInvoicePaid(ctx, "inv-2")
	require.Error(t, err)
	assert.Equal(t, "Invoice is already paid", prms.UserMessage(err))
}

func TestHistory_MongoIDs(t *testing.T) {
	c, _ := loggedIn(t, fakeapi.DoctorEmail)
	records, err := c.HistoryForPatient(context.Background(), "pat-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].ID)
	assert.Equal(t, "Jane Doe", records[0].Patient.Name)
}

func TestAuditAndReports_AdminOnly(t *testing.T) {
	admin, _ := loggedIn(t, fakeapi.AdminEmail)
	ctx := context.Background()

	logs, err := admin.ListAuditLogs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	report, err := admin.ReportSummary(ctx, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, report.Rows)
	assert.Equal(t, "total", report.Totals.Period)

	doctor, _ := loggedIn(t, fakeapi.DoctorEmail)
	_, err = doctor.ListAuditLogs(ctx, 0)
	var apiErr *prms.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestInjectedFailure(t *testing.T) {
	c, srv := loggedIn(t, fakeapi.StaffEmail)
	srv.Fail(http.MethodDelete, "/appointments/apt-1", http.StatusNotFound, "Not found")

	err := c.DeleteAppointment(context.Background(), "apt-1")
	require.Error(t, err)
	assert.Equal(t, "Not found", prms.UserMessage(err))

	srv.Inject(http.MethodGet, "/patients", fakeapi.Override{Status: http.StatusOK, Body: `{"status":"success","data":{"patients":{"oops":true}}}`})
	_, err = c.ListPatients(context.Background())
	var se *prms.ShapeError
	assert.ErrorAs(t, err, &se)
}
