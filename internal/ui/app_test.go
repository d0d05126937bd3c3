package ui

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prms/console/internal/config"
	"github.com/prms/console/internal/fakeapi"
	"github.com/prms/console/internal/prefs"
	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/session"
	"github.com/prms/console/internal/state"
	"github.com/prms/console/internal/view"
)

type harness struct {
	srv         *fakeapi.Server
	store       *state.Store
	prefsPath   string
	sessionPath string
}

func newHarness(t *testing.T, email string, opts ...fakeapi.Option) (Model, harness) {
	t.Helper()
	srv := fakeapi.New(opts...)
	url, stop := srv.Start()
	t.Cleanup(stop)

	client, err := prms.NewClient(url)
	require.NoError(t, err)
	store := state.New(client)
	if email != "" {
		_, err := store.Login(context.Background(), prms.Credentials{Email: email, Password: fakeapi.DemoPassword})
		require.NoError(t, err)
	}

	dir := t.TempDir()
	h := harness{
		srv:         srv,
		store:       store,
		prefsPath:   filepath.Join(dir, "prefs.toml"),
		sessionPath: filepath.Join(dir, "session.toml"),
	}
	m := New(Options{
		Context:     context.Background(),
		Store:       store,
		Prefs:       prefs.Defaults(),
		PrefsPath:   h.prefsPath,
		SessionPath: h.sessionPath,
		Log:         zerolog.Nop(),
	})
	m.width, m.height = 120, 40
	return m, h
}

// drain runs cmd and feeds store results back into the model. Cursor
// blinks and ticks are dropped so tests never sleep.
func drain(m Model, cmd tea.Cmd) Model {
	for cmd != nil {
		msg := cmd()
		switch msg := msg.(type) {
		case tea.BatchMsg:
			for _, c := range msg {
				m = drain(m, c)
			}
			return m
		case opDoneMsg, loginDoneMsg, activityMsg:
			next, c := m.Update(msg)
			m, cmd = next.(Model), c
		default:
			return m
		}
	}
	return m
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, c := m.Update(msg)
		m, cmd = next.(Model), c
	}
	return m, cmd
}

// pressRun presses keys and drains the command of the last one.
func pressRun(m Model, keys ...string) Model {
	m, cmd := press(m, keys...)
	return drain(m, cmd)
}

func loaded(t *testing.T, email string, opts ...fakeapi.Option) (Model, harness) {
	t.Helper()
	m, h := newHarness(t, email, opts...)
	return drain(m, m.refreshCmd()), h
}

func showTab(t *testing.T, m Model, kind state.Kind) Model {
	t.Helper()
	for range m.tabs {
		if m.kind() == kind {
			return m
		}
		m = pressRun(m, "tab")
	}
	t.Fatalf("tab %s not on dashboard %v", kind, m.tabs)
	return m
}

func selectID(t *testing.T, m Model, id string) {
	t.Helper()
	rows, _ := m.rows(m.kind())
	for i, r := range rows {
		if r.id == id {
			m.list(m.kind()).cursor = i
			return
		}
	}
	t.Fatalf("row %s not visible", id)
}

func TestModel_LoginOpensRoleDashboard(t *testing.T) {
	m, h := newHarness(t, "")
	require.Equal(t, screenLogin, m.screen)

	m, _ = press(m, fakeapi.StaffEmail, "enter", fakeapi.DemoPassword)
	m = pressRun(m, "enter")

	assert.Equal(t, screenList, m.screen)
	assert.Equal(t, state.Dashboard(prms.RoleStaff), m.tabs)
	assert.Positive(t, h.store.Patients.Len())
	assert.Positive(t, h.store.Invoices.Len())

	saved, err := session.Load(h.sessionPath)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.StaffEmail, saved.Email)
}

func TestModel_BadPasswordStaysOnLogin(t *testing.T) {
	m, h := newHarness(t, "")

	m, _ = press(m, fakeapi.StaffEmail, "enter", "wrong-password")
	m = pressRun(m, "enter")

	assert.Equal(t, screenLogin, m.screen)
	assert.NotEmpty(t, m.login.err)
	assert.False(t, h.store.Session().SignedIn())
	assert.Contains(t, m.View(), m.login.err)
}

func TestModel_DoctorSeesTodaysAppointments(t *testing.T) {
	m, _ := loaded(t, fakeapi.DoctorEmail)

	require.Equal(t, state.KindAppointments, m.kind())
	assert.Equal(t, view.Today, m.criteria(state.KindAppointments).Date.Mode)
	rows, total := m.rows(state.KindAppointments)
	assert.Len(t, rows, 2)
	assert.Equal(t, 4, total)
}

func TestModel_StatusAndDateFilters(t *testing.T) {
	m, _ := loaded(t, fakeapi.StaffEmail)
	m = showTab(t, m, state.KindAppointments)

	rows, total := m.rows(state.KindAppointments)
	require.Len(t, rows, total)

	m, _ = press(m, "t")
	rows, _ = m.rows(state.KindAppointments)
	assert.Len(t, rows, 3)

	m, _ = press(m, "f")
	assert.Equal(t, "Scheduled", m.criteria(state.KindAppointments).Status)
	rows, _ = m.rows(state.KindAppointments)
	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, string(prms.StatusPending), r.status)
	}

	m, _ = press(m, "esc")
	assert.False(t, m.criteria(state.KindAppointments).Active())
}

func TestModel_SearchNarrowsPatients(t *testing.T) {
	m, _ := loaded(t, fakeapi.StaffEmail)
	require.Equal(t, state.KindPatients, m.kind())

	m, _ = press(m, "/", "jane")
	require.Equal(t, overlaySearch, m.overlay)
	rows, _ := m.rows(state.KindPatients)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe", rows[0].title)

	m, _ = press(m, "enter")
	assert.Equal(t, overlayNone, m.overlay)
	assert.Equal(t, "jane", m.criteria(state.KindPatients).Text)

	m, _ = press(m, "/", "zzz")
	assert.Contains(t, m.View(), "No patients found")
}

func TestModel_PageSizeSplitsList(t *testing.T) {
	m, _ := loaded(t, fakeapi.StaffEmail)
	require.Equal(t, state.KindPatients, m.kind())
	m.prefs.PageSize = 2

	rows, _ := m.rows(state.KindPatients)
	require.Len(t, rows, 3)

	out := m.View()
	assert.Contains(t, out, "page 1/2")
	assert.Contains(t, out, rows[0].title)
	assert.Contains(t, out, rows[1].title)
	assert.NotContains(t, out, rows[2].title)

	m, _ = press(m, "]")
	assert.Equal(t, 2, m.list(state.KindPatients).cursor)
	out = m.View()
	assert.Contains(t, out, "page 2/2")
	assert.Contains(t, out, rows[2].title)
	assert.NotContains(t, out, rows[0].title)

	m, _ = press(m, "]")
	assert.Equal(t, 2, m.list(state.KindPatients).cursor, "last page stays put")

	m, _ = press(m, "[")
	assert.Equal(t, 0, m.list(state.KindPatients).cursor)
}

func TestPageOf(t *testing.T) {
	tests := []struct {
		cursor, n, size int
		want            listPage
	}{
		{0, 0, 50, listPage{index: 0, count: 1, start: 0, end: 0}},
		{0, 3, 2, listPage{index: 0, count: 2, start: 0, end: 2}},
		{2, 3, 2, listPage{index: 1, count: 2, start: 2, end: 3}},
		{9, 3, 2, listPage{index: 1, count: 2, start: 2, end: 3}},
		{4, 10, 5, listPage{index: 0, count: 2, start: 0, end: 5}},
		{1, 3, 0, listPage{index: 1, count: 3, start: 1, end: 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pageOf(tt.cursor, tt.n, tt.size), "pageOf(%d, %d, %d)", tt.cursor, tt.n, tt.size)
	}
}

func TestModel_EmptyCollection(t *testing.T) {
	m, h := loaded(t, fakeapi.StaffEmail, fakeapi.Empty())

	assert.Equal(t, 0, h.store.Patients.Len())
	assert.Contains(t, m.View(), "No patients found")
	assert.NotContains(t, m.View(), "Loading")
}

func TestModel_DeleteFailureKeepsRow(t *testing.T) {
	m, h := loaded(t, fakeapi.AdminEmail)
	m = showTab(t, m, state.KindPatients)
	selectID(t, m, "pat-1")
	before := h.store.Patients.Len()

	h.srv.Fail(http.MethodDelete, "/patients/pat-1", http.StatusNotFound, "Not found")
	m, _ = press(m, "x")
	require.Equal(t, overlayConfirm, m.overlay)
	m = pressRun(m, "y")

	assert.Equal(t, before, h.store.Patients.Len())
	assert.True(t, m.toast.danger)
	assert.Equal(t, "Not found", m.toast.text)
}

func TestModel_DeleteRemovesRow(t *testing.T) {
	m, h := loaded(t, fakeapi.AdminEmail)
	m = showTab(t, m, state.KindPatients)
	selectID(t, m, "pat-3")

	m = pressRun(m, "x", "y")

	_, ok := h.store.Patients.Get("pat-3")
	assert.False(t, ok)
	assert.False(t, m.toast.danger)
}

func TestModel_UnauthorizedReturnsToLogin(t *testing.T) {
	m, h := loaded(t, fakeapi.StaffEmail)
	require.NoError(t, session.Save(h.sessionPath, h.store.Session().Token, h.store.Session().User, m.now()))

	h.srv.Fail(http.MethodGet, "/patients", http.StatusUnauthorized, "Token expired")
	m = pressRun(m, "r")

	assert.Equal(t, screenLogin, m.screen)
	assert.False(t, h.store.Session().SignedIn())
	assert.Equal(t, "Token expired", m.login.err)
	_, err := session.Load(h.sessionPath)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestModel_AdvanceAppointmentStatus(t *testing.T) {
	m, h := loaded(t, fakeapi.StaffEmail)
	m = showTab(t, m, state.KindAppointments)
	selectID(t, m, "apt-1")

	m = pressRun(m, "s")

	appt, ok := h.store.Appointments.Get("apt-1")
	require.True(t, ok)
	assert.Equal(t, prms.StatusConfirmed, appt.Status)
	assert.Equal(t, "Appointment confirmed", m.toast.text)

	selectID(t, m, "apt-4")
	m, _ = press(m, "s")
	assert.True(t, m.toast.danger)
}

func TestModel_MarkInvoicePaid(t *testing.T) {
	m, h := loaded(t, fakeapi.StaffEmail)
	m = showTab(t, m, state.KindInvoices)
	selectID(t, m, "inv-2")

	m = pressRun(m, "p")

	inv, ok := h.store.Invoices.Get("inv-2")
	require.True(t, ok)
	assert.Equal(t, prms.InvoicePaid, inv.Status)
	assert.Equal(t, "Invoice marked paid", m.toast.text)
}

func TestModel_NewPatientForm(t *testing.T) {
	m, h := loaded(t, fakeapi.StaffEmail)
	before := h.store.Patients.Len()

	m, _ = press(m, "n")
	require.Equal(t, overlayForm, m.overlay)

	m.form.focus = len(m.form.fields) - 1
	m, _ = press(m, "enter")
	require.Equal(t, overlayForm, m.overlay)
	assert.NotEmpty(t, m.form.errors["firstName"])
	assert.Contains(t, m.View(), "First name is required")

	values := map[string]string{"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "gender": "Female"}
	for i, f := range m.form.fields {
		m.form.fields[i].input.SetValue(values[f.name])
	}
	m = pressRun(m, "enter")

	assert.Equal(t, overlayNone, m.overlay)
	assert.Equal(t, before+1, h.store.Patients.Len())
	assert.Equal(t, "Patient created", m.toast.text)
}

func TestModel_OpenShowsDetail(t *testing.T) {
	m, _ := loaded(t, fakeapi.StaffEmail)
	selectID(t, m, "pat-1")

	m = pressRun(m, "enter")

	require.Equal(t, screenDetail, m.screen)
	out := m.View()
	assert.Contains(t, out, "Blood group")
	assert.Contains(t, out, "12 Elm St")

	m, _ = press(m, "esc")
	assert.Equal(t, screenList, m.screen)
}

func TestModel_ReportTab(t *testing.T) {
	m, _ := loaded(t, fakeapi.AdminEmail)
	m = showTab(t, m, state.KindReports)

	out := m.View()
	assert.Contains(t, out, "Revenue")
	assert.Contains(t, out, "Total")
}

func TestModel_CycleThemeSavesPrefs(t *testing.T) {
	m, h := loaded(t, fakeapi.StaffEmail)

	m, _ = press(m, "T")

	assert.Equal(t, "Kanagawa", m.theme.Name)
	p, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", p.Theme)
}

func TestModel_HelpAndLogout(t *testing.T) {
	m, h := loaded(t, fakeapi.StaffEmail)

	m, _ = press(m, "?")
	require.Equal(t, overlayHelp, m.overlay)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m, _ = press(m, "esc")
	assert.Equal(t, overlayNone, m.overlay)

	m, _ = press(m, "L")
	assert.Equal(t, screenLogin, m.screen)
	assert.False(t, h.store.Session().SignedIn())
	assert.Equal(t, 0, h.store.Patients.Len())
}

func TestModel_ActivityReadsLog(t *testing.T) {
	m, _ := loaded(t, fakeapi.StaffEmail)
	dir := t.TempDir()
	line := `{"level":"info","time":"2026-03-14T09:00:00Z","message":"signed in","user":"usr-staff"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prms.log"), []byte(line+"\n"), 0o644))
	m.cfg = &config.Config{LogDir: dir}

	m = pressRun(m, "a")

	require.Equal(t, screenActivity, m.screen)
	assert.Contains(t, m.View(), "signed in")
}
