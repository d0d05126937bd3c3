package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prms/console/internal/config"
	"github.com/prms/console/internal/fakeapi"
)

type env struct {
	t       *testing.T
	srv     *fakeapi.Server
	config  string
	prefs   string
	session string
	envFile string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := fakeapi.New()
	url, stop := srv.Start()
	t.Cleanup(stop)

	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(EnvPassword, "")

	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("api_url = %q\nlog_dir = %q\n", url, filepath.Join(dir, "logs"))
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))

	return &env{
		t:       t,
		srv:     srv,
		config:  cfg,
		prefs:   filepath.Join(dir, "prefs.toml"),
		session: filepath.Join(dir, "session.toml"),
		envFile: filepath.Join(dir, "missing.env"),
	}
}

func (e *env) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--config", e.config,
		"--prefs", e.prefs,
		"--session", e.session,
		"--env-file", e.envFile,
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *env) login(email string) {
	e.t.Helper()
	_, err := e.run("", "login", "--email", email, "--password", fakeapi.DemoPassword)
	require.NoError(e.t, err)
}

func TestLoginWhoamiLogout(t *testing.T) {
	e := newEnv(t)

	_, err := e.run("", "whoami")
	require.ErrorIs(t, err, errNotSignedIn)

	out, err := e.run("", "login", "--email", fakeapi.StaffEmail, "--password", fakeapi.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "Signed in as Sam Staff (Staff)\n", out)

	out, err = e.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, fakeapi.StaffEmail)
	assert.Contains(t, out, "Staff")

	out, err = e.run("", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Signed out\n", out)
	_, err = e.run("", "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestLoginPromptsForPassword(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(fakeapi.DoctorEmail+"\n"+fakeapi.DemoPassword+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. Gregory House (Doctor)")
}

func TestLoginRejected(t *testing.T) {
	e := newEnv(t)

	_, err := e.run("", "login", "-e", fakeapi.StaffEmail, "-p", "nope")
	require.Error(t, err)
	assert.EqualError(t, err, "login: Incorrect email or password")
}

func TestListAppliesCriteria(t *testing.T) {
	e := newEnv(t)
	e.login(fakeapi.StaffEmail)

	out, err := e.run("", "list", "appointments", "--today", "--status", "scheduled")
	require.NoError(t, err)
	assert.Contains(t, out, "apt-1")
	assert.Contains(t, out, "apt-3")
	assert.NotContains(t, out, "apt-2")
	assert.Contains(t, out, "Scheduled")

	out, err = e.run("", "list", "patients", "--search", "ZZZ")
	require.NoError(t, err)
	assert.Equal(t, "No patients found\n", out)

	out, err = e.run("", "list", "invoices", "--status", "Overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "inv-3")
	assert.NotContains(t, out, "inv-2")
}

func TestListFlagErrors(t *testing.T) {
	e := newEnv(t)
	e.login(fakeapi.StaffEmail)

	_, err := e.run("", "list", "appointments", "--today", "--date", "2026-03-14")
	assert.ErrorContains(t, err, "cannot be combined")
	_, err = e.run("", "list", "appointments", "--date", "14/03/2026")
	assert.ErrorContains(t, err, "YYYY-MM-DD")
	_, err = e.run("", "list", "widgets")
	assert.ErrorContains(t, err, "unknown resource")
}

func TestListForbiddenForRole(t *testing.T) {
	e := newEnv(t)
	e.login(fakeapi.DoctorEmail)

	_, err := e.run("", "list", "invoices")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission")
}

func TestGetAndDelete(t *testing.T) {
	e := newEnv(t)
	e.login(fakeapi.AdminEmail)

	out, err := e.run("", "get", "patients", "pat-3")
	require.NoError(t, err)
	assert.Contains(t, out, `"firstName": "Maria"`)

	out, err = e.run("n\n", "delete", "patient", "pat-3")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled\n", out)

	out, err = e.run("", "delete", "patients", "pat-3", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Deleted pat-3\n", out)

	_, err = e.run("", "get", "patients", "pat-3")
	assert.ErrorContains(t, err, "Not found")

	_, err = e.run("", "delete", "audit", "log-1", "-y")
	assert.ErrorContains(t, err, "cannot be deleted")
}

func TestAppointmentAndInvoiceActions(t *testing.T) {
	e := newEnv(t)
	e.login(fakeapi.StaffEmail)

	out, err := e.run("", "appointments", "set-status", "apt-1", "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, "Appointment apt-1 is now Confirmed\n", out)

	_, err = e.run("", "appointments", "set-status", "apt-1", "postponed")
	assert.ErrorContains(t, err, "unknown status")

	out, err = e.run("", "invoices", "pay", "inv-2")
	require.NoError(t, err)
	assert.Equal(t, "Invoice inv-2 paid (80.50)\n", out)

	_, err = e.run("", "invoices", "pay", "inv-2")
	assert.ErrorContains(t, err, "already paid")
}

func TestReport(t *testing.T) {
	e := newEnv(t)
	e.login(fakeapi.AdminEmail)

	out, err := e.run("", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "REVENUE")
	assert.Contains(t, out, "TOTAL")

	_, err = e.run("", "report", "--from", "yesterday")
	assert.ErrorContains(t, err, "--from must be YYYY-MM-DD")
}
