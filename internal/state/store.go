package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/resource"
)

// AuditLimit is how many audit entries the audit view loads.
const AuditLimit = 200

// Health records how the last requests went. The UI reads it to show the
// connectivity badge.
type Health struct {
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // transport failures in a row
}

// IsOffline returns true when the API has been unreachable for multiple requests.
func (h Health) IsOffline() bool {
	return h.ConsecutiveFailures >= 2
}

// Session is the signed-in user.
type Session struct {
	Token  string
	User   prms.User
	Claims prms.Claims
}

// SignedIn reports whether a token is installed.
func (s Session) SignedIn() bool { return s.Token != "" }

// Role returns the user's role, falling back to the token claims.
func (s Session) Role() prms.Role {
	if s.User.Role != "" {
		return s.User.Role
	}
	return s.Claims.Role
}

// PatientID is the patient record the session is scoped to, if any.
func (s Session) PatientID() string { return s.Claims.PatientID }

// Store holds one resource slice per entity, the session and connectivity.
// It is created per process (or per test) and passed to whoever needs it.
type Store struct {
	client *prms.Client
	log    zerolog.Logger
	now    func() time.Time

	Patients     *resource.Slice[prms.Patient]
	Appointments *resource.Slice[prms.Appointment]
	Users        *resource.Slice[prms.User]
	Doctors      *resource.Slice[prms.User]
	Invoices     *resource.Slice[prms.Invoice]
	History      *resource.Slice[prms.MedicalHistory]
	AuditLogs    *resource.Slice[prms.AuditLog]
	Reports      *resource.Slice[prms.ReportSummary]

	mu      sync.RWMutex
	health  Health
	session Session
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger to the store and its slices.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides time.Now for health timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds an empty store over client. List fetches keep only the newest
// response so a slow refresh cannot overwrite a later one.
func New(client *prms.Client, opts ...Option) *Store {
	s := &Store{client: client, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	common := []resource.Option{
		resource.WithStaleGuard(),
		resource.WithMessages(prms.UserMessage),
		resource.WithLogger(s.log),
	}
	s.Patients = resource.New("patients", prms.Patient.Key, common...)
	s.Appointments = resource.New("appointments", prms.Appointment.Key, common...)
	s.Users = resource.New("users", prms.User.Key, common...)
	s.Doctors = resource.New("doctors", prms.User.Key, common...)
	s.Invoices = resource.New("invoices", prms.Invoice.Key, common...)
	s.History = resource.New("history", prms.MedicalHistory.Key, common...)
	s.AuditLogs = resource.New("audit-logs", prms.AuditLog.Key, common...)
	s.Reports = resource.New("reports", prms.ReportSummary.Key, common...)
	return s
}

// Client returns the API client.
func (s *Store) Client() *prms.Client { return s.client }

// Health returns a copy of the connectivity record.
func (s *Store) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.health
	if s.health.LastError != nil {
		h.LastError = fmt.Errorf("%w", s.health.LastError)
	}
	return h
}

// Session returns the signed-in user.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// observe records the outcome of a request. Only transport failures count
// towards offline; any response from the server means it is reachable.
// Requests cut off by a reset belong to the previous session and are ignored.
func (s *Store) observe(err error) error {
	if errors.Is(err, resource.ErrReset) {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.health.LastUpdated = s.now()
	s.health.LastError = err
	var te *prms.TransportError
	switch {
	case err == nil:
		s.health.ConsecutiveFailures = 0
	case errors.As(err, &te):
		s.health.ConsecutiveFailures++
	case errors.Is(err, context.Canceled):
	default:
		s.health.ConsecutiveFailures = 0
	}
	return err
}

// Login exchanges credentials for a token and installs it.
func (s *Store) Login(ctx context.Context, creds prms.Credentials) (Session, error) {
	res, err := s.client.Login(ctx, creds)
	if s.observe(err) != nil {
		return Session{}, err
	}
	return s.install(res.Token, res.User)
}

// Resume installs a saved token and confirms it with the profile endpoint.
func (s *Store) Resume(ctx context.Context, token string) (Session, error) {
	claims, err := prms.ParseClaims(token)
	if err != nil {
		return Session{}, err
	}
	if claims.Expired(s.now()) {
		return Session{}, errors.New("session expired")
	}
	s.client.SetToken(token)
	user, err := s.client.Me(ctx)
	if s.observe(err) != nil {
		s.client.SetToken("")
		return Session{}, err
	}
	return s.install(token, user)
}

func (s *Store) install(token string, user prms.User) (Session, error) {
	claims, err := prms.ParseClaims(token)
	if err != nil {
		return Session{}, err
	}
	s.client.SetToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{Token: token, User: user, Claims: claims}
	s.log.Info().Str("user", user.ID).Str("role", string(user.Role)).Msg("signed in")
	return s.session, nil
}

// Logout drops the token and every cached collection.
func (s *Store) Logout() {
	s.client.SetToken("")
	s.Reset()
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()
	s.log.Info().Msg("signed out")
}

// Reset empties every slice and the connectivity record.
func (s *Store) Reset() {
	s.Patients.Reset()
	s.Appointments.Reset()
	s.Users.Reset()
	s.Doctors.Reset()
	s.Invoices.Reset()
	s.History.Reset()
	s.AuditLogs.Reset()
	s.Reports.Reset()

	s.mu.Lock()
	s.health = Health{}
	s.mu.Unlock()
}

// Refresh reloads the given collections concurrently. A failing load does not
// cancel its siblings: every collection records its own outcome and the
// errors are joined.
func (s *Store) Refresh(ctx context.Context, kinds ...Kind) error {
	var g errgroup.Group
	errs := make([]error, len(kinds))
	for i, k := range kinds {
		g.Go(func() error {
			errs[i] = s.Load(ctx, k)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Load fetches the full list behind kind, scoped to the session.
func (s *Store) Load(ctx context.Context, kind Kind) error {
	switch kind {
	case KindPatients:
		return s.LoadPatients(ctx)
	case KindAppointments:
		return s.LoadAppointments(ctx)
	case KindUsers:
		return s.LoadUsers(ctx)
	case KindInvoices:
		return s.LoadInvoices(ctx)
	case KindHistory:
		if sess := s.Session(); sess.Role() == prms.RolePatient {
			return s.HistoryForPatient(ctx, sess.PatientID())
		}
		return s.LoadHistory(ctx)
	case KindAudit:
		return s.LoadAuditLogs(ctx, AuditLimit)
	case KindReports:
		return s.LoadReport(ctx, "", "")
	default:
		return fmt.Errorf("unknown collection %q", kind)
	}
}

// Busy reports whether any slice has a request in flight.
func (s *Store) Busy() bool {
	return s.Patients.Busy() || s.Appointments.Busy() || s.Users.Busy() || s.Doctors.Busy() ||
		s.Invoices.Busy() || s.History.Busy() || s.AuditLogs.Busy() || s.Reports.Busy()
}
