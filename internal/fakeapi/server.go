package fakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prms/console/internal/prms"
)

const (
	defaultSecret  = "prms-dev-secret"
	tokenLifetime  = 8 * time.Hour
	maxRequestSize = 1024 * 1024
	notFound       = "Not found"
	forbidden      = "You do not have permission to perform this action"
)

// Server is an in-memory PRMS backend. It is safe for concurrent use.
type Server struct {
	mu     sync.Mutex
	secret []byte
	now    func() time.Time
	log    zerolog.Logger
	empty  bool

	accounts     []account
	patients     []prms.Patient
	appointments []prms.Appointment
	invoices     []prms.Invoice
	history      []prms.MedicalHistory
	audit        []prms.AuditLog

	injectMu sync.Mutex
	injected map[string][]Override
}

type account struct {
	user      prms.User
	password  string
	patientID string
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing secret.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithClock pins the server clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger logs every request.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// Empty drops the seeded clinical data and keeps only the login accounts.
func Empty() Option {
	return func(s *Server) { s.empty = true }
}

// New returns a server seeded with demo data.
func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte(defaultSecret),
		now:      time.Now,
		log:      zerolog.Nop(),
		injected: make(map[string][]Override),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed()
	return s
}

// Start serves the API on a loopback listener. It returns the API root URL
// and a stop function.
func (s *Server) Start() (string, func()) {
	ts := httptest.NewServer(s.Handler())
	return ts.URL + "/api", ts.Close
}

// Override replaces or delays the next matching request. With Wait set the
// request blocks until Wait is closed. With Status set the handler is skipped
// and Body is written verbatim.
type Override struct {
	Wait   <-chan struct{}
	Status int
	Body   string
}

// Inject queues o for the next request to method and path. path is relative
// to the API root, for example "/patients/p-1".
func (s *Server) Inject(method, path string, o Override) {
	s.injectMu.Lock()
	defer s.injectMu.Unlock()
	key := method + " " + path
	s.injected[key] = append(s.injected[key], o)
}

// Fail makes the next matching request fail with the standard error envelope.
func (s *Server) Fail(method, path string, status int, message string) {
	body, _ := json.Marshal(map[string]string{"status": envelopeStatus(status), "message": message})
	s.Inject(method, path, Override{Status: status, Body: string(body)})
}

// Queued returns how many overrides for method and path have not been taken.
func (s *Server) Queued(method, path string) int {
	s.injectMu.Lock()
	defer s.injectMu.Unlock()
	return len(s.injected[method+" "+path])
}

func (s *Server) takeOverride(method, path string) (Override, bool) {
	s.injectMu.Lock()
	defer s.injectMu.Unlock()
	key := method + " " + path
	queue := s.injected[key]
	if len(queue) == 0 {
		return Override{}, false
	}
	o := queue[0]
	if len(queue) == 1 {
		delete(s.injected, key)
	} else {
		s.injected[key] = queue[1:]
	}
	return o, true
}

// Token signs a token for the account with email, bypassing the password.
func (s *Server) Token(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accountByEmail(email)
	if !ok {
		return "", fmt.Errorf("unknown account %q", email)
	}
	return s.sign(acct)
}

// Handler returns the HTTP surface rooted at /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.overrides)

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(maxRequestSize))
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/auth/me", s.handleMe)
			s.patientRoutes(r)
			s.appointmentRoutes(r)
			s.userRoutes(r)
			s.invoiceRoutes(r)
			s.historyRoutes(r)
			r.With(requireRole(prms.RoleAdmin)).Get("/audit-logs", s.handleAuditLogs)
			r.With(requireRole(prms.RoleAdmin, prms.RoleStaff)).Get("/reports/summary", s.handleReportSummary)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) overrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o, ok := s.takeOverride(r.Method, strings.TrimPrefix(r.URL.Path, "/api"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if o.Wait != nil {
			select {
			case <-o.Wait:
			case <-r.Context().Done():
				return
			}
		}
		if o.Status == 0 {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(o.Status)
		_, _ = w.Write([]byte(o.Body))
	})
}

func limitBody(maxSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next.ServeHTTP(w, r)
		})
	}
}

type claimsKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeFail(w, http.StatusUnauthorized, "You are not logged in")
			return
		}
		claims := &prms.Claims{}
		_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		}, jwt.WithTimeFunc(s.now))
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Your token has expired"
			}
			writeFail(w, http.StatusUnauthorized, msg)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, *claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireRole(roles ...prms.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r)
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeFail(w, http.StatusForbidden, forbidden)
		})
	}
}

func claimsFrom(r *http.Request) prms.Claims {
	c, _ := r.Context().Value(claimsKey{}).(prms.Claims)
	return c
}

func (s *Server) sign(acct account) (string, error) {
	now := s.now()
	claims := prms.Claims{
		UserID:    acct.user.ID,
		Email:     acct.user.Email,
		Role:      acct.user.Role,
		PatientID: acct.patientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds prms.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accountByEmail(creds.Email)
	if !ok || acct.password != creds.Password {
		writeFail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !acct.user.Active {
		writeFail(w, http.StatusUnauthorized, "Account is disabled")
		return
	}
	token, err := s.sign(acct)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Could not create session")
		return
	}
	s.record(acct.user, "login", "auth", acct.user.ID, "")
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
		"data":   map[string]any{"user": acct.user},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID == claims.UserID {
			writeNested(w, http.StatusOK, "user", a.user)
			return
		}
	}
	writeFail(w, http.StatusUnauthorized, "The user belonging to this token no longer exists")
}

func (s *Server) accountByEmail(email string) (account, bool) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, strings.TrimSpace(email)) {
			return a, true
		}
	}
	return account{}, false
}

func (s *Server) actor(r *http.Request) prms.User {
	claims := claimsFrom(r)
	for _, a := range s.accounts {
		if a.user.ID == claims.UserID {
			return a.user
		}
	}
	return prms.User{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
}

// record appends an audit entry. Callers hold s.mu.
func (s *Server) record(actor prms.User, action, resource, id, details string) {
	s.audit = append(s.audit, prms.AuditLog{
		ID:         newID("log"),
		User:       prms.Ref{ID: actor.ID, Name: actor.Name},
		Action:     action,
		Resource:   resource,
		ResourceID: id,
		Timestamp:  s.now().UTC(),
		Details:    details,
	})
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// rejectInvalid writes the first validation problem and reports whether it
// did.
func rejectInvalid(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	var verr *prms.ValidationError
	if errors.As(err, &verr) && len(verr.Problems) > 0 {
		writeFail(w, http.StatusBadRequest, verr.Problems[0].Message)
		return true
	}
	writeFail(w, http.StatusBadRequest, err.Error())
	return true
}

func envelopeStatus(code int) string {
	if code >= 500 {
		return "error"
	}
	return "fail"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": envelopeStatus(status), "message": message})
}

// writeNested writes {status, data: {key: v}}.
func writeNested(w http.ResponseWriter, status int, key string, v any) {
	writeJSON(w, status, map[string]any{"status": "success", "data": map[string]any{key: v}})
}

// writeNestedList writes {status, results, data: {key: items}}.
func writeNestedList[T any](w http.ResponseWriter, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(items),
		"data":    map[string]any{key: items},
	})
}

// writeFlat writes {status, data: v}.
func writeFlat(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"status": "success", "data": v})
}
