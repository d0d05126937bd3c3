package prms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "127.0.0.1:5000", u.Host)
	assert.Equal(t, "/api", u.Path)

	u, err = parseBaseURL("https://prms.example.com/api/?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://prms.example.com/api", u.String())

	u, err = parseBaseURL("localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", u.String())

	_, err = parseBaseURL("http://")
	assert.Error(t, err)
}

func TestClient_SendsHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": map[string]any{"patients": []any{}}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/api", WithToken("tok-123"))
	require.NoError(t, err)

	_, err = c.ListPatients(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/patients", gotPath)
	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, defaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	_, err = uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, err, "X-Request-ID should be a uuid")

	c.SetToken("")
	_, err = c.ListPatients(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestClient_DefaultTimeout(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.http.Timeout)

	c, err = NewClient("", WithTimeout(-1))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestClient_TimeoutIsTransportError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.ListPatients(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Timeout())
	assert.Equal(t, msgTimeout, UserMessage(err))
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(url)
	require.NoError(t, err)
	err = c.DeletePatient(context.Background(), "p-1")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.False(t, te.Timeout())
	assert.Equal(t, msgOffline, UserMessage(err))
}

func TestClient_ServerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		wantErr string
	}{
		{"fail envelope", http.StatusNotFound, `{"status":"fail","message":"Not found"}`, "Not found", "Not found"},
		{"error field", http.StatusBadRequest, `{"error":"bad input"}`, "bad input", "bad input"},
		{"no body", http.StatusInternalServerError, ``, "Request failed (status 500).", "api patients/p-1 returned status 500"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "Request failed (status 502).", "api patients/p-1 returned status 502"},
		{"unauthorized", http.StatusUnauthorized, `{}`, msgSessionEnd, "api patients/p-1 returned status 401"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL)
			require.NoError(t, err)
			err = c.DeletePatient(context.Background(), "p-1")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, tt.wantMsg, UserMessage(err))
		})
	}
}

func TestClient_ValidationBlocksRequest(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = c.CreatePatient(context.Background(), PatientInput{FirstName: "Jane", LastName: "Doe"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Email or phone is required", UserMessage(err))

	_, err = c.GetPatient(context.Background(), " ")
	require.ErrorAs(t, err, &ve)

	_, err = c.AppointmentsBetween(context.Background(), "2026-02-10", "2026-02-01")
	require.ErrorAs(t, err, &ve)

	_, err = c.SetAppointmentStatus(context.Background(), "a-1", "archived")
	require.ErrorAs(t, err, &ve)

	assert.Zero(t, calls, "no request may be sent when validation fails")
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Request cancelled.", UserMessage(&TransportError{Err: context.Canceled}))
	assert.Equal(t, msgShape, UserMessage(&ShapeError{Path: "x", Detail: "y"}))
	assert.Equal(t, msgGeneric, UserMessage(errors.New("boom")))
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.False(t, IsUnauthorized(errors.New("401")))
}
