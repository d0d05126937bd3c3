package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/prms/console/internal/fakeapi"
	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 15 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 15 * time.Second},
		{"negative failures", -1, 15 * time.Second},
		{"one failure", 1, 30 * time.Second},
		{"two failures", 2, 60 * time.Second},
		{"three failures capped", 3, 2 * time.Minute}, // would be 120s exactly
		{"many failures capped", 10, 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 80; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff || got <= 0 {
			t.Errorf("calculateBackoff(%d, %v) = %v, outside (0, %v]", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestStartPoller_RefreshesDashboard(t *testing.T) {
	srv := fakeapi.New()
	url, stop := srv.Start()
	t.Cleanup(stop)

	client, err := prms.NewClient(url)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := state.New(client)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := store.Login(ctx, prms.Credentials{Email: fakeapi.StaffEmail, Password: fakeapi.DemoPassword}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	kinds := func() []state.Kind { return state.Dashboard(store.Session().Role()) }
	StartPoller(ctx, store, kinds, 10*time.Millisecond, zerolog.Nop())

	deadline := time.Now().Add(2 * time.Second)
	for store.Patients.Len() == 0 || store.Invoices.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("poller did not load the staff dashboard")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if store.Users.Len() != 0 {
		t.Fatalf("staff dashboard should not load users")
	}
}

func TestRefresh_NoKindsIsNoop(t *testing.T) {
	client, err := prms.NewClient("http://127.0.0.1:1/api")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := state.New(client)
	if err := refresh(context.Background(), store, nil, zerolog.Nop()); err != nil {
		t.Fatalf("refresh with no kinds = %v", err)
	}
	if !store.Health().LastUpdated.IsZero() {
		t.Fatalf("no request should be recorded")
	}
}
