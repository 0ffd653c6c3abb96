package services

import (
	"errors"
	"testing"
	"time"

	"altn-timeclock/internal/core/domain"
	"altn-timeclock/internal/pkg/passcode"
)

func newKiosk(t *testing.T, client *fakeSyncClient) (*ClockService, *RosterService) {
	t.Helper()

	store := newTestStore(t)
	roster := NewRosterService(client)
	if err := roster.Refresh(); err != nil {
		t.Fatalf("roster refresh failed: %v", err)
	}

	syncSvc := NewSyncService(store, client, 3)
	reconcile := NewReconcileService(store, syncSvc, roster)
	clock := NewClockService(store, roster, reconcile, syncSvc, passcode.NewVerifier())
	return clock, roster
}

func kioskClient() *fakeSyncClient {
	return &fakeSyncClient{
		employees: []domain.Employee{
			{ID: 1, FirstName: "Ann", LastName: "Lee", Passcode: "1234", UserLevel: 3},
			{ID: 2, FirstName: "Bob", LastName: "Ray", Passcode: "5678", UserLevel: 1},
		},
		locations: []domain.Location{
			{ID: 1, Name: "Downtown"},
		},
	}
}

func TestClockValidation(t *testing.T) {
	clock, _ := newKiosk(t, kioskClient())
	now := time.Now()

	cases := []struct {
		name  string
		input ClockInput
		want  error
	}{
		{
			name:  "bad action",
			input: ClockInput{EmployeeID: 1, LocationID: "100", Action: "lunch", Passcode: "1234"},
			want:  domain.ErrInvalidAction,
		},
		{
			name:  "missing location",
			input: ClockInput{EmployeeID: 1, Action: domain.ActionClockIn, Passcode: "1234"},
			want:  domain.ErrLocationRequired,
		},
		{
			name:  "unknown employee",
			input: ClockInput{EmployeeID: 99, LocationID: "100", Action: domain.ActionClockIn, Passcode: "1234"},
			want:  domain.ErrEmployeeNotFound,
		},
		{
			name:  "wrong passcode",
			input: ClockInput{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Passcode: "0000"},
			want:  domain.ErrInvalidPasscode,
		},
		{
			name:  "clock out while not clocked in",
			input: ClockInput{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockOut, Passcode: "1234"},
			want:  domain.ErrNotClockedIn,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := clock.Clock(tc.input, now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClockInThenOut(t *testing.T) {
	clock, _ := newKiosk(t, kioskClient())
	now := time.Now()

	in, err := clock.Clock(ClockInput{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Passcode: "1234"}, now)
	if err != nil {
		t.Fatalf("clock in failed: %v", err)
	}
	if in.LocalID == 0 {
		t.Fatal("clock in did not get a local id")
	}
	if !in.Synced {
		t.Fatal("expected event pushed upstream immediately")
	}

	// Double clock in rejected
	_, err = clock.Clock(ClockInput{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Passcode: "1234"}, now.Add(time.Minute))
	if !errors.Is(err, domain.ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}

	out, err := clock.Clock(ClockInput{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockOut, Passcode: "1234"}, now.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("clock out failed: %v", err)
	}
	if out.Action != domain.ActionClockOut {
		t.Fatalf("unexpected action: %s", out.Action)
	}
}

func TestClockSurvivesUpstreamOutage(t *testing.T) {
	client := kioskClient()
	clock, _ := newKiosk(t, client)

	// Upstream goes down after the roster fetch
	client.pushErr = domain.ErrUpstreamUnavailable

	event, err := clock.Clock(ClockInput{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Passcode: "1234"}, time.Now())
	if err != nil {
		t.Fatalf("clock in should succeed offline: %v", err)
	}
	if event.Synced {
		t.Fatal("event must stay unsynced when the push fails")
	}
}

func TestHistoryRequiresPasscode(t *testing.T) {
	clock, _ := newKiosk(t, kioskClient())

	_, err := clock.History(1, "0000", time.Now())
	if !errors.Is(err, domain.ErrInvalidPasscode) {
		t.Fatalf("expected ErrInvalidPasscode, got %v", err)
	}

	groups, err := clock.History(1, "1234", time.Now())
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 weekly groups, got %d", len(groups))
	}
}

func TestRosterFindAdmin(t *testing.T) {
	_, roster := newKiosk(t, kioskClient())

	admin, err := roster.FindAdmin("Bob Ray")
	if err != nil {
		t.Fatalf("FindAdmin failed: %v", err)
	}
	if admin.ID != 2 {
		t.Fatalf("expected admin 2, got %d", admin.ID)
	}

	// Staff are not admins
	if _, err := roster.FindAdmin("Ann Lee"); !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Fatalf("expected staff lookup to fail, got %v", err)
	}

	// Fallback admin answers only when the roster has no match
	roster.SetFallbackAdmin("Site Owner", "secret")
	fallback, err := roster.FindAdmin("site owner")
	if err != nil {
		t.Fatalf("fallback admin lookup failed: %v", err)
	}
	if fallback.ID != 0 || fallback.UserLevel != 1 {
		t.Fatalf("unexpected fallback admin: %+v", fallback)
	}
}
