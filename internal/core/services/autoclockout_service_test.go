package services

import (
	"testing"
	"time"

	"altn-timeclock/internal/adapters/persistence/filestore"
	"altn-timeclock/internal/core/domain"
)

func newSweepFixture(t *testing.T) (*AutoClockOutService, *SyncService, *fakeSyncClient, *filestore.Store) {
	t.Helper()
	store := newTestStore(t)
	client := &fakeSyncClient{}
	syncSvc := NewSyncService(store, client, 3)
	autoOut := NewAutoClockOutService(store, syncSvc, "18:30", "17:00")
	return autoOut, syncSvc, client, store
}

func TestClosingThreshold(t *testing.T) {
	autoOut, _, _, _ := newSweepFixture(t)

	cases := []struct {
		name     string
		now      time.Time
		wantHour int
		wantMin  int
	}{
		{"monday", time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), 18, 30},
		{"friday", time.Date(2024, 1, 19, 12, 0, 0, 0, time.UTC), 18, 30},
		{"saturday", time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC), 17, 0},
		{"sunday", time.Date(2024, 1, 21, 12, 0, 0, 0, time.UTC), 17, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			threshold := autoOut.closingThreshold(tc.now)
			if threshold.Hour() != tc.wantHour || threshold.Minute() != tc.wantMin {
				t.Fatalf("expected %02d:%02d, got %02d:%02d",
					tc.wantHour, tc.wantMin, threshold.Hour(), threshold.Minute())
			}
		})
	}
}

func TestSweepBeforeClosingDoesNothing(t *testing.T) {
	autoOut, _, _, store := newSweepFixture(t)

	// Wednesday noon, well before 18:30
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)
	store.Add(domain.ClockEvent{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Timestamp: domain.UnixMs(morning)})

	closed, err := autoOut.Sweep(now)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if closed != 0 {
		t.Fatalf("sweep ran before closing time, closed %d", closed)
	}
}

func TestSweepClosesForgottenClockIns(t *testing.T) {
	autoOut, _, client, store := newSweepFixture(t)

	// Wednesday evening, past the 18:30 weekday close
	now := time.Date(2024, 1, 17, 19, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 1, 17, 17, 0, 0, 0, time.UTC)

	// Employee 1 forgot to clock out
	store.Add(domain.ClockEvent{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Timestamp: domain.UnixMs(morning)})
	// Employee 2 went home properly
	store.Add(domain.ClockEvent{EmployeeID: 2, LocationID: "100", Action: domain.ActionClockIn, Timestamp: domain.UnixMs(morning)})
	store.Add(domain.ClockEvent{EmployeeID: 2, LocationID: "100", Action: domain.ActionClockOut, Timestamp: domain.UnixMs(evening)})
	// Yesterday's open clock_in is out of scope
	yesterday := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	store.Add(domain.ClockEvent{EmployeeID: 3, LocationID: "100", Action: domain.ActionClockIn, Timestamp: domain.UnixMs(yesterday)})

	closed, err := autoOut.Sweep(now)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 synthesized clock_out, got %d", closed)
	}

	all, _ := store.All()
	var synthesized *domain.ClockEvent
	for i := range all {
		if all[i].EmployeeID == 1 && all[i].Action == domain.ActionClockOut {
			synthesized = &all[i]
		}
	}
	if synthesized == nil {
		t.Fatal("synthesized clock_out not stored")
	}
	if synthesized.Timestamp != domain.UnixMs(now) {
		t.Fatalf("synthesized clock_out at %d, want %d", synthesized.Timestamp, domain.UnixMs(now))
	}
	if len(client.pushed) != 1 {
		t.Fatalf("expected the synthesized event pushed, got %d pushes", len(client.pushed))
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	autoOut, _, _, store := newSweepFixture(t)

	now := time.Date(2024, 1, 17, 19, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)
	store.Add(domain.ClockEvent{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Timestamp: domain.UnixMs(morning)})

	if _, err := autoOut.Sweep(now); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	closed, err := autoOut.Sweep(now)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if closed != 0 {
		t.Fatalf("second sweep closed %d shifts, expected 0", closed)
	}

	all, _ := store.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 events (in + synthesized out), got %d", len(all))
	}
}

func TestSweepSurvivesUpstreamOutage(t *testing.T) {
	autoOut, _, client, store := newSweepFixture(t)
	client.pushErr = domain.ErrUpstreamUnavailable

	now := time.Date(2024, 1, 17, 19, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)
	store.Add(domain.ClockEvent{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Timestamp: domain.UnixMs(morning)})

	closed, err := autoOut.Sweep(now)
	if err != nil {
		t.Fatalf("Sweep must not fail on push errors: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected the shift closed locally, got %d", closed)
	}

	// The synthesized event waits in the unsynced backlog
	all, _ := store.All()
	for _, ev := range all {
		if ev.Action == domain.ActionClockOut && ev.Synced {
			t.Fatal("synthesized event must stay unsynced when upstream is down")
		}
	}
}

func TestBadClosingTimesFallBack(t *testing.T) {
	store := newTestStore(t)
	syncSvc := NewSyncService(store, &fakeSyncClient{}, 3)
	autoOut := NewAutoClockOutService(store, syncSvc, "not-a-time", "25:99")

	mon := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	if th := autoOut.closingThreshold(mon); th.Hour() != 18 || th.Minute() != 30 {
		t.Fatalf("weekday fallback wrong: %v", th)
	}
	sat := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	if th := autoOut.closingThreshold(sat); th.Hour() != 17 || th.Minute() != 0 {
		t.Fatalf("weekend fallback wrong: %v", th)
	}
}
