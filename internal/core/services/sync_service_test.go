package services

import (
	"path/filepath"
	"testing"
	"time"

	"altn-timeclock/internal/adapters/persistence/filestore"
	"altn-timeclock/internal/core/domain"
)

// fakeSyncClient is an in-memory stand-in for the upstream server
type fakeSyncClient struct {
	nextServerID int64
	pushed       []domain.ClockEvent
	pushErr      error

	remoteEvents []domain.ClockEvent
	employees    []domain.Employee
	locations    []domain.Location
	fetchErr     error

	changeRequests []domain.ChangeRequest
}

func (f *fakeSyncClient) Push(event domain.ClockEvent) (int64, error) {
	if f.pushErr != nil {
		return 0, f.pushErr
	}
	f.nextServerID++
	f.pushed = append(f.pushed, event)
	return f.nextServerID, nil
}

func (f *fakeSyncClient) FetchEventsSince(sinceMs int64) ([]domain.ClockEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []domain.ClockEvent
	for _, ev := range f.remoteEvents {
		if ev.Timestamp >= sinceMs {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeSyncClient) FetchEmployees() ([]domain.Employee, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.employees, nil
}

func (f *fakeSyncClient) FetchLocations() ([]domain.Location, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.locations, nil
}

func (f *fakeSyncClient) SendChangeRequest(cr domain.ChangeRequest) error {
	f.changeRequests = append(f.changeRequests, cr)
	return nil
}

func newTestStore(t *testing.T) *filestore.Store {
	t.Helper()
	s, err := filestore.Open(filepath.Join(t.TempDir(), "events.json"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s
}

func remoteEv(serverID, emp int64, loc string, action domain.ClockAction, ts int64) domain.ClockEvent {
	id := serverID
	return domain.ClockEvent{
		ServerID:   &id,
		EmployeeID: emp,
		LocationID: loc,
		Action:     action,
		Timestamp:  ts,
		Synced:     true,
	}
}

func TestPushEventRecordsServerID(t *testing.T) {
	store := newTestStore(t)
	client := &fakeSyncClient{}
	svc := NewSyncService(store, client, 3)

	localID, err := store.Add(domain.ClockEvent{
		EmployeeID: 1, LocationID: "100",
		Action: domain.ActionClockIn, Timestamp: 1000,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	event, _ := store.ByLocalID(localID)
	if err := svc.PushEvent(*event); err != nil {
		t.Fatalf("PushEvent failed: %v", err)
	}

	stored, _ := store.ByLocalID(localID)
	if !stored.Synced || stored.ServerID == nil || *stored.ServerID != 1 {
		t.Fatalf("server id not recorded: %+v", stored)
	}
}

func TestPushUnsyncedStopsWhenUpstreamDown(t *testing.T) {
	store := newTestStore(t)
	client := &fakeSyncClient{pushErr: domain.ErrUpstreamUnavailable}
	svc := NewSyncService(store, client, 3)

	store.Add(domain.ClockEvent{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Timestamp: 1000})
	store.Add(domain.ClockEvent{EmployeeID: 2, LocationID: "100", Action: domain.ActionClockIn, Timestamp: 2000})

	svc.PushUnsynced()

	unsynced, _ := store.Unsynced()
	if len(unsynced) != 2 {
		t.Fatalf("expected both events still unsynced, got %d", len(unsynced))
	}
	if len(client.pushed) != 0 {
		t.Fatalf("expected no successful pushes, got %d", len(client.pushed))
	}
}

func TestRefreshMergesUnknownRemoteEvents(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	nowMs := domain.UnixMs(now)

	client := &fakeSyncClient{
		remoteEvents: []domain.ClockEvent{
			remoteEv(10, 1, "100", domain.ActionClockIn, nowMs-1000),
			remoteEv(11, 2, "100", domain.ActionClockIn, nowMs-2000),
		},
	}
	svc := NewSyncService(store, client, 3)

	// Local already knows server id 10
	localID, _ := store.Add(domain.ClockEvent{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Timestamp: nowMs - 1000})
	store.SetServerID(localID, 10)

	if err := svc.Refresh(now); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	all, _ := store.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 events after merge, got %d", len(all))
	}

	// The merged remote event materializes as already synced
	merged, err := store.ByLocalID(2)
	if err != nil {
		t.Fatalf("merged event missing: %v", err)
	}
	if !merged.Synced || merged.ServerID == nil || *merged.ServerID != 11 {
		t.Fatalf("merged event not synced: %+v", merged)
	}

	// Snapshot now holds the remote view
	if len(svc.Snapshot()) != 2 {
		t.Fatalf("expected snapshot of 2 remote events, got %d", len(svc.Snapshot()))
	}
}

func TestRefreshPurgesOutsideRetention(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	nowMs := domain.UnixMs(now)
	oldMs := domain.UnixMs(now.AddDate(0, 0, -22)) // past the 3-week window

	client := &fakeSyncClient{}
	svc := NewSyncService(store, client, 3)

	store.Add(domain.ClockEvent{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Timestamp: oldMs})
	store.Add(domain.ClockEvent{EmployeeID: 1, LocationID: "100", Action: domain.ActionClockIn, Timestamp: nowMs})

	if err := svc.Refresh(now); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	all, _ := store.All()
	if len(all) != 1 || all[0].Timestamp != nowMs {
		t.Fatalf("expected only the recent event to survive, got %+v", all)
	}
}

func TestRefreshIdempotent(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	nowMs := domain.UnixMs(now)

	client := &fakeSyncClient{
		remoteEvents: []domain.ClockEvent{
			remoteEv(10, 1, "100", domain.ActionClockIn, nowMs - 1000),
		},
	}
	svc := NewSyncService(store, client, 3)

	for i := 0; i < 3; i++ {
		if err := svc.Refresh(now); err != nil {
			t.Fatalf("Refresh %d failed: %v", i, err)
		}
	}

	all, _ := store.All()
	if len(all) != 1 {
		t.Fatalf("repeated refresh duplicated events: %d", len(all))
	}
}
