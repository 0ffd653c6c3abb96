package upstream

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"altn-timeclock/internal/core/domain"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL, 2*time.Second), server
}

func TestPushReturnsServerID(t *testing.T) {
	var received pushRequest
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clock-event" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(map[string]int64{"id": 42})
	}))
	defer server.Close()

	id, err := client.Push(domain.ClockEvent{
		LocalID: 7, EmployeeID: 1, LocationID: "100",
		Action: domain.ActionClockIn, Timestamp: 1000,
	})
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected server id 42, got %d", id)
	}
	if received.LocalID != 7 || received.Action != "clock_in" {
		t.Fatalf("unexpected push body: %+v", received)
	}
}

func TestPushMissingIDIsDecodeError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	_, err := client.Push(domain.ClockEvent{EmployeeID: 1, Action: domain.ActionClockIn})
	if !errors.Is(err, domain.ErrUpstreamDecode) {
		t.Fatalf("expected ErrUpstreamDecode, got %v", err)
	}
}

func TestFetchEventsSinceMaterializesSynced(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("since"); got != "5000" {
			t.Errorf("expected since=5000, got %s", got)
		}
		json.NewEncoder(w).Encode([]remoteEvent{
			{ID: 10, EmployeeID: 1, LocationID: "100", Action: "clock_in", Timestamp: 6000},
		})
	}))
	defer server.Close()

	events, err := client.FetchEventsSince(5000)
	if err != nil {
		t.Fatalf("FetchEventsSince failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if !ev.Synced || ev.ServerID == nil || *ev.ServerID != 10 {
		t.Fatalf("remote event must materialize as synced: %+v", ev)
	}
}

func TestFetchEmployeesMapsNilPassword(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"firstName":"Ann","lastName":"Lee","userlevel":3,"password":null}]`))
	}))
	defer server.Close()

	employees, err := client.FetchEmployees()
	if err != nil {
		t.Fatalf("FetchEmployees failed: %v", err)
	}
	if len(employees) != 1 || employees[0].Passcode != "" {
		t.Fatalf("nil password must map to empty passcode: %+v", employees)
	}
}

func TestChangeRequestRejected(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"success": false})
	}))
	defer server.Close()

	err := client.SendChangeRequest(domain.ChangeRequest{ServerID: 1, Action: domain.ActionClockIn, Timestamp: 1})
	if !errors.Is(err, domain.ErrUpstreamRejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}
}

func TestTransportFailuresAreTransient(t *testing.T) {
	// Non-2xx status
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := client.FetchEventsSince(0); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable on 500, got %v", err)
	}

	// Dead server
	server.Close()
	if _, err := client.FetchEventsSince(0); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable on refused connection, got %v", err)
	}
}

func TestMalformedPayloadIsDecodeError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	if _, err := client.FetchLocations(); !errors.Is(err, domain.ErrUpstreamDecode) {
		t.Fatalf("expected ErrUpstreamDecode, got %v", err)
	}
}
