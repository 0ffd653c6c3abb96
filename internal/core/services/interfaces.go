package services

import (
	"altn-timeclock/internal/core/domain"
)

// SyncClient is the upstream server the kiosk synchronizes with.
// Implemented by the upstream package; faked in tests.
type SyncClient interface {
	// Push sends one local event and returns the server-assigned id.
	Push(event domain.ClockEvent) (int64, error)
	// FetchEventsSince returns remote events with timestamp >= sinceMs.
	FetchEventsSince(sinceMs int64) ([]domain.ClockEvent, error)
	// FetchEmployees returns the full roster.
	FetchEmployees() ([]domain.Employee, error)
	// FetchLocations returns the location list.
	FetchLocations() ([]domain.Location, error)
	// SendChangeRequest submits an admin edit for upstream approval.
	SendChangeRequest(cr domain.ChangeRequest) error
}

// RemoteEventSource exposes the last fetched remote event set. The
// reconciliation engine prefers it over local events when non-empty.
type RemoteEventSource interface {
	Snapshot() []domain.ClockEvent
}
