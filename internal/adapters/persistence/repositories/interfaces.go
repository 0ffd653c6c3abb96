package repositories

import (
	"time"

	"altn-timeclock/internal/core/domain"
)

// EventRepository is the local Event Store contract. All mutations are
// durable and visible to the caller before the method returns.
type EventRepository interface {
	// Add stores the event and returns its local id. Inserting an event
	// whose natural key (employee, location, action, timestamp) already
	// exists returns the existing local id unchanged.
	Add(event domain.ClockEvent) (int64, error)
	// Update replaces the stored event matching event.LocalID; no-op if absent.
	Update(event domain.ClockEvent) error
	// MarkSynced sets synced=true for the given local id.
	MarkSynced(localID int64) error
	// SetServerID records the upstream-assigned id and sets synced=true.
	SetServerID(localID, serverID int64) error
	// ExistsByServerID reports whether a row with the server id exists.
	ExistsByServerID(serverID int64) (bool, error)
	// PurgeOlderThan deletes all events with timestamp < cutoffMs.
	PurgeOlderThan(cutoffMs int64) error
	// Clear deletes all events.
	Clear() error

	// ByLocalID returns the event with the given local id.
	ByLocalID(localID int64) (*domain.ClockEvent, error)
	// All returns every stored event in ascending timestamp order.
	All() ([]domain.ClockEvent, error)
	// ByEmployee returns one employee's events in ascending timestamp order.
	ByEmployee(employeeID int64) ([]domain.ClockEvent, error)
	// Unsynced returns events not yet accepted by the upstream server.
	Unsynced() ([]domain.ClockEvent, error)
	// List returns a page of events, newest first. employeeID 0 means all.
	List(offset, limit int, employeeID int64) ([]domain.ClockEvent, int64, error)
}

// RefreshTokenRepository persists admin refresh tokens
type RefreshTokenRepository interface {
	Create(employeeID int64, tokenHash string, expiresAt time.Time) error
	GetByTokenHash(tokenHash string) (*domain.RefreshToken, error)
	Revoke(tokenHash string) error
	RevokeAllForEmployee(employeeID int64) error
	DeleteExpired() error
}
