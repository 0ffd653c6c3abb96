package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClockAction is the kind of a clock event
type ClockAction string

const (
	ActionClockIn  ClockAction = "clock_in"
	ActionClockOut ClockAction = "clock_out"
)

// MillisPerHour is used when converting worked durations to hours
const MillisPerHour = 3_600_000

// MaxAdminLevel: levels 1-2 are administrators, anything above is clock-eligible staff
const MaxAdminLevel = 2

// ClockEvent represents a single clock in/out in the domain layer.
// LocalID is assigned by the local store; ServerID stays nil until the
// upstream server accepts the event.
type ClockEvent struct {
	LocalID    int64
	ServerID   *int64
	EmployeeID int64
	LocationID string // joins Location.LocationNum, not Location.ID
	Action     ClockAction
	Timestamp  int64 // milliseconds since epoch, UTC
	Synced     bool
}

// Time returns the event timestamp as a time.Time
func (e ClockEvent) Time() time.Time {
	return MsTime(e.Timestamp)
}

// SameNaturalKey reports whether two events describe the same logical
// clock action: (employee, location, action, timestamp).
func (e ClockEvent) SameNaturalKey(other ClockEvent) bool {
	return e.EmployeeID == other.EmployeeID &&
		e.LocationID == other.LocationID &&
		e.Action == other.Action &&
		e.Timestamp == other.Timestamp
}

// Employee represents a roster entry fetched from the upstream server
type Employee struct {
	ID        int64
	FirstName string
	LastName  string
	Phone     string
	Passcode  string // bcrypt hash, or a legacy plaintext secret from upstream
	UserLevel int
	// Home location, keyed by Location.LocationNum. Optional.
	LocationID *string
}

// FullName returns the display name used on the kiosk
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// IsAdmin reports whether the employee may enter the admin section
func (e Employee) IsAdmin() bool {
	return e.UserLevel >= 1 && e.UserLevel <= MaxAdminLevel
}

// IsStaff reports whether the employee is clock-eligible
func (e Employee) IsStaff() bool {
	return e.UserLevel > MaxAdminLevel
}

// Location represents a site employees clock in at
type Location struct {
	ID        int64
	Name      string
	Franchise *string
	// LocationNum is the join key against ClockEvent.LocationID.
	// The numeric ID is never used for that join.
	LocationNum *string
}

// Key returns the join key for this location, or "" when unset
func (l Location) Key() string {
	if l.LocationNum == nil {
		return ""
	}
	return *l.LocationNum
}

// ClockedInEntry is one row of the "currently clocked in" view
type ClockedInEntry struct {
	EmployeeID int64  `json:"employee_id"`
	LocationID string `json:"location_id"`
	Name       string `json:"name"`
	Time       int64  `json:"time"`
}

// ClockPair is a clock_in with its matching clock_out, if any
type ClockPair struct {
	In  ClockEvent
	Out *ClockEvent
}

// Duration returns the worked span of the pair; open pairs run to now
func (p ClockPair) Duration(now time.Time) time.Duration {
	outMs := UnixMs(now)
	if p.Out != nil {
		outMs = p.Out.Timestamp
	}
	return time.Duration(outMs-p.In.Timestamp) * time.Millisecond
}

// WeekGroup is a derived, non-persistent Saturday-to-Friday range with
// the clock pairs that fall inside it. Used only for display.
type WeekGroup struct {
	ID    uuid.UUID
	Start time.Time
	End   time.Time
	Pairs []ClockPair
}

// ChangeRequest is an admin edit submitted to the upstream server
type ChangeRequest struct {
	ServerID   int64
	EmployeeID int64
	LocationID string
	Action     ClockAction
	Timestamp  int64
}

// UnixMs converts a time.Time to milliseconds since epoch
func UnixMs(t time.Time) int64 {
	return t.UnixMilli()
}

// MsTime converts milliseconds since epoch to a time.Time
func MsTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}
