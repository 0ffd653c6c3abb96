package services

import (
	"errors"
	"log"
	"time"

	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/core/domain"
	"altn-timeclock/internal/pkg/passcode"
)

// ClockService handles the kiosk clock in/out flow: roster and
// passcode validation, state checks, and recording the event.
type ClockService struct {
	events    repositories.EventRepository
	roster    *RosterService
	reconcile *ReconcileService
	sync      *SyncService
	verifier  passcode.Verifier
}

// NewClockService creates a new clock service
func NewClockService(
	events repositories.EventRepository,
	roster *RosterService,
	reconcile *ReconcileService,
	sync *SyncService,
	verifier passcode.Verifier,
) *ClockService {
	return &ClockService{
		events:    events,
		roster:    roster,
		reconcile: reconcile,
		sync:      sync,
		verifier:  verifier,
	}
}

// ClockInput is a kiosk clock in/out request
type ClockInput struct {
	EmployeeID int64
	LocationID string // Location.LocationNum join key
	Action     domain.ClockAction
	Passcode   string
}

// Clock validates and records a clock in/out. Validation failures
// abort before anything is stored. The event is pushed upstream
// immediately; when that fails it stays unsynced and the background
// sync retries on the next tick.
func (s *ClockService) Clock(input ClockInput, now time.Time) (*domain.ClockEvent, error) {
	if input.Action != domain.ActionClockIn && input.Action != domain.ActionClockOut {
		return nil, domain.ErrInvalidAction
	}
	if input.LocationID == "" {
		return nil, domain.ErrLocationRequired
	}

	emp, err := s.roster.EmployeeByID(input.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !s.verifier.Verify(input.Passcode, emp.Passcode) {
		return nil, domain.ErrInvalidPasscode
	}

	clockedIn, err := s.reconcile.IsClockedIn(emp.ID)
	if err != nil {
		return nil, err
	}
	if input.Action == domain.ActionClockIn && clockedIn {
		return nil, domain.ErrAlreadyClockedIn
	}
	if input.Action == domain.ActionClockOut && !clockedIn {
		return nil, domain.ErrNotClockedIn
	}

	event := domain.ClockEvent{
		EmployeeID: emp.ID,
		LocationID: input.LocationID,
		Action:     input.Action,
		Timestamp:  domain.UnixMs(now),
		Synced:     false,
	}

	localID, err := s.events.Add(event)
	if err != nil {
		return nil, err
	}
	event.LocalID = localID

	if err := s.sync.PushEvent(event); err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			log.Printf("❌ Clock: push failed for local event %d: %v", localID, err)
		}
	} else {
		event.Synced = true
	}

	return &event, nil
}

// History returns the employee's recent weekly groups after verifying
// their passcode.
func (s *ClockService) History(employeeID int64, code string, now time.Time) ([]domain.WeekGroup, error) {
	emp, err := s.roster.EmployeeByID(employeeID)
	if err != nil {
		return nil, err
	}
	if !s.verifier.Verify(code, emp.Passcode) {
		return nil, domain.ErrInvalidPasscode
	}
	return s.reconcile.WeeklyGroups(emp.ID, now)
}
