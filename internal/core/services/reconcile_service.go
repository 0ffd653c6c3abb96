package services

import (
	"sort"
	"time"

	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/core/domain"

	"github.com/google/uuid"
)

// ReconcileService derives "who is clocked in" and worked-hours facts
// from the mixed local/remote event set. The computations themselves
// are pure; the service only supplies the event sources.
type ReconcileService struct {
	events repositories.EventRepository
	remote RemoteEventSource
	roster *RosterService
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(events repositories.EventRepository, remote RemoteEventSource, roster *RosterService) *ReconcileService {
	return &ReconcileService{
		events: events,
		remote: remote,
		roster: roster,
	}
}

// CurrentlyClockedIn returns the open shifts for clock-eligible staff
func (s *ReconcileService) CurrentlyClockedIn() ([]domain.ClockedInEntry, error) {
	local, err := s.events.All()
	if err != nil {
		return nil, err
	}
	return clockedInFrom(local, s.remote.Snapshot(), s.roster.Employees()), nil
}

// IsClockedIn reports whether one employee currently has an open shift.
// Unlike CurrentlyClockedIn it ignores the access-level filter: the
// kiosk state check applies to admins reviewing their own shifts too.
func (s *ReconcileService) IsClockedIn(employeeID int64) (bool, error) {
	local, err := s.events.All()
	if err != nil {
		return false, err
	}
	open := openShifts(preferRemote(local, s.remote.Snapshot()))
	_, ok := open[employeeID]
	return ok, nil
}

// HoursWorkedBetween returns the hours employee worked in [startMs, endMs)
func (s *ReconcileService) HoursWorkedBetween(employeeID int64, startMs, endMs int64) (float64, error) {
	events, err := s.preferredEvents()
	if err != nil {
		return 0, err
	}
	return hoursWorkedBetween(employeeID, events, startMs, endMs), nil
}

// WeeklyGroups returns the three most recent Saturday-to-Friday ranges
// with the employee's clock pairs. employeeID 0 pairs every employee
// separately and merges the pairs per range.
func (s *ReconcileService) WeeklyGroups(employeeID int64, now time.Time) ([]domain.WeekGroup, error) {
	events, err := s.preferredEvents()
	if err != nil {
		return nil, err
	}
	return weeklyGroups(events, employeeID, now), nil
}

// preferredEvents returns the remote set when non-empty, else local.
// Remote is the authoritative merged view once a fetch has succeeded.
func (s *ReconcileService) preferredEvents() ([]domain.ClockEvent, error) {
	local, err := s.events.All()
	if err != nil {
		return nil, err
	}
	return preferRemote(local, s.remote.Snapshot()), nil
}

func preferRemote(local, remote []domain.ClockEvent) []domain.ClockEvent {
	if len(remote) > 0 {
		return remote
	}
	return local
}

// openShifts scans events in ascending timestamp order and returns the
// last open clock_in per employee. A clock_in overwrites any prior open
// state (last one wins); a clock_out closes regardless of location.
func openShifts(events []domain.ClockEvent) map[int64]domain.ClockEvent {
	sorted := make([]domain.ClockEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	open := make(map[int64]domain.ClockEvent)
	for _, ev := range sorted {
		switch ev.Action {
		case domain.ActionClockIn:
			open[ev.EmployeeID] = ev
		case domain.ActionClockOut:
			delete(open, ev.EmployeeID)
		}
	}
	return open
}

// clockedInFrom resolves open shifts against the roster. Employees not
// on the roster, or with access level <= 2, are silently excluded.
func clockedInFrom(local, remote []domain.ClockEvent, roster []domain.Employee) []domain.ClockedInEntry {
	byID := make(map[int64]domain.Employee, len(roster))
	for _, emp := range roster {
		byID[emp.ID] = emp
	}

	entries := make([]domain.ClockedInEntry, 0)
	for employeeID, ev := range openShifts(preferRemote(local, remote)) {
		emp, ok := byID[employeeID]
		if !ok || !emp.IsStaff() {
			continue
		}
		entries = append(entries, domain.ClockedInEntry{
			EmployeeID: employeeID,
			LocationID: ev.LocationID,
			Name:       emp.FullName(),
			Time:       ev.Timestamp,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Time != entries[j].Time {
			return entries[i].Time < entries[j].Time
		}
		return entries[i].EmployeeID < entries[j].EmployeeID
	})
	return entries
}

// hoursWorkedBetween sums the employee's worked time inside the window
// [startMs, endMs). Shifts spanning the window edges are clamped; an
// unterminated final shift counts up to the window end.
func hoursWorkedBetween(employeeID int64, events []domain.ClockEvent, startMs, endMs int64) float64 {
	var evs []domain.ClockEvent
	for _, ev := range events {
		if ev.EmployeeID == employeeID {
			evs = append(evs, ev)
		}
	}
	sort.Slice(evs, func(i, j int) bool {
		return evs[i].Timestamp < evs[j].Timestamp
	})

	var totalMs int64
	var openMs *int64

	for _, ev := range evs {
		switch ev.Action {
		case domain.ActionClockIn:
			if ev.Timestamp <= startMs {
				ts := startMs
				openMs = &ts
			} else if ev.Timestamp < endMs {
				ts := ev.Timestamp
				openMs = &ts
			}
			// A clock_in at or past the window end contributes nothing
		case domain.ActionClockOut:
			if openMs == nil {
				continue
			}
			outMs := ev.Timestamp
			if outMs > endMs {
				outMs = endMs
			}
			if outMs > *openMs {
				totalMs += outMs - *openMs
			}
			openMs = nil
		}
	}

	// Still clocked in: count the open tail up to the window end
	if openMs != nil && endMs > *openMs {
		totalMs += endMs - *openMs
	}

	return float64(totalMs) / domain.MillisPerHour
}

// weeklyGroups partitions events into the three most recent
// Saturday-to-Friday ranges relative to now. Pairs are matched per
// employee; a trailing unmatched clock_in becomes an open pair.
func weeklyGroups(events []domain.ClockEvent, employeeID int64, now time.Time) []domain.WeekGroup {
	startOfThisWeek := startOfDay(lastSaturday(now))

	sorted := make([]domain.ClockEvent, 0, len(events))
	for _, ev := range events {
		if employeeID == 0 || ev.EmployeeID == employeeID {
			sorted = append(sorted, ev)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	groups := make([]domain.WeekGroup, 0, 3)
	for i := 0; i < 3; i++ {
		start := startOfThisWeek.AddDate(0, 0, -7*i)
		end := start.AddDate(0, 0, 6)
		rangeEnd := end.AddDate(0, 0, 1) // events through Friday night

		var inWeek []domain.ClockEvent
		for _, ev := range sorted {
			t := ev.Time()
			if !t.Before(start) && t.Before(rangeEnd) {
				inWeek = append(inWeek, ev)
			}
		}

		groups = append(groups, domain.WeekGroup{
			ID:    uuid.New(),
			Start: start,
			End:   end,
			Pairs: pairEvents(inWeek),
		})
	}
	return groups
}

// pairEvents matches clock_in to the next clock_out of the same
// employee. Unmatched trailing clock_ins become open pairs.
func pairEvents(events []domain.ClockEvent) []domain.ClockPair {
	open := make(map[int64]int) // employee -> index of open pair
	pairs := make([]domain.ClockPair, 0)

	for _, ev := range events {
		switch ev.Action {
		case domain.ActionClockIn:
			open[ev.EmployeeID] = len(pairs)
			pairs = append(pairs, domain.ClockPair{In: ev})
		case domain.ActionClockOut:
			if idx, ok := open[ev.EmployeeID]; ok {
				out := ev
				pairs[idx].Out = &out
				delete(open, ev.EmployeeID)
			}
		}
	}
	return pairs
}

// payPeriodBounds returns the two-week Saturday-to-Friday pay period
// containing now: thirteen days before the upcoming Friday through now.
func payPeriodBounds(now time.Time) (time.Time, time.Time) {
	nextFri := nextWeekday(now, time.Friday)
	start := startOfDay(nextFri.AddDate(0, 0, -13))
	return start, now
}

// lastSaturday returns the most recent Saturday on or before t
func lastSaturday(t time.Time) time.Time {
	daysSince := int(t.Weekday()) + 1 // Sunday is 1 day after Saturday
	if t.Weekday() == time.Saturday {
		daysSince = 0
	}
	return t.AddDate(0, 0, -daysSince)
}

// nextWeekday returns the next occurrence of day strictly after t
func nextWeekday(t time.Time, day time.Weekday) time.Time {
	delta := (int(day) - int(t.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return t.AddDate(0, 0, delta)
}

// startOfDay returns midnight of t's day in t's location
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
