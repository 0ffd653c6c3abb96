package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/core/domain"
)

// Default closing thresholds, local time
const (
	defaultClosingWeekday = "18:30"
	defaultClosingWeekend = "17:00"
)

// AutoClockOutService force-closes forgotten clock-ins after the
// location's closing time. It is a sweep: it runs on every sync tick
// once the threshold has passed, and stays idempotent because the
// synthesized clock_out is persisted through the store's natural-key
// dedupe before anything is pushed.
type AutoClockOutService struct {
	events repositories.EventRepository
	sync   *SyncService

	weekdayHour, weekdayMin int
	weekendHour, weekendMin int
}

// NewAutoClockOutService creates the sweep. Closing times are HH:MM
// strings; unparseable values fall back to the defaults.
func NewAutoClockOutService(events repositories.EventRepository, sync *SyncService, closingWeekday, closingWeekend string) *AutoClockOutService {
	s := &AutoClockOutService{events: events, sync: sync}

	var err error
	s.weekdayHour, s.weekdayMin, err = parseClosing(closingWeekday)
	if err != nil {
		log.Printf("⚠️ Auto clock-out: invalid weekday closing %q, using %s", closingWeekday, defaultClosingWeekday)
		s.weekdayHour, s.weekdayMin, _ = parseClosing(defaultClosingWeekday)
	}
	s.weekendHour, s.weekendMin, err = parseClosing(closingWeekend)
	if err != nil {
		log.Printf("⚠️ Auto clock-out: invalid weekend closing %q, using %s", closingWeekend, defaultClosingWeekend)
		s.weekendHour, s.weekendMin, _ = parseClosing(defaultClosingWeekend)
	}
	return s
}

// Sweep closes every open clock_in from today when now has passed the
// closing threshold. Returns the number of clock_outs synthesized.
func (s *AutoClockOutService) Sweep(now time.Time) (int, error) {
	if now.Before(s.closingThreshold(now)) {
		return 0, nil
	}

	all, err := s.events.All()
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, open := range openClockInsOnDay(all, now) {
		out := domain.ClockEvent{
			EmployeeID: open.EmployeeID,
			LocationID: open.LocationID,
			Action:     domain.ActionClockOut,
			Timestamp:  domain.UnixMs(now),
			Synced:     false,
		}

		localID, err := s.events.Add(out)
		if err != nil {
			return closed, err
		}
		out.LocalID = localID
		closed++

		log.Printf("🕚 Auto clock-out: employee %d at %s (clocked in %s)",
			open.EmployeeID, open.LocationID, open.Time().Format("15:04"))

		if err := s.sync.PushEvent(out); err != nil && !errors.Is(err, domain.ErrUpstreamUnavailable) {
			log.Printf("❌ Auto clock-out: push failed for local event %d: %v", localID, err)
		}
	}
	return closed, nil
}

// closingThreshold returns today's closing time: the weekday threshold
// Monday through Friday, the weekend threshold otherwise.
func (s *AutoClockOutService) closingThreshold(now time.Time) time.Time {
	hour, min := s.weekendHour, s.weekendMin
	switch now.Weekday() {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday:
		hour, min = s.weekdayHour, s.weekdayMin
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
}

// openClockInsOnDay returns clock_ins on now's day (or later) with no
// later clock_out for the same employee.
func openClockInsOnDay(events []domain.ClockEvent, now time.Time) []domain.ClockEvent {
	dayStart := startOfDay(now)

	var open []domain.ClockEvent
	for _, in := range events {
		if in.Action != domain.ActionClockIn {
			continue
		}
		if startOfDay(in.Time().In(now.Location())).Before(dayStart) {
			continue
		}

		matched := false
		for _, ev := range events {
			if ev.Action == domain.ActionClockOut &&
				ev.EmployeeID == in.EmployeeID &&
				ev.Timestamp > in.Timestamp {
				matched = true
				break
			}
		}
		if !matched {
			open = append(open, in)
		}
	}
	return open
}

func parseClosing(value string) (hour, min int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid closing time %q: %w", value, err)
	}
	return t.Hour(), t.Minute(), nil
}
