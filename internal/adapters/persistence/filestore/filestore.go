// Package filestore implements the Event Store contract on a single
// JSON file. It exists for kiosks that run without a MySQL instance:
// the whole event set is held in memory and rewritten to disk on every
// mutation, so a caller never observes success before the change is
// durable.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/core/domain"
)

// persistedEvent is the on-disk shape of one clock event
type persistedEvent struct {
	LocalID    int64  `json:"local_id"`
	ServerID   *int64 `json:"server_id,omitempty"`
	EmployeeID int64  `json:"employee_id"`
	LocationID string `json:"location_id"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"`
	Synced     bool   `json:"synced"`
}

// Store is a file-backed EventRepository
type Store struct {
	mu     sync.Mutex
	path   string
	events []domain.ClockEvent
}

var _ repositories.EventRepository = (*Store)(nil)

// Open loads (or creates) the events file at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read event store: %w", err)
	}

	var rows []persistedEvent
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode event store: %w", err)
	}
	for _, row := range rows {
		s.events = append(s.events, domain.ClockEvent{
			LocalID:    row.LocalID,
			ServerID:   row.ServerID,
			EmployeeID: row.EmployeeID,
			LocationID: row.LocationID,
			Action:     domain.ClockAction(row.Action),
			Timestamp:  row.Timestamp,
			Synced:     row.Synced,
		})
	}
	return s, nil
}

// save must be called with the mutex held
func (s *Store) save() error {
	rows := make([]persistedEvent, 0, len(s.events))
	for _, e := range s.events {
		rows = append(rows, persistedEvent{
			LocalID:    e.LocalID,
			ServerID:   e.ServerID,
			EmployeeID: e.EmployeeID,
			LocationID: e.LocationID,
			Action:     string(e.Action),
			Timestamp:  e.Timestamp,
			Synced:     e.Synced,
		})
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	// Write-then-rename keeps the file intact if the process dies mid-write
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Add stores the event, deduplicating by natural key
func (s *Store) Add(event domain.ClockEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.events {
		if existing.SameNaturalKey(event) {
			return existing.LocalID, nil
		}
	}

	var maxID int64
	for _, existing := range s.events {
		if existing.LocalID > maxID {
			maxID = existing.LocalID
		}
	}

	event.LocalID = maxID + 1
	s.events = append(s.events, event)
	if err := s.save(); err != nil {
		s.events = s.events[:len(s.events)-1]
		return 0, err
	}
	return event.LocalID, nil
}

// Update replaces the stored event matching event.LocalID; no-op if absent
func (s *Store) Update(event domain.ClockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].LocalID == event.LocalID {
			s.events[i] = event
			return s.save()
		}
	}
	return nil
}

// MarkSynced sets synced=true for the given local id
func (s *Store) MarkSynced(localID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].LocalID == localID {
			s.events[i].Synced = true
			return s.save()
		}
	}
	return nil
}

// SetServerID records the upstream-assigned id and sets synced=true
func (s *Store) SetServerID(localID, serverID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].LocalID == localID {
			id := serverID
			s.events[i].ServerID = &id
			s.events[i].Synced = true
			return s.save()
		}
	}
	return nil
}

// ExistsByServerID reports whether an event with the server id exists
func (s *Store) ExistsByServerID(serverID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ServerID != nil && *e.ServerID == serverID {
			return true, nil
		}
	}
	return false, nil
}

// PurgeOlderThan deletes all events with timestamp < cutoffMs
func (s *Store) PurgeOlderThan(cutoffMs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	for _, e := range s.events {
		if e.Timestamp >= cutoffMs {
			kept = append(kept, e)
		}
	}
	s.events = kept
	return s.save()
}

// Clear deletes all events
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = nil
	return s.save()
}

// ByLocalID returns the event with the given local id
func (s *Store) ByLocalID(localID int64) (*domain.ClockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.LocalID == localID {
			copied := e
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

// All returns every stored event in ascending timestamp order
func (s *Store) All() ([]domain.ClockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.events, nil), nil
}

// ByEmployee returns one employee's events in ascending timestamp order
func (s *Store) ByEmployee(employeeID int64) ([]domain.ClockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.events, func(e domain.ClockEvent) bool {
		return e.EmployeeID == employeeID
	}), nil
}

// Unsynced returns events not yet accepted by the upstream server
func (s *Store) Unsynced() ([]domain.ClockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.events, func(e domain.ClockEvent) bool {
		return !e.Synced
	}), nil
}

// List returns a page of events, newest first. employeeID 0 means all.
func (s *Store) List(offset, limit int, employeeID int64) ([]domain.ClockEvent, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := sortedCopy(s.events, func(e domain.ClockEvent) bool {
		return employeeID == 0 || e.EmployeeID == employeeID
	})
	// newest first
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}

	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func sortedCopy(events []domain.ClockEvent, keep func(domain.ClockEvent) bool) []domain.ClockEvent {
	out := make([]domain.ClockEvent, 0, len(events))
	for _, e := range events {
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
