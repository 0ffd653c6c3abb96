package services

import (
	"log"
	"strings"
	"sync"

	"altn-timeclock/internal/core/domain"
)

// RosterService caches the employee roster and location list fetched
// from the upstream server. The roster is owned upstream and never
// persisted locally; the cache is refreshed on a timer.
type RosterService struct {
	client SyncClient

	mu        sync.RWMutex
	employees []domain.Employee
	locations []domain.Location

	// Bootstrap admin so the admin section works before the first
	// successful roster fetch. Optional.
	fallbackAdmin *domain.Employee
}

// NewRosterService creates a new roster service
func NewRosterService(client SyncClient) *RosterService {
	return &RosterService{client: client}
}

// SetFallbackAdmin installs a bootstrap admin credential
func (s *RosterService) SetFallbackAdmin(name, passcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.SplitN(name, " ", 2)
	first, last := parts[0], ""
	if len(parts) == 2 {
		last = parts[1]
	}
	s.fallbackAdmin = &domain.Employee{
		ID:        0,
		FirstName: first,
		LastName:  last,
		Passcode:  passcode,
		UserLevel: 1,
	}
}

// Refresh fetches the roster and locations from upstream. Employees
// with access level 0 are dropped, matching the kiosk's view.
func (s *RosterService) Refresh() error {
	employees, err := s.client.FetchEmployees()
	if err != nil {
		return err
	}
	locations, err := s.client.FetchLocations()
	if err != nil {
		return err
	}

	filtered := make([]domain.Employee, 0, len(employees))
	for _, emp := range employees {
		if emp.UserLevel > 0 {
			filtered = append(filtered, emp)
		}
	}

	s.mu.Lock()
	s.employees = filtered
	s.locations = locations
	s.mu.Unlock()

	log.Printf("✅ Roster refreshed: %d employees, %d locations", len(filtered), len(locations))
	return nil
}

// Employees returns a copy of the cached roster
func (s *RosterService) Employees() []domain.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Employee, len(s.employees))
	copy(out, s.employees)
	return out
}

// Locations returns a copy of the cached location list
func (s *RosterService) Locations() []domain.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// EmployeeByID looks up a roster entry
func (s *RosterService) EmployeeByID(id int64) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, emp := range s.employees {
		if emp.ID == id {
			copied := emp
			return &copied, nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

// EmployeeByName looks up a roster entry by display name, case-insensitive
func (s *RosterService) EmployeeByName(fullName string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, emp := range s.employees {
		if strings.EqualFold(emp.FullName(), strings.TrimSpace(fullName)) {
			copied := emp
			return &copied, nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

// FindAdmin returns the admin with the given display name. The
// fallback admin answers only when the roster has no such admin.
func (s *RosterService) FindAdmin(fullName string) (*domain.Employee, error) {
	if emp, err := s.EmployeeByName(fullName); err == nil && emp.IsAdmin() {
		return emp, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fallbackAdmin != nil && strings.EqualFold(s.fallbackAdmin.FullName(), strings.TrimSpace(fullName)) {
		copied := *s.fallbackAdmin
		return &copied, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

// AdminByID returns the admin with the given id, including the fallback
func (s *RosterService) AdminByID(id int64) (*domain.Employee, error) {
	if emp, err := s.EmployeeByID(id); err == nil && emp.IsAdmin() {
		return emp, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fallbackAdmin != nil && s.fallbackAdmin.ID == id {
		copied := *s.fallbackAdmin
		return &copied, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

// LocationByKey looks up a location by its LocationNum join key
func (s *RosterService) LocationByKey(key string) (*domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, loc := range s.locations {
		if loc.Key() != "" && loc.Key() == key {
			copied := loc
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}
