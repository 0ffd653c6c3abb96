package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/core/domain"
)

// SyncService pushes unsynced local events upstream and maintains the
// remote event snapshot the reconciliation engine prefers. All effects
// serialize through the event store; a failed request is simply
// retried on the next tick.
type SyncService struct {
	events    repositories.EventRepository
	client    SyncClient
	retention time.Duration

	mu     sync.RWMutex
	remote []domain.ClockEvent
}

// NewSyncService creates a new sync service
func NewSyncService(events repositories.EventRepository, client SyncClient, retentionWeeks int) *SyncService {
	return &SyncService{
		events:    events,
		client:    client,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
	}
}

// Snapshot returns the last fetched remote event set
func (s *SyncService) Snapshot() []domain.ClockEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ClockEvent, len(s.remote))
	copy(out, s.remote)
	return out
}

// RetentionCutoffMs returns the purge/fetch cutoff relative to now
func (s *SyncService) RetentionCutoffMs(now time.Time) int64 {
	return domain.UnixMs(now.Add(-s.retention))
}

// PushEvent sends one event upstream and records the assigned server
// id. Transport failures are transient: the event stays unsynced and
// the next tick picks it up.
func (s *SyncService) PushEvent(event domain.ClockEvent) error {
	serverID, err := s.client.Push(event)
	if err != nil {
		return err
	}
	return s.events.SetServerID(event.LocalID, serverID)
}

// PushUnsynced pushes every unsynced local event
func (s *SyncService) PushUnsynced() {
	unsynced, err := s.events.Unsynced()
	if err != nil {
		log.Printf("❌ Sync: failed to load unsynced events: %v", err)
		return
	}

	for _, event := range unsynced {
		if err := s.PushEvent(event); err != nil {
			if errors.Is(err, domain.ErrUpstreamUnavailable) {
				// No point hammering the rest of the batch
				return
			}
			log.Printf("❌ Sync: push failed for local event %d: %v", event.LocalID, err)
		}
	}
}

// Refresh fetches the remote events inside the retention window,
// purges local events older than the cutoff, and merges remote events
// whose server id is not yet known locally.
func (s *SyncService) Refresh(now time.Time) error {
	cutoffMs := s.RetentionCutoffMs(now)

	fetched, err := s.client.FetchEventsSince(cutoffMs)
	if err != nil {
		return err
	}

	if err := s.events.PurgeOlderThan(cutoffMs); err != nil {
		return err
	}

	for _, remote := range fetched {
		if remote.ServerID == nil {
			continue
		}
		exists, err := s.events.ExistsByServerID(*remote.ServerID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		// Remote-origin events materialize locally as already synced
		if _, err := s.events.Add(remote); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.remote = fetched
	s.mu.Unlock()
	return nil
}

// SubmitChangeRequest forwards an admin edit upstream
func (s *SyncService) SubmitChangeRequest(cr domain.ChangeRequest) error {
	return s.client.SendChangeRequest(cr)
}
