package services

import (
	"errors"
	"log"
	"time"

	"altn-timeclock/internal/core/domain"
)

// SyncAutoService runs the background goroutines that keep the kiosk
// converged with the upstream server: the event sync loop and the
// slower roster refresh loop.
type SyncAutoService struct {
	sync     *SyncService
	roster   *RosterService
	autoOut  *AutoClockOutService
	interval time.Duration
	stopChan chan struct{}
}

// NewSyncAutoService creates a new auto service
func NewSyncAutoService(sync *SyncService, roster *RosterService, autoOut *AutoClockOutService, intervalSeconds int) *SyncAutoService {
	return &SyncAutoService{
		sync:     sync,
		roster:   roster,
		autoOut:  autoOut,
		interval: time.Duration(intervalSeconds) * time.Second,
		stopChan: make(chan struct{}),
	}
}

// Start launches all background goroutines
func (s *SyncAutoService) Start() {
	log.Println("🚀 SyncAutoService started")

	// Prime the roster before the first tick so the kiosk can serve
	// immediately. Failure is fine, the loop retries.
	if err := s.roster.Refresh(); err != nil {
		log.Printf("⚠️ Initial roster fetch failed: %v", err)
	}

	// Event sync + auto clock-out sweep: every tick
	go s.runSyncLoop()

	// Roster refresh: every 5 minutes
	go s.runRosterLoop()
}

// Stop gracefully stops all goroutines
func (s *SyncAutoService) Stop() {
	close(s.stopChan)
	log.Println("🛑 SyncAutoService stopped")
}

func (s *SyncAutoService) runSyncLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopChan:
			return
		}
	}
}

// tick is one sync cycle: push local backlog, refresh the remote view,
// then sweep for forgotten clock-ins. Order matters: the sweep must see
// today's freshest events.
func (s *SyncAutoService) tick() {
	now := time.Now()

	s.sync.PushUnsynced()

	if err := s.sync.Refresh(now); err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			log.Printf("❌ Sync: refresh failed: %v", err)
		}
	}

	if closed, err := s.autoOut.Sweep(now); err != nil {
		log.Printf("❌ Auto clock-out sweep failed: %v", err)
	} else if closed > 0 {
		log.Printf("✅ Auto clock-out: closed %d open shift(s)", closed)
	}
}

func (s *SyncAutoService) runRosterLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.roster.Refresh(); err != nil && !errors.Is(err, domain.ErrUpstreamUnavailable) {
				log.Printf("❌ Roster refresh failed: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}
