package services

import (
	"log"
	"time"

	"altn-timeclock/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs nightly housekeeping: purging events outside the
// retention window and dropping expired refresh tokens.
type CronService struct {
	events repositories.EventRepository
	tokens repositories.RefreshTokenRepository
	sync   *SyncService
	cron   *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(events repositories.EventRepository, tokens repositories.RefreshTokenRepository, sync *SyncService) *CronService {
	return &CronService{
		events: events,
		tokens: tokens,
		sync:   sync,
		cron:   cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// Nightly at 03:00: purge events past the retention window
	s.cron.AddFunc("0 3 * * *", s.purgeOldEvents)

	// Nightly at 03:30: clean up expired refresh tokens
	s.cron.AddFunc("30 3 * * *", s.cleanupRefreshTokens)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) purgeOldEvents() {
	cutoffMs := s.sync.RetentionCutoffMs(time.Now())
	if err := s.events.PurgeOlderThan(cutoffMs); err != nil {
		log.Printf("❌ Cron: event purge failed: %v", err)
		return
	}
	log.Println("✅ Cron: purged events past the retention window")
}

func (s *CronService) cleanupRefreshTokens() {
	if err := s.tokens.DeleteExpired(); err != nil {
		log.Printf("❌ Cron: refresh token cleanup failed: %v", err)
		return
	}
	log.Println("✅ Cron: deleted expired refresh tokens")
}
