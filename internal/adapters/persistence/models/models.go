package models

import (
	"time"

	"altn-timeclock/internal/core/domain"

	"gorm.io/gorm"
)

// ClockEvent represents the clock_events table. LocalID is assigned by
// the repository (max existing id + 1), never by MySQL auto-increment,
// so ids stay stable when rows are purged and re-merged from upstream.
type ClockEvent struct {
	LocalID    int64  `gorm:"primaryKey;autoIncrement:false;column:local_id" json:"local_id"`
	ServerID   *int64 `gorm:"column:server_id;index" json:"server_id"`
	EmployeeID int64  `gorm:"not null;uniqueIndex:idx_clock_events_natural" json:"employee_id"`
	LocationID string `gorm:"size:32;not null;uniqueIndex:idx_clock_events_natural" json:"location_id"`
	Action     string `gorm:"size:16;not null;uniqueIndex:idx_clock_events_natural" json:"action"`
	// Milliseconds since epoch, UTC
	Timestamp int64     `gorm:"not null;index;uniqueIndex:idx_clock_events_natural" json:"timestamp"`
	Synced    bool      `gorm:"default:false;index" json:"synced"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClockEvent) TableName() string {
	return "clock_events"
}

// ToDomain converts the row to a domain event
func (m *ClockEvent) ToDomain() domain.ClockEvent {
	return domain.ClockEvent{
		LocalID:    m.LocalID,
		ServerID:   m.ServerID,
		EmployeeID: m.EmployeeID,
		LocationID: m.LocationID,
		Action:     domain.ClockAction(m.Action),
		Timestamp:  m.Timestamp,
		Synced:     m.Synced,
	}
}

// FromDomain converts a domain event to a row
func FromDomain(e domain.ClockEvent) *ClockEvent {
	return &ClockEvent{
		LocalID:    e.LocalID,
		ServerID:   e.ServerID,
		EmployeeID: e.EmployeeID,
		LocationID: e.LocationID,
		Action:     string(e.Action),
		Timestamp:  e.Timestamp,
		Synced:     e.Synced,
	}
}

// RefreshToken represents the refresh_tokens table for admin sessions
type RefreshToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EmployeeID int64      `gorm:"index;not null" json:"employee_id"`
	TokenHash  string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt  *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// ToDomain converts the row to a domain token
func (rt *RefreshToken) ToDomain() *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:         rt.ID,
		EmployeeID: rt.EmployeeID,
		TokenHash:  rt.TokenHash,
		ExpiresAt:  rt.ExpiresAt,
		CreatedAt:  rt.CreatedAt,
		RevokedAt:  rt.RevokedAt,
	}
}

// AutoMigrate creates tables if not exist
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ClockEvent{},
		&RefreshToken{},
	)
}
