package repositories

import (
	"errors"
	"sync"
	"time"

	"altn-timeclock/internal/adapters/persistence/models"
	"altn-timeclock/internal/core/domain"

	"gorm.io/gorm"
)

// refreshTokenRepository implements RefreshTokenRepository on MySQL
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Create stores a new refresh token
func (r *refreshTokenRepository) Create(employeeID int64, tokenHash string, expiresAt time.Time) error {
	return r.db.Create(&models.RefreshToken{
		EmployeeID: employeeID,
		TokenHash:  tokenHash,
		ExpiresAt:  expiresAt,
	}).Error
}

// GetByTokenHash finds a token by its hash
func (r *refreshTokenRepository) GetByTokenHash(tokenHash string) (*domain.RefreshToken, error) {
	var row models.RefreshToken
	err := r.db.Where("token_hash = ?", tokenHash).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Revoke marks a token as revoked
func (r *refreshTokenRepository) Revoke(tokenHash string) error {
	now := time.Now()
	return r.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", &now).Error
}

// RevokeAllForEmployee revokes every live token for an employee
func (r *refreshTokenRepository) RevokeAllForEmployee(employeeID int64) error {
	now := time.Now()
	return r.db.Model(&models.RefreshToken{}).
		Where("employee_id = ? AND revoked_at IS NULL", employeeID).
		Update("revoked_at", &now).Error
}

// DeleteExpired removes tokens past their expiry
func (r *refreshTokenRepository) DeleteExpired() error {
	return r.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{}).Error
}

// memoryRefreshTokenRepository keeps tokens in memory. Used with the
// file-backed event store, where no database is available; admin
// sessions simply do not survive a restart in that mode.
type memoryRefreshTokenRepository struct {
	mu     sync.Mutex
	nextID uint
	tokens map[string]*domain.RefreshToken
}

// NewMemoryRefreshTokenRepository creates an in-memory token repository
func NewMemoryRefreshTokenRepository() RefreshTokenRepository {
	return &memoryRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *memoryRefreshTokenRepository) Create(employeeID int64, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.tokens[tokenHash] = &domain.RefreshToken{
		ID:         r.nextID,
		EmployeeID: employeeID,
		TokenHash:  tokenHash,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now(),
	}
	return nil
}

func (r *memoryRefreshTokenRepository) GetByTokenHash(tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *token
	return &copied, nil
}

func (r *memoryRefreshTokenRepository) Revoke(tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.tokens[tokenHash]; ok && token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (r *memoryRefreshTokenRepository) RevokeAllForEmployee(employeeID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, token := range r.tokens {
		if token.EmployeeID == employeeID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *memoryRefreshTokenRepository) DeleteExpired() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, token := range r.tokens {
		if token.IsExpired() {
			delete(r.tokens, hash)
		}
	}
	return nil
}
