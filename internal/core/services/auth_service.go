package services

import (
	"errors"
	"log"

	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/config"
	"altn-timeclock/internal/core/domain"
	"altn-timeclock/internal/pkg/jwt"
	"altn-timeclock/internal/pkg/passcode"

	"github.com/google/uuid"
)

// AuthService handles admin session authentication
type AuthService struct {
	roster           *RosterService
	refreshTokenRepo repositories.RefreshTokenRepository
	verifier         passcode.Verifier
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	roster *RosterService,
	refreshTokenRepo repositories.RefreshTokenRepository,
	verifier passcode.Verifier,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		roster:           roster,
		refreshTokenRepo: refreshTokenRepo,
		verifier:         verifier,
		cfg:              cfg,
	}
}

// LoginInput represents admin login input
type LoginInput struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	EmployeeID   int64  `json:"employee_id"`
	Name         string `json:"name"`
	UserLevel    int    `json:"user_level"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login authenticates an admin by display name and passcode. Only
// roster entries with access level 1 or 2 (and the configured fallback
// admin) can open a session.
func (s *AuthService) Login(input *LoginInput) (*AuthResponse, error) {
	admin, err := s.roster.FindAdmin(input.Name)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.verifier.Verify(input.Passcode, admin.Passcode) {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.generateTokens(admin)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Admin logged in: %s", admin.FullName())

	return &AuthResponse{
		EmployeeID:   admin.ID,
		Name:         admin.FullName(),
		UserLevel:    admin.UserLevel,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Refresh rotates the refresh token and issues a new access token
func (s *AuthService) Refresh(refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	tokenHash := passcode.HashToken(refreshToken)

	stored, err := s.refreshTokenRepo.GetByTokenHash(tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	if stored.IsRevoked() {
		return nil, domain.ErrTokenRevoked
	}
	if stored.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	// Re-check admin standing: a demoted employee loses the session at
	// the next refresh even with a valid token.
	admin, err := s.roster.AdminByID(claims.EmployeeID)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	// Token rotation: the presented token is single-use
	if err := s.refreshTokenRepo.Revoke(tokenHash); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(admin)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		EmployeeID:   admin.ID,
		Name:         admin.FullName(),
		UserLevel:    admin.UserLevel,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refreshTokenRepo.Revoke(passcode.HashToken(refreshToken))
}

// LogoutAll revokes every refresh token of the employee
func (s *AuthService) LogoutAll(employeeID int64) error {
	return s.refreshTokenRepo.RevokeAllForEmployee(employeeID)
}

// generateTokens issues an access/refresh pair and stores the refresh
// token hash for later validation.
func (s *AuthService) generateTokens(admin *domain.Employee) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		admin.ID, admin.FullName(), admin.UserLevel,
		s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	refreshToken, err := jwt.GenerateRefreshToken(
		admin.ID, tokenID,
		s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	expiresAt := jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays)
	if err := s.refreshTokenRepo.Create(admin.ID, passcode.HashToken(refreshToken), expiresAt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
