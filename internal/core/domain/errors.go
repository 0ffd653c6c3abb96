package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Kiosk validation errors (surfaced immediately, nothing is stored)
var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrLocationRequired = errors.New("location is required")
	ErrInvalidPasscode  = errors.New("invalid passcode")
	ErrAlreadyClockedIn = errors.New("already clocked in")
	ErrNotClockedIn     = errors.New("not clocked in")
	ErrInvalidAction    = errors.New("invalid clock action")
)

// Upstream errors. Transport failures are transient and retried on the
// next sync tick; decode failures discard the payload.
var (
	ErrUpstreamUnavailable = errors.New("upstream server unreachable")
	ErrUpstreamDecode      = errors.New("malformed upstream payload")
	ErrUpstreamRejected    = errors.New("upstream rejected request")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)
