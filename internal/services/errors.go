package services

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrInvalidToken = errors.New("invalid token")
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized wraps every failure to resolve a bearer token to a user.
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidDuration     = errors.New("invalid staking duration")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient TFT balance")

	ErrRiskLimitExceeded = errors.New("order exceeds 5% of balance limit")
	ErrMissingProtection = errors.New("stop loss and take profit are mandatory")
)
