package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Scan accounting errors. Every kind is surfaced to the caller verbatim so
	// the presentation layer can render a distinct message per kind.
	ErrNotAuthenticated   = errors.New("no authenticated user session")
	ErrMalformedCode      = errors.New("code payload is malformed")
	ErrBusinessNotFound   = errors.New("business not found")
	ErrDailyLimitExceeded = errors.New("business already scanned today")
	ErrTransactionFailed  = errors.New("scan transaction failed")

	// Rewards
	ErrRewardRedeemed = errors.New("reward already redeemed")
	ErrRewardExpired  = errors.New("reward has expired")

	// Business management
	ErrSettingsLocked    = errors.New("loyalty settings were changed too recently")
	ErrOfferQuotaReached = errors.New("weekly offer quota reached")
	ErrInvalidAPIKey     = errors.New("invalid business api key")
	ErrPlanNotActive     = errors.New("business plan is not active")

	// Dynamic QR codes
	ErrCodeExpired = errors.New("dynamic code has expired")
	ErrCodeUsed    = errors.New("dynamic code already used")
)
