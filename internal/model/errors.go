package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Catalog errors
	ErrEventNotFound      = errors.New("event not found")
	ErrPhaseNotFound      = errors.New("phase not found")
	ErrEnigmaNotFound     = errors.New("enigma not found")
	ErrInvalidEventStatus = errors.New("invalid event status")

	// Submission errors
	ErrEventNotOpen    = errors.New("event is not open")
	ErrCodeRequired    = errors.New("code is required")
	ErrPhaseNotCurrent = errors.New("submission is not for the player's current phase")

	// Hint errors
	ErrHintNotForPhase      = errors.New("hints unavailable for this phase")
	ErrInsufficientBalance  = errors.New("insufficient balance to buy hint")
	ErrHintAlreadyPurchased = errors.New("hint already purchased for this phase")
	ErrHintNotAvailable     = errors.New("no hint available for this enigma")

	// Attempt errors
	ErrAttemptNotFound = errors.New("attempt record not found")

	// Storage errors
	ErrTxConflict = errors.New("transaction aborted after repeated conflicts")
)
