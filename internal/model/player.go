package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents an event participant
type Player struct {
	ID          PlayerID
	DisplayName string

	// Balance is the player's in-game currency. Never negative; debited
	// only inside store transactions.
	Balance int64

	// PushToken is the device token completion notifications are sent to.
	// Empty for players who never registered a device.
	PushToken string

	CreatedAt time.Time
}

// RegisteredPlayer extends Player with authentication data
// Stored separately for security (password never in memory with session)
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
