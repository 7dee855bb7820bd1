package model

import "time"

// AttemptRecord tracks consecutive wrong submissions for one
// (player, enigma) pair. Deleted when the player submits the right code.
type AttemptRecord struct {
	PlayerID PlayerID
	EnigmaID EnigmaID

	// Attempts counts wrong submissions since the last success or cooldown
	Attempts int

	// CooldownUntil, when set and in the future, rejects all submissions
	// for this enigma without consuming an attempt
	CooldownUntil *time.Time
}

// Blocked reports whether the record's cooldown is active at the given time
func (a *AttemptRecord) Blocked(now time.Time) bool {
	return a != nil && a.CooldownUntil != nil && a.CooldownUntil.After(now)
}
