package model

import (
	"fmt"
	"strings"
	"time"
)

// EventID uniquely identifies an event
type EventID string

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventStatusOpen   EventStatus = "open"   // accepting submissions
	EventStatusClosed EventStatus = "closed" // finished, winner recorded
	EventStatusDev    EventStatus = "dev"    // hidden while being authored
)

// ValidEventStatus reports whether s is one of the known lifecycle states
func ValidEventStatus(s EventStatus) bool {
	switch s {
	case EventStatusOpen, EventStatusClosed, EventStatusDev:
		return true
	}
	return false
}

// Event is a timed competition with ordered phases.
// Status transitions open -> closed exactly once, performed by the same
// transaction that records the winner.
type Event struct {
	ID     EventID
	Name   string
	Status EventStatus

	// Winner fields are set when the first player finishes the event
	WinnerID   PlayerID
	WinnerName string
	FinishedAt *time.Time

	CreatedAt time.Time
}

// IsOpen reports whether the event accepts submissions
func (e *Event) IsOpen() bool {
	return e.Status == EventStatusOpen
}

// PhaseID uniquely identifies a phase within an event
type PhaseID string

// PhaseIDForOrder derives the identity of a phase from its 1-based order
func PhaseIDForOrder(order int) PhaseID {
	return PhaseID(fmt.Sprintf("fase_%d", order))
}

// Phase is an ordered stage of an event containing a sequence of enigmas
type Phase struct {
	ID    PhaseID
	Order int // 1-based position within the event
}

// EnigmaID uniquely identifies an enigma within a phase
type EnigmaID string

// Enigma is a single puzzle with an expected answer code and optional hint
type Enigma struct {
	ID   EnigmaID
	Code string // expected answer, compared case-insensitively

	// Optional purchasable hint
	HintType string
	HintData string
}

// HasHint reports whether the enigma carries purchasable hint data
func (e *Enigma) HasHint() bool {
	return e.HintType != "" && e.HintData != ""
}

// CodeMatches compares a submitted answer against the expected code,
// ignoring case
func (e *Enigma) CodeMatches(submitted string) bool {
	return strings.EqualFold(e.Code, submitted)
}
