package progression

import (
	"time"

	"github.com/enigmahunt/enigmahunt/internal/model"
)

// StatusQuery asks where a player stands on one enigma
type StatusQuery struct {
	EventID    model.EventID
	PhaseOrder int
	EnigmaID   model.EnigmaID
}

// Status describes hint availability and throttling for one enigma
type Status struct {
	// HintVisible is true when the hint for the phase was already bought
	HintVisible bool
	// CanBuyHint is true when the phase is hint-eligible and the hint
	// has not been bought yet
	CanBuyHint bool
	// Blocked is true while the player's cooldown for this enigma is
	// still running
	Blocked       bool
	CooldownUntil *time.Time
}

// HintPurchase requests buying the hint of the enigma's phase
type HintPurchase struct {
	EventID    model.EventID
	PhaseOrder int
	EnigmaID   model.EnigmaID
}

// Hint is the payload returned for a purchased hint
type Hint struct {
	Type string
	Data string
}

// CodeSubmission is an answer attempt for one enigma
type CodeSubmission struct {
	EventID    model.EventID
	PhaseOrder int
	EnigmaID   model.EnigmaID
	Code       string
}

// NextStepType tells the client what follows a correct submission
type NextStepType string

const (
	NextStepNextEnigma    NextStepType = "next_enigma"
	NextStepPhaseComplete NextStepType = "phase_complete"
	NextStepEventComplete NextStepType = "event_complete"
)

// NextStep carries the client's next destination after a correct answer.
// Enigma is set only for NextStepNextEnigma.
type NextStep struct {
	Type   NextStepType
	Enigma *model.Enigma
}

// SubmitResult is the outcome of a code submission. Wrong codes and
// active cooldowns are ordinary results with Success false, not errors.
type SubmitResult struct {
	Success bool
	Message string

	// CooldownUntil is set when the submission was rejected by an
	// active or freshly started cooldown
	CooldownUntil *time.Time

	// RemainingAttempts is set after a wrong code that did not start
	// a cooldown
	RemainingAttempts int

	// NextStep is set on success
	NextStep *NextStep
}
