package model

// EventProgress tracks one player's position within one event.
// Addressed directly by (player, event); created lazily with default
// values the first time the ledger is read.
//
// Invariants: CurrentPhase never decreases; CurrentEnigma resets to 1
// whenever CurrentPhase increases.
type EventProgress struct {
	CurrentPhase  int // 1-based
	CurrentEnigma int // 1-based within the current phase

	// HintsPurchased holds the phase orders the player bought hints for,
	// with set semantics
	HintsPurchased []int
}

// NewEventProgress returns the initial "no progress yet" state
func NewEventProgress() *EventProgress {
	return &EventProgress{
		CurrentPhase:  1,
		CurrentEnigma: 1,
	}
}

// HasHint reports whether the hint for the given phase was already bought
func (p *EventProgress) HasHint(phaseOrder int) bool {
	for _, po := range p.HintsPurchased {
		if po == phaseOrder {
			return true
		}
	}
	return false
}

// AddHint records a hint purchase for the given phase.
// Adding a phase that is already present is a no-op.
func (p *EventProgress) AddHint(phaseOrder int) {
	if p.HasHint(phaseOrder) {
		return
	}
	p.HintsPurchased = append(p.HintsPurchased, phaseOrder)
}

// AdvanceEnigma moves the player to the next enigma in the current phase
func (p *EventProgress) AdvanceEnigma() {
	p.CurrentEnigma++
}

// AdvancePhase moves the player to the first enigma of the next phase
func (p *EventProgress) AdvancePhase() {
	p.CurrentPhase++
	p.CurrentEnigma = 1
}

// PhasesCompleted returns the number of fully completed phases
func (p *EventProgress) PhasesCompleted() int {
	if p.CurrentPhase < 1 {
		return 0
	}
	return p.CurrentPhase - 1
}
