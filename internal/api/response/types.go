package response

import (
	"time"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/services/auth"
	"github.com/enigmahunt/enigmahunt/internal/services/catalog"
	"github.com/enigmahunt/enigmahunt/internal/services/progression"
	"github.com/enigmahunt/enigmahunt/internal/services/ranking"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Balance     int64  `json:"balance"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Balance:     p.Balance,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		IsAdmin:      s.IsAdmin,
		SessionToken: s.Token,
	}
}

// Event represents an event in API responses
type Event struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	WinnerID   string     `json:"winner_id,omitempty"`
	WinnerName string     `json:"winner_name,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// EventFromModel converts model.Event
func EventFromModel(e *model.Event) Event {
	return Event{
		ID:         string(e.ID),
		Name:       e.Name,
		Status:     string(e.Status),
		WinnerID:   string(e.WinnerID),
		WinnerName: e.WinnerName,
		FinishedAt: e.FinishedAt,
	}
}

// Enigma represents an enigma in API responses. The answer code is
// only exposed on admin surfaces.
type Enigma struct {
	ID      string `json:"id"`
	HasHint bool   `json:"has_hint"`
	Code    string `json:"code,omitempty"`
}

// EnigmaFromModel converts model.Enigma, hiding its answer code
func EnigmaFromModel(e *model.Enigma) Enigma {
	return Enigma{
		ID:      string(e.ID),
		HasHint: e.HasHint(),
	}
}

// Phase represents a phase with its enigmas
type Phase struct {
	ID      string   `json:"id"`
	Order   int      `json:"order"`
	Enigmas []Enigma `json:"enigmas"`
}

// EventDetail is an event with its phase tree
type EventDetail struct {
	Event  Event   `json:"event"`
	Phases []Phase `json:"phases"`
}

// EventDetailFromCatalog converts catalog.EventDetail
func EventDetailFromCatalog(d *catalog.EventDetail) EventDetail {
	phases := make([]Phase, len(d.Phases))
	for i, p := range d.Phases {
		enigmas := make([]Enigma, len(p.Enigmas))
		for j, e := range p.Enigmas {
			enigmas[j] = EnigmaFromModel(e)
		}
		phases[i] = Phase{
			ID:      string(p.Phase.ID),
			Order:   p.Phase.Order,
			Enigmas: enigmas,
		}
	}
	return EventDetail{
		Event:  EventFromModel(d.Event),
		Phases: phases,
	}
}

// EnigmaStatus is the response for the getStatus action
type EnigmaStatus struct {
	HintVisible   bool       `json:"hint_visible"`
	CanBuyHint    bool       `json:"can_buy_hint"`
	Blocked       bool       `json:"blocked"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}

// EnigmaStatusFromResult converts progression.Status
func EnigmaStatusFromResult(s *progression.Status) EnigmaStatus {
	return EnigmaStatus{
		HintVisible:   s.HintVisible,
		CanBuyHint:    s.CanBuyHint,
		Blocked:       s.Blocked,
		CooldownUntil: s.CooldownUntil,
	}
}

// Hint is the response for the purchaseHint action
type Hint struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// HintFromResult converts progression.Hint
func HintFromResult(h *progression.Hint) Hint {
	return Hint{Type: h.Type, Data: h.Data}
}

// NextStep tells the client where to go after a correct answer
type NextStep struct {
	Type   string  `json:"type"`
	Enigma *Enigma `json:"enigma,omitempty"`
}

// SubmitResult is the response for the validateCode action
type SubmitResult struct {
	Success           bool       `json:"success"`
	Message           string     `json:"message,omitempty"`
	CooldownUntil     *time.Time `json:"cooldown_until,omitempty"`
	RemainingAttempts int        `json:"remaining_attempts,omitempty"`
	NextStep          *NextStep  `json:"next_step,omitempty"`
}

// SubmitResultFromResult converts progression.SubmitResult
func SubmitResultFromResult(r *progression.SubmitResult) SubmitResult {
	resp := SubmitResult{
		Success:           r.Success,
		Message:           r.Message,
		CooldownUntil:     r.CooldownUntil,
		RemainingAttempts: r.RemainingAttempts,
	}
	if r.NextStep != nil {
		step := &NextStep{Type: string(r.NextStep.Type)}
		if r.NextStep.Enigma != nil {
			e := EnigmaFromModel(r.NextStep.Enigma)
			step.Enigma = &e
		}
		resp.NextStep = step
	}
	return resp
}

// RankingEntry is one player's position in an event ranking
type RankingEntry struct {
	PlayerID        string  `json:"player_id"`
	Name            string  `json:"name"`
	PhasesCompleted int     `json:"phases_completed"`
	TotalPhases     int     `json:"total_phases"`
	Fraction        float64 `json:"fraction"`
	Position        int     `json:"position"`
}

// RankingFromEntries converts ranking entries
func RankingFromEntries(entries []ranking.Entry) []RankingEntry {
	out := make([]RankingEntry, len(entries))
	for i, e := range entries {
		out[i] = RankingEntry{
			PlayerID:        string(e.PlayerID),
			Name:            e.Name,
			PhasesCompleted: e.PhasesCompleted,
			TotalPhases:     e.TotalPhases,
			Fraction:        e.Fraction(),
			Position:        e.Position,
		}
	}
	return out
}

// EventSummary is one event's dashboard line
type EventSummary struct {
	Event       Event          `json:"event"`
	TotalPhases int            `json:"total_phases"`
	PlayerCount int            `json:"player_count"`
	Top         []RankingEntry `json:"top"`
}

// DashboardFromSummaries converts ranking dashboard summaries
func DashboardFromSummaries(summaries []ranking.EventSummary) []EventSummary {
	out := make([]EventSummary, len(summaries))
	for i, s := range summaries {
		out[i] = EventSummary{
			Event:       EventFromModel(s.Event),
			TotalPhases: s.TotalPhases,
			PlayerCount: s.PlayerCount,
			Top:         RankingFromEntries(s.Top),
		}
	}
	return out
}
