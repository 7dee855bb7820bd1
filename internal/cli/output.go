package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case []Event:
		o.printEvents(v)
	case EventDetail:
		o.printEventDetail(v)
	case EnigmaStatus:
		o.printEnigmaStatus(v)
	case Hint:
		o.printHint(v)
	case SubmitResult:
		o.printSubmitResult(v)
	case []RankingEntry:
		o.printRanking(v)
	case []EventSummary:
		o.printDashboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Balance     int64  `json:"balance"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
	SessionToken string `json:"session_token"`
}

// Event response type
type Event struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	WinnerID   string     `json:"winner_id,omitempty"`
	WinnerName string     `json:"winner_name,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Enigma response type
type Enigma struct {
	ID      string `json:"id"`
	HasHint bool   `json:"has_hint"`
	Code    string `json:"code,omitempty"`
}

// Phase response type
type Phase struct {
	ID      string   `json:"id"`
	Order   int      `json:"order"`
	Enigmas []Enigma `json:"enigmas"`
}

// EventDetail response type
type EventDetail struct {
	Event  Event   `json:"event"`
	Phases []Phase `json:"phases"`
}

// EnigmaStatus response type
type EnigmaStatus struct {
	HintVisible   bool       `json:"hint_visible"`
	CanBuyHint    bool       `json:"can_buy_hint"`
	Blocked       bool       `json:"blocked"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}

// Hint response type
type Hint struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// NextStep response type
type NextStep struct {
	Type   string  `json:"type"`
	Enigma *Enigma `json:"enigma,omitempty"`
}

// SubmitResult response type
type SubmitResult struct {
	Success           bool       `json:"success"`
	Message           string     `json:"message,omitempty"`
	CooldownUntil     *time.Time `json:"cooldown_until,omitempty"`
	RemainingAttempts int        `json:"remaining_attempts,omitempty"`
	NextStep          *NextStep  `json:"next_step,omitempty"`
}

// RankingEntry response type
type RankingEntry struct {
	PlayerID        string  `json:"player_id"`
	Name            string  `json:"name"`
	PhasesCompleted int     `json:"phases_completed"`
	TotalPhases     int     `json:"total_phases"`
	Fraction        float64 `json:"fraction"`
	Position        int     `json:"position"`
}

// EventSummary response type
type EventSummary struct {
	Event       Event          `json:"event"`
	TotalPhases int            `json:"total_phases"`
	PlayerCount int            `json:"player_count"`
	Top         []RankingEntry `json:"top"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Balance: %d\n", p.Balance)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	if a.IsAdmin {
		fmt.Println("Admin: yes")
	}
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printEvent(e Event) {
	fmt.Printf("Event: %s (%s)\n", e.Name, e.ID)
	fmt.Printf("Status: %s\n", e.Status)
	if e.WinnerName != "" {
		fmt.Printf("Winner: %s (%s)\n", e.WinnerName, e.WinnerID)
	}
	if e.FinishedAt != nil {
		fmt.Printf("Finished: %s\n", e.FinishedAt.Format(time.RFC3339))
	}
}

func (o *Output) printEvents(events []Event) {
	if len(events) == 0 {
		fmt.Println("No events")
		return
	}
	for i, e := range events {
		if i > 0 {
			fmt.Println()
		}
		o.printEvent(e)
	}
}

func (o *Output) printEventDetail(d EventDetail) {
	o.printEvent(d.Event)
	fmt.Printf("Phases (%d):\n", len(d.Phases))
	for _, p := range d.Phases {
		fmt.Printf("  %s (order %d, %d enigma(s))\n", p.ID, p.Order, len(p.Enigmas))
		for _, e := range p.Enigmas {
			hintStr := ""
			if e.HasHint {
				hintStr = " [hint]"
			}
			fmt.Printf("    - %s%s\n", e.ID, hintStr)
		}
	}
}

func (o *Output) printEnigmaStatus(s EnigmaStatus) {
	fmt.Printf("Hint visible: %t\n", s.HintVisible)
	fmt.Printf("Can buy hint: %t\n", s.CanBuyHint)
	fmt.Printf("Blocked: %t\n", s.Blocked)
	if s.CooldownUntil != nil {
		fmt.Printf("Cooldown until: %s\n", s.CooldownUntil.Format(time.RFC3339))
	}
}

func (o *Output) printHint(h Hint) {
	fmt.Printf("Hint (%s): %s\n", h.Type, h.Data)
}

func (o *Output) printSubmitResult(r SubmitResult) {
	if r.Success {
		fmt.Println("Correct!")
		if r.NextStep != nil {
			switch r.NextStep.Type {
			case "next_enigma":
				if r.NextStep.Enigma != nil {
					fmt.Printf("Next enigma: %s\n", r.NextStep.Enigma.ID)
				}
			case "phase_complete":
				fmt.Println("Phase complete! On to the next phase.")
			case "event_complete":
				fmt.Println("Event complete! You won the race.")
			}
		}
		return
	}

	if r.Message != "" {
		fmt.Println(r.Message)
	}
	if r.CooldownUntil != nil {
		fmt.Printf("Cooldown until: %s\n", r.CooldownUntil.Format(time.RFC3339))
	}
	if r.RemainingAttempts > 0 {
		fmt.Printf("Remaining attempts: %d\n", r.RemainingAttempts)
	}
}

func (o *Output) printRanking(entries []RankingEntry) {
	if len(entries) == 0 {
		fmt.Println("No ranking yet")
		return
	}
	for _, e := range entries {
		fmt.Printf("%3d. %s - %d/%d phases\n", e.Position, e.Name, e.PhasesCompleted, e.TotalPhases)
	}
}

func (o *Output) printDashboard(summaries []EventSummary) {
	if len(summaries) == 0 {
		fmt.Println("No events")
		return
	}
	for i, s := range summaries {
		if i > 0 {
			fmt.Println()
		}
		o.printEvent(s.Event)
		fmt.Printf("Phases: %d, Players: %d\n", s.TotalPhases, s.PlayerCount)
		if len(s.Top) > 0 {
			fmt.Println("Top:")
			for _, e := range s.Top {
				fmt.Printf("  %d. %s - %d/%d phases\n", e.Position, e.Name, e.PhasesCompleted, e.TotalPhases)
			}
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
