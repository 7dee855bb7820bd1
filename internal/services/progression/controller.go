package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enigmahunt/enigmahunt/internal/dependencies/clock"
	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

const (
	maxAttempts    = 3
	cooldownPeriod = 10 * time.Minute
)

// hintCosts maps phase order to hint price. Phases outside the table
// have no purchasable hint.
var hintCosts = map[int]int64{
	1: 5,
	2: 10,
	3: 15,
}

// Result messages surfaced to the client
const (
	msgCooldownActive    = "Wait for the cooldown to end."
	msgAttemptsExhausted = "No attempts left. Wait 10 minutes."
	msgCorrectCode       = "Correct!"
)

// Notifier announces a finished event to its other participants.
// Delivery is best-effort; implementations log failures and never
// surface them to the submission that triggered the send.
type Notifier interface {
	EventCompleted(ctx context.Context, eventID model.EventID, eventName string, winnerID model.PlayerID, winnerName string)
}

// Controller is the progression engine. It mediates every state
// transition of a player within an event: status queries, hint
// purchases, and answer submissions. All shared-state mutations run
// inside storage transactions; no in-process locks are held.
type Controller struct {
	storage  storage.Storage
	clock    clock.Clock
	notifier Notifier
	logger   *slog.Logger
}

// NewController creates a new progression Controller
func NewController(storage storage.Storage, clock clock.Clock, notifier Notifier, logger *slog.Logger) *Controller {
	return &Controller{
		storage:  storage,
		clock:    clock,
		notifier: notifier,
		logger:   logger,
	}
}

// Status reports hint availability and cooldown state for one enigma.
// Read-only; the progress ledger defaults when the player has not
// started the event yet.
func (c *Controller) Status(ctx context.Context, playerID model.PlayerID, q StatusQuery) (*Status, error) {
	progress, err := c.storage.GetProgress(ctx, playerID, q.EventID)
	if err != nil {
		return nil, err
	}

	_, hintEligible := hintCosts[q.PhaseOrder]
	purchased := progress.HasHint(q.PhaseOrder)

	status := &Status{
		HintVisible: purchased,
		CanBuyHint:  hintEligible && !purchased,
	}

	record, err := c.storage.GetAttempt(ctx, playerID, q.EnigmaID)
	if err != nil && !errors.Is(err, model.ErrAttemptNotFound) {
		return nil, err
	}
	if record.Blocked(c.clock.Now()) {
		status.Blocked = true
		status.CooldownUntil = record.CooldownUntil
	}

	return status, nil
}

// PurchaseHint debits the phase's hint cost from the player's balance
// and records the purchase, in one atomic transaction. The hint payload
// is returned from a read outside the transaction: the payload is
// immutable reference data, but its existence is checked inside so the
// player is never charged for a hint that does not exist.
func (c *Controller) PurchaseHint(ctx context.Context, playerID model.PlayerID, req HintPurchase) (*Hint, error) {
	cost, ok := hintCosts[req.PhaseOrder]
	if !ok {
		return nil, model.ErrHintNotForPhase
	}

	err := c.storage.Atomic(ctx, func(tx storage.Txn) error {
		player, err := tx.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if player.Balance < cost {
			return model.ErrInsufficientBalance
		}

		progress, err := tx.GetProgress(ctx, playerID, req.EventID)
		if err != nil {
			return err
		}
		if progress.HasHint(req.PhaseOrder) {
			return model.ErrHintAlreadyPurchased
		}

		enigma, err := tx.GetEnigma(ctx, req.EventID, req.PhaseOrder, req.EnigmaID)
		if err != nil {
			if errors.Is(err, model.ErrEnigmaNotFound) {
				return model.ErrHintNotAvailable
			}
			return err
		}
		if !enigma.HasHint() {
			return model.ErrHintNotAvailable
		}

		player.Balance -= cost
		progress.AddHint(req.PhaseOrder)

		if err := tx.SavePlayer(ctx, player); err != nil {
			return err
		}
		return tx.SaveProgress(ctx, playerID, req.EventID, progress)
	})
	if err != nil {
		return nil, err
	}

	enigma, err := c.storage.GetEnigma(ctx, req.EventID, req.PhaseOrder, req.EnigmaID)
	if err != nil {
		return nil, err
	}

	c.logger.Info("hint purchased",
		slog.String("player_id", string(playerID)),
		slog.String("event_id", string(req.EventID)),
		slog.Int("phase_order", req.PhaseOrder),
		slog.Int64("cost", cost),
	)

	return &Hint{Type: enigma.HintType, Data: enigma.HintData}, nil
}

// SubmitCode validates an answer and, when correct, advances the
// player's progress. Finishing the last enigma of the last phase closes
// the event and settles the winner; the store's transaction isolation
// guarantees a single winner across racing finishers.
func (c *Controller) SubmitCode(ctx context.Context, playerID model.PlayerID, req CodeSubmission) (*SubmitResult, error) {
	event, err := c.storage.GetEvent(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return nil, model.ErrEventNotOpen
		}
		return nil, err
	}
	if !event.IsOpen() {
		return nil, model.ErrEventNotOpen
	}

	if req.Code == "" {
		return nil, model.ErrCodeRequired
	}

	now := c.clock.Now()

	record, err := c.storage.GetAttempt(ctx, playerID, req.EnigmaID)
	if err != nil && !errors.Is(err, model.ErrAttemptNotFound) {
		return nil, err
	}
	if record.Blocked(now) {
		return &SubmitResult{
			Success:       false,
			Message:       msgCooldownActive,
			CooldownUntil: record.CooldownUntil,
		}, nil
	}

	enigma, err := c.storage.GetEnigma(ctx, req.EventID, req.PhaseOrder, req.EnigmaID)
	if err != nil {
		return nil, err
	}

	if !enigma.CodeMatches(req.Code) {
		return c.recordMiss(ctx, playerID, req.EnigmaID, record, now)
	}

	// Correct answer resets throttling; cleanup is best-effort
	if err := c.storage.DeleteAttempt(ctx, playerID, req.EnigmaID); err != nil {
		c.logger.Warn("failed to delete attempt record",
			slog.String("player_id", string(playerID)),
			slog.String("enigma_id", string(req.EnigmaID)),
			slog.String("error", err.Error()),
		)
	}

	var (
		nextStep   *NextStep
		finished   bool
		winnerName string
	)

	err = c.storage.Atomic(ctx, func(tx storage.Txn) error {
		// Reset outputs: the store may retry this function
		nextStep = nil
		finished = false

		player, err := tx.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}

		progress, err := tx.GetProgress(ctx, playerID, req.EventID)
		if err != nil {
			return err
		}
		if req.PhaseOrder != progress.CurrentPhase {
			return model.ErrPhaseNotCurrent
		}

		phases, err := tx.ListPhases(ctx, req.EventID)
		if err != nil {
			return err
		}
		enigmas, err := tx.ListEnigmas(ctx, req.EventID, progress.CurrentPhase)
		if err != nil {
			return err
		}

		isLastEnigma := progress.CurrentEnigma >= len(enigmas)
		isLastPhase := progress.CurrentPhase >= len(phases)

		switch {
		case isLastEnigma && isLastPhase:
			// Winner settlement. The event is re-read inside the
			// transaction: only a transaction that still observes an
			// open event may write the closing fields, so racing
			// finishers serialize through the store and exactly one
			// closing write survives.
			current, err := tx.GetEvent(ctx, req.EventID)
			if err != nil {
				return err
			}
			if !current.IsOpen() {
				return model.ErrEventNotOpen
			}

			finishedAt := c.clock.Now()
			current.Status = model.EventStatusClosed
			current.WinnerID = player.ID
			current.WinnerName = player.DisplayName
			current.FinishedAt = &finishedAt
			if err := tx.SaveEvent(ctx, current); err != nil {
				return err
			}

			// The winner's progress advances past the last phase so the
			// ranking reports the event fully completed
			progress.AdvancePhase()
			finished = true
			winnerName = player.DisplayName
			nextStep = &NextStep{Type: NextStepEventComplete}

		case isLastEnigma:
			progress.AdvancePhase()
			nextStep = &NextStep{Type: NextStepPhaseComplete}

		default:
			progress.AdvanceEnigma()
			nextStep = &NextStep{
				Type:   NextStepNextEnigma,
				Enigma: enigmas[progress.CurrentEnigma-1],
			}
		}

		return tx.SaveProgress(ctx, playerID, req.EventID, progress)
	})
	if err != nil {
		return nil, err
	}

	if finished {
		c.logger.Info("event finished",
			slog.String("event_id", string(req.EventID)),
			slog.String("winner_id", string(playerID)),
			slog.String("winner_name", winnerName),
		)
		// Outside the transaction: the closing write has committed,
		// delivery failures must not fail this submission
		c.notifier.EventCompleted(ctx, req.EventID, event.Name, playerID, winnerName)
	}

	return &SubmitResult{
		Success:  true,
		Message:  msgCorrectCode,
		NextStep: nextStep,
	}, nil
}

// recordMiss persists a wrong submission and starts a cooldown when the
// player runs out of attempts. Attempt updates are single-document
// writes; a racing device may cost the player at worst one extra
// attempt, never currency or progress.
func (c *Controller) recordMiss(ctx context.Context, playerID model.PlayerID, enigmaID model.EnigmaID, record *model.AttemptRecord, now time.Time) (*SubmitResult, error) {
	// An expired cooldown grants a fresh set of attempts
	attempts := 1
	if record != nil && record.CooldownUntil == nil {
		attempts = record.Attempts + 1
	}

	updated := &model.AttemptRecord{
		PlayerID: playerID,
		EnigmaID: enigmaID,
		Attempts: attempts,
	}

	if attempts >= maxAttempts {
		until := now.Add(cooldownPeriod)
		updated.CooldownUntil = &until

		if err := c.storage.SaveAttempt(ctx, updated); err != nil {
			return nil, err
		}

		c.logger.Info("cooldown started",
			slog.String("player_id", string(playerID)),
			slog.String("enigma_id", string(enigmaID)),
			slog.Time("cooldown_until", until),
		)

		return &SubmitResult{
			Success:       false,
			Message:       msgAttemptsExhausted,
			CooldownUntil: &until,
		}, nil
	}

	if err := c.storage.SaveAttempt(ctx, updated); err != nil {
		return nil, err
	}

	remaining := maxAttempts - attempts
	return &SubmitResult{
		Success:           false,
		Message:           fmt.Sprintf("Wrong code. You have %d attempt(s) left.", remaining),
		RemainingAttempts: remaining,
	}, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	Status(ctx context.Context, playerID model.PlayerID, q StatusQuery) (*Status, error)
	PurchaseHint(ctx context.Context, playerID model.PlayerID, req HintPurchase) (*Hint, error)
	SubmitCode(ctx context.Context, playerID model.PlayerID, req CodeSubmission) (*SubmitResult, error)
}

var _ ControllerInterface = (*Controller)(nil)
