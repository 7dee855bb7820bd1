package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/services/progression"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

// Notification is one push message delivered to a set of devices
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a notification to device tokens in a single fan-out
// call. Implementations talk to the external push provider.
type Sender interface {
	Send(ctx context.Context, tokens []string, n Notification) error
}

// Service is the completion notifier: after an event is won it tells
// every other participant who the winner is. Best-effort only; it runs
// after the winning transaction has committed and never fails the
// submission that triggered it.
type Service struct {
	storage storage.Storage
	sender  Sender
	logger  *slog.Logger
}

// New creates a new notify Service
func New(storage storage.Storage, sender Sender, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		sender:  sender,
		logger:  logger,
	}
}

// Ensure Service satisfies the engine's notifier contract
var _ progression.Notifier = (*Service)(nil)

// EventCompleted notifies every participant of the event except the
// winner. Players without a registered device are skipped; having no
// recipients at all is a no-op.
func (s *Service) EventCompleted(ctx context.Context, eventID model.EventID, eventName string, winnerID model.PlayerID, winnerName string) {
	playerIDs, err := s.storage.ListEventPlayers(ctx, eventID)
	if err != nil {
		s.logger.Error("failed to list event participants",
			slog.String("event_id", string(eventID)),
			slog.String("error", err.Error()),
		)
		return
	}

	var tokens []string
	for _, id := range playerIDs {
		if id == winnerID {
			continue
		}
		player, err := s.storage.GetPlayer(ctx, id)
		if err != nil {
			continue
		}
		if player.PushToken != "" {
			tokens = append(tokens, player.PushToken)
		}
	}

	if len(tokens) == 0 {
		return
	}

	n := Notification{
		Title: fmt.Sprintf("The event %q has ended!", eventName),
		Body:  fmt.Sprintf("%s is the big winner! Check the ranking.", winnerName),
		Data: map[string]string{
			"type":     "event_finished",
			"event_id": string(eventID),
		},
	}

	if err := s.sender.Send(ctx, tokens, n); err != nil {
		s.logger.Error("failed to send completion notifications",
			slog.String("event_id", string(eventID)),
			slog.Int("tokens", len(tokens)),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("completion notifications sent",
		slog.String("event_id", string(eventID)),
		slog.String("winner_id", string(winnerID)),
		slog.Int("tokens", len(tokens)),
	)
}
