package ranking

import (
	"context"
	"log/slog"
	"sort"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

// How many entries the dashboard shows per event
const dashboardTopN = 5

// Service computes read-only ranking and dashboard aggregations over
// the same data the progression engine mutates
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new ranking Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Entry is one player's position in an event ranking
type Entry struct {
	PlayerID        model.PlayerID
	Name            string
	PhasesCompleted int
	TotalPhases     int
	Position        int
}

// Fraction returns the completed share of the event, in [0, 1]
func (e Entry) Fraction() float64 {
	if e.TotalPhases == 0 {
		return 0
	}
	return float64(e.PhasesCompleted) / float64(e.TotalPhases)
}

// EventRanking ranks every participating player by completed phases.
// An event with no phases has no ranking.
func (s *Service) EventRanking(ctx context.Context, eventID model.EventID) ([]Entry, error) {
	phases, err := s.storage.ListPhases(ctx, eventID)
	if err != nil {
		return nil, err
	}
	totalPhases := len(phases)
	if totalPhases == 0 {
		return []Entry{}, nil
	}

	playerIDs, err := s.storage.ListEventPlayers(ctx, eventID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(playerIDs))
	for _, id := range playerIDs {
		player, err := s.storage.GetPlayer(ctx, id)
		if err != nil {
			// Progress can outlive a deleted player record
			continue
		}

		progress, err := s.storage.GetProgress(ctx, id, eventID)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			PlayerID:        id,
			Name:            player.DisplayName,
			PhasesCompleted: progress.PhasesCompleted(),
			TotalPhases:     totalPhases,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PhasesCompleted > entries[j].PhasesCompleted
	})

	for i := range entries {
		entries[i].Position = i + 1
	}

	return entries, nil
}

// EventSummary is one event's dashboard line
type EventSummary struct {
	Event       *model.Event
	TotalPhases int
	PlayerCount int
	Top         []Entry
}

// Dashboard aggregates every event with its participation numbers and
// top-ranked players, for the admin panel
func (s *Service) Dashboard(ctx context.Context) ([]EventSummary, error) {
	events, err := s.storage.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]EventSummary, 0, len(events))
	for _, event := range events {
		phases, err := s.storage.ListPhases(ctx, event.ID)
		if err != nil {
			return nil, err
		}

		playerIDs, err := s.storage.ListEventPlayers(ctx, event.ID)
		if err != nil {
			return nil, err
		}

		entries, err := s.EventRanking(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		if len(entries) > dashboardTopN {
			entries = entries[:dashboardTopN]
		}

		summaries = append(summaries, EventSummary{
			Event:       event,
			TotalPhases: len(phases),
			PlayerCount: len(playerIDs),
			Top:         entries,
		})
	}

	return summaries, nil
}
