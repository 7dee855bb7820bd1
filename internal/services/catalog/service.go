package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/enigmahunt/enigmahunt/internal/dependencies/clock"
	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

// Service is the reference catalog accessor: read access to events,
// phases, and enigmas for the rest of the system, plus the admin-side
// authoring and status mutations.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new catalog Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// PhaseDetail is a phase with its ordered enigmas
type PhaseDetail struct {
	Phase   *model.Phase
	Enigmas []*model.Enigma
}

// EventDetail is an event with its full phase/enigma tree
type EventDetail struct {
	Event  *model.Event
	Phases []PhaseDetail
}

// GetEvent retrieves a single event
func (s *Service) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	return s.storage.GetEvent(ctx, id)
}

// ListEvents returns all events
func (s *Service) ListEvents(ctx context.Context) ([]*model.Event, error) {
	return s.storage.ListEvents(ctx)
}

// GetEventDetail returns an event with phases ordered by their order
// field and enigmas ordered by identity
func (s *Service) GetEventDetail(ctx context.Context, id model.EventID) (*EventDetail, error) {
	event, err := s.storage.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	phases, err := s.storage.ListPhases(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &EventDetail{
		Event:  event,
		Phases: make([]PhaseDetail, 0, len(phases)),
	}

	for _, phase := range phases {
		enigmas, err := s.storage.ListEnigmas(ctx, id, phase.Order)
		if err != nil {
			return nil, err
		}
		detail.Phases = append(detail.Phases, PhaseDetail{
			Phase:   phase,
			Enigmas: enigmas,
		})
	}

	return detail, nil
}

// GetEnigma retrieves one enigma by its coordinate
func (s *Service) GetEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigmaID model.EnigmaID) (*model.Enigma, error) {
	return s.storage.GetEnigma(ctx, eventID, phaseOrder, enigmaID)
}

// CreateEvent creates an event in dev status. An empty id is replaced
// with a generated one.
func (s *Service) CreateEvent(ctx context.Context, id model.EventID, name string) (*model.Event, error) {
	if id == "" {
		id = model.EventID(uuid.NewString())
	}

	event := &model.Event{
		ID:        id,
		Name:      name,
		Status:    model.EventStatusDev,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.SaveEvent(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		slog.String("event_id", string(event.ID)),
		slog.String("name", event.Name),
	)

	return event, nil
}

// SetEventStatus changes an event's lifecycle status.
// It never touches the winner fields; those are written only by the
// progression engine's finishing transaction.
func (s *Service) SetEventStatus(ctx context.Context, id model.EventID, status model.EventStatus) error {
	if !model.ValidEventStatus(status) {
		return model.ErrInvalidEventStatus
	}

	event, err := s.storage.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	event.Status = status
	if err := s.storage.SaveEvent(ctx, event); err != nil {
		return err
	}

	s.logger.Info("event status changed",
		slog.String("event_id", string(id)),
		slog.String("status", string(status)),
	)

	return nil
}

// AddPhase appends a phase with the given 1-based order to an event
func (s *Service) AddPhase(ctx context.Context, eventID model.EventID, order int) (*model.Phase, error) {
	if _, err := s.storage.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	phase := &model.Phase{
		ID:    model.PhaseIDForOrder(order),
		Order: order,
	}

	if err := s.storage.SavePhase(ctx, eventID, phase); err != nil {
		return nil, err
	}
	return phase, nil
}

// AddEnigma stores an enigma under the given event phase
func (s *Service) AddEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigma *model.Enigma) error {
	if _, err := s.storage.GetEvent(ctx, eventID); err != nil {
		return err
	}

	if enigma.ID == "" {
		enigma.ID = model.EnigmaID(uuid.NewString())
	}

	return s.storage.SaveEnigma(ctx, eventID, phaseOrder, enigma)
}
