package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Reads return copies so callers can mutate results freely; state only
// changes through Save/Delete calls or a committed transaction.
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	events            map[model.EventID]*model.Event
	phases            map[model.EventID]map[model.PhaseID]*model.Phase
	enigmas           map[enigmaScope]map[model.EnigmaID]*model.Enigma
	progress          map[progressKey]*model.EventProgress
	attempts          map[attemptKey]*model.AttemptRecord
}

type enigmaScope struct {
	eventID model.EventID
	phaseID model.PhaseID
}

type progressKey struct {
	playerID model.PlayerID
	eventID  model.EventID
}

type attemptKey struct {
	playerID model.PlayerID
	enigmaID model.EnigmaID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		events:            make(map[model.EventID]*model.Event),
		phases:            make(map[model.EventID]map[model.PhaseID]*model.Phase),
		enigmas:           make(map[enigmaScope]map[model.EnigmaID]*model.Enigma),
		progress:          make(map[progressKey]*model.EventProgress),
		attempts:          make(map[attemptKey]*model.AttemptRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = copyPlayer(player)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPlayerLocked(id)
}

func (s *Storage) getPlayerLocked(id model.PlayerID) (*model.Player, error) {
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, copyPlayer(p))
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].ID < players[j].ID
	})
	return players, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *rp
	s.registeredPlayers[rp.PlayerID] = &c
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	c := *rp
	return &c, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	c := *rp
	return &c, nil
}

// Catalog operations

func (s *Storage) SaveEvent(ctx context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = copyEvent(event)
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEventLocked(id)
}

func (s *Storage) getEventLocked(id model.EventID) (*model.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	return copyEvent(event), nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*model.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, copyEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (s *Storage) SavePhase(ctx context.Context, eventID model.EventID, phase *model.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phases[eventID] == nil {
		s.phases[eventID] = make(map[model.PhaseID]*model.Phase)
	}
	c := *phase
	s.phases[eventID][phase.ID] = &c
	return nil
}

func (s *Storage) ListPhases(ctx context.Context, eventID model.EventID) ([]*model.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPhasesLocked(eventID)
}

func (s *Storage) listPhasesLocked(eventID model.EventID) ([]*model.Phase, error) {
	phases := make([]*model.Phase, 0, len(s.phases[eventID]))
	for _, p := range s.phases[eventID] {
		c := *p
		phases = append(phases, &c)
	}
	sort.Slice(phases, func(i, j int) bool {
		return phases[i].Order < phases[j].Order
	})
	return phases, nil
}

func (s *Storage) SaveEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigma *model.Enigma) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scope := enigmaScope{eventID, model.PhaseIDForOrder(phaseOrder)}
	if s.enigmas[scope] == nil {
		s.enigmas[scope] = make(map[model.EnigmaID]*model.Enigma)
	}
	c := *enigma
	s.enigmas[scope][enigma.ID] = &c
	return nil
}

func (s *Storage) ListEnigmas(ctx context.Context, eventID model.EventID, phaseOrder int) ([]*model.Enigma, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEnigmasLocked(eventID, phaseOrder)
}

func (s *Storage) listEnigmasLocked(eventID model.EventID, phaseOrder int) ([]*model.Enigma, error) {
	scope := enigmaScope{eventID, model.PhaseIDForOrder(phaseOrder)}
	enigmas := make([]*model.Enigma, 0, len(s.enigmas[scope]))
	for _, e := range s.enigmas[scope] {
		c := *e
		enigmas = append(enigmas, &c)
	}
	// Stable ordering by identity
	sort.Slice(enigmas, func(i, j int) bool {
		return enigmas[i].ID < enigmas[j].ID
	})
	return enigmas, nil
}

func (s *Storage) GetEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigmaID model.EnigmaID) (*model.Enigma, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEnigmaLocked(eventID, phaseOrder, enigmaID)
}

func (s *Storage) getEnigmaLocked(eventID model.EventID, phaseOrder int, enigmaID model.EnigmaID) (*model.Enigma, error) {
	scope := enigmaScope{eventID, model.PhaseIDForOrder(phaseOrder)}
	enigma, ok := s.enigmas[scope][enigmaID]
	if !ok {
		return nil, model.ErrEnigmaNotFound
	}
	c := *enigma
	return &c, nil
}

// Progress ledger operations

func (s *Storage) GetProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID) (*model.EventProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getProgressLocked(playerID, eventID)
}

func (s *Storage) getProgressLocked(playerID model.PlayerID, eventID model.EventID) (*model.EventProgress, error) {
	progress, ok := s.progress[progressKey{playerID, eventID}]
	if !ok {
		return model.NewEventProgress(), nil
	}
	return copyProgress(progress), nil
}

func (s *Storage) SaveProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID, progress *model.EventProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[progressKey{playerID, eventID}] = copyProgress(progress)
	return nil
}

func (s *Storage) ListEventPlayers(ctx context.Context, eventID model.EventID) ([]model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []model.PlayerID
	for key := range s.progress {
		if key.eventID == eventID {
			players = append(players, key.playerID)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })
	return players, nil
}

// Attempt/cooldown operations

func (s *Storage) GetAttempt(ctx context.Context, playerID model.PlayerID, enigmaID model.EnigmaID) (*model.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.attempts[attemptKey{playerID, enigmaID}]
	if !ok {
		return nil, model.ErrAttemptNotFound
	}
	c := *record
	return &c, nil
}

func (s *Storage) SaveAttempt(ctx context.Context, record *model.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *record
	s.attempts[attemptKey{record.PlayerID, record.EnigmaID}] = &c
	return nil
}

func (s *Storage) DeleteAttempt(ctx context.Context, playerID model.PlayerID, enigmaID model.EnigmaID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptKey{playerID, enigmaID})
	return nil
}

// Atomic serializes transactions behind the storage mutex. Holding the
// write lock for the whole function gives the same observable behavior as
// the optimistic store: a consistent read set and an all-or-nothing write
// set, with no interleaving between transactions.
func (s *Storage) Atomic(ctx context.Context, fn func(tx storage.Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &txn{storage: s}
	if err := fn(t); err != nil {
		return err
	}

	t.apply()
	return nil
}

// Copy helpers

func copyPlayer(p *model.Player) *model.Player {
	c := *p
	return &c
}

func copyEvent(e *model.Event) *model.Event {
	c := *e
	if e.FinishedAt != nil {
		at := *e.FinishedAt
		c.FinishedAt = &at
	}
	return &c
}

func copyProgress(p *model.EventProgress) *model.EventProgress {
	c := *p
	c.HintsPurchased = append([]int(nil), p.HintsPurchased...)
	return &c
}
