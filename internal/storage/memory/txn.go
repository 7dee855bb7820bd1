package memory

import (
	"context"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

// txn implements storage.Txn against the locked in-memory maps.
// Reads go straight to the maps (the caller holds the write lock);
// writes are buffered and applied only when the transaction commits.
type txn struct {
	storage *Storage

	players  map[model.PlayerID]*model.Player
	events   map[model.EventID]*model.Event
	progress map[progressKey]*model.EventProgress
}

var _ storage.Txn = (*txn)(nil)

// Reads. Writes buffered earlier in the same transaction are visible.

func (t *txn) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if p, ok := t.players[id]; ok {
		return copyPlayer(p), nil
	}
	return t.storage.getPlayerLocked(id)
}

func (t *txn) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	if e, ok := t.events[id]; ok {
		return copyEvent(e), nil
	}
	return t.storage.getEventLocked(id)
}

func (t *txn) GetProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID) (*model.EventProgress, error) {
	if p, ok := t.progress[progressKey{playerID, eventID}]; ok {
		return copyProgress(p), nil
	}
	return t.storage.getProgressLocked(playerID, eventID)
}

func (t *txn) ListPhases(ctx context.Context, eventID model.EventID) ([]*model.Phase, error) {
	return t.storage.listPhasesLocked(eventID)
}

func (t *txn) ListEnigmas(ctx context.Context, eventID model.EventID, phaseOrder int) ([]*model.Enigma, error) {
	return t.storage.listEnigmasLocked(eventID, phaseOrder)
}

func (t *txn) GetEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigmaID model.EnigmaID) (*model.Enigma, error) {
	return t.storage.getEnigmaLocked(eventID, phaseOrder, enigmaID)
}

// Buffered writes

func (t *txn) SavePlayer(ctx context.Context, player *model.Player) error {
	if t.players == nil {
		t.players = make(map[model.PlayerID]*model.Player)
	}
	t.players[player.ID] = copyPlayer(player)
	return nil
}

func (t *txn) SaveEvent(ctx context.Context, event *model.Event) error {
	if t.events == nil {
		t.events = make(map[model.EventID]*model.Event)
	}
	t.events[event.ID] = copyEvent(event)
	return nil
}

func (t *txn) SaveProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID, progress *model.EventProgress) error {
	if t.progress == nil {
		t.progress = make(map[progressKey]*model.EventProgress)
	}
	t.progress[progressKey{playerID, eventID}] = copyProgress(progress)
	return nil
}

// apply commits the buffered writes into the storage maps
func (t *txn) apply() {
	for id, p := range t.players {
		t.storage.players[id] = p
	}
	for id, e := range t.events {
		t.storage.events[id] = e
	}
	for key, p := range t.progress {
		t.storage.progress[key] = p
	}
}
