package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

// txn implements storage.Txn over a WATCHed Redis connection.
// Every read watches its key before fetching it, so a concurrent write to
// any document in the read set aborts the EXEC. Writes are buffered and
// flushed into the MULTI/EXEC pipeline by Atomic.
type txn struct {
	tx  *redis.Tx
	ops []func(ctx context.Context, pipe redis.Pipeliner) error
}

var _ storage.Txn = (*txn)(nil)

func (t *txn) watch(ctx context.Context, keys ...string) error {
	return t.tx.Watch(ctx, keys...).Err()
}

// Reads

func (t *txn) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	key := playerKey(id)
	if err := t.watch(ctx, key); err != nil {
		return nil, err
	}

	data, err := t.tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (t *txn) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	key := eventKey(id)
	if err := t.watch(ctx, key); err != nil {
		return nil, err
	}

	data, err := t.tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrEventNotFound
		}
		return nil, err
	}

	var event model.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (t *txn) GetProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID) (*model.EventProgress, error) {
	key := progressKey(playerID, eventID)
	if err := t.watch(ctx, key); err != nil {
		return nil, err
	}

	data, err := t.tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewEventProgress(), nil
		}
		return nil, err
	}

	var progress model.EventProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// Catalog documents are immutable once authored; watching their index set
// keeps counts consistent without watching every member document.

func (t *txn) ListPhases(ctx context.Context, eventID model.EventID) ([]*model.Phase, error) {
	if err := t.watch(ctx, phasesIndexKey(eventID)); err != nil {
		return nil, err
	}
	return listPhases(ctx, t.tx, eventID)
}

func (t *txn) ListEnigmas(ctx context.Context, eventID model.EventID, phaseOrder int) ([]*model.Enigma, error) {
	if err := t.watch(ctx, enigmasIndexKey(eventID, model.PhaseIDForOrder(phaseOrder))); err != nil {
		return nil, err
	}
	return listEnigmas(ctx, t.tx, eventID, phaseOrder)
}

func (t *txn) GetEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigmaID model.EnigmaID) (*model.Enigma, error) {
	key := enigmaKey(eventID, model.PhaseIDForOrder(phaseOrder), enigmaID)
	if err := t.watch(ctx, key); err != nil {
		return nil, err
	}

	data, err := t.tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrEnigmaNotFound
		}
		return nil, err
	}

	var enigma model.Enigma
	if err := json.Unmarshal(data, &enigma); err != nil {
		return nil, err
	}
	return &enigma, nil
}

// Buffered writes

func (t *txn) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	id := player.ID
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerKey(id), data, 0)
		pipe.SAdd(ctx, playersIndexKey(), string(id))
		return nil
	})
	return nil
}

func (t *txn) SaveEvent(ctx context.Context, event *model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	id := event.ID
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) error {
		pipe.Set(ctx, eventKey(id), data, 0)
		pipe.SAdd(ctx, eventsIndexKey(), string(id))
		return nil
	})
	return nil
}

func (t *txn) SaveProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID, progress *model.EventProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) error {
		pipe.Set(ctx, progressKey(playerID, eventID), data, 0)
		pipe.SAdd(ctx, eventPlayersIndexKey(eventID), string(playerID))
		return nil
	})
	return nil
}

// flush applies the buffered writes to the MULTI/EXEC pipeline
func (t *txn) flush(ctx context.Context, pipe redis.Pipeliner) error {
	for _, op := range t.ops {
		if err := op(ctx, pipe); err != nil {
			return err
		}
	}
	return nil
}

// Shared list helpers, usable on a plain client or a WATCHed connection

func listPhases(ctx context.Context, c redis.Cmdable, eventID model.EventID) ([]*model.Phase, error) {
	ids, err := c.SMembers(ctx, phasesIndexKey(eventID)).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Phase{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = phaseKey(eventID, model.PhaseID(id))
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	phases := make([]*model.Phase, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var phase model.Phase
		if err := json.Unmarshal([]byte(val.(string)), &phase); err != nil {
			continue
		}
		phases = append(phases, &phase)
	}

	sort.Slice(phases, func(i, j int) bool {
		return phases[i].Order < phases[j].Order
	})

	return phases, nil
}

func listEnigmas(ctx context.Context, c redis.Cmdable, eventID model.EventID, phaseOrder int) ([]*model.Enigma, error) {
	phaseID := model.PhaseIDForOrder(phaseOrder)

	ids, err := c.SMembers(ctx, enigmasIndexKey(eventID, phaseID)).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Enigma{}, nil
	}

	// Stable ordering by identity
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = enigmaKey(eventID, phaseID, model.EnigmaID(id))
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	enigmas := make([]*model.Enigma, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var enigma model.Enigma
		if err := json.Unmarshal([]byte(val.(string)), &enigma); err != nil {
			continue
		}
		enigmas = append(enigmas, &enigma)
	}

	return enigmas, nil
}
