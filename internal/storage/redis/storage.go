package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, 0)
	pipe.SAdd(ctx, playersIndexKey(), string(player.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
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

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.SRem(ctx, playersIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have been deleted
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &player)
	}

	return players, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0)
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	data, err := s.client.Get(ctx, registeredPlayerKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var rp model.RegisteredPlayer
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	// Look up player ID from username index
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Catalog operations

func (s *Storage) SaveEvent(ctx context.Context, event *model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, eventKey(event.ID), data, 0)
	pipe.SAdd(ctx, eventsIndexKey(), string(event.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	data, err := s.client.Get(ctx, eventKey(id)).Bytes()
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

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	ids, err := s.client.SMembers(ctx, eventsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Event{}, nil
	}

	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = eventKey(model.EventID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*model.Event, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var event model.Event
		if err := json.Unmarshal([]byte(val.(string)), &event); err != nil {
			continue
		}
		events = append(events, &event)
	}

	return events, nil
}

func (s *Storage) SavePhase(ctx context.Context, eventID model.EventID, phase *model.Phase) error {
	data, err := json.Marshal(phase)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, phaseKey(eventID, phase.ID), data, 0)
	pipe.SAdd(ctx, phasesIndexKey(eventID), string(phase.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPhases(ctx context.Context, eventID model.EventID) ([]*model.Phase, error) {
	return listPhases(ctx, s.client, eventID)
}

func (s *Storage) SaveEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigma *model.Enigma) error {
	data, err := json.Marshal(enigma)
	if err != nil {
		return err
	}

	phaseID := model.PhaseIDForOrder(phaseOrder)
	pipe := s.client.Pipeline()
	pipe.Set(ctx, enigmaKey(eventID, phaseID, enigma.ID), data, 0)
	pipe.SAdd(ctx, enigmasIndexKey(eventID, phaseID), string(enigma.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListEnigmas(ctx context.Context, eventID model.EventID, phaseOrder int) ([]*model.Enigma, error) {
	return listEnigmas(ctx, s.client, eventID, phaseOrder)
}

func (s *Storage) GetEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigmaID model.EnigmaID) (*model.Enigma, error) {
	key := enigmaKey(eventID, model.PhaseIDForOrder(phaseOrder), enigmaID)
	data, err := s.client.Get(ctx, key).Bytes()
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

// Progress ledger operations

func (s *Storage) GetProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID) (*model.EventProgress, error) {
	data, err := s.client.Get(ctx, progressKey(playerID, eventID)).Bytes()
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

func (s *Storage) SaveProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID, progress *model.EventProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, progressKey(playerID, eventID), data, 0)
	pipe.SAdd(ctx, eventPlayersIndexKey(eventID), string(playerID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListEventPlayers(ctx context.Context, eventID model.EventID) ([]model.PlayerID, error) {
	ids, err := s.client.SMembers(ctx, eventPlayersIndexKey(eventID)).Result()
	if err != nil {
		return nil, err
	}

	sort.Strings(ids)

	players := make([]model.PlayerID, len(ids))
	for i, id := range ids {
		players[i] = model.PlayerID(id)
	}
	return players, nil
}

// Attempt/cooldown operations

func (s *Storage) GetAttempt(ctx context.Context, playerID model.PlayerID, enigmaID model.EnigmaID) (*model.AttemptRecord, error) {
	data, err := s.client.Get(ctx, attemptKey(playerID, enigmaID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAttemptNotFound
		}
		return nil, err
	}

	var record model.AttemptRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) SaveAttempt(ctx context.Context, record *model.AttemptRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, attemptKey(record.PlayerID, record.EnigmaID), data, 0).Err()
}

func (s *Storage) DeleteAttempt(ctx context.Context, playerID model.PlayerID, enigmaID model.EnigmaID) error {
	return s.client.Del(ctx, attemptKey(playerID, enigmaID)).Err()
}

// Atomic runs fn as one optimistic WATCH/MULTI/EXEC transaction. Every key
// read through the Txn is watched first; buffered writes are committed in
// a single MULTI/EXEC. When EXEC reports a conflict the whole function is
// retried with fresh reads, up to MaxTxRetries times.
func (s *Storage) Atomic(ctx context.Context, fn func(tx storage.Txn) error) error {
	retries := s.cfg.MaxTxRetries
	if retries <= 0 {
		retries = DefaultConfig().MaxTxRetries
	}

	for i := 0; i < retries; i++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			t := &txn{tx: rtx}
			if err := fn(t); err != nil {
				return err
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return t.flush(ctx, pipe)
			})
			return err
		})
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return model.ErrTxConflict
}
