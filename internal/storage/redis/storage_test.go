package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "player-1",
		DisplayName: "Alice",
		Balance:     20,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal(player.DisplayName, retrieved.DisplayName)
	s.Equal(int64(20), retrieved.Balance)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice"}
	_ = s.storage.SavePlayer(s.ctx, player)

	err := s.storage.DeletePlayer(s.ctx, "player-1")
	s.Require().NoError(err)

	_, err = s.storage.GetPlayer(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestListPlayers() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-2", DisplayName: "Bob"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1", DisplayName: "Alice"})

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(players, 2)
}

func (s *StorageSuite) TestListPlayersSkipsDeleted() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1", DisplayName: "Alice"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-2", DisplayName: "Bob"})

	// Delete the document but leave the index entry behind
	s.mini.Del(playerKey("player-2"))

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(players, 1)
	s.Equal(model.PlayerID("player-1"), players[0].ID)
}

// Registered player tests

func (s *StorageSuite) TestSaveAndGetRegisteredPlayer() {
	rp := &model.RegisteredPlayer{
		PlayerID:     "player-1",
		Username:     "alice",
		PasswordHash: "hash123",
		CreatedAt:    time.Now().UTC(),
	}

	err := s.storage.SaveRegisteredPlayer(s.ctx, rp)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRegisteredPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(rp.Username, retrieved.Username)
	s.Equal(rp.PasswordHash, retrieved.PasswordHash)
}

func (s *StorageSuite) TestGetRegisteredPlayerByUsername() {
	rp := &model.RegisteredPlayer{
		PlayerID:     "player-1",
		Username:     "alice",
		PasswordHash: "hash123",
	}
	_ = s.storage.SaveRegisteredPlayer(s.ctx, rp)

	retrieved, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.PlayerID)
}

func (s *StorageSuite) TestGetRegisteredPlayerByUsernameNotFound() {
	_, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Event tests

func (s *StorageSuite) TestSaveAndGetEvent() {
	event := &model.Event{
		ID:        "hunt-1",
		Name:      "City Hunt",
		Status:    model.EventStatusOpen,
		CreatedAt: time.Now().UTC(),
	}

	err := s.storage.SaveEvent(s.ctx, event)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetEvent(s.ctx, "hunt-1")
	s.Require().NoError(err)
	s.Equal(event.Name, retrieved.Name)
	s.Equal(model.EventStatusOpen, retrieved.Status)
}

func (s *StorageSuite) TestGetEventNotFound() {
	_, err := s.storage.GetEvent(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrEventNotFound)
}

func (s *StorageSuite) TestSaveEventRoundTripsWinner() {
	finished := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	event := &model.Event{
		ID:         "hunt-1",
		Name:       "City Hunt",
		Status:     model.EventStatusClosed,
		WinnerID:   "player-1",
		WinnerName: "Alice",
		FinishedAt: &finished,
	}
	_ = s.storage.SaveEvent(s.ctx, event)

	retrieved, err := s.storage.GetEvent(s.ctx, "hunt-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.WinnerID)
	s.Equal("Alice", retrieved.WinnerName)
	s.Require().NotNil(retrieved.FinishedAt)
	s.True(finished.Equal(*retrieved.FinishedAt))
}

func (s *StorageSuite) TestListEventsOrderedByID() {
	_ = s.storage.SaveEvent(s.ctx, &model.Event{ID: "hunt-b", Name: "Second"})
	_ = s.storage.SaveEvent(s.ctx, &model.Event{ID: "hunt-a", Name: "First"})

	events, err := s.storage.ListEvents(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(model.EventID("hunt-a"), events[0].ID)
	s.Equal(model.EventID("hunt-b"), events[1].ID)
}

// Phase and enigma tests

func (s *StorageSuite) TestListPhasesOrderedByOrder() {
	_ = s.storage.SavePhase(s.ctx, "hunt-1", &model.Phase{ID: model.PhaseIDForOrder(2), Order: 2})
	_ = s.storage.SavePhase(s.ctx, "hunt-1", &model.Phase{ID: model.PhaseIDForOrder(1), Order: 1})
	_ = s.storage.SavePhase(s.ctx, "hunt-1", &model.Phase{ID: model.PhaseIDForOrder(3), Order: 3})

	phases, err := s.storage.ListPhases(s.ctx, "hunt-1")
	s.Require().NoError(err)
	s.Require().Len(phases, 3)
	s.Equal(1, phases[0].Order)
	s.Equal(2, phases[1].Order)
	s.Equal(3, phases[2].Order)
}

func (s *StorageSuite) TestListPhasesEmpty() {
	phases, err := s.storage.ListPhases(s.ctx, "hunt-1")
	s.Require().NoError(err)
	s.Empty(phases)
}

func (s *StorageSuite) TestSaveAndGetEnigma() {
	enigma := &model.Enigma{
		ID:       "enigma-1",
		Code:     "sphinx",
		HintType: "text",
		HintData: "look closer",
	}

	err := s.storage.SaveEnigma(s.ctx, "hunt-1", 1, enigma)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetEnigma(s.ctx, "hunt-1", 1, "enigma-1")
	s.Require().NoError(err)
	s.Equal("sphinx", retrieved.Code)
	s.True(retrieved.HasHint())
}

func (s *StorageSuite) TestGetEnigmaNotFound() {
	_, err := s.storage.GetEnigma(s.ctx, "hunt-1", 1, "nonexistent")
	s.ErrorIs(err, model.ErrEnigmaNotFound)
}

func (s *StorageSuite) TestGetEnigmaScopedToPhase() {
	_ = s.storage.SaveEnigma(s.ctx, "hunt-1", 1, &model.Enigma{ID: "enigma-1", Code: "abc"})

	_, err := s.storage.GetEnigma(s.ctx, "hunt-1", 2, "enigma-1")
	s.ErrorIs(err, model.ErrEnigmaNotFound)
}

func (s *StorageSuite) TestListEnigmasOrderedByID() {
	_ = s.storage.SaveEnigma(s.ctx, "hunt-1", 1, &model.Enigma{ID: "enigma-2", Code: "b"})
	_ = s.storage.SaveEnigma(s.ctx, "hunt-1", 1, &model.Enigma{ID: "enigma-1", Code: "a"})

	enigmas, err := s.storage.ListEnigmas(s.ctx, "hunt-1", 1)
	s.Require().NoError(err)
	s.Require().Len(enigmas, 2)
	s.Equal(model.EnigmaID("enigma-1"), enigmas[0].ID)
	s.Equal(model.EnigmaID("enigma-2"), enigmas[1].ID)
}

// Progress tests

func (s *StorageSuite) TestGetProgressDefaultsWhenMissing() {
	progress, err := s.storage.GetProgress(s.ctx, "player-1", "hunt-1")
	s.Require().NoError(err)
	s.Equal(1, progress.CurrentPhase)
	s.Equal(1, progress.CurrentEnigma)
	s.Empty(progress.HintsPurchased)
}

func (s *StorageSuite) TestSaveAndGetProgress() {
	progress := &model.EventProgress{
		CurrentPhase:   2,
		CurrentEnigma:  3,
		HintsPurchased: []int{1},
	}

	err := s.storage.SaveProgress(s.ctx, "player-1", "hunt-1", progress)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetProgress(s.ctx, "player-1", "hunt-1")
	s.Require().NoError(err)
	s.Equal(2, retrieved.CurrentPhase)
	s.Equal(3, retrieved.CurrentEnigma)
	s.True(retrieved.HasHint(1))
}

func (s *StorageSuite) TestListEventPlayers() {
	_ = s.storage.SaveProgress(s.ctx, "player-2", "hunt-1", model.NewEventProgress())
	_ = s.storage.SaveProgress(s.ctx, "player-1", "hunt-1", model.NewEventProgress())
	_ = s.storage.SaveProgress(s.ctx, "player-3", "hunt-2", model.NewEventProgress())

	players, err := s.storage.ListEventPlayers(s.ctx, "hunt-1")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"player-1", "player-2"}, players)
}

// Attempt tests

func (s *StorageSuite) TestGetAttemptNotFound() {
	_, err := s.storage.GetAttempt(s.ctx, "player-1", "enigma-1")
	s.ErrorIs(err, model.ErrAttemptNotFound)
}

func (s *StorageSuite) TestSaveAndGetAttempt() {
	until := time.Date(2024, 6, 1, 10, 10, 0, 0, time.UTC)
	record := &model.AttemptRecord{
		PlayerID:      "player-1",
		EnigmaID:      "enigma-1",
		Attempts:      3,
		CooldownUntil: &until,
	}

	err := s.storage.SaveAttempt(s.ctx, record)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAttempt(s.ctx, "player-1", "enigma-1")
	s.Require().NoError(err)
	s.Equal(3, retrieved.Attempts)
	s.Require().NotNil(retrieved.CooldownUntil)
	s.True(until.Equal(*retrieved.CooldownUntil))
}

func (s *StorageSuite) TestDeleteAttempt() {
	record := &model.AttemptRecord{PlayerID: "player-1", EnigmaID: "enigma-1", Attempts: 2}
	_ = s.storage.SaveAttempt(s.ctx, record)

	err := s.storage.DeleteAttempt(s.ctx, "player-1", "enigma-1")
	s.Require().NoError(err)

	_, err = s.storage.GetAttempt(s.ctx, "player-1", "enigma-1")
	s.ErrorIs(err, model.ErrAttemptNotFound)
}

// Transaction tests

func (s *StorageSuite) TestAtomicCommitsBufferedWrites() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1", DisplayName: "Alice", Balance: 20})

	err := s.storage.Atomic(s.ctx, func(tx storage.Txn) error {
		player, err := tx.GetPlayer(s.ctx, "player-1")
		if err != nil {
			return err
		}
		player.Balance -= 5
		if err := tx.SavePlayer(s.ctx, player); err != nil {
			return err
		}

		progress, err := tx.GetProgress(s.ctx, "player-1", "hunt-1")
		if err != nil {
			return err
		}
		progress.AddHint(1)
		return tx.SaveProgress(s.ctx, "player-1", "hunt-1", progress)
	})
	s.Require().NoError(err)

	player, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(int64(15), player.Balance)

	progress, err := s.storage.GetProgress(s.ctx, "player-1", "hunt-1")
	s.Require().NoError(err)
	s.True(progress.HasHint(1))
}

func (s *StorageSuite) TestAtomicErrorDiscardsWrites() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1", DisplayName: "Alice", Balance: 20})

	boom := errors.New("boom")
	err := s.storage.Atomic(s.ctx, func(tx storage.Txn) error {
		player, err := tx.GetPlayer(s.ctx, "player-1")
		if err != nil {
			return err
		}
		player.Balance = 0
		if err := tx.SavePlayer(s.ctx, player); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	player, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(int64(20), player.Balance)
}

func (s *StorageSuite) TestAtomicRetriesOnConflict() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1", DisplayName: "Alice", Balance: 20})

	attempts := 0
	err := s.storage.Atomic(s.ctx, func(tx storage.Txn) error {
		attempts++
		player, err := tx.GetPlayer(s.ctx, "player-1")
		if err != nil {
			return err
		}

		if attempts == 1 {
			// Touch the watched key from outside the transaction so the
			// first EXEC fails and the function is retried
			other := &model.Player{ID: "player-1", DisplayName: "Alice", Balance: 50}
			if err := s.storage.SavePlayer(s.ctx, other); err != nil {
				return err
			}
		}

		player.Balance -= 5
		return tx.SavePlayer(s.ctx, player)
	})
	s.Require().NoError(err)
	s.Equal(2, attempts)

	player, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(int64(45), player.Balance)
}

func (s *StorageSuite) TestAtomicGivesUpAfterMaxRetries() {
	cfg := DefaultConfig()
	cfg.MaxTxRetries = 3
	limited := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), cfg)
	defer limited.Close()

	_ = limited.SavePlayer(s.ctx, &model.Player{ID: "player-1", Balance: 20})

	attempts := 0
	err := limited.Atomic(s.ctx, func(tx storage.Txn) error {
		attempts++
		player, err := tx.GetPlayer(s.ctx, "player-1")
		if err != nil {
			return err
		}

		// Invalidate the watch on every pass
		player.Balance++
		if err := limited.SavePlayer(s.ctx, player); err != nil {
			return err
		}
		return tx.SavePlayer(s.ctx, player)
	})
	s.ErrorIs(err, model.ErrTxConflict)
	s.Equal(3, attempts)
}
