package storage

import (
	"context"

	"github.com/enigmahunt/enigmahunt/internal/model"
)

// Reader is the read set shared by the plain store and its transactions.
//
// GetProgress never fails for a missing record: the "no progress yet"
// state is the explicit default returned by model.NewEventProgress.
type Reader interface {
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetEvent(ctx context.Context, id model.EventID) (*model.Event, error)
	GetProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID) (*model.EventProgress, error)

	// ListPhases returns the event's phases ordered by their order field
	ListPhases(ctx context.Context, eventID model.EventID) ([]*model.Phase, error)

	// ListEnigmas returns the phase's enigmas ordered by identity
	ListEnigmas(ctx context.Context, eventID model.EventID, phaseOrder int) ([]*model.Enigma, error)

	GetEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigmaID model.EnigmaID) (*model.Enigma, error)
}

// Txn is the view of the store inside one atomic transaction.
// Reads are consistent with each other; writes are buffered and committed
// all-or-nothing when the transaction function returns nil.
type Txn interface {
	Reader

	SavePlayer(ctx context.Context, player *model.Player) error
	SaveEvent(ctx context.Context, event *model.Event) error
	SaveProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID, progress *model.EventProgress) error
}

// Storage defines the interface for data persistence
type Storage interface {
	Reader

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Catalog operations
	SaveEvent(ctx context.Context, event *model.Event) error
	ListEvents(ctx context.Context) ([]*model.Event, error)
	SavePhase(ctx context.Context, eventID model.EventID, phase *model.Phase) error
	SaveEnigma(ctx context.Context, eventID model.EventID, phaseOrder int, enigma *model.Enigma) error

	// Progress ledger operations
	SaveProgress(ctx context.Context, playerID model.PlayerID, eventID model.EventID, progress *model.EventProgress) error

	// ListEventPlayers returns the ids of players with progress recorded
	// for the event
	ListEventPlayers(ctx context.Context, eventID model.EventID) ([]model.PlayerID, error)

	// Attempt/cooldown operations, keyed by (player, enigma).
	// GetAttempt returns model.ErrAttemptNotFound for an absent record.
	GetAttempt(ctx context.Context, playerID model.PlayerID, enigmaID model.EnigmaID) (*model.AttemptRecord, error)
	SaveAttempt(ctx context.Context, record *model.AttemptRecord) error
	DeleteAttempt(ctx context.Context, playerID model.PlayerID, enigmaID model.EnigmaID) error

	// Atomic runs fn as one optimistic read-modify-write transaction.
	// If a document read through the Txn changes before commit, the
	// store retries fn from scratch; when retries are exhausted it
	// returns model.ErrTxConflict. Errors returned by fn abort the
	// transaction and are passed through unchanged.
	Atomic(ctx context.Context, fn func(tx Txn) error) error
}
