package redis

import (
	"fmt"

	"github.com/enigmahunt/enigmahunt/internal/model"
)

// Key prefix for all hunt-related data
const keyPrefix = "enigmahunt"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the SET of all player ids
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// eventKey returns the Redis key for an Event
func eventKey(id model.EventID) string {
	return fmt.Sprintf("%s:event:%s", keyPrefix, id)
}

// eventsIndexKey returns the Redis key for the SET of all event ids
func eventsIndexKey() string {
	return fmt.Sprintf("%s:idx:events", keyPrefix)
}

// phaseKey returns the Redis key for a Phase of an event
func phaseKey(eventID model.EventID, phaseID model.PhaseID) string {
	return fmt.Sprintf("%s:phase:%s:%s", keyPrefix, eventID, phaseID)
}

// phasesIndexKey returns the Redis key for the SET of phase ids of an event
func phasesIndexKey(eventID model.EventID) string {
	return fmt.Sprintf("%s:idx:phases:%s", keyPrefix, eventID)
}

// enigmaKey returns the Redis key for an Enigma within a phase
func enigmaKey(eventID model.EventID, phaseID model.PhaseID, enigmaID model.EnigmaID) string {
	return fmt.Sprintf("%s:enigma:%s:%s:%s", keyPrefix, eventID, phaseID, enigmaID)
}

// enigmasIndexKey returns the Redis key for the SET of enigma ids of a phase
func enigmasIndexKey(eventID model.EventID, phaseID model.PhaseID) string {
	return fmt.Sprintf("%s:idx:enigmas:%s:%s", keyPrefix, eventID, phaseID)
}

// progressKey returns the Redis key for one player's progress in one event
func progressKey(playerID model.PlayerID, eventID model.EventID) string {
	return fmt.Sprintf("%s:progress:%s:%s", keyPrefix, playerID, eventID)
}

// eventPlayersIndexKey returns the Redis key for the SET of players with
// progress in an event
func eventPlayersIndexKey(eventID model.EventID) string {
	return fmt.Sprintf("%s:idx:event_players:%s", keyPrefix, eventID)
}

// attemptKey returns the Redis key for an AttemptRecord
func attemptKey(playerID model.PlayerID, enigmaID model.EnigmaID) string {
	return fmt.Sprintf("%s:attempt:%s:%s", keyPrefix, playerID, enigmaID)
}
