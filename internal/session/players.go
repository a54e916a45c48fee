// internal/session/players.go
package session

import (
	"github.com/google/uuid"

	"github.com/gamesync-io/gamesync/internal/models"
)

type playerEntry struct {
	player models.Player
	// lobby is the player's current lobby, uuid.Nil when none. It mirrors
	// lobby membership exactly; every mutation of a lobby's player list is
	// paired with a SetLobby here.
	lobby uuid.UUID
}

// PlayerRegistry holds the profile and current-lobby reference of every known
// player. Owned by the coordinator; no internal locking.
type PlayerRegistry struct {
	players map[uuid.UUID]*playerEntry
}

func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{players: make(map[uuid.UUID]*playerEntry)}
}

// Add registers a new player with rating zero and no lobby.
func (r *PlayerRegistry) Add(id uuid.UUID) {
	r.players[id] = &playerEntry{player: models.Player{PlayerID: id}}
}

// Get returns the player's profile and current lobby (uuid.Nil when none).
func (r *PlayerRegistry) Get(id uuid.UUID) (models.Player, uuid.UUID, bool) {
	e, ok := r.players[id]
	if !ok {
		return models.Player{}, uuid.Nil, false
	}
	return e.player, e.lobby, true
}

// SetRating overwrites the player's rating. The caller checks the lobby
// status precondition; the registry only requires that the player exists.
func (r *PlayerRegistry) SetRating(id uuid.UUID, rating int) *Error {
	e, ok := r.players[id]
	if !ok {
		return kindError(ErrPlayerFind)
	}
	e.player.Rating = rating
	return nil
}

// SetLobby records the player's current lobby; uuid.Nil clears it.
func (r *PlayerRegistry) SetLobby(id, lobbyID uuid.UUID) {
	if e, ok := r.players[id]; ok {
		e.lobby = lobbyID
	}
}

// Remove forgets the player entirely.
func (r *PlayerRegistry) Remove(id uuid.UUID) {
	delete(r.players, id)
}

// Len returns the number of known players.
func (r *PlayerRegistry) Len() int {
	return len(r.players)
}

// AverageRating is the truncating integer mean of the named players' current
// ratings; zero for an empty list. Unknown ids contribute nothing.
func (r *PlayerRegistry) AverageRating(ids []uuid.UUID) int {
	if len(ids) == 0 {
		return 0
	}
	sum := 0
	for _, id := range ids {
		if e, ok := r.players[id]; ok {
			sum += e.player.Rating
		}
	}
	return sum / len(ids)
}
