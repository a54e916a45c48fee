// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is a connected user's profile. Players are minted on connect with a
// zero rating and live only as long as their connection.
type Player struct {
	PlayerID uuid.UUID `json:"playerId"`
	Rating   int       `json:"rating"`
}
