// internal/models/lobby.go
package models

import "github.com/google/uuid"

// Visibility controls whether a lobby shows up in public listings.
type Visibility string

const (
	VisibilityPrivate Visibility = "Private"
	VisibilityPublic  Visibility = "Public"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// Region is a fixed bucket used to partition lobbies and matchmaking queues.
type Region string

const (
	RegionNA  Region = "NA"
	RegionEU  Region = "EU"
	RegionSA  Region = "SA"
	RegionMEA Region = "MEA"
	RegionAS  Region = "AS"
	RegionAU  Region = "AU"
)

// Regions lists every region, in a stable order.
var Regions = []Region{RegionNA, RegionEU, RegionSA, RegionMEA, RegionAS, RegionAU}

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}

// GameMode selects the matchmaking rule a lobby queues under.
type GameMode string

const (
	ModeCasual      GameMode = "Casual"
	ModeCompetitive GameMode = "Competitive"
)

// Valid reports whether m is a known game mode.
func (m GameMode) Valid() bool {
	return m == ModeCasual || m == ModeCompetitive
}

// LobbyStatus is the lobby lifecycle state.
type LobbyStatus string

const (
	StatusIdle     LobbyStatus = "Idle"
	StatusQueueing LobbyStatus = "Queueing"
	StatusIngame   LobbyStatus = "Ingame"
)

// LobbyParams are the creation-time settings of a lobby. They never change
// after the lobby is created.
type LobbyParams struct {
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
	Region     Region     `json:"region"`
	Mode       GameMode   `json:"mode"`
}

// Valid reports whether every enum field holds a known value.
func (p LobbyParams) Valid() bool {
	return p.Visibility.Valid() && p.Region.Valid() && p.Mode.Valid()
}

// Lobby is a named grouping of players formed to enter matchmaking together.
// Players holds members in join order; the leader is always Players[0].
// QueueThreshold is the competitive rating tolerance last set by the leader.
type Lobby struct {
	LobbyID        uuid.UUID   `json:"lobbyId"`
	Params         LobbyParams `json:"params"`
	Leader         uuid.UUID   `json:"leader"`
	Status         LobbyStatus `json:"status"`
	Players        []uuid.UUID `json:"players"`
	QueueThreshold int         `json:"queueThreshold"`
}

// HasPlayer reports whether id is a member of the lobby.
func (l Lobby) HasPlayer(id uuid.UUID) bool {
	for _, p := range l.Players {
		if p == id {
			return true
		}
	}
	return false
}

// Clone returns a copy with its own Players slice, safe to hand out.
func (l Lobby) Clone() Lobby {
	out := l
	out.Players = append([]uuid.UUID(nil), l.Players...)
	return out
}
