// internal/protocol/events.go
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gamesync-io/gamesync/internal/models"
)

// EventType discriminates the tagged variants on the wire. The names are part
// of the client contract and must not change.
type EventType string

// Client-initiated events.
const (
	EventBroadcast        EventType = "Broadcast"
	EventSendTo           EventType = "SendTo"
	EventCreateLobby      EventType = "CreateLobby"
	EventJoinLobby        EventType = "JoinLobby"
	EventDeleteLobby      EventType = "DeleteLobby"
	EventLeaveLobby       EventType = "LeaveLobby"
	EventInviteLobby      EventType = "InviteLobby"
	EventGetPublicLobbies EventType = "GetPublicLobbies"
	EventEditPlayer       EventType = "EditPlayer"
	EventMessageLobby     EventType = "MessageLobby"
	EventQueueLobby       EventType = "QueueLobby"
	EventCheckMatch       EventType = "CheckMatch"
	EventStopQueue        EventType = "StopQueue"
	EventLeaveGameAsLobby EventType = "LeaveGameAsLobby"
	EventGetLobbyInfo     EventType = "GetLobbyInfo"
)

// Server-initiated events.
const (
	EventConnected     EventType = "Connected"
	EventUserMessage   EventType = "UserMessage"
	EventSelfPlayer    EventType = "SelfPlayer"
	EventNewPlayer     EventType = "NewPlayer"
	EventLobbyCreated  EventType = "LobbyCreated"
	EventLobbyJoined   EventType = "LobbyJoined"
	EventLobbyDeleted  EventType = "LobbyDeleted"
	EventLobbyLeft     EventType = "LobbyLeft"
	EventLobbyInvited  EventType = "LobbyInvited"
	EventPublicLobbies EventType = "PublicLobbies"
	EventPlayerEdited  EventType = "PlayerEdited"
	EventLobbyMessage  EventType = "LobbyMessage"
	EventLobbyQueued   EventType = "LobbyQueued"
	EventMatchFound    EventType = "MatchFound"
	EventMatchNotFound EventType = "MatchNotFound"
	EventQueueStopped  EventType = "QueueStopped"
	EventLeftGame      EventType = "LeftGame"
	EventLobbyInfo     EventType = "LobbyInfo"
	EventError         EventType = "Error"
)

var clientEventTypes = map[EventType]bool{
	EventBroadcast:        true,
	EventSendTo:           true,
	EventCreateLobby:      true,
	EventJoinLobby:        true,
	EventDeleteLobby:      true,
	EventLeaveLobby:       true,
	EventInviteLobby:      true,
	EventGetPublicLobbies: true,
	EventEditPlayer:       true,
	EventMessageLobby:     true,
	EventQueueLobby:       true,
	EventCheckMatch:       true,
	EventStopQueue:        true,
	EventLeaveGameAsLobby: true,
	EventGetLobbyInfo:     true,
}

// ClientEvent is the inbound envelope. The sender is implicit: it is resolved
// from the connection the event arrived on, never trusted from the payload.
type ClientEvent struct {
	Type      EventType           `json:"type"`
	Message   string              `json:"message,omitempty"`
	TargetID  string              `json:"targetId,omitempty"`
	Params    *models.LobbyParams `json:"params,omitempty"`
	LobbyID   string              `json:"lobbyId,omitempty"`
	InviteeID string              `json:"inviteeId,omitempty"`
	Region    models.Region       `json:"region,omitempty"`
	Player    *models.Player      `json:"player,omitempty"`
	Threshold *int                `json:"threshold,omitempty"`
}

// DecodeClientEvent parses one inbound frame. A payload that is not JSON or
// whose type is not a known client variant is rejected.
func DecodeClientEvent(data []byte) (ClientEvent, error) {
	var ev ClientEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ClientEvent{}, err
	}
	if !clientEventTypes[ev.Type] {
		return ClientEvent{}, fmt.Errorf("unknown client event type %q", ev.Type)
	}
	return ev, nil
}

// ServerEvent is the outbound envelope.
type ServerEvent struct {
	Type     EventType      `json:"type"`
	PlayerID string         `json:"playerId,omitempty"`
	Message  string         `json:"message,omitempty"`
	Lobby    *models.Lobby  `json:"lobby,omitempty"`
	Lobbies  []models.Lobby `json:"lobbies,omitempty"`
	LobbyID  string         `json:"lobbyId,omitempty"`
	Kind     string         `json:"kind,omitempty"`
	Detail   string         `json:"detail,omitempty"`
}

// EncodeServerEvent serializes an outbound event to a single text frame.
func EncodeServerEvent(ev ServerEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeServerEvent parses an outbound frame back into its envelope. Used by
// client code and tests.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	var ev ServerEvent
	err := json.Unmarshal(data, &ev)
	return ev, err
}

// Constructors for the outbound variants keep call sites compact and make the
// field mapping for each variant explicit in one place.

func ConnectedEvent() ServerEvent {
	return ServerEvent{Type: EventConnected}
}

func UserMessageEvent(sender uuid.UUID, msg string) ServerEvent {
	return ServerEvent{Type: EventUserMessage, PlayerID: sender.String(), Message: msg}
}

func SelfPlayerEvent(player uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventSelfPlayer, PlayerID: player.String()}
}

func NewPlayerEvent(player uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventNewPlayer, PlayerID: player.String()}
}

func LobbyCreatedEvent(lobby models.Lobby) ServerEvent {
	return ServerEvent{Type: EventLobbyCreated, Lobby: &lobby}
}

func LobbyJoinedEvent(player, lobbyID uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventLobbyJoined, PlayerID: player.String(), LobbyID: lobbyID.String()}
}

func LobbyDeletedEvent(lobbyID uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventLobbyDeleted, LobbyID: lobbyID.String()}
}

func LobbyLeftEvent(player, lobbyID uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventLobbyLeft, PlayerID: player.String(), LobbyID: lobbyID.String()}
}

func LobbyInvitedEvent(lobbyID uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventLobbyInvited, LobbyID: lobbyID.String()}
}

func PublicLobbiesEvent(lobbies []models.Lobby) ServerEvent {
	return ServerEvent{Type: EventPublicLobbies, Lobbies: lobbies}
}

func PlayerEditedEvent(player uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventPlayerEdited, PlayerID: player.String()}
}

func LobbyMessageEvent(sender uuid.UUID, msg string) ServerEvent {
	return ServerEvent{Type: EventLobbyMessage, PlayerID: sender.String(), Message: msg}
}

func LobbyQueuedEvent(lobbyID uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventLobbyQueued, LobbyID: lobbyID.String()}
}

func MatchFoundEvent(opponent models.Lobby) ServerEvent {
	return ServerEvent{Type: EventMatchFound, Lobby: &opponent}
}

func MatchNotFoundEvent() ServerEvent {
	return ServerEvent{Type: EventMatchNotFound}
}

func QueueStoppedEvent(lobbyID uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventQueueStopped, LobbyID: lobbyID.String()}
}

func LeftGameEvent(lobbyID uuid.UUID) ServerEvent {
	return ServerEvent{Type: EventLeftGame, LobbyID: lobbyID.String()}
}

func LobbyInfoEvent(lobby models.Lobby) ServerEvent {
	return ServerEvent{Type: EventLobbyInfo, Lobby: &lobby}
}

func ErrorEvent(kind, detail string) ServerEvent {
	return ServerEvent{Type: EventError, Kind: kind, Detail: detail}
}
