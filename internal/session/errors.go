// internal/session/errors.go
package session

// ErrorKind names a request failure. The names are user-visible: they travel
// in the outbound Error event and existing clients key on them.
type ErrorKind string

const (
	ErrParse          ErrorKind = "ParseError"
	ErrSend           ErrorKind = "SendError"
	ErrUserNotFound   ErrorKind = "UserNotFound"
	ErrLobbyFind      ErrorKind = "LobbyFindError"
	ErrLobbyCreate    ErrorKind = "LobbyCreateError"
	ErrLobbyJoin      ErrorKind = "LobbyJoinError"
	ErrLobbyFull      ErrorKind = "LobbyFullError"
	ErrLobbyOwner     ErrorKind = "LobbyOwnerError"
	ErrLobbyInvite    ErrorKind = "LobbyInviteError"
	ErrLobbyCurInvite ErrorKind = "LobbyCurInviteError"
	ErrLobbyPlayer    ErrorKind = "LobbyPlayerError"
	ErrLobbyMessage   ErrorKind = "LobbyMessageError"
	ErrPlayerFind     ErrorKind = "PlayerFindError"
	ErrPlayerEdit     ErrorKind = "PlayerEditError"
	ErrLobbySize      ErrorKind = "LobbySizeError"
	ErrLobbyQueue     ErrorKind = "LobbyQueueError"
	ErrLobbyCheck     ErrorKind = "LobbyCheckError"
	ErrLobbyDelete    ErrorKind = "LobbyDeleteError"
	ErrLobbyStop      ErrorKind = "LobbyStopError"
	ErrLeaveGame      ErrorKind = "LeaveGameError"
)

var kindMessages = map[ErrorKind]string{
	ErrParse:          "Failed to parse event payload",
	ErrSend:           "Failed to send socket event",
	ErrUserNotFound:   "Failed to find user",
	ErrLobbyFind:      "Lobby not found",
	ErrLobbyCreate:    "Failed to create lobby. Player already part of a lobby",
	ErrLobbyJoin:      "Failed to join lobby. Player already part of a lobby",
	ErrLobbyFull:      "Failed to join lobby. Lobby full",
	ErrLobbyOwner:     "Invalid permissions. Player not lobby owner",
	ErrLobbyInvite:    "Failed to invite. Player not part of a lobby",
	ErrLobbyCurInvite: "Failed to invite. Player not part of this lobby",
	ErrLobbyPlayer:    "Failed to send message. Player not in a lobby",
	ErrLobbyMessage:   "Failed to send message. Player not part of lobby",
	ErrPlayerFind:     "Player does not exist",
	ErrPlayerEdit:     "Player cannot be edited. Must not be queueing or in-game",
	ErrLobbySize:      "Failed to queue. Lobby is not full",
	ErrLobbyQueue:     "Lobby is already in queue or in-game",
	ErrLobbyCheck:     "Failed to check lobby. Lobby is not currently in queue",
	ErrLobbyDelete:    "Failed to delete lobby. Lobby is not idle",
	ErrLobbyStop:      "Failed to stop queue. Lobby is not currently in queue",
	ErrLeaveGame:      "Failed to leave game. Lobby is not currently in-game",
}

// Error is a rejected request. It never propagates past the request boundary;
// the coordinator logs it and answers the sender with an Error event.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func kindError(kind ErrorKind) *Error {
	return &Error{Kind: kind, Detail: kindMessages[kind]}
}

func parseError(detail string) *Error {
	return &Error{Kind: ErrParse, Detail: kindMessages[ErrParse] + ": " + detail}
}
