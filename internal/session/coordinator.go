// internal/session/coordinator.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gamesync-io/gamesync/internal/models"
	"github.com/gamesync-io/gamesync/internal/protocol"
)

// newPlayerAnnounceDelay is the pause between sending SelfPlayer to a fresh
// connection and announcing NewPlayer to everyone else, giving the new client
// time to learn its own id before observers can reference it.
const newPlayerAnnounceDelay = 100 * time.Millisecond

// MatchSink receives finalized match pairs out of band. Implementations must
// not block; delivery is best-effort.
type MatchSink interface {
	RecordMatch(a, b models.Lobby)
}

// Coordinator owns every registry and applies client requests under a single
// mutex, so each request runs to completion — validation, registry and queue
// mutations, notification enqueueing — before the next begins. Transitions
// that span several registries (create, join, leave, queue, match) are
// therefore never partially visible.
type Coordinator struct {
	mu sync.Mutex

	lobbySize  int
	identities *IdentityRegistry
	players    *PlayerRegistry
	lobbies    *LobbyRegistry
	queues     *QueueEngine
	dispatch   *Dispatcher
	log        *logrus.Logger

	// Recorder, when set, receives every finalized match. Optional.
	Recorder MatchSink

	// AnnounceDelay is the SelfPlayer→NewPlayer pause. Zero announces
	// synchronously; tests rely on that.
	AnnounceDelay time.Duration
}

// NewCoordinator builds a coordinator for lobbies of the given capacity.
func NewCoordinator(lobbySize int, log *logrus.Logger) *Coordinator {
	identities := NewIdentityRegistry()
	return &Coordinator{
		lobbySize:     lobbySize,
		identities:    identities,
		players:       NewPlayerRegistry(),
		lobbies:       NewLobbyRegistry(),
		queues:        NewQueueEngine(),
		dispatch:      NewDispatcher(identities, log),
		log:           log,
		AnnounceDelay: newPlayerAnnounceDelay,
	}
}

// Connect binds a new endpoint to a freshly minted player. The new peer is
// told Connected and SelfPlayer immediately; everyone else learns about it
// via NewPlayer after AnnounceDelay.
func (c *Coordinator) Connect(ep Endpoint) uuid.UUID {
	c.mu.Lock()
	player := c.identities.Attach(ep)
	c.players.Add(player)
	c.dispatch.SendTo(player, protocol.ConnectedEvent())
	c.dispatch.SendTo(player, protocol.SelfPlayerEvent(player))
	c.log.WithFields(logrus.Fields{"player": player, "remote": ep.String()}).Info("player connected")
	if c.AnnounceDelay <= 0 {
		c.dispatch.SendToAllExcept(player, protocol.NewPlayerEvent(player))
		c.mu.Unlock()
		return player
	}
	c.mu.Unlock()

	time.AfterFunc(c.AnnounceDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// The player may have disconnected during the pause.
		if _, _, ok := c.players.Get(player); !ok {
			return
		}
		c.dispatch.SendToAllExcept(player, protocol.NewPlayerEvent(player))
	})
	return player
}

// Disconnect tears down everything the endpoint's player touched: the lobby
// membership (mirroring LeaveLobby, including queue removal), the player
// profile, and the identity binding. Safe to call for unknown endpoints.
func (c *Coordinator) Disconnect(ep Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	player, ok := c.identities.ResolveEndpoint(ep)
	if !ok {
		return
	}
	// Detach first so no farewell is routed at the dead endpoint.
	c.identities.Detach(ep)

	_, lobbyID, known := c.players.Get(player)
	if known && lobbyID != uuid.Nil {
		if lobby, ok := c.lobbies.Get(lobbyID); ok {
			c.removeFromLobby(player, lobby)
		}
	}
	c.players.Remove(player)
	c.log.WithFields(logrus.Fields{"player": player, "remote": ep.String()}).Info("player disconnected")
}

// ConnectedPlayers reports how many players are bound to a live connection.
func (c *Coordinator) ConnectedPlayers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identities.Len()
}

// HandleEvent applies one inbound event. Failures are logged and answered
// with an Error event; they never propagate.
func (c *Coordinator) HandleEvent(ep Endpoint, ev protocol.ClientEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sender, ok := c.identities.ResolveEndpoint(ep)
	if !ok {
		c.log.WithFields(logrus.Fields{"remote": ep.String(), "event": ev.Type}).Warn("event from unknown endpoint")
		if frame, err := protocol.EncodeServerEvent(protocol.ErrorEvent(string(ErrUserNotFound), kindMessages[ErrUserNotFound])); err == nil {
			_ = ep.Send(frame)
		}
		return
	}

	if err := c.apply(sender, ev); err != nil {
		c.log.WithFields(logrus.Fields{
			"player": sender,
			"event":  ev.Type,
			"kind":   err.Kind,
		}).Warn(err.Detail)
		c.dispatch.SendTo(sender, protocol.ErrorEvent(string(err.Kind), err.Detail))
	}
}

func (c *Coordinator) apply(sender uuid.UUID, ev protocol.ClientEvent) *Error {
	switch ev.Type {
	case protocol.EventBroadcast:
		return c.handleBroadcast(sender, ev.Message)
	case protocol.EventSendTo:
		return c.handleSendTo(sender, ev.TargetID, ev.Message)
	case protocol.EventCreateLobby:
		return c.handleCreateLobby(sender, ev.Params)
	case protocol.EventJoinLobby:
		return c.handleJoinLobby(sender, ev.LobbyID)
	case protocol.EventDeleteLobby:
		return c.handleDeleteLobby(sender, ev.LobbyID)
	case protocol.EventLeaveLobby:
		return c.handleLeaveLobby(sender, ev.LobbyID)
	case protocol.EventInviteLobby:
		return c.handleInviteLobby(sender, ev.LobbyID, ev.InviteeID)
	case protocol.EventGetPublicLobbies:
		return c.handleGetPublicLobbies(sender, ev.Region)
	case protocol.EventEditPlayer:
		return c.handleEditPlayer(sender, ev.Player)
	case protocol.EventMessageLobby:
		return c.handleMessageLobby(sender, ev.LobbyID, ev.Message)
	case protocol.EventQueueLobby:
		return c.handleQueueLobby(sender, ev.LobbyID)
	case protocol.EventCheckMatch:
		return c.handleCheckMatch(sender, ev.LobbyID, ev.Threshold)
	case protocol.EventStopQueue:
		return c.handleStopQueue(sender, ev.LobbyID)
	case protocol.EventLeaveGameAsLobby:
		return c.handleLeaveGameAsLobby(sender, ev.LobbyID)
	case protocol.EventGetLobbyInfo:
		return c.handleGetLobbyInfo(sender, ev.LobbyID)
	default:
		return parseError("unknown event type " + string(ev.Type))
	}
}

func (c *Coordinator) handleBroadcast(sender uuid.UUID, msg string) *Error {
	c.dispatch.SendToAllExcept(sender, protocol.UserMessageEvent(sender, msg))
	return nil
}

func (c *Coordinator) handleSendTo(sender uuid.UUID, targetID, msg string) *Error {
	target, perr := parsePlayerID(targetID)
	if perr != nil {
		return perr
	}
	if _, _, ok := c.players.Get(target); !ok {
		return kindError(ErrPlayerFind)
	}
	c.dispatch.SendTo(target, protocol.UserMessageEvent(sender, msg))
	return nil
}

func (c *Coordinator) handleCreateLobby(sender uuid.UUID, params *models.LobbyParams) *Error {
	if params == nil || !params.Valid() {
		return parseError("missing or invalid lobby params")
	}
	if _, current, _ := c.players.Get(sender); current != uuid.Nil {
		return kindError(ErrLobbyCreate)
	}
	lobby := models.Lobby{
		LobbyID: uuid.New(),
		Params:  *params,
		Leader:  sender,
		Status:  models.StatusIdle,
		Players: []uuid.UUID{sender},
	}
	c.lobbies.Create(lobby)
	c.players.SetLobby(sender, lobby.LobbyID)
	c.log.WithFields(logrus.Fields{
		"lobby":  lobby.LobbyID,
		"leader": sender,
		"region": params.Region,
		"mode":   params.Mode,
	}).Info("lobby created")
	c.dispatch.SendTo(sender, protocol.LobbyCreatedEvent(lobby))
	return nil
}

func (c *Coordinator) handleJoinLobby(sender uuid.UUID, lobbyIDStr string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	if _, current, _ := c.players.Get(sender); current != uuid.Nil {
		return kindError(ErrLobbyJoin)
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	if len(lobby.Players) >= c.lobbySize {
		return kindError(ErrLobbyFull)
	}
	lobby.Players = append(lobby.Players, sender)
	c.lobbies.Update(lobby)
	c.players.SetLobby(sender, lobbyID)
	c.dispatch.SendToLobby(lobby, protocol.LobbyJoinedEvent(sender, lobbyID))
	return nil
}

func (c *Coordinator) handleLeaveLobby(sender uuid.UUID, lobbyIDStr string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	if !lobby.HasPlayer(sender) {
		return kindError(ErrLobbyInvite)
	}
	c.removeFromLobby(sender, lobby)
	return nil
}

// removeFromLobby applies the leave semantics shared by LeaveLobby and
// disconnect cleanup. A queueing lobby first drops out of its queue and back
// to Idle so nothing observes a queued lobby in a later state. A leaving
// leader destroys the lobby.
func (c *Coordinator) removeFromLobby(sender uuid.UUID, lobby models.Lobby) {
	wasQueueing := lobby.Status == models.StatusQueueing
	if wasQueueing {
		c.queues.Remove(lobby.Params.Region, lobby.Params.Mode, lobby.LobbyID)
		lobby.Status = models.StatusIdle
		c.lobbies.Update(lobby)
	}

	if lobby.Leader == sender {
		c.lobbies.Delete(lobby.LobbyID)
		for _, member := range lobby.Players {
			c.players.SetLobby(member, uuid.Nil)
		}
		for _, member := range lobby.Players {
			if wasQueueing {
				c.dispatch.SendTo(member, protocol.QueueStoppedEvent(lobby.LobbyID))
			}
			c.dispatch.SendTo(member, protocol.LobbyLeftEvent(sender, lobby.LobbyID))
			c.dispatch.SendTo(member, protocol.LobbyDeletedEvent(lobby.LobbyID))
		}
		c.log.WithFields(logrus.Fields{"lobby": lobby.LobbyID, "leader": sender}).Info("lobby destroyed by leader leave")
		return
	}

	remaining := make([]uuid.UUID, 0, len(lobby.Players)-1)
	for _, member := range lobby.Players {
		if member != sender {
			remaining = append(remaining, member)
		}
	}
	lobby.Players = remaining
	c.lobbies.Update(lobby)
	c.players.SetLobby(sender, uuid.Nil)
	c.dispatch.SendTo(sender, protocol.LobbyLeftEvent(sender, lobby.LobbyID))
	for _, member := range lobby.Players {
		if wasQueueing {
			c.dispatch.SendTo(member, protocol.QueueStoppedEvent(lobby.LobbyID))
		}
		c.dispatch.SendTo(member, protocol.LobbyLeftEvent(sender, lobby.LobbyID))
	}
}

func (c *Coordinator) handleDeleteLobby(sender uuid.UUID, lobbyIDStr string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	if lobby.Leader != sender {
		return kindError(ErrLobbyOwner)
	}
	if lobby.Status != models.StatusIdle {
		return kindError(ErrLobbyDelete)
	}
	c.lobbies.Delete(lobbyID)
	for _, member := range lobby.Players {
		c.players.SetLobby(member, uuid.Nil)
	}
	for _, member := range lobby.Players {
		c.dispatch.SendTo(member, protocol.LobbyLeftEvent(sender, lobbyID))
		c.dispatch.SendTo(member, protocol.LobbyDeletedEvent(lobbyID))
	}
	c.log.WithFields(logrus.Fields{"lobby": lobbyID, "leader": sender}).Info("lobby deleted")
	return nil
}

func (c *Coordinator) handleInviteLobby(sender uuid.UUID, lobbyIDStr, inviteeIDStr string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	invitee, perr := parsePlayerID(inviteeIDStr)
	if perr != nil {
		return perr
	}
	_, current, _ := c.players.Get(sender)
	if current == uuid.Nil {
		return kindError(ErrLobbyInvite)
	}
	if current != lobbyID {
		return kindError(ErrLobbyCurInvite)
	}
	if _, _, ok := c.players.Get(invitee); !ok {
		return kindError(ErrPlayerFind)
	}
	// Invites carry no server-side state; the invitee just gets told.
	c.dispatch.SendTo(invitee, protocol.LobbyInvitedEvent(lobbyID))
	return nil
}

func (c *Coordinator) handleGetPublicLobbies(sender uuid.UUID, region models.Region) *Error {
	if !region.Valid() {
		return parseError("invalid region " + string(region))
	}
	c.dispatch.SendTo(sender, protocol.PublicLobbiesEvent(c.lobbies.ListPublic(region)))
	return nil
}

func (c *Coordinator) handleEditPlayer(sender uuid.UUID, player *models.Player) *Error {
	if player == nil {
		return parseError("missing player payload")
	}
	if player.Rating < 0 {
		return parseError("rating must be non-negative")
	}
	// The Idle precondition guards the player whose rating changes, not the
	// sender: a queued lobby's stored average must stay true to its members.
	_, current, ok := c.players.Get(player.PlayerID)
	if !ok {
		return kindError(ErrPlayerFind)
	}
	if current != uuid.Nil {
		if lobby, ok := c.lobbies.Get(current); ok && lobby.Status != models.StatusIdle {
			return kindError(ErrPlayerEdit)
		}
	}
	if err := c.players.SetRating(player.PlayerID, player.Rating); err != nil {
		return err
	}
	c.dispatch.SendTo(sender, protocol.PlayerEditedEvent(sender))
	return nil
}

func (c *Coordinator) handleMessageLobby(sender uuid.UUID, lobbyIDStr, msg string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	_, current, _ := c.players.Get(sender)
	if current == uuid.Nil {
		return kindError(ErrLobbyPlayer)
	}
	if current != lobbyID {
		return kindError(ErrLobbyMessage)
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	c.dispatch.SendToLobby(lobby, protocol.LobbyMessageEvent(sender, msg))
	return nil
}

func (c *Coordinator) handleQueueLobby(sender uuid.UUID, lobbyIDStr string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	if lobby.Leader != sender {
		return kindError(ErrLobbyOwner)
	}
	if lobby.Status != models.StatusIdle {
		return kindError(ErrLobbyQueue)
	}
	if len(lobby.Players) != c.lobbySize {
		return kindError(ErrLobbySize)
	}
	lobby.Status = models.StatusQueueing
	c.lobbies.Update(lobby)
	switch lobby.Params.Mode {
	case models.ModeCasual:
		c.queues.EnqueueCasual(lobby.Params.Region, lobbyID)
	case models.ModeCompetitive:
		rating := c.players.AverageRating(lobby.Players)
		c.queues.EnqueueCompetitive(lobby.Params.Region, lobbyID, rating, lobby.QueueThreshold)
	}
	c.log.WithFields(logrus.Fields{
		"lobby":  lobbyID,
		"region": lobby.Params.Region,
		"mode":   lobby.Params.Mode,
	}).Info("lobby queued")
	c.dispatch.SendToLobby(lobby, protocol.LobbyQueuedEvent(lobbyID))
	return nil
}

func (c *Coordinator) handleCheckMatch(sender uuid.UUID, lobbyIDStr string, threshold *int) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	if lobby.Leader != sender {
		return kindError(ErrLobbyOwner)
	}
	if lobby.Status != models.StatusQueueing {
		return kindError(ErrLobbyCheck)
	}
	tolerance := 0
	if threshold != nil && *threshold > 0 {
		tolerance = *threshold
	}

	region, mode := lobby.Params.Region, lobby.Params.Mode
	if mode == models.ModeCompetitive {
		// Each check re-declares the leader's tolerance; later candidate
		// scans must see it even if this check finds nothing.
		lobby.QueueThreshold = tolerance
		c.lobbies.Update(lobby)
		c.queues.SetThreshold(region, lobbyID, tolerance)
	}

	var a, b uuid.UUID
	var matched bool
	switch mode {
	case models.ModeCasual:
		a, b, matched = c.queues.TryMatchCasual(region, lobbyID)
	case models.ModeCompetitive:
		a, b, matched = c.queues.TryMatchCompetitive(region, lobbyID, tolerance)
	}
	if !matched {
		c.dispatch.SendTo(sender, protocol.MatchNotFoundEvent())
		return nil
	}
	c.finalizeMatch(a, b, tolerance)
	return nil
}

// finalizeMatch moves both lobbies to Ingame, captures the requester's
// successful tolerance, and tells every member about the counterpart. Both
// lobbies have already left their queue.
func (c *Coordinator) finalizeMatch(requesterID, partnerID uuid.UUID, tolerance int) {
	requester, ok := c.lobbies.Get(requesterID)
	if !ok {
		return
	}
	partner, ok := c.lobbies.Get(partnerID)
	if !ok {
		return
	}
	requester.Status = models.StatusIngame
	requester.QueueThreshold = tolerance
	partner.Status = models.StatusIngame
	c.lobbies.Update(requester)
	c.lobbies.Update(partner)

	c.log.WithFields(logrus.Fields{
		"lobby":    requesterID,
		"opponent": partnerID,
		"region":   requester.Params.Region,
		"mode":     requester.Params.Mode,
	}).Info("match found")
	c.dispatch.SendToLobby(requester, protocol.MatchFoundEvent(partner))
	c.dispatch.SendToLobby(partner, protocol.MatchFoundEvent(requester))
	if c.Recorder != nil {
		c.Recorder.RecordMatch(requester, partner)
	}
}

func (c *Coordinator) handleStopQueue(sender uuid.UUID, lobbyIDStr string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	if lobby.Leader != sender {
		return kindError(ErrLobbyOwner)
	}
	if lobby.Status != models.StatusQueueing {
		return kindError(ErrLobbyStop)
	}
	c.queues.Remove(lobby.Params.Region, lobby.Params.Mode, lobbyID)
	lobby.Status = models.StatusIdle
	c.lobbies.Update(lobby)
	c.dispatch.SendToLobby(lobby, protocol.QueueStoppedEvent(lobbyID))
	return nil
}

func (c *Coordinator) handleLeaveGameAsLobby(sender uuid.UUID, lobbyIDStr string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	if lobby.Leader != sender {
		return kindError(ErrLobbyOwner)
	}
	if lobby.Status != models.StatusIngame {
		return kindError(ErrLeaveGame)
	}
	lobby.Status = models.StatusIdle
	c.lobbies.Update(lobby)
	c.dispatch.SendToLobby(lobby, protocol.LeftGameEvent(lobbyID))
	return nil
}

func (c *Coordinator) handleGetLobbyInfo(sender uuid.UUID, lobbyIDStr string) *Error {
	lobbyID, perr := parseLobbyID(lobbyIDStr)
	if perr != nil {
		return perr
	}
	lobby, ok := c.lobbies.Get(lobbyID)
	if !ok {
		return kindError(ErrLobbyFind)
	}
	c.dispatch.SendTo(sender, protocol.LobbyInfoEvent(lobby))
	return nil
}

func parseLobbyID(s string) (uuid.UUID, *Error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, parseError("invalid lobby id: " + err.Error())
	}
	return id, nil
}

func parsePlayerID(s string) (uuid.UUID, *Error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, parseError("invalid player id: " + err.Error())
	}
	return id, nil
}
