// internal/session/dispatcher.go
package session

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gamesync-io/gamesync/internal/models"
	"github.com/gamesync-io/gamesync/internal/protocol"
)

// Dispatcher fans outbound events to endpoints. It encodes each event once
// and writes the frame to every resolved recipient. A recipient the transport
// rejects is logged and skipped; a failed send never aborts the fan-out. It
// reads the identity registry but never mutates it, and runs only under the
// coordinator's serialization.
type Dispatcher struct {
	identities *IdentityRegistry
	log        *logrus.Logger
}

func NewDispatcher(identities *IdentityRegistry, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{identities: identities, log: log}
}

// SendTo delivers an event to a single player.
func (d *Dispatcher) SendTo(player uuid.UUID, ev protocol.ServerEvent) {
	frame, ok := d.encode(ev)
	if !ok {
		return
	}
	d.deliver(player, ev.Type, frame)
}

// SendToLobby delivers an event to every member of a lobby, in member order.
func (d *Dispatcher) SendToLobby(lobby models.Lobby, ev protocol.ServerEvent) {
	frame, ok := d.encode(ev)
	if !ok {
		return
	}
	for _, member := range lobby.Players {
		d.deliver(member, ev.Type, frame)
	}
}

// SendToAllExcept delivers an event to every connected player but the sender.
func (d *Dispatcher) SendToAllExcept(sender uuid.UUID, ev protocol.ServerEvent) {
	frame, ok := d.encode(ev)
	if !ok {
		return
	}
	for _, player := range d.identities.Players() {
		if player == sender {
			continue
		}
		d.deliver(player, ev.Type, frame)
	}
}

func (d *Dispatcher) encode(ev protocol.ServerEvent) ([]byte, bool) {
	frame, err := protocol.EncodeServerEvent(ev)
	if err != nil {
		d.log.WithFields(logrus.Fields{"event": ev.Type, "error": err}).Error("failed to encode event")
		return nil, false
	}
	return frame, true
}

func (d *Dispatcher) deliver(player uuid.UUID, eventType protocol.EventType, frame []byte) {
	ep, ok := d.identities.ResolvePlayer(player)
	if !ok {
		// Recipient disconnected mid-request; nothing to deliver.
		d.log.WithFields(logrus.Fields{"player": player, "event": eventType}).Debug("dropping event for disconnected player")
		return
	}
	if err := ep.Send(frame); err != nil {
		d.log.WithFields(logrus.Fields{
			"kind":   ErrSend,
			"player": player,
			"remote": ep.String(),
			"event":  eventType,
			"error":  err,
		}).Warn("failed to deliver event")
	}
}
