// internal/handlers/ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gamesync-io/gamesync/internal/protocol"
	"github.com/gamesync-io/gamesync/internal/session"
)

// Subprotocol is the websocket subprotocol every client must offer.
const Subprotocol = "gamesync"

// outboundBuffer is the per-connection frame backlog. A peer that falls this
// far behind starts losing frames, which the coordinator treats as failed
// sends.
const outboundBuffer = 32

// Keepalive and write deadlines. Variables so tests can tighten them.
var (
	pingInterval = 30 * time.Second
	pingTimeout  = 15 * time.Second
	writeTimeout = 5 * time.Second
)

var errSlowConsumer = errors.New("outbound buffer full")

// wsEndpoint adapts one websocket connection to the session.Endpoint
// surface. Send enqueues a pre-encoded frame for the write pump without ever
// blocking the coordinator.
type wsEndpoint struct {
	remote string
	out    chan []byte
}

func (e *wsEndpoint) Send(frame []byte) error {
	select {
	case e.out <- frame:
		return nil
	default:
		return errSlowConsumer
	}
}

func (e *wsEndpoint) String() string { return e.remote }

// SessionWSHandler accepts websocket clients and runs them against the
// coordinator: connect on accept, one read pump feeding inbound events, one
// write pump draining outbound frames, disconnect cleanup when the read pump
// exits for any reason.
func SessionWSHandler(logger *logrus.Logger, coord *session.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the gamesync subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		ep := &wsEndpoint{
			remote: r.RemoteAddr,
			out:    make(chan []byte, outboundBuffer),
		}

		player := coord.Connect(ep)

		go writePump(ctx, cancel, c, ep, logger)
		readErr := readPump(ctx, c, coord, ep, logger)

		coord.Disconnect(ep)
		cancel()
		if readErr != nil {
			logger.WithFields(logrus.Fields{"player": player, "remote": r.RemoteAddr, "error": readErr}).Warn("connection ended with error")
		}
		logger.WithFields(logrus.Fields{"player": player, "remote": r.RemoteAddr}).Debug("connection handler finished")
	}
}

// readPump decodes inbound frames and hands them to the coordinator until
// the connection dies. Undecodable payloads are answered with a ParseError
// event and discarded; the connection stays up.
func readPump(ctx context.Context, c *websocket.Conn, coord *session.Coordinator, ep *wsEndpoint, logger *logrus.Logger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				return nil
			}
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			logger.Warnf("ignoring non-text message from %s", ep.remote)
			continue
		}

		ev, err := protocol.DecodeClientEvent(data)
		if err != nil {
			logger.WithFields(logrus.Fields{"remote": ep.remote, "error": err}).Warn("failed to parse client event")
			if frame, encErr := protocol.EncodeServerEvent(protocol.ErrorEvent("ParseError", err.Error())); encErr == nil {
				_ = ep.Send(frame)
			}
			continue
		}
		coord.HandleEvent(ep, ev)
	}
}

// writePump drains the endpoint's outbound channel onto the wire and keeps
// the connection alive with periodic pings. It owns the connection context:
// any write or ping failure cancels it, which unblocks the read pump and
// drives the whole session through the normal disconnect path.
func writePump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, ep *wsEndpoint, logger *logrus.Logger) {
	defer cancel()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-ep.out:
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, frame)
			cancelWrite()
			if err != nil {
				logger.Warnf("failed to write to %s: %v", ep.remote, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancelPing := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancelPing()
			if err != nil {
				logger.Warnf("ping to %s failed, assuming disconnect: %v", ep.remote, err)
				return
			}
		}
	}
}
