package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fleetfusion/internal/sim"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Stream message types.
const (
	msgSnapshot = "snapshot"
	msgAck      = "ack"
	msgError    = "error"

	actionRestart = "restart"
)

// streamCommand is sent by the browser.
type streamCommand struct {
	Action string `json:"action"`
}

// streamMessage is sent to the browser.
type streamMessage struct {
	Type    string     `json:"type"`
	Fleet   *fleetView `json:"fleet,omitempty"`
	Action  string     `json:"action,omitempty"`
	Applied bool       `json:"applied"`
	Error   string     `json:"error,omitempty"`
}

// handleStream gives each connection its own simulator. It is activated on
// connect and deactivated when the connection goes away, so leaving the page
// cancels every pending firing.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("stream upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sm := s.newSim()
	snaps, unsubscribe := sm.Subscribe()
	defer unsubscribe()
	sm.Activate(ctx)
	defer sm.Deactivate()

	s.metrics.StreamClients.Inc()
	defer s.metrics.StreamClients.Dec()
	log := s.log.With("remote", r.RemoteAddr)
	log.Info("stream connected")
	defer log.Info("stream closed")

	replies := make(chan streamMessage, 4)
	go s.readStream(ctx, cancel, conn, sm, replies)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		var msg streamMessage
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			view := newFleetView(snap)
			msg = streamMessage{Type: msgSnapshot, Fleet: &view}
		case msg = <-replies:
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("stream write failed", "err", err)
			return
		}
	}
}

// readStream applies browser commands until the connection fails. Replies
// go through the writer loop, which owns the connection for writing.
func (s *Server) readStream(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sm *sim.Simulator, replies chan<- streamMessage) {
	defer cancel()
	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		reply := applyCommand(ctx, sm, data)
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func applyCommand(ctx context.Context, sm *sim.Simulator, data []byte) streamMessage {
	var cmd streamCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return streamMessage{Type: msgError, Error: "malformed command"}
	}
	reply := streamMessage{Type: msgAck, Action: cmd.Action}
	switch cmd.Action {
	case sim.ActionAccept:
		reply.Applied = sm.Accept()
	case sim.ActionDismiss:
		reply.Applied = sm.Dismiss()
	case actionRestart:
		sm.Activate(ctx)
		reply.Applied = true
	default:
		return streamMessage{Type: msgError, Action: cmd.Action, Error: "unknown action"}
	}
	return reply
}
