// Package ws adapts websocket connections to room sessions: it upgrades,
// authenticates, pumps messages, and translates disconnect reasons into
// close frames.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"slimepit/server/internal/net/proto"
	"slimepit/server/internal/room"
)

const (
	writeWait      = 10 * time.Second
	readLimit      = 1 << 16
	sendQueueDepth = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades /ws requests and runs the session until it ends.
type Handler struct {
	manager *room.Manager
	log     *zap.SugaredLogger
}

// NewHandler returns the websocket entry point.
func NewHandler(manager *room.Manager, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{manager: manager, log: log}
}

// ServeHTTP handles GET /ws?room=<id>&token=<bearer>[&session=<resume>].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "missing room query", http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token query", http.StatusBadRequest)
		return
	}
	resumeSessionID := r.URL.Query().Get("session")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "err", err)
		return
	}

	client := newClient(conn)
	go client.writePump()

	rm := h.manager.GetOrCreate(roomID)
	result, err := rm.Join(r.Context(), token, resumeSessionID, client)
	if err != nil {
		client.CloseWith(websocket.CloseGoingAway, "room closed")
		return
	}
	if result.Rejection != nil {
		client.CloseWith(result.Rejection.Code, result.Rejection.Reason)
		return
	}

	joined, err := json.Marshal(proto.JoinedMessage{
		Ver:       proto.Version,
		Type:      proto.TypeJoined,
		RoomID:    roomID,
		SessionID: result.SessionID,
		Snapshot:  result.Snapshot,
		Config:    result.Config,
		Resumed:   result.Resumed,
	})
	if err != nil {
		h.log.Errorw("failed to marshal join keyframe", "room", roomID, "err", err)
		client.CloseWith(room.CloseInternalError, room.ReasonInternalError.Reason)
		rm.HandleDisconnect(result.SessionID)
		return
	}
	client.Enqueue(joined)

	h.readPump(rm, result.SessionID, client)
}

// readPump parses inbound messages and dispatches them to the room. A
// non-nil disconnect reason from a handler ends the session; the pump
// performs the close the handler asked for.
func (h *Handler) readPump(rm *room.Room, sessionID string, client *client) {
	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			if client.closedByServer() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				// Clean close counts as a graceful leave.
				rm.HandleLeave(sessionID)
				return
			}
			rm.HandleDisconnect(sessionID)
			return
		}

		var msg proto.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.log.Debugw("discarding malformed message", "session", sessionID, "err", err)
			continue
		}

		var reason *room.DisconnectReason
		switch msg.Type {
		case proto.TypePlayerInput:
			reason = rm.HandleInput(sessionID, msg.Input())
		case proto.TypeRefreshToken:
			reason = rm.HandleRefreshToken(client.ctx(), sessionID, msg.Token)
		case proto.TypeLeaveRoom:
			reason = rm.HandleLeave(sessionID)
		case proto.TypePing:
			reason = rm.HandlePing(sessionID, msg.T)
		default:
			continue
		}
		if reason != nil {
			client.CloseWith(reason.Code, reason.Reason)
			return
		}
	}
}
